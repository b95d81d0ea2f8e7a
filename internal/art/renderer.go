package art

import (
	"fmt"
	"io"
	"sync"

	"github.com/sethgrid/watchbuddy/internal/conditions"
	"github.com/sethgrid/watchbuddy/internal/engine"
	"github.com/sethgrid/watchbuddy/internal/pet"
)

// ChooseArtKey picks the most specific frame available: "stage:mood", then
// the mood alone, then the stage alone, then "default".
func ChooseArtKey(stage pet.Stage, mood conditions.Mood, frames map[string]string) string {
	candidates := []string{
		string(stage) + ":" + string(mood),
		string(mood),
		string(stage),
	}
	for _, key := range candidates {
		if _, ok := frames[key]; ok {
			return key
		}
	}
	return "default"
}

// Static returns the frame for a stage and mood.
func Static(stage pet.Stage, mood conditions.Mood) string {
	return Frames[ChooseArtKey(stage, mood, Frames)]
}

// Frames is the built-in art set.
var Frames = map[string]string{
	"default": ` /\_/\
( o.o )
 > ^ <`,
	"happy": ` /\_/\
( ^.^ )
 > ^ <`,
	"hungry": ` /\_/\
( o.O )
 > o <`,
	"sleepy": ` /\_/\
( -.- ) z
 > ^ <`,
	"angry": ` /\_/\
( >.< )
 > ^ <`,
	"egg": `  ___
 /   \
 \___/`,
	"egg:sleepy": `  ___
 / z \
 \___/`,
	"hatchling": `  /\_/\
 ( o.o )
 /\___/\`,
	"adult:happy": ` /\_/\  ~
( ^.^ )/
 > ^ <`,
}

var effectLines = map[engine.Effect]string{
	engine.EffectFeed:  "*nom nom*",
	engine.EffectPlay:  "*boing boing*",
	engine.EffectClean: "*scrub scrub*",
	engine.EffectSleep: "*zzz*",
}

// Renderer draws the pet to a terminal. It satisfies engine.Listener.
type Renderer struct {
	mu    sync.Mutex
	w     io.Writer
	stage func() pet.Stage
	mood  conditions.Mood
	drawn bool
}

// NewRenderer writes to w. stage is consulted on every redraw.
func NewRenderer(w io.Writer, stage func() pet.Stage) *Renderer {
	return &Renderer{w: w, stage: stage}
}

// SetMood redraws the pet when the mood changed or force is set.
func (r *Renderer) SetMood(m conditions.Mood, force bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !force && r.drawn && m == r.mood {
		return
	}
	r.mood = m
	r.drawn = true

	stage := pet.StageEgg
	if r.stage != nil {
		stage = r.stage()
	}
	fmt.Fprintf(r.w, "%s\n%s %s\n", Static(stage, m), conditions.Emoji(m), m)
}

func (r *Renderer) Effect(e engine.Effect) {
	line, ok := effectLines[e]
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

func (r *Renderer) Mood() conditions.Mood {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mood
}
