package art

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sethgrid/watchbuddy/internal/conditions"
	"github.com/sethgrid/watchbuddy/internal/engine"
	"github.com/sethgrid/watchbuddy/internal/pet"
)

func TestChooseArtKeyFallsBack(t *testing.T) {
	frames := map[string]string{
		"default":     "d",
		"happy":       "h",
		"adult:happy": "ah",
		"egg":         "e",
	}

	tests := []struct {
		stage pet.Stage
		mood  conditions.Mood
		want  string
	}{
		{pet.StageAdult, conditions.MoodHappy, "adult:happy"},
		{pet.StageJuvenile, conditions.MoodHappy, "happy"},
		{pet.StageEgg, conditions.MoodIdle, "egg"},
		{pet.StageJuvenile, conditions.MoodAngry, "default"},
	}
	for _, tt := range tests {
		if got := ChooseArtKey(tt.stage, tt.mood, frames); got != tt.want {
			t.Errorf("ChooseArtKey(%s, %s) = %q, want %q", tt.stage, tt.mood, got, tt.want)
		}
	}
}

func TestEveryFrameResolves(t *testing.T) {
	moods := []conditions.Mood{conditions.MoodIdle, conditions.MoodHappy, conditions.MoodHungry, conditions.MoodSleepy, conditions.MoodAngry}
	stages := []pet.Stage{pet.StageEgg, pet.StageHatchling, pet.StageJuvenile, pet.StageAdult}
	for _, st := range stages {
		for _, m := range moods {
			if Static(st, m) == "" {
				t.Errorf("no art for %s:%s", st, m)
			}
		}
	}
}

func TestRendererRedrawsOnlyOnChange(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, func() pet.Stage { return pet.StageHatchling })

	r.SetMood(conditions.MoodIdle, false)
	r.SetMood(conditions.MoodIdle, false)
	if n := strings.Count(buf.String(), "idle"); n != 1 {
		t.Fatalf("expected one idle redraw, got %d:\n%s", n, buf.String())
	}

	r.SetMood(conditions.MoodIdle, true)
	if n := strings.Count(buf.String(), "idle"); n != 2 {
		t.Errorf("force should redraw, got %d idle lines", n)
	}

	r.SetMood(conditions.MoodSleepy, false)
	if !strings.Contains(buf.String(), "( -.- ) z") {
		t.Errorf("expected sleepy art, got:\n%s", buf.String())
	}
	if r.Mood() != conditions.MoodSleepy {
		t.Errorf("Mood() = %s", r.Mood())
	}
}

func TestRendererEffects(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, nil)

	r.Effect(engine.EffectFeed)
	r.Effect(engine.EffectNone)
	r.Effect(engine.EffectSleep)

	if got, want := buf.String(), "*nom nom*\n*zzz*\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRendererAsEngineListener(t *testing.T) {
	var buf bytes.Buffer
	e := engine.New(pet.NewState())
	e.Attach(NewRenderer(&buf, func() pet.Stage { return e.Snapshot().Stage }))

	if _, err := e.Feed(pet.Treat); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "___") {
		t.Errorf("expected egg art on attach, got:\n%s", out)
	}
	if !strings.HasSuffix(out, "*nom nom*\n") {
		t.Errorf("expected feed effect last, got:\n%s", out)
	}
}
