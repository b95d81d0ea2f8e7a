// Package engine is the only writer of pet state. Every action goes through
// an Engine method, which applies it, re-derives the mood, hands a snapshot
// to the saver and notifies listeners.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sethgrid/watchbuddy/internal/conditions"
	"github.com/sethgrid/watchbuddy/internal/pet"
)

var (
	ErrNoActiveAction = errors.New("no action selected")
	ErrItemRequired   = errors.New("an item must be selected")
)

type Effect string

const (
	EffectNone  Effect = ""
	EffectFeed  Effect = "feed"
	EffectPlay  Effect = "play"
	EffectClean Effect = "clean"
	EffectSleep Effect = "sleep"
)

// Listener is the rendering side. It only ever receives calls.
type Listener interface {
	SetMood(m conditions.Mood, force bool)
	Effect(e Effect)
}

// Saver receives a snapshot after every mutation. It must not block.
type Saver interface {
	Save(s pet.State)
}

// Outcome describes the result of one engine call.
type Outcome struct {
	ID          string
	Kind        string
	At          time.Time
	Snapshot    pet.State
	Mood        conditions.Mood
	MoodChanged bool
	Effect      Effect

	// Item is the food or toy consumed or bought, if any.
	Item *pet.Item
	// RanOut is set when the consumed item's stock reached zero and the
	// pending action was cleared.
	RanOut bool

	PointsAwarded int
	PointsSpent   int
	Evolved       bool
	From, To      pet.Stage
}

type Engine struct {
	mu        sync.Mutex
	state     pet.State
	catalog   pet.Catalog
	lastMood  conditions.Mood
	saver     Saver
	listeners []Listener
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Engine)

func WithSaver(s Saver) Option { return func(e *Engine) { e.saver = s } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithCatalog(c pet.Catalog) Option { return func(e *Engine) { e.catalog = c } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New takes ownership of a copy of state.
func New(state pet.State, opts ...Option) *Engine {
	e := &Engine{
		state:   state.Clone(),
		catalog: pet.DefaultCatalog(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("engine")
	e.state.Normalize()
	e.lastMood = conditions.DeriveMood(e.state.Vitals)
	return e
}

// Attach registers a listener and immediately forces it to the current mood.
func (e *Engine) Attach(l Listener) {
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	mood := conditions.DeriveMood(e.state.Vitals)
	e.mu.Unlock()

	l.SetMood(mood, true)
}

func (e *Engine) Snapshot() pet.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Mood is derived from the current vitals on every call.
func (e *Engine) Mood() conditions.Mood {
	e.mu.Lock()
	defer e.mu.Unlock()
	return conditions.DeriveMood(e.state.Vitals)
}

func (e *Engine) Catalog() pet.Catalog {
	return e.catalog
}

func (e *Engine) Feed(f pet.FoodKind) (Outcome, error) {
	item := pet.FoodItem(f)
	return e.mutate("feed", func(s *pet.State, out *Outcome) error {
		if err := s.Feed(f); err != nil {
			return fmt.Errorf("feed %s: %w", f.Label(), err)
		}
		out.Effect = EffectFeed
		out.Item = &item
		if s.SelectedFood != nil && *s.SelectedFood == f {
			out.RanOut = clearIfExhausted(s, item)
		}
		return nil
	})
}

func (e *Engine) Play(t pet.ToyKind) (Outcome, error) {
	item := pet.ToyItem(t)
	return e.mutate("play", func(s *pet.State, out *Outcome) error {
		if err := s.Play(t); err != nil {
			return fmt.Errorf("play with %s: %w", t.Label(), err)
		}
		out.Effect = EffectPlay
		out.Item = &item
		if s.SelectedToy != nil && *s.SelectedToy == t {
			out.RanOut = clearIfExhausted(s, item)
		}
		return nil
	})
}

func (e *Engine) Clean() Outcome {
	out, _ := e.mutate("clean", func(s *pet.State, out *Outcome) error {
		s.Clean()
		out.Effect = EffectClean
		return nil
	})
	return out
}

func (e *Engine) Sleep() Outcome {
	out, _ := e.mutate("sleep", func(s *pet.State, out *Outcome) error {
		s.Sleep()
		out.Effect = EffectSleep
		return nil
	})
	return out
}

// Tick applies one period of passive decay.
func (e *Engine) Tick() Outcome {
	out, _ := e.mutate("tick", func(s *pet.State, _ *Outcome) error {
		s.Degrade()
		return nil
	})
	return out
}

// IngestActivity folds one combined activity reading into the pet.
func (e *Engine) IngestActivity(r pet.Reading) Outcome {
	out, _ := e.mutate("ingest", func(s *pet.State, out *Outcome) error {
		res := s.Ingest(r)
		out.PointsAwarded = res.PointsAwarded
		out.Evolved = res.Evolved
		out.From, out.To = res.From, res.To
		return nil
	})
	if out.Evolved {
		e.logger.Info("pet evolved",
			zap.String("event", out.ID),
			zap.String("from", string(out.From)),
			zap.String("to", string(out.To)))
	}
	return out
}

func (e *Engine) Buy(item pet.Item, quantity, unitPrice int) (Outcome, error) {
	return e.mutate("buy", func(s *pet.State, out *Outcome) error {
		if err := s.Buy(item, quantity, unitPrice); err != nil {
			return fmt.Errorf("buy %d %s: %w", quantity, item.Label(), err)
		}
		out.Item = &item
		out.PointsSpent = quantity * unitPrice
		return nil
	})
}

// BuyFromCatalog buys at the engine's catalog price.
func (e *Engine) BuyFromCatalog(item pet.Item, quantity int) (Outcome, error) {
	return e.mutate("buy", func(s *pet.State, out *Outcome) error {
		spent, err := s.BuyFromCatalog(e.catalog, item, quantity)
		if err != nil {
			return fmt.Errorf("buy %d %s: %w", quantity, item.Label(), err)
		}
		out.Item = &item
		out.PointsSpent = spent
		return nil
	})
}

func (e *Engine) Rename(name string) (Outcome, error) {
	return e.mutate("rename", func(s *pet.State, _ *Outcome) error {
		return s.Rename(name)
	})
}

// SoftReset ends the current pet: vitals, name and pending action go back
// to defaults. Points, inventory and evolution are kept.
func (e *Engine) SoftReset() Outcome {
	out, _ := e.mutate("soft-reset", func(s *pet.State, _ *Outcome) error {
		s.SoftReset()
		return nil
	})
	return out
}

// HardReset erases progress: points, inventory, totals and stage. Current
// vitals are kept.
func (e *Engine) HardReset() Outcome {
	out, _ := e.mutate("hard-reset", func(s *pet.State, _ *Outcome) error {
		s.HardReset()
		return nil
	})
	return out
}

// mutate runs fn against the live state. On error nothing is saved or
// announced, and fn must not have changed the state.
func (e *Engine) mutate(kind string, fn func(s *pet.State, out *Outcome) error) (Outcome, error) {
	out := Outcome{ID: uuid.NewString(), Kind: kind}

	e.mu.Lock()
	if err := fn(&e.state, &out); err != nil {
		e.mu.Unlock()
		e.logger.Debug("action rejected", zap.String("event", out.ID), zap.String("kind", kind), zap.Error(err))
		return Outcome{}, err
	}
	e.commitLocked(&out)
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()

	e.notify(listeners, out)
	return out, nil
}

func (e *Engine) commitLocked(out *Outcome) {
	out.At = e.now()
	out.Mood = conditions.DeriveMood(e.state.Vitals)
	out.MoodChanged = out.Mood != e.lastMood
	e.lastMood = out.Mood
	out.Snapshot = e.state.Clone()

	if e.saver != nil {
		e.saver.Save(out.Snapshot)
	}

	fields := []zap.Field{
		zap.String("event", out.ID),
		zap.String("kind", out.Kind),
		zap.String("mood", string(out.Mood)),
	}
	if out.Kind == "tick" {
		e.logger.Debug("pet updated", fields...)
	} else {
		e.logger.Info("pet updated", fields...)
	}
}

func (e *Engine) notify(listeners []Listener, out Outcome) {
	for _, l := range listeners {
		if out.MoodChanged {
			l.SetMood(out.Mood, false)
		}
		if out.Effect != EffectNone {
			l.Effect(out.Effect)
		}
	}
}
