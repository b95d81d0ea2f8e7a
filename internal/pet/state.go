package pet

import (
	"maps"
)

const DefaultName = "My Buddy"

const (
	DefaultVital  = 50.0
	DefaultPoints = 300
)

type Action string

const (
	ActionNone  Action = "none"
	ActionFeed  Action = "feed"
	ActionPlay  Action = "play"
	ActionClean Action = "clean"
	ActionSleep Action = "sleep"
)

func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionNone, ActionFeed, ActionPlay, ActionClean, ActionSleep:
		return a, true
	}
	return "", false
}

type Stage string

const (
	StageEgg       Stage = "egg"
	StageHatchling Stage = "hatchling"
	StageJuvenile  Stage = "juvenile"
	StageAdult     Stage = "adult"
)

// Vitals are the four primary stats. Each one is kept within [0, 100].
type Vitals struct {
	Hunger      float64
	Happiness   float64
	Cleanliness float64
	Sleepiness  float64
}

// Activity holds the normalized activity levels derived from Totals and the
// most recently observed sleep duration.
type Activity struct {
	RunningLevel   float64
	SwimmingLevel  float64
	CyclingLevel   float64
	LastSleepHours float64
}

// Totals are cumulative distances in meters. They never decrease.
type Totals struct {
	Running  float64
	Swimming float64
	Cycling  float64
}

type State struct {
	Vitals   Vitals
	Activity Activity
	Totals   Totals

	ActiveAction Action
	SelectedFood *FoodKind
	SelectedToy  *ToyKind

	Name   string
	Points int
	Food   map[FoodKind]int
	Toys   map[ToyKind]int
	Stage  Stage
}

func DefaultFood() map[FoodKind]int {
	return map[FoodKind]int{Kibble: 5, Treat: 3, Fruit: 2}
}

func DefaultToys() map[ToyKind]int {
	return map[ToyKind]int{Ball: 5, Rope: 3, SqueakyToy: 2}
}

func DefaultVitals() Vitals {
	return Vitals{
		Hunger:      DefaultVital,
		Happiness:   DefaultVital,
		Cleanliness: DefaultVital,
		Sleepiness:  DefaultVital,
	}
}

// NewState returns the state of a freshly installed pet.
func NewState() State {
	return State{
		Vitals:       DefaultVitals(),
		ActiveAction: ActionNone,
		Name:         DefaultName,
		Points:       DefaultPoints,
		Food:         DefaultFood(),
		Toys:         DefaultToys(),
		Stage:        StageEgg,
	}
}

// Clone returns a deep copy so snapshots handed to collaborators never alias
// the engine's maps or selection pointers.
func (s State) Clone() State {
	c := s
	c.Food = maps.Clone(s.Food)
	c.Toys = maps.Clone(s.Toys)
	if c.Food == nil {
		c.Food = map[FoodKind]int{}
	}
	if c.Toys == nil {
		c.Toys = map[ToyKind]int{}
	}
	if s.SelectedFood != nil {
		f := *s.SelectedFood
		c.SelectedFood = &f
	}
	if s.SelectedToy != nil {
		t := *s.SelectedToy
		c.SelectedToy = &t
	}
	return c
}

// SoftReset puts vitals, identity and the pending action back to defaults.
// Economy and evolution progress are left alone.
func (s *State) SoftReset() {
	s.Vitals = DefaultVitals()
	s.Activity.LastSleepHours = 0
	s.refreshLevels()
	s.ClearAction()
	s.Name = DefaultName
}

// HardReset erases economy and evolution progress. Current vitals are kept.
func (s *State) HardReset() {
	s.Points = DefaultPoints
	s.Food = DefaultFood()
	s.Toys = DefaultToys()
	s.Totals = Totals{}
	s.refreshLevels()
	s.Stage = StageEgg
}

func (s *State) ClearAction() {
	s.ActiveAction = ActionNone
	s.SelectedFood = nil
	s.SelectedToy = nil
}

// Normalize repairs a state restored from storage so every invariant holds
// again: vitals in range, no negative counts, a known stage and a usable name.
func (s *State) Normalize() {
	s.Vitals = s.Vitals.Clamped()
	s.Totals.Running = nonNegative(s.Totals.Running)
	s.Totals.Swimming = nonNegative(s.Totals.Swimming)
	s.Totals.Cycling = nonNegative(s.Totals.Cycling)
	s.Activity.LastSleepHours = nonNegative(s.Activity.LastSleepHours)
	s.refreshLevels()

	if s.Points < 0 {
		s.Points = 0
	}
	if s.Points > MaxPoints {
		s.Points = MaxPoints
	}
	if s.Food == nil {
		s.Food = map[FoodKind]int{}
	}
	if s.Toys == nil {
		s.Toys = map[ToyKind]int{}
	}
	for k, v := range s.Food {
		if v < 0 {
			s.Food[k] = 0
		}
	}
	for k, v := range s.Toys {
		if v < 0 {
			s.Toys[k] = 0
		}
	}

	switch s.Stage {
	case StageEgg, StageHatchling, StageJuvenile, StageAdult:
	default:
		s.Stage = StageEgg
	}
	if err := s.Rename(s.Name); err != nil {
		s.Name = DefaultName
	}

	if _, ok := ParseAction(string(s.ActiveAction)); !ok {
		s.ActiveAction = ActionNone
	}
	if s.ActiveAction != ActionFeed {
		s.SelectedFood = nil
	}
	if s.ActiveAction != ActionPlay {
		s.SelectedToy = nil
	}
}
