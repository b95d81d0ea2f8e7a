package pet

import "math"

// Delta is a change to the four vitals. It is only ever applied through
// Vitals.Apply, which clamps every stat.
type Delta struct {
	Hunger      float64
	Happiness   float64
	Cleanliness float64
	Sleepiness  float64
}

var (
	foodDeltas = map[FoodKind]Delta{
		Kibble: {Hunger: -10, Happiness: 5},
		Treat:  {Hunger: -5, Happiness: 10, Cleanliness: 2},
		Fruit:  {Hunger: -15, Happiness: 15, Cleanliness: -3},
	}
	toyDeltas = map[ToyKind]Delta{
		Ball:       {Hunger: 5, Happiness: 20, Cleanliness: -15},
		Rope:       {Hunger: 10, Happiness: 15, Cleanliness: -10},
		SqueakyToy: {Hunger: 3, Happiness: 25, Cleanliness: -5},
	}

	CleanDelta = Delta{Cleanliness: 20}
	SleepDelta = Delta{Hunger: 10, Cleanliness: -5, Sleepiness: -30}
)

func FoodDelta(f FoodKind) Delta { return foodDeltas[f] }
func ToyDelta(t ToyKind) Delta   { return toyDeltas[t] }

func (v *Vitals) Apply(d Delta) {
	v.Hunger = clamp(v.Hunger+d.Hunger, 0, 100)
	v.Happiness = clamp(v.Happiness+d.Happiness, 0, 100)
	v.Cleanliness = clamp(v.Cleanliness+d.Cleanliness, 0, 100)
	v.Sleepiness = clamp(v.Sleepiness+d.Sleepiness, 0, 100)
}

// Clamped returns v with every stat forced into range. Used when restoring
// state from storage, which may have been edited by hand.
func (v Vitals) Clamped() Vitals {
	v.Apply(Delta{})
	return v
}

// Feed consumes one unit of f and applies its delta. With nothing in stock
// it returns ErrInsufficientStock and leaves the state untouched.
func (s *State) Feed(f FoodKind) error {
	if _, ok := foodDeltas[f]; !ok {
		return ErrUnknownItem
	}
	if s.Food[f] <= 0 {
		return ErrInsufficientStock
	}
	s.Food[f]--
	s.Vitals.Apply(foodDeltas[f])
	return nil
}

func (s *State) Play(t ToyKind) error {
	if _, ok := toyDeltas[t]; !ok {
		return ErrUnknownItem
	}
	if s.Toys[t] <= 0 {
		return ErrInsufficientStock
	}
	s.Toys[t]--
	s.Vitals.Apply(toyDeltas[t])
	return nil
}

func (s *State) Clean() {
	s.Vitals.Apply(CleanDelta)
}

func (s *State) Sleep() {
	s.Vitals.Apply(SleepDelta)
}

// clamp maps NaN to min.
func clamp(value, min, max float64) float64 {
	if math.IsNaN(value) || value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
