package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethgrid/watchbuddy/internal/pet"
)

var (
	// ErrNotFound means nothing has been saved yet.
	ErrNotFound = errors.New("no saved pet")
	// ErrDecode means saved data exists but could not be read back.
	ErrDecode = errors.New("saved pet is corrupt")
)

// Store is the persistence collaborator.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}

// Record is the flat, versionless serialization of pet.State. Empty strings
// stand for "no selection".
type Record struct {
	Hunger      float64 `toml:"hunger" db:"hunger"`
	Happiness   float64 `toml:"happiness" db:"happiness"`
	Cleanliness float64 `toml:"cleanliness" db:"cleanliness"`
	Sleepiness  float64 `toml:"sleepiness" db:"sleepiness"`

	RunningLevel   float64 `toml:"runningLevel" db:"running_level"`
	SwimmingLevel  float64 `toml:"swimmingLevel" db:"swimming_level"`
	CyclingLevel   float64 `toml:"cyclingLevel" db:"cycling_level"`
	LastSleepHours float64 `toml:"lastSleepHours" db:"last_sleep_hours"`

	ActiveAction     string `toml:"activeAction" db:"active_action"`
	SelectedFoodType string `toml:"selectedFoodType" db:"selected_food_type"`
	SelectedToyType  string `toml:"selectedToyType" db:"selected_toy_type"`

	PetName   string `toml:"petName" db:"pet_name"`
	PetPoints int    `toml:"petPoints" db:"pet_points"`

	FoodInventory map[string]int `toml:"foodInventory" db:"-"`
	ToyInventory  map[string]int `toml:"toyInventory" db:"-"`

	TotalRunningDistance  float64 `toml:"totalRunningDistance" db:"total_running_distance"`
	TotalSwimmingDistance float64 `toml:"totalSwimmingDistance" db:"total_swimming_distance"`
	TotalCyclingDistance  float64 `toml:"totalCyclingDistance" db:"total_cycling_distance"`

	PetEvolutionStage string `toml:"petEvolutionStage" db:"pet_evolution_stage"`
}

func FromState(s pet.State) Record {
	r := Record{
		Hunger:                s.Vitals.Hunger,
		Happiness:             s.Vitals.Happiness,
		Cleanliness:           s.Vitals.Cleanliness,
		Sleepiness:            s.Vitals.Sleepiness,
		RunningLevel:          s.Activity.RunningLevel,
		SwimmingLevel:         s.Activity.SwimmingLevel,
		CyclingLevel:          s.Activity.CyclingLevel,
		LastSleepHours:        s.Activity.LastSleepHours,
		ActiveAction:          string(s.ActiveAction),
		PetName:               s.Name,
		PetPoints:             s.Points,
		FoodInventory:         make(map[string]int, len(s.Food)),
		ToyInventory:          make(map[string]int, len(s.Toys)),
		TotalRunningDistance:  s.Totals.Running,
		TotalSwimmingDistance: s.Totals.Swimming,
		TotalCyclingDistance:  s.Totals.Cycling,
		PetEvolutionStage:     string(s.Stage),
	}
	if s.SelectedFood != nil {
		r.SelectedFoodType = string(*s.SelectedFood)
	}
	if s.SelectedToy != nil {
		r.SelectedToyType = string(*s.SelectedToy)
	}
	for k, v := range s.Food {
		r.FoodInventory[string(k)] = v
	}
	for k, v := range s.Toys {
		r.ToyInventory[string(k)] = v
	}
	return r
}

// State converts r back into a pet.State and repairs any invariant a hand
// edit may have broken. Unknown item kinds are dropped.
func (r Record) State() pet.State {
	s := pet.State{
		Vitals: pet.Vitals{
			Hunger:      r.Hunger,
			Happiness:   r.Happiness,
			Cleanliness: r.Cleanliness,
			Sleepiness:  r.Sleepiness,
		},
		Activity: pet.Activity{
			RunningLevel:   r.RunningLevel,
			SwimmingLevel:  r.SwimmingLevel,
			CyclingLevel:   r.CyclingLevel,
			LastSleepHours: r.LastSleepHours,
		},
		Totals: pet.Totals{
			Running:  r.TotalRunningDistance,
			Swimming: r.TotalSwimmingDistance,
			Cycling:  r.TotalCyclingDistance,
		},
		ActiveAction: pet.Action(r.ActiveAction),
		Name:         r.PetName,
		Points:       r.PetPoints,
		Food:         map[pet.FoodKind]int{},
		Toys:         map[pet.ToyKind]int{},
		Stage:        pet.Stage(r.PetEvolutionStage),
	}

	for k, v := range r.FoodInventory {
		if item, err := pet.ParseItem(k); err == nil && item.Category == pet.CategoryFood {
			s.Food[item.Food] = v
		}
	}
	for k, v := range r.ToyInventory {
		if item, err := pet.ParseItem(k); err == nil && item.Category == pet.CategoryToy {
			s.Toys[item.Toy] = v
		}
	}
	if item, err := pet.ParseItem(r.SelectedFoodType); err == nil && item.Category == pet.CategoryFood {
		s.SelectedFood = &item.Food
	}
	if item, err := pet.ParseItem(r.SelectedToyType); err == nil && item.Category == pet.CategoryToy {
		s.SelectedToy = &item.Toy
	}

	s.Normalize()
	return s
}

// LoadOrDefault restores the saved pet. A missing save yields the default
// state with no error. A corrupt save also yields the default state, along
// with an error wrapping ErrDecode for the caller to log.
func LoadOrDefault(ctx context.Context, store Store) (pet.State, error) {
	rec, err := store.Load(ctx)
	switch {
	case err == nil:
		return rec.State(), nil
	case errors.Is(err, ErrNotFound):
		return pet.NewState(), nil
	case errors.Is(err, ErrDecode):
		return pet.NewState(), err
	default:
		return pet.NewState(), fmt.Errorf("%w: %w", ErrDecode, err)
	}
}
