package conditions

import (
	"github.com/sethgrid/watchbuddy/internal/pet"
)

type Mood string

const (
	MoodIdle   Mood = "idle"
	MoodHappy  Mood = "happy"
	MoodHungry Mood = "hungry"
	MoodSleepy Mood = "sleepy"
	MoodAngry  Mood = "angry"
)

// Thresholds for the mood rules.
const (
	HungryAt       = 70.0
	SleepyAt       = 70.0
	AngryHappiness = 30.0
	AngryCleanAt   = 40.0
	HappyAt        = 70.0
	HappyHungerMax = 50.0
	HappySleepyMax = 50.0
)

type rule struct {
	mood  Mood
	match func(v pet.Vitals) bool
}

// Evaluated in order; the first match wins. Several rules can hold at once,
// so the order is part of the contract.
var rules = []rule{
	{MoodHungry, func(v pet.Vitals) bool { return v.Hunger >= HungryAt }},
	{MoodSleepy, func(v pet.Vitals) bool { return v.Sleepiness >= SleepyAt }},
	{MoodAngry, func(v pet.Vitals) bool {
		return v.Happiness <= AngryHappiness && v.Cleanliness <= AngryCleanAt
	}},
	{MoodHappy, func(v pet.Vitals) bool {
		return v.Happiness >= HappyAt && v.Hunger < HappyHungerMax && v.Sleepiness < HappySleepyMax
	}},
}

// DeriveMood classifies vitals. It depends on nothing but its argument.
func DeriveMood(v pet.Vitals) Mood {
	for _, r := range rules {
		if r.match(v) {
			return r.mood
		}
	}
	return MoodIdle
}

// Matching returns every mood whose rule currently holds, in priority order.
// The first element, if any, is what DeriveMood returns.
func Matching(v pet.Vitals) []Mood {
	var out []Mood
	for _, r := range rules {
		if r.match(v) {
			out = append(out, r.mood)
		}
	}
	return out
}

func Emoji(m Mood) string {
	switch m {
	case MoodHappy:
		return "😊"
	case MoodHungry:
		return "😩"
	case MoodSleepy:
		return "😴"
	case MoodAngry:
		return "😡"
	}
	return "😐"
}

// FormatMatching joins the holding moods into a comma-separated string.
// Returns "idle" when nothing matches.
func FormatMatching(moods []Mood) string {
	if len(moods) == 0 {
		return string(MoodIdle)
	}
	result := string(moods[0])
	for i := 1; i < len(moods); i++ {
		result += ", " + string(moods[i])
	}
	return result
}
