package health

import "github.com/sethgrid/watchbuddy/internal/pet"

type ComputationMode string

const (
	ComputationAverage  ComputationMode = "average"
	ComputationWeighted ComputationMode = "weighted"
)

// ComputeWellbeing folds the four vitals into one 0-100 score for the status
// card. Hunger and sleepiness are inverted: lower is better.
func ComputeWellbeing(v pet.Vitals, mode ComputationMode) int {
	fed := 100 - v.Hunger
	rested := 100 - v.Sleepiness

	var score float64
	switch mode {
	case ComputationWeighted:
		score = fed*0.3 + v.Happiness*0.3 + v.Cleanliness*0.2 + rested*0.2
	default: // average
		score = (fed + v.Happiness + v.Cleanliness + rested) / 4
	}

	// Clamp to [0, 100]
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}
