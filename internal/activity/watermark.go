package activity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/sethgrid/watchbuddy/internal/pet"
)

const WatermarkFileName = "activity.watermark.toml"

// Watermark remembers the cumulative distances already reported for one
// local day. Sources report running totals since midnight, so syncing twice
// on the same day would otherwise count the morning run twice.
type Watermark struct {
	Day      string  `toml:"day"`
	Running  float64 `toml:"running"`
	Swimming float64 `toml:"swimming"`
	Cycling  float64 `toml:"cycling"`
}

// Advance returns the part of cumulative not yet reported today and moves
// the watermark up. Sleep hours pass through untouched.
func (w *Watermark) Advance(now time.Time, cumulative pet.Reading) pet.Reading {
	day := now.Format(time.DateOnly)
	if w.Day != day {
		*w = Watermark{Day: day}
	}

	out := cumulative
	out.RunningMeters = step(&w.Running, cumulative.RunningMeters)
	out.SwimmingMeters = step(&w.Swimming, cumulative.SwimmingMeters)
	out.CyclingMeters = step(&w.Cycling, cumulative.CyclingMeters)
	return out
}

// step never moves the mark down, so a source that loses samples does not
// cause the same distance to be counted again later.
func step(mark *float64, cumulative float64) float64 {
	if cumulative <= *mark {
		return 0
	}
	delta := cumulative - *mark
	*mark = cumulative
	return delta
}

// LoadWatermark returns an empty watermark when path does not exist.
func LoadWatermark(path string) (Watermark, error) {
	var w Watermark
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return w, nil
	}
	if err != nil {
		return w, fmt.Errorf("failed to read watermark: %w", err)
	}
	if err := toml.Unmarshal(data, &w); err != nil {
		return Watermark{}, fmt.Errorf("failed to parse watermark: %w", err)
	}
	return w, nil
}

func (w Watermark) Save(path string) error {
	data, err := toml.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to encode watermark: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
