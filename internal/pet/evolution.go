package pet

import "math"

// Reading is one combined activity observation from the fitness source.
type Reading struct {
	RunningMeters  float64
	SwimmingMeters float64
	CyclingMeters  float64
	SleepHours     float64
}

// Meters per level point. Each level reaches 100 exactly at the adult
// threshold for that activity.
const (
	RunningScale  = 100.0
	SwimmingScale = 20.0
	CyclingScale  = 10.0
)

// Points awarded per unit of activity.
const (
	MetersPerPointRunning  = 100.0
	MetersPerPointSwimming = 25.0
	MetersPerPointCycling  = 200.0
	PointsPerSleepHour     = 5.0
)

// MaxPoints caps the balance. Awards and purchases never move it outside
// [0, MaxPoints].
const MaxPoints = math.MaxInt32

type threshold struct {
	from, to                   Stage
	running, swimming, cycling float64
}

// Checked in ascending order.
var thresholds = []threshold{
	{from: StageEgg, to: StageHatchling, running: 1000},
	{from: StageHatchling, to: StageJuvenile, running: 5000, swimming: 1000},
	{from: StageJuvenile, to: StageAdult, running: 10000, swimming: 2000, cycling: 1000},
}

type IngestResult struct {
	PointsAwarded int
	Evolved       bool
	From, To      Stage
}

// Ingest folds one reading into the cumulative totals, refreshes the activity
// levels, awards points and advances at most one evolution stage.
func (s *State) Ingest(r Reading) IngestResult {
	r = r.nonNegative()

	s.Totals.Running += r.RunningMeters
	s.Totals.Swimming += r.SwimmingMeters
	s.Totals.Cycling += r.CyclingMeters
	s.Activity.LastSleepHours = r.SleepHours
	s.refreshLevels()

	res := IngestResult{PointsAwarded: Award(r), From: s.Stage, To: s.Stage}
	s.Points = addPoints(s.Points, res.PointsAwarded)

	if next, ok := s.nextStage(); ok {
		s.Stage = next
		res.Evolved = true
		res.To = next
	}
	return res
}

// Award converts a reading into pet points, truncated to whole points and
// capped at MaxPoints.
func Award(r Reading) int {
	r = r.nonNegative()
	pts := math.Floor(r.RunningMeters/MetersPerPointRunning) +
		math.Floor(r.SwimmingMeters/MetersPerPointSwimming) +
		math.Floor(r.CyclingMeters/MetersPerPointCycling) +
		math.Floor(r.SleepHours*PointsPerSleepHour)
	if pts >= MaxPoints {
		return MaxPoints
	}
	return int(pts)
}

// addPoints saturates at MaxPoints.
func addPoints(balance, award int) int {
	if award >= MaxPoints-balance {
		return MaxPoints
	}
	return balance + award
}

// StageIndex orders stages so callers can compare progress.
func StageIndex(st Stage) int {
	switch st {
	case StageHatchling:
		return 1
	case StageJuvenile:
		return 2
	case StageAdult:
		return 3
	}
	return 0
}

func (s *State) nextStage() (Stage, bool) {
	for _, t := range thresholds {
		if t.from != s.Stage {
			continue
		}
		if s.Totals.Running >= t.running && s.Totals.Swimming >= t.swimming && s.Totals.Cycling >= t.cycling {
			return t.to, true
		}
		return "", false
	}
	return "", false
}

func (s *State) refreshLevels() {
	s.Activity.RunningLevel = math.Min(100, s.Totals.Running/RunningScale)
	s.Activity.SwimmingLevel = math.Min(100, s.Totals.Swimming/SwimmingScale)
	s.Activity.CyclingLevel = math.Min(100, s.Totals.Cycling/CyclingScale)
}

func (r Reading) nonNegative() Reading {
	r.RunningMeters = nonNegative(r.RunningMeters)
	r.SwimmingMeters = nonNegative(r.SwimmingMeters)
	r.CyclingMeters = nonNegative(r.CyclingMeters)
	r.SleepHours = nonNegative(r.SleepHours)
	return r
}

// nonNegative also maps NaN to zero so a bad sample cannot poison the totals.
func nonNegative(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 1) {
		return 0
	}
	return v
}
