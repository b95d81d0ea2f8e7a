// Package activity reads distance and sleep data from a fitness source and
// turns it into readings the pet engine can ingest.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrAuthorizationDenied = errors.New("activity data access denied")

type Kind string

const (
	Running  Kind = "running"
	Swimming Kind = "swimming"
	Cycling  Kind = "cycling"
)

var Kinds = []Kind{Running, Swimming, Cycling}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown activity kind %q", s)
}

type SleepState string

const (
	Asleep SleepState = "asleep"
	Awake  SleepState = "awake"
	InBed  SleepState = "inBed"
)

type SleepSample struct {
	Start time.Time
	End   time.Time
	State SleepState
}

// Source is a fitness data store. DistanceSum returns meters for samples
// starting inside [from, to].
type Source interface {
	RequestAuthorization(ctx context.Context) (bool, error)
	DistanceSum(ctx context.Context, kind Kind, from, to time.Time) (float64, error)
	SleepSamples(ctx context.Context, from, to time.Time) ([]SleepSample, error)
}

// AsleepHours sums the asleep portion of samples clipped to [from, to].
// Awake and in-bed samples do not count.
func AsleepHours(samples []SleepSample, from, to time.Time) float64 {
	var total time.Duration
	for _, s := range samples {
		if s.State != Asleep {
			continue
		}
		start, end := s.Start, s.End
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			total += end.Sub(start)
		}
	}
	return total.Hours()
}
