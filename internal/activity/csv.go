package activity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// SampleRow is one line of an exported activity log.
//
//	kind,start,end,value,state
//	running,2026-05-20T07:00:00Z,2026-05-20T07:30:00Z,4200,
//	sleep,2026-05-19T23:10:00Z,2026-05-20T06:40:00Z,,asleep
type SampleRow struct {
	Kind  string `csv:"kind"`
	Start string `csv:"start"`
	End   string `csv:"end"`
	Value string `csv:"value"`
	State string `csv:"state"`
}

const sleepKind = "sleep"

// CSVSource serves samples from a CSV export. The file is re-read on every
// query so a sync picks up rows appended since the last one.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// RequestAuthorization reports whether the export is readable. A missing
// file counts as denied rather than an error.
func (s *CSVSource) RequestAuthorization(context.Context) (bool, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	f.Close()
	return true, nil
}

func (s *CSVSource) DistanceSum(ctx context.Context, kind Kind, from, to time.Time) (float64, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, row := range rows {
		if row.Kind != string(kind) {
			continue
		}
		start, err := time.Parse(time.RFC3339, row.Start)
		if err != nil {
			return 0, fmt.Errorf("row %d: bad start: %w", i+2, err)
		}
		if start.Before(from) || start.After(to) {
			continue
		}
		v, err := parseMeters(row.Value)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		sum += v
	}
	return sum, nil
}

func (s *CSVSource) SleepSamples(ctx context.Context, from, to time.Time) ([]SleepSample, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	var out []SleepSample
	for i, row := range rows {
		if row.Kind != sleepKind {
			continue
		}
		start, err := time.Parse(time.RFC3339, row.Start)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad start: %w", i+2, err)
		}
		end, err := time.Parse(time.RFC3339, row.End)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad end: %w", i+2, err)
		}
		if !end.After(from) || !start.Before(to) {
			continue
		}
		out = append(out, SleepSample{Start: start, End: end, State: SleepState(row.State)})
	}
	return out, nil
}

func (s *CSVSource) rows(ctx context.Context) ([]*SampleRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	var rows []*SampleRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse activity log: %w", err)
	}
	return rows, nil
}

// parseMeters treats an empty cell as zero and drops negative values.
func parseMeters(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, nil
	}
	return v, nil
}

// WriteSamples writes rows with a header, replacing path.
func WriteSamples(path string, rows []*SampleRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}
