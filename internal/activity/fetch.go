package activity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sethgrid/watchbuddy/internal/pet"
)

const DefaultSleepLookback = 24 * time.Hour

type Fetcher struct {
	source   Source
	lookback time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewFetcher(source Source, lookback time.Duration, logger *zap.Logger) *Fetcher {
	if lookback <= 0 {
		lookback = DefaultSleepLookback
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:   source,
		lookback: lookback,
		logger:   logger.Named("activity"),
		now:      time.Now,
	}
}

// StartOfDay is local midnight for t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FetchToday runs the three distance sums and the sleep query concurrently
// and returns once all four are done. The first failure cancels the rest.
// Without a deadline on ctx a stalled source stalls the call.
func (f *Fetcher) FetchToday(ctx context.Context) (pet.Reading, error) {
	now := f.now()
	dayStart := StartOfDay(now)

	var r pet.Reading
	g, gctx := errgroup.WithContext(ctx)

	distances := map[Kind]*float64{
		Running:  &r.RunningMeters,
		Swimming: &r.SwimmingMeters,
		Cycling:  &r.CyclingMeters,
	}
	for kind, dst := range distances {
		kind, dst := kind, dst
		g.Go(func() error {
			v, err := f.source.DistanceSum(gctx, kind, dayStart, now)
			if err != nil {
				return fmt.Errorf("%s distance: %w", kind, err)
			}
			*dst = v
			return nil
		})
	}

	g.Go(func() error {
		from := now.Add(-f.lookback)
		samples, err := f.source.SleepSamples(gctx, from, now)
		if err != nil {
			return fmt.Errorf("sleep samples: %w", err)
		}
		r.SleepHours = AsleepHours(samples, from, now)
		return nil
	})

	if err := g.Wait(); err != nil {
		return pet.Reading{}, err
	}
	return r, nil
}

// Sync asks for access, fetches today's totals and passes one combined
// reading to ingest. With a watermark, distances already reported today
// are subtracted first. Denied access returns ErrAuthorizationDenied and
// ingest is never called. An error from ingest is returned as is.
func (f *Fetcher) Sync(ctx context.Context, wm *Watermark, ingest func(pet.Reading) error) (pet.Reading, error) {
	ok, err := f.source.RequestAuthorization(ctx)
	if err != nil {
		return pet.Reading{}, fmt.Errorf("request authorization: %w", err)
	}
	if !ok {
		f.logger.Info("activity access denied; skipping ingestion")
		return pet.Reading{}, ErrAuthorizationDenied
	}

	r, err := f.FetchToday(ctx)
	if err != nil {
		return pet.Reading{}, fmt.Errorf("fetch today: %w", err)
	}
	if wm != nil {
		r = wm.Advance(f.now(), r)
	}

	f.logger.Info("activity fetched",
		zap.Float64("running_m", r.RunningMeters),
		zap.Float64("swimming_m", r.SwimmingMeters),
		zap.Float64("cycling_m", r.CyclingMeters),
		zap.Float64("sleep_h", r.SleepHours))

	if err := ingest(r); err != nil {
		return pet.Reading{}, err
	}
	return r, nil
}
