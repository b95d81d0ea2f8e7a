package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultTickInterval is the decay period while the pet is on screen.
const DefaultTickInterval = 5 * time.Second

// Ticker drives Engine.Tick on a fixed interval. It is owned by whatever
// shell is showing the pet and is started and stopped with it.
type Ticker struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger
	ticks    atomic.Int64

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewTicker(e *Engine, interval time.Duration, logger *zap.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ticker{
		engine:   e,
		interval: interval,
		logger:   logger.Named("ticker"),
		stopChan: make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called.
func (t *Ticker) Run(ctx context.Context) {
	t.logger.Debug("ticker started", zap.Duration("interval", t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("ticker stopped by context", zap.Int64("ticks", t.ticks.Load()))
			return
		case <-t.stopChan:
			t.logger.Debug("ticker stopped", zap.Int64("ticks", t.ticks.Load()))
			return
		case <-ticker.C:
			t.engine.Tick()
			t.ticks.Add(1)
		}
	}
}

// Stop is safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

func (t *Ticker) Ticks() int64 {
	return t.ticks.Load()
}

// RunTicker ticks e every interval until ctx is done.
func RunTicker(ctx context.Context, e *Engine, interval time.Duration) {
	NewTicker(e, interval, e.logger).Run(ctx)
}
