package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sethgrid/watchbuddy/internal/pet"
	"go.uber.org/zap"
)

// AsyncSaver writes snapshots in the background so callers never wait on
// I/O. Only the newest pending snapshot is kept; older ones it replaces are
// never written. Failures are logged and counted, never returned.
type AsyncSaver struct {
	store  Store
	logger *zap.Logger

	mu      sync.Mutex
	closed  bool
	pending chan Record
	done    chan struct{}

	saved    atomic.Int64
	failures atomic.Int64
	lastErr  atomic.Value
}

func NewAsyncSaver(store Store, logger *zap.Logger) *AsyncSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AsyncSaver{
		store:   store,
		logger:  logger.Named("storage"),
		pending: make(chan Record, 1),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Save queues s for writing and returns immediately.
func (a *AsyncSaver) Save(s pet.State) {
	rec := FromState(s)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.logger.Warn("save after close dropped")
		return
	}
	// Replace whatever is still waiting; the writer only needs the latest.
	select {
	case <-a.pending:
	default:
	}
	a.pending <- rec
}

// Close writes any pending snapshot and stops the writer.
func (a *AsyncSaver) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.pending)
	}
	a.mu.Unlock()
	<-a.done
}

// Saved and Failures report how many writes succeeded or failed.
func (a *AsyncSaver) Saved() int64    { return a.saved.Load() }
func (a *AsyncSaver) Failures() int64 { return a.failures.Load() }

// LastError returns the most recent write error, if any.
func (a *AsyncSaver) LastError() error {
	if v, ok := a.lastErr.Load().(errBox); ok {
		return v.err
	}
	return nil
}

type errBox struct{ err error }

func (a *AsyncSaver) run() {
	defer close(a.done)
	for rec := range a.pending {
		if err := a.store.Save(context.Background(), rec); err != nil {
			a.failures.Add(1)
			a.lastErr.Store(errBox{err})
			a.logger.Error("failed to save pet", zap.Error(err))
			continue
		}
		a.saved.Add(1)
		a.logger.Debug("pet saved", zap.String("name", rec.PetName))
	}
}
