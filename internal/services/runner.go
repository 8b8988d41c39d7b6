package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ciboard/internal/ciboard/ports"
)

// Runner drives complete aggregation cycles: collect, then persist. At most
// one cycle executes at a time; a trigger arriving while a cycle is running
// is skipped with a log line rather than queued.
type Runner struct {
	agg     *Aggregator
	store   ports.SnapshotStore
	timeout time.Duration

	running atomic.Bool

	mu   sync.RWMutex
	last CycleStats
}

// CycleStats describes the most recently finished cycle.
type CycleStats struct {
	CycleID    string        `json:"cycle_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Requests   int64         `json:"requests"`
	Workflows  int           `json:"workflows"`
	Error      string        `json:"error,omitempty"`
	FinishedOK bool          `json:"finished_ok"`
}

// NewRunner creates a Runner. timeout bounds one full cycle; zero disables
// the deadline.
func NewRunner(agg *Aggregator, store ports.SnapshotStore, timeout time.Duration) *Runner {
	return &Runner{agg: agg, store: store, timeout: timeout}
}

// RunCycle executes one aggregation cycle. It returns an error only for
// cycle-fatal conditions: enumeration failure or snapshot persistence
// failure. Partial per-workflow and per-run failures are logged inside the
// aggregator and do not surface here.
func (r *Runner) RunCycle(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		slog.Warn("runner: cycle already in progress, skipping")
		return nil
	}
	defer r.running.Store(false)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	stats := CycleStats{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now(),
	}
	before := r.agg.Requests()
	slog.Info("runner: cycle started", "cycle_id", stats.CycleID)

	snap, err := r.agg.Collect(ctx)
	if err == nil {
		err = r.store.Save(ctx, snap)
		if err != nil {
			err = fmt.Errorf("saving snapshot: %w", err)
		}
	}

	stats.Duration = time.Since(stats.StartedAt)
	stats.Requests = r.agg.Requests() - before
	stats.Workflows = len(snap)
	stats.FinishedOK = err == nil
	if err != nil {
		stats.Error = err.Error()
	}

	r.mu.Lock()
	r.last = stats
	r.mu.Unlock()

	if err != nil {
		slog.Error("runner: cycle failed", "cycle_id", stats.CycleID,
			"duration", stats.Duration, "requests", stats.Requests, "err", err)
		return err
	}
	slog.Info("runner: cycle finished", "cycle_id", stats.CycleID,
		"duration", stats.Duration, "requests", stats.Requests,
		"workflows", stats.Workflows)
	return nil
}

// Running reports whether a cycle is currently executing.
func (r *Runner) Running() bool { return r.running.Load() }

// LastCycle returns stats for the most recently finished cycle.
func (r *Runner) LastCycle() CycleStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// TotalRequests returns the process-wide provider request tally.
func (r *Runner) TotalRequests() int64 { return r.agg.Requests() }

// LimiterStats reports job-fetch semaphore usage.
func (r *Runner) LimiterStats() LimiterStats { return r.agg.LimiterStats() }
