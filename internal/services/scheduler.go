package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs aggregation cycles on a cron schedule. It wraps robfig/cron
// and delegates overlap protection to the Runner.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	spec   string
}

// NewScheduler creates a Scheduler. spec accepts standard 5-field cron
// expressions and descriptors such as "@every 5m".
func NewScheduler(runner *Runner, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
	}
}

// Start registers the cycle job and begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.runner.RunCycle(ctx); err != nil {
			slog.Error("scheduler: cycle failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("registering schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	slog.Info("scheduler: started", "schedule", s.spec)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler: stopped")
}
