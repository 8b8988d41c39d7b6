package services

import (
	"context"
	"sync/atomic"
)

// JobLimiter bounds how many job-fetch calls may be outstanding at once
// across the whole process. It is a channel-based counting semaphore shared
// by every workflow goroutine; the per-workflow wait-groups join work, the
// limiter is what caps parallelism.
type JobLimiter struct {
	slots    chan struct{}
	capacity int
	inFlight atomic.Int64
}

// NewJobLimiter creates a limiter with the given capacity.
func NewJobLimiter(capacity int) *JobLimiter {
	if capacity <= 0 {
		capacity = 10
	}
	return &JobLimiter{
		slots:    make(chan struct{}, capacity),
		capacity: capacity,
	}
}

// Acquire blocks until a slot is available, or returns the context error if
// the context is cancelled first.
func (l *JobLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		l.inFlight.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. It must be called exactly once per successful
// Acquire, on every exit path including errors.
func (l *JobLimiter) Release() {
	l.inFlight.Add(-1)
	<-l.slots
}

// LimiterStats reports current semaphore usage.
type LimiterStats struct {
	InFlight int `json:"in_flight"`
	Capacity int `json:"capacity"`
}

// Stats returns the current usage.
func (l *JobLimiter) Stats() LimiterStats {
	return LimiterStats{
		InFlight: int(l.inFlight.Load()),
		Capacity: l.capacity,
	}
}
