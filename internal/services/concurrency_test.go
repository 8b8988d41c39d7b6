package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestJobLimiter_BasicAcquireRelease(t *testing.T) {
	limiter := NewJobLimiter(2)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	stats := limiter.Stats()
	if stats.InFlight != 1 {
		t.Fatalf("expected 1 in flight, got %d", stats.InFlight)
	}
	if stats.Capacity != 2 {
		t.Fatalf("expected capacity 2, got %d", stats.Capacity)
	}

	limiter.Release()
	if stats := limiter.Stats(); stats.InFlight != 0 {
		t.Fatalf("expected 0 in flight after release, got %d", stats.InFlight)
	}
}

func TestJobLimiter_BlocksAtCapacity(t *testing.T) {
	limiter := NewJobLimiter(2)
	ctx := context.Background()

	limiter.Acquire(ctx)
	limiter.Acquire(ctx)

	// Third acquire should block until the context times out.
	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	if err := limiter.Acquire(timeoutCtx); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}

func TestJobLimiter_DefaultCapacity(t *testing.T) {
	limiter := NewJobLimiter(0)
	if got := limiter.Stats().Capacity; got != 10 {
		t.Fatalf("expected default capacity 10, got %d", got)
	}
}

func TestJobLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewJobLimiter(5)
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(ctx); err != nil {
				return
			}
			if got := limiter.Stats().InFlight; got > 5 {
				t.Errorf("capacity exceeded: %d in flight", got)
			}
			time.Sleep(5 * time.Millisecond)
			limiter.Release()
		}()
	}

	wg.Wait()
	if got := limiter.Stats().InFlight; got != 0 {
		t.Fatalf("expected 0 in flight after all done, got %d", got)
	}
}
