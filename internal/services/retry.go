package services

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
)

// RetryPolicy defines how transient page-fetch failures are retried.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy returns the default bounded backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// withRetry invokes fn, retrying transient failures with exponential backoff
// up to the policy's limit. Non-retryable errors and context cancellation
// return immediately. The failure-isolation contract is the caller's: this
// helper only narrows how often a single fetch gives up.
func withRetry(ctx context.Context, policy RetryPolicy, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if !isRetryable(err) || attempt >= policy.MaxRetries {
			return err
		}

		delay := backoffDelay(policy, attempt)
		slog.Info("aggregator: retrying after transient failure",
			"op", op, "attempt", attempt+1, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return err
		}
	}
}

// backoffDelay computes the delay for a given attempt using exponential
// backoff, capped at the policy maximum.
func backoffDelay(policy RetryPolicy, attempt int) time.Duration {
	delay := float64(policy.InitialDelay) * math.Pow(policy.BackoffFactor, float64(attempt))
	if time.Duration(delay) > policy.MaxDelay {
		return policy.MaxDelay
	}
	return time.Duration(delay)
}

// isRetryable checks if an error message indicates a transient condition
// worth retrying: rate limiting, server-side 5xx, connection drops.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout", "rate limit", "too many requests",
		"429", "500", "502", "503", "504",
		"connection reset", "connection refused", "eof",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
