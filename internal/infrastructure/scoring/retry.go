package scoring

import (
	"context"
	"time"
)

// RetryPolicy bounds the attempts made for a single scoring call. It is an
// explicit value injected into the client so the schedule can be tested in
// isolation.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int
	// Multiplier scales the exponential schedule.
	Multiplier time.Duration
	// BackoffMin and BackoffMax clamp the computed delay.
	BackoffMin time.Duration
	BackoffMax time.Duration
	// AttemptTimeout bounds each individual attempt. A timed-out attempt
	// consumes retry budget like any other failure.
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy matches the scoring services' agreed retry contract:
// 3 attempts, exponential backoff clamped to [4s, 10s], 30s per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		Multiplier:     time.Second,
		BackoffMin:     4 * time.Second,
		BackoffMax:     10 * time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}

// Backoff returns the delay to wait before the given retry. The first
// retry is numbered 1. Delays are non-decreasing and capped at BackoffMax.
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	d := p.Multiplier
	for i := 0; i < retry; i++ {
		d *= 2
		if d >= p.BackoffMax {
			return p.BackoffMax
		}
	}
	if d < p.BackoffMin {
		return p.BackoffMin
	}
	return d
}

// Sleeper abstracts backoff waits so tests can observe the schedule
// without real delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// ClockSleeper waits on the wall clock, honoring context cancellation.
// Sleeping blocks only the calling run's goroutine.
type ClockSleeper struct{}

func (ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
