package service

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy bounds one retry loop. The wait after failed attempt n (1-based) is BaseDelay * 2^n;
// no wait follows the last attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Backoff returns the wait after the given failed attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// RetryOutcome is the tagged result of RetryWithBackoff: Err is nil on success and holds the
// last failure when the attempts were exhausted or the context ended.
type RetryOutcome[T any] struct {
	Value    T
	Attempts int
	Err      error
}

// Succeeded reports whether one of the attempts returned without error.
func (o RetryOutcome[T]) Succeeded() bool {
	return o.Err == nil
}

// RetryWithBackoff calls fn until it succeeds or policy.MaxAttempts calls have failed.
func RetryWithBackoff[T any](ctx context.Context, policy RetryPolicy, sleep Sleeper, fn func(ctx context.Context, attempt int) (T, error)) RetryOutcome[T] {
	if sleep == nil {
		sleep = SleepContext
	}
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var outcome RetryOutcome[T]
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome.Attempts = attempt
		value, err := fn(ctx, attempt)
		if err == nil {
			outcome.Value = value
			outcome.Err = nil
			return outcome
		}
		outcome.Err = err

		if attempt == maxAttempts {
			break
		}
		if sleepErr := sleep(ctx, policy.Backoff(attempt)); sleepErr != nil {
			outcome.Err = sleepErr
			break
		}
	}
	return outcome
}
