package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 8*time.Second, p.Backoff(3))
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	outcome := RetryWithBackoff(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}, sleeper.Sleep,
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			if attempt < 3 {
				return "", errors.New("boom")
			}
			return "ok", nil
		})

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, "ok", outcome.Value)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.Delays())
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	sleeper := &recordingSleeper{}
	lastErr := errors.New("attempt 2 failed")

	outcome := RetryWithBackoff(context.Background(), RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}, sleeper.Sleep,
		func(ctx context.Context, attempt int) (int, error) {
			if attempt == 2 {
				return 0, lastErr
			}
			return 0, errors.New("attempt 1 failed")
		})

	assert.False(t, outcome.Succeeded())
	assert.Equal(t, 2, outcome.Attempts)
	assert.ErrorIs(t, outcome.Err, lastErr)
	// No wait follows the final attempt.
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, sleeper.Delays())
}

func TestRetryWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	outcome := RetryWithBackoff(context.Background(), RetryPolicy{}, nil,
		func(ctx context.Context, attempt int) (int, error) {
			calls++
			return 7, nil
		})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 7, outcome.Value)
}

func TestRetryWithBackoff_SleepErrorStops(t *testing.T) {
	sleeper := &recordingSleeper{err: context.Canceled}
	calls := 0

	outcome := RetryWithBackoff(context.Background(), RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second}, sleeper.Sleep,
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			return "", errors.New("fail")
		})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
