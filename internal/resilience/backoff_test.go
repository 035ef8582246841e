package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/resilience"
)

func TestBackoffDelayGrowsExponentiallyAndCaps(t *testing.T) {
	cfg := resilience.BackoffConfig{Initial: 100 * time.Millisecond, Max: 500 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 400*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 500*time.Millisecond, cfg.Delay(3))
}

func TestIsRetryableRecognizesTransientInfraAndDeadline(t *testing.T) {
	assert.True(t, resilience.IsRetryable(resilience.ErrTransientInfra))
	assert.True(t, resilience.IsRetryable(context.DeadlineExceeded))
	assert.True(t, resilience.IsRetryable(&resilience.TimeoutError{Operation: "llm-call", Timeout: time.Second}))
	assert.False(t, resilience.IsRetryable(errors.New("some other failure")))
}

func TestRetrySucceedsWithoutExhaustingAttempts(t *testing.T) {
	calls := 0
	cfg := resilience.BackoffConfig{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2, MaxRetries: 3}

	err := resilience.Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return resilience.ErrTransientInfra
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsImmediatelyOnNonRetryableError(t *testing.T) {
	calls := 0
	fatal := errors.New("bad request")
	cfg := resilience.BackoffConfig{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2, MaxRetries: 3}

	err := resilience.Retry(context.Background(), cfg, func() error {
		calls++
		return fatal
	})

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
}

func TestRetryReturnsBackoffExhaustedAfterMaxRetries(t *testing.T) {
	calls := 0
	cfg := resilience.BackoffConfig{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 2, MaxRetries: 2}

	err := resilience.Retry(context.Background(), cfg, func() error {
		calls++
		return resilience.ErrTransientInfra
	})

	var exhausted *resilience.BackoffExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, resilience.ErrTransientInfra, exhausted.LastError)
}

func TestRetryAbortsOnContextCancellation(t *testing.T) {
	cfg := resilience.BackoffConfig{Initial: time.Hour, Max: time.Hour, Multiplier: 2, MaxRetries: 5}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- resilience.Retry(ctx, cfg, func() error {
			calls++
			return resilience.ErrTransientInfra
		})
	}()

	cancel()
	err := <-errCh
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, calls)
}
