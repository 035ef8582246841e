package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig tunes exponential-with-jitter retry delays.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
	MaxRetries int
}

// DefaultBackoffConfig matches the documented node-level retry defaults.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:    1 * time.Second,
		Max:        30 * time.Second,
		Multiplier: 2,
		Jitter:     0.1,
		MaxRetries: 3,
	}
}

// BackoffExhausted is raised once every retry attempt has failed.
type BackoffExhausted struct {
	Attempts  int
	LastError error
}

func (e *BackoffExhausted) Error() string {
	return fmt.Sprintf("backoff exhausted after %d attempts: %v", e.Attempts, e.LastError)
}

func (e *BackoffExhausted) Unwrap() error { return e.LastError }

// Delay returns the base delay (before jitter) for the given zero-indexed attempt.
func (c BackoffConfig) Delay(attempt int) time.Duration {
	base := float64(c.Initial) * math.Pow(c.Multiplier, float64(attempt))
	if base > float64(c.Max) {
		base = float64(c.Max)
	}
	return time.Duration(base)
}

// delayWithJitter adds U(0, delay*jitter) on top of the base delay.
func (c BackoffConfig) delayWithJitter(attempt int) time.Duration {
	base := c.Delay(attempt)
	jitter := time.Duration(rand.Float64() * float64(base) * c.Jitter)
	return base + jitter
}

// retryableErrors is the restricted set of error classes backoff retries by
// default: timeout, connection reset/refused.
var retryableErrors = []error{
	context.DeadlineExceeded,
	ErrTransientInfra,
}

// ErrTransientInfra marks an error as a retryable infrastructure failure
// (connection reset, connection refused, broker disconnect).
var ErrTransientInfra = errors.New("transient infrastructure error")

// IsRetryable reports whether err belongs to the default retryable set.
func IsRetryable(err error) bool {
	for _, class := range retryableErrors {
		if errors.Is(err, class) {
			return true
		}
	}
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// Retry invokes fn up to config.MaxRetries+1 times, sleeping a jittered
// exponential backoff between attempts, stopping early on a non-retryable
// error. Exhaustion returns *BackoffExhausted wrapping the last error.
func Retry(ctx context.Context, config BackoffConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		if attempt == config.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(config.delayWithJitter(attempt)):
		}
	}
	return &BackoffExhausted{Attempts: config.MaxRetries + 1, LastError: lastErr}
}
