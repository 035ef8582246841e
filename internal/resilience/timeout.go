package resilience

import (
	"context"
	"fmt"
	"time"
)

// TimeoutError is raised by WithTimeout when operation exceeds its deadline.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Timeout)
}

// WithTimeout runs fn with a derived context bounded by seconds, returning
// *TimeoutError carrying operation's name if it does not finish in time.
func WithTimeout(ctx context.Context, seconds time.Duration, operation string, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, seconds)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(callCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-callCtx.Done():
		return &TimeoutError{Operation: operation, Timeout: seconds}
	}
}
