// Package shutdown implements the process-wide graceful-drain sequence:
// stop accepting new broker deliveries, drain buffered work, cancel
// outstanding tasks within a bounded grace period, then close resources.
package shutdown

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Closer is stopped or closed as the final step of a drain, in the order
// it was registered.
type Closer interface {
	Close() error
}

// Stopper is drained before closers run, in the order it was registered.
// Implementations (the flush worker) must force-flush or
// otherwise finish outstanding work in their own Stop before returning.
type Stopper interface {
	Stop()
}

// Supervisor runs the four-step graceful shutdown sequence on a signal.
type Supervisor struct {
	grace   time.Duration
	logger  *zap.Logger
	stopper []Stopper
	closer  []Closer
}

// New builds a Supervisor with the given bounded grace period for step 3.
func New(grace time.Duration, logger *zap.Logger) *Supervisor {
	return &Supervisor{grace: grace, logger: logger}
}

// Register adds a component to be drained (if it implements Stopper) and/or
// closed (if it implements Closer), in registration order.
func (s *Supervisor) Register(component interface{}) {
	if stopper, ok := component.(Stopper); ok {
		s.stopper = append(s.stopper, stopper)
	}
	if closer, ok := component.(Closer); ok {
		s.closer = append(s.closer, closer)
	}
}

// Shutdown runs the drain sequence. Step 1 (stop accepting new deliveries)
// is the caller's responsibility before invoking Shutdown: the process
// entrypoints call each bus consumer's Stop() themselves, since
// bus.Consumer.Stop returns an error and so does not satisfy Stopper.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	// Step 2: each registered Stopper (the flush worker) force-drains its own
	// outstanding buffered work.
	done := make(chan struct{})
	go func() {
		for _, stopper := range s.stopper {
			stopper.Stop()
		}
		close(done)
	}()

	// Step 3: wait for the stoppers for at most the grace period (or until ctx
	// is done); stoppers still running are not cancelled, closing proceeds anyway.
	select {
	case <-done:
	case <-time.After(s.grace):
		s.logger.Warn("shutdown: grace period elapsed before all stoppers drained")
	case <-ctx.Done():
		s.logger.Warn("shutdown: context cancelled before all stoppers drained")
	}

	// Step 4: close broker, cache, HTTP clients, in registration order.
	var firstErr error
	for _, closer := range s.closer {
		if err := closer.Close(); err != nil {
			s.logger.Error("shutdown: close failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return fmt.Errorf("shutdown: %w", firstErr)
	}
	return nil
}
