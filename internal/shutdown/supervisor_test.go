package shutdown_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/shutdown"
)

type fakeStopper struct {
	stopped atomic.Bool
	delay   time.Duration
}

func (f *fakeStopper) Stop() {
	time.Sleep(f.delay)
	f.stopped.Store(true)
}

type fakeCloser struct {
	closed atomic.Bool
	err    error
}

func (f *fakeCloser) Close() error {
	f.closed.Store(true)
	return f.err
}

func TestShutdownStopsThenClosesAllRegisteredComponents(t *testing.T) {
	s := shutdown.New(time.Second, zap.NewNop())
	stopper := &fakeStopper{}
	closer := &fakeCloser{}
	s.Register(stopper)
	s.Register(closer)

	err := s.Shutdown(context.Background())

	require.NoError(t, err)
	assert.True(t, stopper.stopped.Load())
	assert.True(t, closer.closed.Load())
}

func TestShutdownReturnsFirstCloserError(t *testing.T) {
	s := shutdown.New(time.Second, zap.NewNop())
	failing := &fakeCloser{err: errors.New("close failed")}
	s.Register(failing)

	err := s.Shutdown(context.Background())

	assert.Error(t, err)
}

func TestShutdownProceedsToCloseAfterGraceTimeout(t *testing.T) {
	s := shutdown.New(10*time.Millisecond, zap.NewNop())
	slowStopper := &fakeStopper{delay: 200 * time.Millisecond}
	closer := &fakeCloser{}
	s.Register(slowStopper)
	s.Register(closer)

	start := time.Now()
	err := s.Shutdown(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, closer.closed.Load())
	assert.Less(t, elapsed, 150*time.Millisecond)
}

func TestRegisterIgnoresComponentsImplementingNeitherInterface(t *testing.T) {
	s := shutdown.New(time.Second, zap.NewNop())
	s.Register(struct{}{})

	err := s.Shutdown(context.Background())

	assert.NoError(t, err)
}

func TestSingleComponentImplementingBothInterfacesRunsBoth(t *testing.T) {
	s := shutdown.New(time.Second, zap.NewNop())
	both := &stopperCloser{}
	s.Register(both)

	err := s.Shutdown(context.Background())

	require.NoError(t, err)
	assert.True(t, both.stopped.Load())
	assert.True(t, both.closed.Load())
}

type stopperCloser struct {
	stopped atomic.Bool
	closed  atomic.Bool
}

func (s *stopperCloser) Stop()       { s.stopped.Store(true) }
func (s *stopperCloser) Close() error { s.closed.Store(true); return nil }
