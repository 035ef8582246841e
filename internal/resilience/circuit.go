// Package resilience implements the LLM call "resilience sandwich": a
// hand-rolled per-component circuit breaker, exponential-with-jitter
// backoff, and a timeout wrapper, composed around every LLM invocation.
//
// The breaker itself is hand-rolled for its half-open success threshold and
// excluded-error set; sony/gobreaker stays in use elsewhere (internal/bus,
// internal/payment, pkg/whatsapp), each instance tripping after 5
// consecutive failures.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var circuitTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "resilience_circuit_transitions_total",
		Help: "Total number of circuit breaker state transitions by circuit and resulting state.",
	},
	[]string{"circuit", "state"},
)

// CircuitState is one of the three states a Circuit can be in.
type CircuitState string

const (
	StateClosed   CircuitState = "CLOSED"
	StateOpen     CircuitState = "OPEN"
	StateHalfOpen CircuitState = "HALF_OPEN"
)

// CircuitOpenError is raised when Call is invoked while the circuit is OPEN.
type CircuitOpenError struct {
	Name      string
	LastError error
}

func (e *CircuitOpenError) Error() string {
	if e.LastError != nil {
		return "circuit " + e.Name + " is open: " + e.LastError.Error()
	}
	return "circuit " + e.Name + " is open"
}

func (e *CircuitOpenError) Unwrap() error { return e.LastError }

// CircuitConfig configures a Circuit's thresholds.
type CircuitConfig struct {
	FailureThreshold  int
	SuccessThreshold  int
	Timeout           time.Duration
	ExcludedErrors    []error
}

// DefaultCircuitConfig matches the documented defaults.
func DefaultCircuitConfig() CircuitConfig {
	return CircuitConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          60 * time.Second,
	}
}

func (c CircuitConfig) isExcluded(err error) bool {
	for _, excluded := range c.ExcludedErrors {
		if errors.Is(err, excluded) {
			return true
		}
	}
	return false
}

// Circuit is a per-component circuit breaker guarding a single remote
// dependency, keyed "<component>-<llm_config_name>" by its owning Registry.
type Circuit struct {
	name   string
	config CircuitConfig

	mu              sync.Mutex
	state           CircuitState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	lastFailureErr  error
}

// NewCircuit builds a Circuit named name with config.
func NewCircuit(name string, config CircuitConfig) *Circuit {
	return &Circuit{name: name, config: config, state: StateClosed}
}

// State returns the circuit's current state, moving OPEN->HALF_OPEN as a
// side effect once the open timeout has elapsed.
func (c *Circuit) State() CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Circuit) stateLocked() CircuitState {
	if c.state == StateOpen && time.Since(c.lastFailureTime) >= c.config.Timeout {
		c.state = StateHalfOpen
		c.successCount = 0
		circuitTransitions.WithLabelValues(c.name, string(StateHalfOpen)).Inc()
	}
	return c.state
}

// Call executes fn through the circuit: raises *CircuitOpenError immediately
// when the circuit is open, and otherwise executes fn, accounting success or
// failure into the state machine. The lock is held only for the state check
// and for recording the result — fn itself runs unlocked.
func (c *Circuit) Call(fn func() error) error {
	c.mu.Lock()
	state := c.stateLocked()
	if state == StateOpen {
		lastErr := c.lastFailureErr
		c.mu.Unlock()
		return &CircuitOpenError{Name: c.name, LastError: lastErr}
	}
	c.mu.Unlock()

	err := fn()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.config.isExcluded(err) {
			return err
		}
		c.recordFailureLocked(err)
		return err
	}
	c.recordSuccessLocked()
	return nil
}

func (c *Circuit) recordFailureLocked(err error) {
	c.lastFailureTime = time.Now()
	c.lastFailureErr = err

	switch c.state {
	case StateHalfOpen:
		c.state = StateOpen
		c.failureCount = c.config.FailureThreshold
		circuitTransitions.WithLabelValues(c.name, string(StateOpen)).Inc()
	case StateClosed:
		c.failureCount++
		if c.failureCount >= c.config.FailureThreshold {
			c.state = StateOpen
			circuitTransitions.WithLabelValues(c.name, string(StateOpen)).Inc()
		}
	}
}

func (c *Circuit) recordSuccessLocked() {
	switch c.state {
	case StateHalfOpen:
		c.successCount++
		if c.successCount >= c.config.SuccessThreshold {
			c.state = StateClosed
			c.failureCount = 0
			c.successCount = 0
			circuitTransitions.WithLabelValues(c.name, string(StateClosed)).Inc()
		}
	case StateClosed:
		c.failureCount = 0
	}
}

// Registry is a process-wide, lazily-populated set of named Circuits.
type Registry struct {
	mu       sync.Mutex
	circuits map[string]*Circuit
	config   CircuitConfig
}

// NewRegistry builds an empty Registry using config for every circuit it creates.
func NewRegistry(config CircuitConfig) *Registry {
	return &Registry{circuits: make(map[string]*Circuit), config: config}
}

// Get returns the named circuit, lazily creating it on first access. Safe
// for concurrent use; creation is guarded by the registry's own lock so two
// callers racing to create the same circuit never produce two instances.
func (r *Registry) Get(name string) *Circuit {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.circuits[name]; ok {
		return c
	}
	c := NewCircuit(name, r.config)
	r.circuits[name] = c
	return c
}
