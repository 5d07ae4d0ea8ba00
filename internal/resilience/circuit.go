package resilience

import (
	"fmt"
	"sync"
	"time"
)

// CircuitState is the current mode of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed allows requests through normally.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects requests immediately.
	CircuitOpen
	// CircuitHalfOpen allows a limited number of probe requests.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the breaker rejects a request.
type ErrCircuitOpen struct {
	Name       string
	RetryAfter time.Duration
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit %q open, retry after %s", e.Name, e.RetryAfter.Round(time.Second))
}

// CircuitBreaker trips open after consecutive failures and probes recovery
// after a cooldown. Safe for concurrent use.
type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu        sync.Mutex
	state     CircuitState
	failures  int
	openedAt  time.Time
	halfProbe bool

	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker that opens after maxFailures
// consecutive failures and stays open for cooldown before probing.
func NewCircuitBreaker(name string, maxFailures int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// Allow reports whether a request may proceed. In the half-open state only
// one probe is admitted at a time; callers must report the outcome via
// Success or Failure.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		elapsed := cb.now().Sub(cb.openedAt)
		if elapsed < cb.cooldown {
			return &ErrCircuitOpen{Name: cb.name, RetryAfter: cb.cooldown - elapsed}
		}
		cb.state = CircuitHalfOpen
		cb.halfProbe = true
		return nil
	default: // half-open
		if cb.halfProbe {
			return &ErrCircuitOpen{Name: cb.name, RetryAfter: 0}
		}
		cb.halfProbe = true
		return nil
	}
}

// Success records a successful request and closes the breaker.
func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failures = 0
	cb.halfProbe = false
}

// Failure records a failed request, tripping the breaker open when the
// consecutive-failure threshold is reached.
func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.halfProbe = false
	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = CircuitOpen
		cb.openedAt = cb.now()
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
