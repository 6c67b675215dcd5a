package httpclient

import (
	"sync"
	"time"
)

// CircuitState represents the state of the circuit breaker.
type CircuitState int

const (
	// StateClosed means requests flow through normally.
	StateClosed CircuitState = iota
	// StateOpen means requests are rejected immediately.
	StateOpen
	// StateHalfOpen means a limited number of probe requests are allowed.
	StateHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker implements the circuit breaker pattern.
//
// The breaker starts closed. After threshold consecutive failures it opens
// and rejects all requests until the reset timeout elapses, then moves to
// half-open and allows up to halfOpenMax probe requests. A success in
// half-open closes the breaker; a failure re-opens it.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold   int
	resetAfter  time.Duration
	halfOpenMax int

	state        CircuitState
	failures     int
	halfOpenUsed int
	openedAt     time.Time
}

// NewCircuitBreaker creates a circuit breaker.
// A threshold of 0 or less disables the breaker (it stays closed).
func NewCircuitBreaker(threshold int, resetAfter time.Duration, halfOpenMax int) *CircuitBreaker {
	if halfOpenMax <= 0 {
		halfOpenMax = 1
	}
	return &CircuitBreaker{
		threshold:   threshold,
		resetAfter:  resetAfter,
		halfOpenMax: halfOpenMax,
		state:       StateClosed,
	}
}

// Allow reports whether a request may proceed, transitioning the breaker
// from open to half-open when the reset timeout has elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.threshold <= 0 {
		return true
	}

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if time.Since(cb.openedAt) >= cb.resetAfter {
			cb.state = StateHalfOpen
			cb.halfOpenUsed = 1
			return true
		}
		return false

	case StateHalfOpen:
		if cb.halfOpenUsed < cb.halfOpenMax {
			cb.halfOpenUsed++
			return true
		}
		return false

	default:
		return false
	}
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state != StateClosed {
		cb.state = StateClosed
		cb.halfOpenUsed = 0
	}
}

// RecordFailure records a failed request, opening the breaker when the
// failure threshold is reached or when a half-open probe fails.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.threshold <= 0 {
		return
	}

	cb.failures++

	if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
		cb.state = StateOpen
		cb.openedAt = time.Now()
		cb.halfOpenUsed = 0
	}
}

// State returns the current state of the breaker.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	// Report half-open once the reset timeout has elapsed, even if no
	// request has arrived yet to trigger the transition.
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.resetAfter {
		return StateHalfOpen
	}
	return cb.state
}

// Reset returns the breaker to the closed state and clears failure counts.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenUsed = 0
}
