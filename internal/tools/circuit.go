package tools

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of a tool's circuit breaker.
type CircuitState int

const (
	// CircuitClosed is the normal operation state.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects all requests until the cooldown elapses.
	CircuitOpen
	// CircuitHalfOpen allows a single trial request to check recovery.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
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

// ErrCircuitOpen is returned when the circuit rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// circuitBreaker guards one tool's provider. Each tool gets its own
// instance; state never crosses tools, so a persistently failing provider
// cannot block dispatch of unrelated tools.
//
// Transitions (all under the mutex, so concurrent failures cannot double-trip):
//
//	Closed    --threshold consecutive failures--> Open
//	Open      --cooldown elapsed on next Allow--> HalfOpen
//	HalfOpen  --trial success x SuccessThreshold--> Closed
//	HalfOpen  --trial failure--> Open (cooldown restarts)
//
// Unlike a plain half-open gate, exactly one trial call is admitted at a
// time: a second caller arriving while the trial is in flight is rejected
// as if the circuit were still open.
type circuitBreaker struct {
	mu sync.Mutex

	state       CircuitState
	failures    int
	successes   int
	openedAt    time.Time
	trialActive bool

	failureThreshold int
	successThreshold int
	cooldown         time.Duration

	// now is a hook for tests; defaults to time.Now.
	now func() time.Time
}

// newCircuitBreaker creates a breaker from an already-defaulted policy.
func newCircuitBreaker(cfg ResilienceConfig) *circuitBreaker {
	return &circuitBreaker{
		state:            CircuitClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		cooldown:         cfg.Cooldown,
		now:              time.Now,
	}
}

// allow checks whether a call may proceed. It performs the Open -> HalfOpen
// transition when the cooldown has elapsed and claims the half-open trial
// slot for the caller.
func (cb *circuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) > cb.cooldown {
			cb.state = CircuitHalfOpen
			cb.successes = 0
			cb.trialActive = true
			return nil
		}
		return ErrCircuitOpen
	case CircuitHalfOpen:
		if cb.trialActive {
			return ErrCircuitOpen
		}
		cb.trialActive = true
		return nil
	}
	return nil
}

// abandon releases a call slot claimed by allow without recording an
// outcome. Callers use it when they give up before the provider's health
// could be observed; the half-open trial slot is returned so the next
// caller runs the trial instead of being locked out.
func (cb *circuitBreaker) abandon() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.trialActive = false
	}
}

// success records a successful call.
func (cb *circuitBreaker) success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.trialActive = false
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.state = CircuitClosed
			cb.failures = 0
			cb.successes = 0
		}
	case CircuitClosed:
		cb.failures = 0
	}
}

// failure records a failed call.
func (cb *circuitBreaker) failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++

	switch cb.state {
	case CircuitClosed:
		if cb.failures >= cb.failureThreshold {
			cb.state = CircuitOpen
			cb.openedAt = cb.now()
		}
	case CircuitHalfOpen:
		cb.trialActive = false
		cb.state = CircuitOpen
		cb.openedAt = cb.now()
		cb.successes = 0
	}
}

// currentState returns the state for observability.
func (cb *circuitBreaker) currentState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
