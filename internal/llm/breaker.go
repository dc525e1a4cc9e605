package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Circuit breaker errors
var (
	ErrCircuitOpen     = errors.New("circuit breaker open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"    // Normal operation
	StateOpen     CircuitState = "open"      // Failing, reject requests
	StateHalfOpen CircuitState = "half-open" // Testing if the API recovered
)

// CircuitBreaker stops calling the completion API after repeated failures.
// Rejected calls surface as errors, which callers treat like any other failure.
type CircuitBreaker struct {
	mu                   sync.Mutex
	state                CircuitState
	failureCount         int
	consecutiveSuccesses int
	halfOpenInFlight     int
	openedAt             time.Time

	failureThreshold int           // Failures before opening
	successThreshold int           // Successes to close from half-open
	timeout          time.Duration // How long to stay open
	halfOpenMax      int           // Max concurrent probes in half-open

	now    func() time.Time
	logger *zap.Logger
}

// NewCircuitBreaker creates a circuit breaker with the given configuration
func NewCircuitBreaker(failureThreshold int, timeout time.Duration, log *zap.Logger) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 5
	}
	if timeout < time.Second {
		timeout = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	cb := &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: 1,
		timeout:          timeout,
		halfOpenMax:      1,
		now:              time.Now,
		logger:           log.Named("breaker"),
	}
	cb.logger.Info("circuit breaker initialized",
		zap.Int("failure_threshold", failureThreshold),
		zap.Duration("open_timeout", timeout))
	return cb
}

// Call runs fn unless the circuit is open, and records its outcome.
// Cancellation by the caller is neither a failure nor a success.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn()
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.timeout {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.consecutiveSuccesses = 0
		cb.halfOpenInFlight = 1
		return nil

	case StateHalfOpen:
		if cb.halfOpenInFlight >= cb.halfOpenMax {
			return ErrTooManyRequests
		}
		cb.halfOpenInFlight++
		return nil
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen && cb.halfOpenInFlight > 0 {
		cb.halfOpenInFlight--
	}

	// The caller gave up; that says nothing about the API's health.
	if errors.Is(err, context.Canceled) {
		return
	}

	if err != nil {
		cb.failureCount++
		cb.consecutiveSuccesses = 0
		switch cb.state {
		case StateClosed:
			if cb.failureCount >= cb.failureThreshold {
				cb.open()
			}
		case StateHalfOpen:
			cb.open()
		}
		return
	}

	cb.consecutiveSuccesses++
	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		if cb.consecutiveSuccesses >= cb.successThreshold {
			cb.setState(StateClosed)
			cb.failureCount = 0
		}
	}
}

func (cb *CircuitBreaker) open() {
	cb.setState(StateOpen)
	cb.openedAt = cb.now()
	cb.halfOpenInFlight = 0
}

func (cb *CircuitBreaker) setState(newState CircuitState) {
	oldState := cb.state
	cb.state = newState
	if oldState != newState {
		cb.logger.Warn("circuit breaker state transition",
			zap.String("from", string(oldState)),
			zap.String("to", string(newState)),
			zap.Int("failure_count", cb.failureCount))
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset manually resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
	cb.failureCount = 0
	cb.consecutiveSuccesses = 0
	cb.halfOpenInFlight = 0
}
