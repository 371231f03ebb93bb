package ai

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed lets calls through.
	CircuitClosed CircuitState = iota
	// CircuitOpen skips the provider until the recovery timeout elapses.
	CircuitOpen
	// CircuitHalfOpen lets a single probe call through.
	CircuitHalfOpen
)

// String returns a string representation of the circuit state
func (cs CircuitState) String() string {
	switch cs {
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

// CircuitBreaker tracks consecutive failures of one provider.
type CircuitBreaker struct {
	mu               sync.Mutex
	provider         string
	failureThreshold int
	recoveryTimeout  time.Duration
	state            CircuitState
	failureCount     int
	lastFailureTime  time.Time
	totalRequests    int
	totalFailures    int
	now              func() time.Time
}

// NewCircuitBreaker opens after 3 consecutive failures and probes again after 30s.
func NewCircuitBreaker(provider string) *CircuitBreaker {
	return &CircuitBreaker{
		provider:         provider,
		failureThreshold: 3,
		recoveryTimeout:  30 * time.Second,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// ShouldAttempt reports whether the provider may be called now. An open
// circuit whose recovery timeout has passed moves to half-open.
func (cb *CircuitBreaker) ShouldAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.recoveryTimeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess closes the circuit and resets the failure streak.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++
	cb.failureCount = 0
	if cb.state != CircuitClosed {
		slog.Info("llm provider circuit closed", slog.String("provider", cb.provider))
	}
	cb.state = CircuitClosed
}

// RecordFailure extends the failure streak. A failed half-open probe reopens
// the circuit immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.totalFailures++
	cb.totalRequests++
	cb.lastFailureTime = cb.now()

	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.failureThreshold {
		if cb.state != CircuitOpen {
			slog.Warn("llm provider circuit opened",
				slog.String("provider", cb.provider),
				slog.Int("failure_count", cb.failureCount),
				slog.Int("threshold", cb.failureThreshold))
		}
		cb.state = CircuitOpen
	}
}

// GetState returns the current circuit state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// BreakerStats is a point-in-time view of a breaker, reported by /health.
type BreakerStats struct {
	Provider      string `json:"provider"`
	State         string `json:"state"`
	FailureStreak int    `json:"failure_streak"`
	TotalRequests int    `json:"total_requests"`
	TotalFailures int    `json:"total_failures"`
}

// Stats returns circuit breaker statistics
func (cb *CircuitBreaker) Stats() BreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return BreakerStats{
		Provider:      cb.provider,
		State:         cb.state.String(),
		FailureStreak: cb.failureCount,
		TotalRequests: cb.totalRequests,
		TotalFailures: cb.totalFailures,
	}
}
