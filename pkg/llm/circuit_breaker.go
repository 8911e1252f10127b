package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
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

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	Threshold  int           // Consecutive failures before the circuit opens
	ResetAfter time.Duration // How long the circuit stays open before a probe
}

// DefaultCircuitBreakerConfig trips after 5 consecutive failures and probes after 30s.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold:  5,
		ResetAfter: 30 * time.Second,
	}
}

// CircuitBreaker stops calls to a provider that keeps failing.
// While open, calls fail fast; after ResetAfter one probe is let through.
type CircuitBreaker struct {
	mu          sync.Mutex
	config      CircuitBreakerConfig
	state       CircuitState
	failures    int
	lastFailure time.Time
	now         func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	defaults := DefaultCircuitBreakerConfig()
	if config.Threshold < 1 {
		config.Threshold = defaults.Threshold
	}
	if config.ResetAfter <= 0 {
		config.ResetAfter = defaults.ResetAfter
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// Allow returns nil when a request may proceed, or an *Error of type
// ErrorTypeCircuitOpen when it must not.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		since := cb.now().Sub(cb.lastFailure)
		if since >= cb.config.ResetAfter {
			cb.state = CircuitHalfOpen
			return nil
		}
		return NewError(ErrorTypeCircuitOpen,
			fmt.Sprintf("provider unavailable after %d consecutive failures, retry in %v",
				cb.failures, (cb.config.ResetAfter - since).Round(time.Second)),
			false, nil)
	default:
		return NewError(ErrorTypeCircuitOpen, "provider recovery probe in flight", false, nil)
	}
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure and opens the circuit at the threshold.
// A failed probe reopens it immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.config.Threshold {
		cb.state = CircuitOpen
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ConsecutiveFailures returns the current failure streak.
func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset closes the circuit and clears the streak.
func (cb *CircuitBreaker) Reset() {
	cb.RecordSuccess()
}

// GuardedClient puts a CircuitBreaker in front of another LLMClient.
type GuardedClient struct {
	inner   LLMClient
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewGuardedClient wraps inner with breaker.
func NewGuardedClient(inner LLMClient, breaker *CircuitBreaker, logger *zap.Logger) *GuardedClient {
	return &GuardedClient{
		inner:   inner,
		breaker: breaker,
		logger:  logger.Named("llm-breaker"),
	}
}

// GenerateResponse fails fast while the circuit is open. Caller cancellation
// and malformed replies do not count against the provider.
func (g *GuardedClient) GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error) {
	if err := g.breaker.Allow(); err != nil {
		g.logger.Warn("LLM call rejected", zap.Error(err))
		return nil, err
	}

	result, err := g.inner.GenerateResponse(ctx, prompt, opts)
	switch {
	case err == nil:
		g.breaker.RecordSuccess()
	case errors.Is(err, context.Canceled), GetErrorType(err) == ErrorTypeEmpty:
		g.breaker.RecordSuccess()
	default:
		g.breaker.RecordFailure()
		if g.breaker.State() == CircuitOpen {
			g.logger.Warn("LLM circuit opened",
				zap.Int("consecutive_failures", g.breaker.ConsecutiveFailures()),
				zap.Error(err))
		}
	}
	return result, err
}

// GetModel returns the wrapped client's model.
func (g *GuardedClient) GetModel() string {
	return g.inner.GetModel()
}

// GetEndpoint returns the wrapped client's endpoint.
func (g *GuardedClient) GetEndpoint() string {
	return g.inner.GetEndpoint()
}
