package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, resetAfter time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: threshold, ResetAfter: resetAfter})
	cb.now = clock.now
	return cb, clock
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Allow())
		cb.RecordFailure()
	}
	assert.Equal(t, CircuitClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.Equal(t, 3, cb.ConsecutiveFailures())

	err := cb.Allow()
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCircuitOpen, GetErrorType(err))
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clock := newTestBreaker(1, 30*time.Second)
	cb.RecordFailure()
	require.Error(t, cb.Allow())

	clock.advance(30 * time.Second)
	require.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// Only one probe at a time.
	require.Error(t, cb.Allow())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 0, cb.ConsecutiveFailures())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, clock := newTestBreaker(5, time.Second)
	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	clock.advance(2 * time.Second)
	require.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	require.Error(t, cb.Allow())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	assert.Equal(t, DefaultCircuitBreakerConfig(), cb.config)
	assert.Equal(t, "closed", cb.State().String())
}

func TestGuardedClient_FailsFastWhenOpen(t *testing.T) {
	mock := NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error) {
		return nil, NewError(ErrorTypeEndpoint, "server error", true, errors.New("503"))
	}
	cb, _ := newTestBreaker(2, time.Minute)
	client := NewGuardedClient(mock, cb, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := client.GenerateResponse(context.Background(), "p", GenerateOptions{})
		assert.Equal(t, ErrorTypeEndpoint, GetErrorType(err))
	}

	_, err := client.GenerateResponse(context.Background(), "p", GenerateOptions{})
	assert.Equal(t, ErrorTypeCircuitOpen, GetErrorType(err))
	assert.Equal(t, 2, mock.Calls(), "open circuit must not reach the provider")
}

func TestGuardedClient_CancellationDoesNotTrip(t *testing.T) {
	mock := NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error) {
		return nil, ClassifyError(context.Canceled)
	}
	cb, _ := newTestBreaker(1, time.Minute)
	client := NewGuardedClient(mock, cb, zap.NewNop())

	_, err := client.GenerateResponse(context.Background(), "p", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestGuardedClient_PassesThroughSuccess(t *testing.T) {
	mock := NewMockLLMClient("hello")
	client := NewGuardedClient(mock, NewCircuitBreaker(DefaultCircuitBreakerConfig()), zap.NewNop())

	result, err := client.GenerateResponse(context.Background(), "p", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Content)
	assert.Equal(t, "mock-model", client.GetModel())
	assert.Equal(t, "http://mock-endpoint", client.GetEndpoint())
}
