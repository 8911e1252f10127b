package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:   retries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

type flakyError struct{ retryable bool }

func (e flakyError) Error() string     { return "flaky" }
func (e flakyError) IsRetryable() bool { return e.retryable }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.Equal(t, 0.1, cfg.JitterFactor)
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), func() error {
		calls++
		return errors.New("attempt failed")
	})
	require.EqualError(t, err, "attempt failed")
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}

	calls := 0
	err := Do(ctx, cfg, func() error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_NilConfigUsesDefaults(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	b := newBackoff(&Config{InitialDelay: time.Millisecond, MaxDelay: 3 * time.Millisecond, Multiplier: 2})
	require.NoError(t, b.wait(context.Background()))
	assert.Equal(t, 2*time.Millisecond, b.delay)
	require.NoError(t, b.wait(context.Background()))
	assert.Equal(t, 3*time.Millisecond, b.delay)
}

func TestJitter_StaysWithinFactor(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := jitter(base, 0.1)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
	assert.Equal(t, base, jitter(base, 0))
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	v, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("connection refused")
		}
		return "pool", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "pool", v)
	assert.Equal(t, 2, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("unexpected status 503"), true},
		{errors.New("HTTP 429 Too Many Requests"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("invalid character 'x' looking for beginning of value"), false},
		{errors.New("404 not found"), false},
		{flakyError{retryable: true}, true},
		{flakyError{retryable: false}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryable(tt.err), "IsRetryable(%v)", tt.err)
	}
}

func TestDoIfRetryable_PermanentErrorReturnsImmediately(t *testing.T) {
	calls := 0
	permanent := flakyError{retryable: false}
	err := DoIfRetryable(context.Background(), fastConfig(3), func() error {
		calls++
		return permanent
	})
	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDoIfRetryable_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := DoIfRetryable(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("502 bad gateway")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoIfRetryable_EscalatesRepeatedErrorType(t *testing.T) {
	cfg := fastConfig(10)
	cfg.MaxSameErrorType = 3

	calls := 0
	err := DoIfRetryable(context.Background(), cfg, func() error {
		calls++
		return errors.New("503 service unavailable")
	})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "repeated error (3 times, type=503)"))
	assert.Equal(t, 3, calls)
}
