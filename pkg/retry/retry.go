// Package retry runs operations with exponential backoff and jitter.
// It is used for startup connections and outbound community API requests;
// LLM calls are never retried.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	JitterFactor     float64 // 0.0-1.0; 0.1 means +/-10%
	MaxSameErrorType int     // After N consecutive same-type errors, give up (0 disables)
}

// DefaultConfig suits database and cache connections at startup:
// 3 retries from 100ms, doubling, capped at 5s, 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:       3,
		InitialDelay:     100 * time.Millisecond,
		MaxDelay:         5 * time.Second,
		Multiplier:       2.0,
		JitterFactor:     0.1,
		MaxSameErrorType: 5,
	}
}

// backoff yields successive wait durations for one retry loop.
type backoff struct {
	cfg   *Config
	delay time.Duration
}

func newBackoff(cfg *Config) *backoff {
	return &backoff{cfg: cfg, delay: cfg.InitialDelay}
}

// wait sleeps for the current delay (with jitter) and grows it.
// It returns ctx.Err() if the context ends first.
func (b *backoff) wait(ctx context.Context) error {
	timer := time.NewTimer(jitter(b.delay, b.cfg.JitterFactor))
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	next := time.Duration(float64(b.delay) * b.cfg.Multiplier)
	if b.cfg.MaxDelay > 0 && next > b.cfg.MaxDelay {
		next = b.cfg.MaxDelay
	}
	b.delay = next
	return nil
}

func jitter(delay time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return delay
	}
	offset := float64(delay) * factor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + offset)
}

// errStop wraps an error that must end the loop immediately.
type errStop struct{ err error }

func (e errStop) Error() string { return e.err.Error() }

// run is the shared loop. shouldRetry may return a replacement error to stop with.
func run(ctx context.Context, cfg *Config, fn func() error, shouldRetry func(error) error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	b := newBackoff(cfg)
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if shouldRetry != nil {
			if stop := shouldRetry(err); stop != nil {
				return stop
			}
		}

		if attempt < cfg.MaxRetries {
			if werr := b.wait(ctx); werr != nil {
				return werr
			}
		}
	}
	return lastErr
}

// Do calls fn until it succeeds or the retries are exhausted, returning the last error.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	return run(ctx, cfg, fn, nil)
}

// DoWithResult is Do for functions that produce a value, such as opening a pool.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	var result T
	err := run(ctx, cfg, func() error {
		r, err := fn()
		result = r
		return err
	}, nil)
	return result, err
}

// DoIfRetryable retries only transient errors. Permanent errors return at once,
// and a run of MaxSameErrorType identical transient errors is treated as permanent.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastType string
	same := 0
	err := run(ctx, cfg, fn, func(err error) error {
		if !IsRetryable(err) {
			return errStop{err}
		}
		kind := classify(err)
		if kind == lastType {
			same++
		} else {
			lastType, same = kind, 1
		}
		if cfg.MaxSameErrorType > 0 && same >= cfg.MaxSameErrorType {
			return fmt.Errorf("repeated error (%d times, type=%s): %w", same, kind, err)
		}
		return nil
	})

	var stop errStop
	if errors.As(err, &stop) {
		return stop.err
	}
	return err
}

// RetryableError is implemented by errors that know whether they are transient.
type RetryableError interface {
	error
	IsRetryable() bool
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"timeout",
	"timed out",
	"temporary failure",
	"too many connections",
	"network is unreachable",
	"unexpected eof",
	"429",
	"500",
	"502",
	"503",
	"504",
	"rate limit",
	"too many requests",
	"service unavailable",
}

// IsRetryable reports whether err looks transient. Errors implementing
// RetryableError decide for themselves; everything else is matched by message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// classify buckets an error so repeated failures of one kind can be detected.
func classify(err error) string {
	msg := strings.ToLower(err.Error())
	for _, code := range []string{"503", "502", "504", "500", "429"} {
		if strings.Contains(msg, code) {
			return code
		}
	}
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return "connection"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return "timeout"
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return "rate_limit"
	}
	return "unknown"
}
