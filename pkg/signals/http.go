package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ekaya-inc/upstart-engine/pkg/retry"
)

// UserAgent identifies outbound community API requests.
const UserAgent = "UpStart:v1.0 (by /u/upstartapp)"

// StatusError is a non-2xx reply from a community API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsRetryable treats throttling and server errors as transient.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// limiterFor converts an hourly quota into a limiter. A zero quota disables limiting.
func limiterFor(perHour int) *rate.Limiter {
	if perHour <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), 1)
}

// fetcher performs rate-limited GETs with one retry for transient failures.
type fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   *retry.Config
	logger  *zap.Logger
}

func newFetcher(client *http.Client, perHour int, logger *zap.Logger) *fetcher {
	return &fetcher{
		client:  client,
		limiter: limiterFor(perHour),
		retry: &retry.Config{
			MaxRetries:   1,
			InitialDelay: 250 * time.Millisecond,
			MaxDelay:     time.Second,
			Multiplier:   2,
			JitterFactor: 0.1,
		},
		logger: logger,
	}
}

// get returns the body of a 2xx reply. Non-2xx replies yield *StatusError.
func (f *fetcher) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.DoIfRetryable(ctx, f.retry, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return &StatusError{URL: url, StatusCode: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	})
	return body, err
}

// getJSON decodes a 2xx JSON reply into out.
func (f *fetcher) getJSON(ctx context.Context, url string, out any) error {
	body, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
