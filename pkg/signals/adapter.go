// Package signals collects community signals from Reddit, Hacker News, YouTube
// and Product Hunt, falling back to synthetic signals when a platform is
// unavailable or switched to mock mode.
package signals

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/config"
	"github.com/ekaya-inc/upstart-engine/pkg/enrichment"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// Adapter fetches signals for one keyword from one platform.
// Fetch never fails: upstream problems are absorbed into a mock-origin Result.
type Adapter interface {
	Platform() models.Platform
	Fetch(ctx context.Context, keyword string) Result
}

// Result is one adapter's answer for one keyword.
type Result struct {
	Platform models.Platform
	Origin   models.SignalOrigin
	Signals  []models.CommunitySignal
	Err      error // absorbed cause, for logging only
	Cached   bool
}

// AdapterOptions carries the shared dependencies of every adapter.
type AdapterOptions struct {
	BaseURL          string
	Live             bool
	RateLimitPerHour int
	HTTPClient       *http.Client
	Enricher         enrichment.Enricher
	Now              func() time.Time
}

func (o *AdapterOptions) defaults() {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if o.Enricher == nil {
		o.Enricher = enrichment.Heuristic{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// base holds what every adapter needs to answer in mock mode.
type base struct {
	platform models.Platform
	opts     AdapterOptions
	fetch    *fetcher
	logger   *zap.Logger
}

func newBase(platform models.Platform, opts AdapterOptions, logger *zap.Logger) base {
	opts.defaults()
	named := logger.Named("signals").With(zap.String("platform", string(platform)))
	return base{
		platform: platform,
		opts:     opts,
		fetch:    newFetcher(opts.HTTPClient, opts.RateLimitPerHour, named),
		logger:   named,
	}
}

func (b *base) Platform() models.Platform {
	return b.platform
}

// shortCircuit answers without a network call for blank keywords and mock mode.
func (b *base) shortCircuit(keyword string) (Result, bool) {
	if keyword == "" {
		return Result{Platform: b.platform, Origin: models.OriginMock, Signals: []models.CommunitySignal{}}, true
	}
	if !b.opts.Live {
		return mockResult(b.platform, keyword, b.opts.Now(), nil), true
	}
	return Result{}, false
}

func (b *base) fallback(keyword string, cause error) Result {
	b.logger.Warn("Falling back to mock signals",
		zap.String("keyword", keyword),
		zap.Error(cause))
	return mockResult(b.platform, keyword, b.opts.Now(), cause)
}

// enrich fills sentiment, problems and keywords from title and body.
func (b *base) enrich(s *models.CommunitySignal) {
	text := s.Title + " " + s.Content
	s.Sentiment = b.opts.Enricher.Sentiment(text)
	s.ExtractedProblems = b.opts.Enricher.Problems(text)
	s.Keywords = b.opts.Enricher.Keywords(text)
}

// CollectionOrder is the fixed order adapter results are concatenated in.
var CollectionOrder = []models.Platform{
	models.PlatformReddit,
	models.PlatformHackerNews,
	models.PlatformYouTube,
	models.PlatformProductHunt,
}

// NewAdapters builds the enabled adapters in CollectionOrder.
func NewAdapters(cfg *config.SignalsConfig, logger *zap.Logger) []Adapter {
	client := &http.Client{Timeout: cfg.RequestTimeout}
	adapters := make([]Adapter, 0, len(cfg.Platforms))
	for _, platform := range CollectionOrder {
		name := string(platform)
		if !slices.Contains(cfg.Platforms, name) {
			continue
		}
		pc := cfg.Platform(name)
		opts := AdapterOptions{
			BaseURL:          pc.BaseURL,
			Live:             cfg.IsLive(name),
			RateLimitPerHour: pc.RateLimitPerHour,
			HTTPClient:       client,
		}
		switch platform {
		case models.PlatformReddit:
			adapters = append(adapters, NewRedditAdapter(opts, logger))
		case models.PlatformHackerNews:
			adapters = append(adapters, NewHackerNewsAdapter(opts, logger))
		case models.PlatformYouTube:
			adapters = append(adapters, NewYouTubeAdapter(opts, logger))
		case models.PlatformProductHunt:
			adapters = append(adapters, NewProductHuntAdapter(opts, logger))
		}
	}
	return adapters
}

func cleanKeyword(keyword string) string {
	return strings.TrimSpace(keyword)
}
