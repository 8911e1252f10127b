package signals

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/workerpool"
)

// AggregatorConfig configures collection.
type AggregatorConfig struct {
	Pacing        time.Duration // Sleep between keywords (default 1s)
	MaxConcurrent int           // Adapters in flight per keyword (default 4)
}

// Report describes one adapter's contribution for one keyword.
type Report struct {
	Keyword  string              `json:"keyword"`
	Platform models.Platform     `json:"platform"`
	Origin   models.SignalOrigin `json:"origin"`
	Count    int                 `json:"count"`
	Cached   bool                `json:"cached"`
	Error    string              `json:"error,omitempty"`
}

// Collection is the merged output of a Collect call.
type Collection struct {
	Signals []models.CommunitySignal
	Reports []Report
}

// Aggregator fans keywords out to the adapters and merges their signals.
type Aggregator struct {
	adapters []Adapter
	cache    Cache
	pool     *workerpool.Pool
	pacing   time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger
}

// NewAggregator creates an aggregator. cache may be nil.
func NewAggregator(adapters []Adapter, cache Cache, cfg AggregatorConfig, logger *zap.Logger) *Aggregator {
	if cfg.Pacing < 0 {
		cfg.Pacing = 0
	}
	return &Aggregator{
		adapters: adapters,
		cache:    cache,
		pool:     workerpool.New(workerpool.Config{MaxConcurrent: cfg.MaxConcurrent}, logger),
		pacing:   cfg.Pacing,
		sleep:    sleepContext,
		logger:   logger.Named("aggregator"),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Platforms lists the platforms of the configured adapters, in collection order.
func (a *Aggregator) Platforms() []models.Platform {
	platforms := make([]models.Platform, len(a.adapters))
	for i, ad := range a.adapters {
		platforms[i] = ad.Platform()
	}
	return platforms
}

// Collect gathers signals for each non-blank keyword in order, pausing between
// keywords, and returns them stable-sorted by strength, strongest first.
// Cancelling ctx stops collection and returns what was gathered so far.
func (a *Aggregator) Collect(ctx context.Context, keywords []string) *Collection {
	out := &Collection{Signals: []models.CommunitySignal{}, Reports: []Report{}}

	first := true
	for _, raw := range keywords {
		keyword := cleanKeyword(raw)
		if keyword == "" {
			continue
		}
		if !first {
			if err := a.sleep(ctx, a.pacing); err != nil {
				a.logger.Info("Collection interrupted", zap.Error(err))
				break
			}
		}
		first = false

		for _, r := range a.collectKeyword(ctx, keyword) {
			out.Signals = append(out.Signals, r.Signals...)
			report := Report{
				Keyword:  keyword,
				Platform: r.Platform,
				Origin:   r.Origin,
				Count:    len(r.Signals),
				Cached:   r.Cached,
			}
			if r.Err != nil {
				report.Error = r.Err.Error()
			}
			out.Reports = append(out.Reports, report)
		}
	}

	sort.SliceStable(out.Signals, func(i, j int) bool {
		return out.Signals[i].SignalStrength > out.Signals[j].SignalStrength
	})

	a.logger.Debug("Collected signals",
		zap.Int("keywords", len(keywords)),
		zap.Int("signals", len(out.Signals)))
	return out
}

// collectKeyword runs every adapter concurrently and returns results in adapter order.
func (a *Aggregator) collectKeyword(ctx context.Context, keyword string) []Result {
	tasks := make([]workerpool.Task[Result], len(a.adapters))
	for i, ad := range a.adapters {
		tasks[i] = workerpool.Task[Result]{
			ID: string(ad.Platform()) + ":" + keyword,
			Execute: func(ctx context.Context) (Result, error) {
				return a.fetch(ctx, ad, keyword), nil
			},
		}
	}

	results := workerpool.Process(ctx, a.pool, tasks, nil)
	out := make([]Result, len(results))
	for i, r := range results {
		if r.Err != nil {
			// Only reachable when ctx ended before the adapter got a slot.
			out[i] = Result{Platform: a.adapters[i].Platform(), Origin: models.OriginMock, Signals: []models.CommunitySignal{}, Err: r.Err}
			continue
		}
		out[i] = r.Value
	}
	return out
}

func (a *Aggregator) fetch(ctx context.Context, ad Adapter, keyword string) Result {
	platform := ad.Platform()
	if a.cache != nil {
		signals, hit, err := a.cache.Get(ctx, platform, keyword)
		switch {
		case err != nil:
			a.logger.Warn("Signal cache read failed", zap.String("platform", string(platform)), zap.Error(err))
		case hit:
			return Result{Platform: platform, Origin: models.OriginLive, Signals: signals, Cached: true}
		}
	}

	r := ad.Fetch(ctx, keyword)

	if a.cache != nil && r.Origin == models.OriginLive {
		if err := a.cache.Set(ctx, platform, keyword, r.Signals); err != nil {
			a.logger.Warn("Signal cache write failed", zap.String("platform", string(platform)), zap.Error(err))
		}
	}
	return r
}
