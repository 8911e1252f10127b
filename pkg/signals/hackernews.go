package signals

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/enrichment"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// DefaultHackerNewsBaseURL is the Algolia HN search API.
const DefaultHackerNewsBaseURL = "https://hn.algolia.com"

type hnSearch struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string    `json:"objectID"`
	Title       string    `json:"title"`
	StoryText   string    `json:"story_text"`
	Points      int       `json:"points"`
	NumComments int       `json:"num_comments"`
	CreatedAt   time.Time `json:"created_at"`
}

// HackerNewsAdapter searches Ask HN posts.
type HackerNewsAdapter struct {
	base
}

// NewHackerNewsAdapter creates the Hacker News adapter.
func NewHackerNewsAdapter(opts AdapterOptions, logger *zap.Logger) *HackerNewsAdapter {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultHackerNewsBaseURL
	}
	return &HackerNewsAdapter{base: newBase(models.PlatformHackerNews, opts, logger)}
}

// Fetch runs one search. Any failure, including a non-2xx reply, yields the mock set.
func (a *HackerNewsAdapter) Fetch(ctx context.Context, keyword string) Result {
	keyword = cleanKeyword(keyword)
	if r, ok := a.shortCircuit(keyword); ok {
		return r
	}

	endpoint := fmt.Sprintf("%s/api/v1/search?%s",
		strings.TrimSuffix(a.opts.BaseURL, "/"), url.Values{
			"query":       {keyword},
			"tags":        {"ask_hn"},
			"hitsPerPage": {"20"},
		}.Encode())

	var search hnSearch
	if err := a.fetch.getJSON(ctx, endpoint, &search); err != nil {
		return a.fallback(keyword, err)
	}

	signals := make([]models.CommunitySignal, 0, len(search.Hits))
	for _, hit := range search.Hits {
		signals = append(signals, a.normalize(hit))
	}
	return Result{Platform: a.platform, Origin: models.OriginLive, Signals: signals}
}

func (a *HackerNewsAdapter) normalize(hit hnHit) models.CommunitySignal {
	s := models.CommunitySignal{
		ID:       "hn_" + hit.ObjectID,
		Platform: models.PlatformHackerNews,
		Source:   "Ask HN",
		Title:    hit.Title,
		Content:  hit.StoryText,
		URL:      "https://news.ycombinator.com/item?id=" + hit.ObjectID,
		Engagement: models.Engagement{
			Upvotes:  models.Count(hit.Points),
			Comments: models.Count(hit.NumComments),
		},
		SignalStrength: enrichment.HackerNewsStrength(hit.Points, hit.NumComments),
		CreatedAt:      hit.CreatedAt,
		Origin:         models.OriginLive,
	}
	a.enrich(&s)
	return s
}
