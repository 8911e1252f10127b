package signals

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/enrichment"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// DefaultRedditBaseURL serves the public JSON listing API.
const DefaultRedditBaseURL = "https://www.reddit.com"

// Subreddits are searched in this order for every keyword.
var Subreddits = []string{"startups", "entrepreneur", "SaaS", "smallbusiness", "business", "productivity"}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// RedditAdapter searches a fixed set of startup subreddits.
type RedditAdapter struct {
	base
}

// NewRedditAdapter creates the Reddit adapter.
func NewRedditAdapter(opts AdapterOptions, logger *zap.Logger) *RedditAdapter {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultRedditBaseURL
	}
	return &RedditAdapter{base: newBase(models.PlatformReddit, opts, logger)}
}

// Fetch searches each subreddit. A subreddit answering non-2xx is skipped;
// any other failure replaces the whole answer with the mock set.
func (a *RedditAdapter) Fetch(ctx context.Context, keyword string) Result {
	keyword = cleanKeyword(keyword)
	if r, ok := a.shortCircuit(keyword); ok {
		return r
	}

	signals := []models.CommunitySignal{}
	for _, sub := range Subreddits {
		endpoint := fmt.Sprintf("%s/r/%s/search.json?%s",
			strings.TrimSuffix(a.opts.BaseURL, "/"), sub, url.Values{
				"q":           {keyword},
				"restrict_sr": {"1"},
				"sort":        {"relevance"},
				"limit":       {"10"},
			}.Encode())

		var listing redditListing
		err := a.fetch.getJSON(ctx, endpoint, &listing)
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			a.logger.Debug("Skipping subreddit",
				zap.String("subreddit", sub),
				zap.Int("status", statusErr.StatusCode))
			continue
		}
		if err != nil {
			return a.fallback(keyword, err)
		}

		for _, child := range listing.Data.Children {
			signals = append(signals, a.normalize(sub, child.Data))
		}
	}

	return Result{Platform: a.platform, Origin: models.OriginLive, Signals: signals}
}

func (a *RedditAdapter) normalize(sub string, post redditPost) models.CommunitySignal {
	s := models.CommunitySignal{
		ID:       "reddit_" + post.ID,
		Platform: models.PlatformReddit,
		Source:   "r/" + sub,
		Title:    post.Title,
		Content:  post.Selftext,
		URL:      "https://reddit.com" + post.Permalink,
		Engagement: models.Engagement{
			Upvotes:  models.Count(post.Ups),
			Comments: models.Count(post.NumComments),
		},
		SignalStrength: enrichment.RedditStrength(post.Ups, post.NumComments),
		CreatedAt:      time.Unix(int64(post.CreatedUTC), 0).UTC(),
		Origin:         models.OriginLive,
	}
	a.enrich(&s)
	return s
}
