package signals

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/config"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func liveOptions(baseURL string) AdapterOptions {
	return AdapterOptions{
		BaseURL: baseURL,
		Live:    true,
		Now:     func() time.Time { return fixedNow },
	}
}

func TestRedditAdapter_NormalizesAndSkipsFailingSubreddits(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "invoicing", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("restrict_sr"))
		assert.Equal(t, "relevance", r.URL.Query().Get("sort"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		switch r.URL.Path {
		case "/r/startups/search.json":
			fmt.Fprint(w, `{"data":{"children":[{"data":{
				"id":"abc","title":"How do you handle invoicing?","selftext":"Chasing clients is a huge waste of time for me.",
				"permalink":"/r/startups/comments/abc/x/","ups":40,"num_comments":30,"created_utc":1700000000
			}}]}}`)
		case "/r/SaaS/search.json":
			w.WriteHeader(http.StatusForbidden)
		default:
			fmt.Fprint(w, `{"data":{"children":[]}}`)
		}
	}))
	defer server.Close()

	adapter := NewRedditAdapter(liveOptions(server.URL), zap.NewNop())
	result := adapter.Fetch(context.Background(), "  invoicing ")

	assert.Equal(t, int32(len(Subreddits)), atomic.LoadInt32(&requests))
	assert.Equal(t, models.OriginLive, result.Origin)
	assert.NoError(t, result.Err)
	require.Len(t, result.Signals, 1)

	s := result.Signals[0]
	assert.Equal(t, "reddit_abc", s.ID)
	assert.Equal(t, "r/startups", s.Source)
	assert.Equal(t, "https://reddit.com/r/startups/comments/abc/x/", s.URL)
	assert.Equal(t, 40, s.Engagement.UpvoteCount())
	assert.Equal(t, 30, s.Engagement.CommentCount())
	assert.Equal(t, 4, s.SignalStrength) // round(log10(101)*2)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), s.CreatedAt)
	assert.Equal(t, []string{"Chasing clients is a huge waste of time for me"}, s.ExtractedProblems)
	assert.Equal(t, models.OriginLive, s.Origin)
}

func TestRedditAdapter_DecodeFailureReturnsMockSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer server.Close()

	result := NewRedditAdapter(liveOptions(server.URL), zap.NewNop()).Fetch(context.Background(), "crm")

	assert.Equal(t, models.OriginMock, result.Origin)
	assert.Error(t, result.Err)
	require.Len(t, result.Signals, 2)
	assert.Equal(t, "Struggling with crm - any advice?", result.Signals[0].Title)
	assert.Equal(t, "Market opportunity in crm?", result.Signals[1].Title)
}

func TestHackerNewsAdapter_Live(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.Equal(t, "ask_hn", r.URL.Query().Get("tags"))
		assert.Equal(t, "20", r.URL.Query().Get("hitsPerPage"))
		fmt.Fprint(w, `{"hits":[
			{"objectID":"42","title":"Ask HN: How do you do billing?","story_text":null,"points":99,"num_comments":0,"created_at":"2024-05-01T10:00:00.000Z"},
			{"objectID":"43","title":"Ask HN: I love my tools","story_text":"They are great","points":null,"num_comments":null,"created_at":"2024-05-02T10:00:00.000Z"}
		]}`)
	}))
	defer server.Close()

	result := NewHackerNewsAdapter(liveOptions(server.URL), zap.NewNop()).Fetch(context.Background(), "billing")

	assert.Equal(t, models.OriginLive, result.Origin)
	require.Len(t, result.Signals, 2)
	first := result.Signals[0]
	assert.Equal(t, "hn_42", first.ID)
	assert.Equal(t, "Ask HN", first.Source)
	assert.Equal(t, "https://news.ycombinator.com/item?id=42", first.URL)
	assert.Equal(t, 5, first.SignalStrength) // round(log10(100)*2.5)
	assert.Equal(t, "", first.Content)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt.UTC())

	second := result.Signals[1]
	assert.Equal(t, 1, second.SignalStrength)
	assert.Equal(t, models.SentimentPositive, second.Sentiment)
}

func TestHackerNewsAdapter_NonSuccessReturnsMockSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := NewHackerNewsAdapter(liveOptions(server.URL), zap.NewNop()).Fetch(context.Background(), "billing")

	assert.Equal(t, models.OriginMock, result.Origin)
	var statusErr *StatusError
	require.ErrorAs(t, result.Err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, "Ask HN: Best practices for billing?", result.Signals[0].Title)
	assert.Equal(t, 8, result.Signals[0].SignalStrength)
}

func TestHackerNewsAdapter_RetriesTransientStatusOnce(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"hits":[]}`)
	}))
	defer server.Close()

	result := NewHackerNewsAdapter(liveOptions(server.URL), zap.NewNop()).Fetch(context.Background(), "billing")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, models.OriginLive, result.Origin)
	assert.Empty(t, result.Signals)
}

func TestAdapters_MockModeMakesNoRequests(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	opts := AdapterOptions{BaseURL: server.URL, Live: false}
	adapters := []Adapter{
		NewRedditAdapter(opts, zap.NewNop()),
		NewHackerNewsAdapter(opts, zap.NewNop()),
		NewYouTubeAdapter(opts, zap.NewNop()),
		NewProductHuntAdapter(opts, zap.NewNop()),
	}
	for _, a := range adapters {
		result := a.Fetch(context.Background(), "fitness")
		assert.Equal(t, models.OriginMock, result.Origin, a.Platform())
		assert.NotEmpty(t, result.Signals, a.Platform())
		assert.NoError(t, result.Err)
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestAdapters_BlankKeyword(t *testing.T) {
	a := NewRedditAdapter(AdapterOptions{Live: true, BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	result := a.Fetch(context.Background(), "   ")
	assert.Equal(t, models.OriginMock, result.Origin)
	assert.NotNil(t, result.Signals)
	assert.Empty(t, result.Signals)
}

func TestYouTubeAdapter_AlwaysMock(t *testing.T) {
	result := NewYouTubeAdapter(liveOptions(""), zap.NewNop()).Fetch(context.Background(), "meal prep")
	assert.Equal(t, models.OriginMock, result.Origin)
	require.Len(t, result.Signals, 1)
	s := result.Signals[0]
	assert.Equal(t, "Why meal prep tools are failing users in 2024", s.Title)
	assert.Equal(t, 15420, *s.Engagement.Views)
	assert.Equal(t, 9, s.SignalStrength)
}

const productHuntFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Product Hunt</title>
<item><guid>ph-1</guid><title>LedgerLite</title><description>Invoicing for freelancers is broken, so we fixed it.</description>
<link>https://www.producthunt.com/posts/ledgerlite</link><pubDate>Sat, 01 Jun 2024 09:00:00 GMT</pubDate></item>
<item><guid>ph-2</guid><title>Moodboard</title><description>Collect design inspiration.</description>
<link>https://www.producthunt.com/posts/moodboard</link></item>
</channel></rss>`

func TestProductHuntAdapter_FiltersFeedByKeyword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, productHuntFeed)
	}))
	defer server.Close()

	result := NewProductHuntAdapter(liveOptions(server.URL), zap.NewNop()).Fetch(context.Background(), "INVOICING")

	assert.Equal(t, models.OriginLive, result.Origin)
	require.Len(t, result.Signals, 1)
	s := result.Signals[0]
	assert.Equal(t, "producthunt_ph-1", s.ID)
	assert.Equal(t, "LedgerLite", s.Title)
	assert.Equal(t, 1, s.SignalStrength)
	assert.Equal(t, "https://www.producthunt.com/posts/ledgerlite", s.URL)
	assert.True(t, strings.Contains(s.ExtractedProblems[0], "broken"))
}

func TestProductHuntAdapter_ParseFailureReturnsMockSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "definitely not a feed")
	}))
	defer server.Close()

	result := NewProductHuntAdapter(liveOptions(server.URL), zap.NewNop()).Fetch(context.Background(), "invoicing")
	assert.Equal(t, models.OriginMock, result.Origin)
	assert.Error(t, result.Err)
	assert.Len(t, result.Signals, 1)
}

func TestNewAdapters_CollectionOrderAndLiveSwitch(t *testing.T) {
	cfg := &config.SignalsConfig{
		Platforms:      []string{"youtube", "producthunt", "reddit"},
		LivePlatforms:  map[string]bool{"reddit": true},
		RequestTimeout: time.Second,
	}
	adapters := NewAdapters(cfg, zap.NewNop())

	require.Len(t, adapters, 3)
	assert.Equal(t, models.PlatformReddit, adapters[0].Platform())
	assert.Equal(t, models.PlatformYouTube, adapters[1].Platform())
	assert.Equal(t, models.PlatformProductHunt, adapters[2].Platform())

	assert.True(t, adapters[0].(*RedditAdapter).opts.Live)
	assert.False(t, adapters[2].(*ProductHuntAdapter).opts.Live)
}

func TestMockSignals(t *testing.T) {
	signals := MockSignals(models.PlatformReddit, "crm", fixedNow)
	require.Len(t, signals, 2)

	first := signals[0]
	assert.Equal(t, fmt.Sprintf("reddit_mock_%d_1", fixedNow.UnixMilli()), first.ID)
	assert.Equal(t, "r/startups", first.Source)
	assert.Equal(t, 47, first.Engagement.UpvoteCount())
	assert.Equal(t, models.SentimentNegative, first.Sentiment)
	assert.Equal(t, []string{"Expensive solutions for crm", "Current tools don't work well"}, first.ExtractedProblems)
	assert.Equal(t, []string{"crm", "expensive", "solutions", "problem"}, first.Keywords)
	assert.True(t, first.CreatedAt.After(fixedNow.Add(-7*day)))
	assert.False(t, first.CreatedAt.After(fixedNow))

	assert.Equal(t, fmt.Sprintf("reddit_mock_%d_2", fixedNow.UnixMilli()), signals[1].ID)
	assert.Empty(t, MockSignals("twitter", "crm", fixedNow))
}
