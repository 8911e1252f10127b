package signals

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// mockSignal is the template for one synthetic signal. Text fields take the keyword.
type mockSignal struct {
	source     string
	title      string
	content    string
	url        string
	engagement models.Engagement
	sentiment  models.Sentiment
	strength   int
	problems   []string
	keywords   []string
	maxAge     time.Duration
}

const day = 24 * time.Hour

var mockTemplates = map[models.Platform][]mockSignal{
	models.PlatformReddit: {
		{
			source:     "r/startups",
			title:      "Struggling with %s - any advice?",
			content:    "I've been trying to solve this %s problem for months. Current solutions are either too expensive or don't work well. Anyone else facing this?",
			url:        "https://reddit.com/r/startups/mock1",
			engagement: models.Engagement{Upvotes: models.Count(47), Comments: models.Count(23)},
			sentiment:  models.SentimentNegative,
			strength:   7,
			problems:   []string{"Expensive solutions for %s", "Current tools don't work well"},
			keywords:   []string{"%s", "expensive", "solutions", "problem"},
			maxAge:     7 * day,
		},
		{
			source:     "r/entrepreneur",
			title:      "Market opportunity in %s?",
			content:    "Seeing a lot of discussion around %s lately. Seems like there's a gap in the market. Thoughts?",
			url:        "https://reddit.com/r/entrepreneur/mock2",
			engagement: models.Engagement{Upvotes: models.Count(31), Comments: models.Count(15)},
			sentiment:  models.SentimentPositive,
			strength:   6,
			problems:   []string{"Gap in %s market"},
			keywords:   []string{"%s", "market", "opportunity", "gap"},
			maxAge:     5 * day,
		},
	},
	models.PlatformHackerNews: {
		{
			source:     "Ask HN",
			title:      "Ask HN: Best practices for %s?",
			content:    "I'm building a product that needs to handle %s efficiently. What are the current best practices?",
			url:        "https://news.ycombinator.com/item?id=mock1",
			engagement: models.Engagement{Upvotes: models.Count(89), Comments: models.Count(34)},
			sentiment:  models.SentimentNeutral,
			strength:   8,
			problems:   []string{"Need efficient %s handling"},
			keywords:   []string{"%s", "practices", "efficient", "product"},
			maxAge:     3 * day,
		},
	},
	models.PlatformYouTube: {
		{
			source:     "Tech Review Channel",
			title:      "Why %s tools are failing users in 2024",
			content:    "Analysis of current %s solutions and why they're not meeting user needs",
			url:        "https://youtube.com/watch?v=mock1",
			engagement: models.Engagement{Views: models.Count(15420), Comments: models.Count(89), Likes: models.Count(234)},
			sentiment:  models.SentimentNegative,
			strength:   9,
			problems:   []string{"%s tools failing users", "Not meeting user needs"},
			keywords:   []string{"%s", "tools", "failing", "users"},
			maxAge:     2 * day,
		},
	},
	models.PlatformProductHunt: {
		{
			source:     "Product Hunt",
			title:      "New %s tool launches with a free tier",
			content:    "Makers say existing %s products are too complicated for small teams, so they built a simpler one.",
			url:        "https://www.producthunt.com/posts/mock1",
			engagement: models.Engagement{Upvotes: models.Count(112), Comments: models.Count(18)},
			sentiment:  models.SentimentNeutral,
			strength:   6,
			problems:   []string{"Existing %s products are too complicated"},
			keywords:   []string{"%s", "tool", "launch", "teams"},
			maxAge:     2 * day,
		},
	},
}

// MockSignals returns the synthetic fallback set for a platform. Ids embed the
// current Unix milliseconds and createdAt is back-dated by a random amount.
func MockSignals(platform models.Platform, keyword string, now time.Time) []models.CommunitySignal {
	templates := mockTemplates[platform]
	signals := make([]models.CommunitySignal, 0, len(templates))
	for i, tpl := range templates {
		signals = append(signals, models.CommunitySignal{
			ID:                fmt.Sprintf("%s_mock_%d_%d", platform, now.UnixMilli(), i+1),
			Platform:          platform,
			Source:            tpl.source,
			Title:             fmt.Sprintf(tpl.title, keyword),
			Content:           fmt.Sprintf(tpl.content, keyword),
			URL:               tpl.url,
			Engagement:        tpl.engagement,
			Sentiment:         tpl.sentiment,
			SignalStrength:    tpl.strength,
			ExtractedProblems: fill(tpl.problems, keyword),
			Keywords:          fill(tpl.keywords, keyword),
			CreatedAt:         now.Add(-time.Duration(rand.Int63n(int64(tpl.maxAge)))),
			Origin:            models.OriginMock,
		})
	}
	return signals
}

func fill(templates []string, keyword string) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		if strings.Contains(t, "%s") {
			out[i] = fmt.Sprintf(t, keyword)
		} else {
			out[i] = t
		}
	}
	return out
}

func mockResult(platform models.Platform, keyword string, now time.Time, cause error) Result {
	return Result{
		Platform: platform,
		Origin:   models.OriginMock,
		Signals:  MockSignals(platform, keyword, now),
		Err:      cause,
	}
}
