package enrichment

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Sentiment
	}{
		{"negative wins", "I hate this terrible tool but the docs are great", models.SentimentNegative},
		{"positive wins", "Love it, amazing and excellent", models.SentimentPositive},
		{"tie is neutral", "great but awful", models.SentimentNeutral},
		{"no words is neutral", "a plain statement", models.SentimentNeutral},
		{"repeats count once", "hate hate hate, love and great", models.SentimentPositive},
		{"case insensitive", "FRUSTRATING", models.SentimentNegative},
		{"empty", "", models.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentiment(tt.text))
		})
	}
}

func TestRedditStrength(t *testing.T) {
	assert.Equal(t, 1, RedditStrength(0, 0))
	// log10(47 + 46 + 1) * 2 = 3.95
	assert.Equal(t, 4, RedditStrength(47, 23))
	// log10(1000 + 400 + 1) * 2 = 6.29
	assert.Equal(t, 6, RedditStrength(1000, 200))
	assert.Equal(t, 10, RedditStrength(math.MaxInt32, math.MaxInt32))
	assert.Equal(t, 1, RedditStrength(-50, -10))
}

func TestHackerNewsStrength(t *testing.T) {
	assert.Equal(t, 1, HackerNewsStrength(0, 0))
	// log10(89 + 34 + 1) * 2.5 = 5.23
	assert.Equal(t, 5, HackerNewsStrength(89, 34))
	assert.Equal(t, 10, HackerNewsStrength(100000, 5000))
}

func TestStrength_AlwaysWithinScale(t *testing.T) {
	values := []int{-1000, -1, 0, 1, 2, 9, 10, 99, 100, 1000, 12345, 1 << 20, math.MaxInt32}
	for _, a := range values {
		for _, b := range values {
			r := RedditStrength(a, b)
			h := HackerNewsStrength(a, b)
			assert.True(t, r >= 1 && r <= 10, "reddit strength %d for (%d,%d)", r, a, b)
			assert.True(t, h >= 1 && h <= 10, "hn strength %d for (%d,%d)", h, a, b)
		}
	}
}

func TestExtractProblems(t *testing.T) {
	text := "Invoicing is a real problem for us. Bad issue. " +
		"We love the product! It is slow to load every morning? " +
		"Exports are broken since the update. Onboarding is difficult for new staff."

	problems := ExtractProblems(text)
	assert.Equal(t, []string{
		"Invoicing is a real problem for us",
		"It is slow to load every morning",
		"Exports are broken since the update",
	}, problems)
}

func TestExtractProblems_Properties(t *testing.T) {
	inputs := []string{
		"",
		"no complaints here at all",
		"problem",
		"This is a problem. This is an issue. This is a struggle. This is difficult. This is impossible.",
		"Struggling with automation for developers. automation is hard to set up!!!",
	}
	for _, in := range inputs {
		problems := ExtractProblems(in)
		assert.NotNil(t, problems)
		assert.LessOrEqual(t, len(problems), 3)
		for _, p := range problems {
			assert.True(t, containsIndicator(p), "problem %q has no indicator", p)
		}
	}
}

func containsIndicator(s string) bool {
	lower := strings.ToLower(s)
	for _, ind := range ProblemIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func TestExtractKeywords(t *testing.T) {
	text := "Invoice tooling: invoices, invoice reminders and invoice exports. " +
		"This tool has been slow; reminders were late."

	keywords := ExtractKeywords(text)
	assert.Equal(t, []string{"invoice", "reminders", "tooling", "invoices", "exports"}, keywords)
}

func TestExtractKeywords_Properties(t *testing.T) {
	inputs := []string{
		"",
		"a an the of",
		"this that with have been they were said",
		"Analytics analytics ANALYTICS dashboard dashboard platform workflow workflow automation teams startup",
		"Don't over-think: it's a well-known, re-usable pattern!",
	}
	for _, in := range inputs {
		keywords := ExtractKeywords(in)
		assert.NotNil(t, keywords)
		assert.LessOrEqual(t, len(keywords), 5)
		seen := map[string]bool{}
		for _, k := range keywords {
			assert.Greater(t, len(k), 3)
			assert.False(t, Stopwords[k], "stopword %q returned", k)
			assert.False(t, seen[k], "duplicate %q", k)
			seen[k] = true
		}
	}
}

func TestExtractKeywords_TiesKeepFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"zeta", "alpha", "mango"}, ExtractKeywords("zeta alpha mango"))
}

func TestHeuristic_ImplementsEnricher(t *testing.T) {
	var e Enricher = Heuristic{}
	assert.Equal(t, models.SentimentNegative, e.Sentiment("awful"))
	assert.Equal(t, []string{"automation"}, e.Keywords("automation"))
	assert.Len(t, e.Problems("This is a huge problem for everyone"), 1)
}
