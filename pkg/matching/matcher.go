// Package matching scores collected community signals against stored ideas.
package matching

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// Vocabulary is the fixed set of terms an idea is reduced to before matching.
var Vocabulary = []string{
	// tech
	"ai", "artificial intelligence", "machine learning", "automation", "saas", "platform", "app", "software",
	"mobile", "web", "api", "analytics", "dashboard", "tool", "system", "service",
	// business
	"business", "startup", "entrepreneur", "revenue", "subscription", "marketplace", "e-commerce",
	"productivity", "efficiency", "workflow", "management", "optimization",
	// industry
	"healthcare", "finance", "education", "fitness", "food", "travel", "real estate",
	"energy", "sustainability", "environment", "social", "gaming", "entertainment",
	// problem
	"problem", "issue", "challenge", "difficulty", "frustration", "pain", "struggle",
	"inefficient", "time-consuming", "expensive", "complicated", "manual",
}

// Scores are kept in tenths so thresholds compare exactly.
const (
	keywordHit       = 2
	problemHit       = 3
	signalKeywordHit = 1
	strongBonus      = 1
	negativeBonus    = 1
	maxScore         = 10
	minScore         = 3

	strongStrength = 7
	highEngagement = 8

	reasonSeparator = " • "
	fallbackReason  = "Relevant community discussion"
)

// Matcher scores signals against ideas. It is safe for concurrent use.
type Matcher struct {
	vocabulary []string
}

// NewMatcher creates a matcher over Vocabulary.
func NewMatcher() *Matcher {
	return &Matcher{vocabulary: Vocabulary}
}

// IdeaKeywords returns the vocabulary terms that occur as substrings of the
// idea's title, description, problem, solution and target market.
func (m *Matcher) IdeaKeywords(idea *models.Idea) []string {
	text := strings.ToLower(strings.Join([]string{
		idea.Title,
		idea.Description,
		deref(idea.Problem),
		deref(idea.Solution),
		deref(idea.TargetMarket),
	}, " "))

	found := []string{}
	for _, term := range m.vocabulary {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// Score returns the relevance of a signal to an idea on the 0-10 scale.
func (m *Matcher) Score(ideaKeywords []string, signal models.CommunitySignal) int {
	title := strings.ToLower(signal.Title)
	content := strings.ToLower(signal.Content)

	score := 0
	for _, kw := range ideaKeywords {
		if strings.Contains(title, kw) || strings.Contains(content, kw) {
			score += keywordHit
		}
	}

	for _, problem := range signal.ExtractedProblems {
		lower := strings.ToLower(problem)
		for _, kw := range ideaKeywords {
			if strings.Contains(lower, kw) {
				score += problemHit
				break
			}
		}
	}

	for _, kw := range signal.Keywords {
		if slices.Contains(ideaKeywords, kw) {
			score += signalKeywordHit
		}
	}

	if signal.SignalStrength >= strongStrength {
		score += strongBonus
	}
	if signal.Sentiment == models.SentimentNegative {
		score += negativeBonus
	}

	return min(score, maxScore)
}

// Match returns the signals relevant to idea, most relevant first.
// Equal scores keep the input order.
func (m *Matcher) Match(idea *models.Idea, signals []models.CommunitySignal) []models.RelevanceMatch {
	keywords := m.IdeaKeywords(idea)

	matches := []models.RelevanceMatch{}
	for _, s := range signals {
		score := m.Score(keywords, s)
		if score < minScore {
			continue
		}
		matches = append(matches, models.RelevanceMatch{
			CommunitySignal: s,
			RelevanceScore:  score,
			MatchReason:     MatchReason(s),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})
	return matches
}

// MatchReason explains in one line why a signal is worth reading.
func MatchReason(s models.CommunitySignal) string {
	var parts []string
	if len(s.ExtractedProblems) > 0 {
		parts = append(parts, fmt.Sprintf(`Addresses problem: "%s"`, s.ExtractedProblems[0]))
	}
	switch s.Platform {
	case models.PlatformReddit:
		parts = append(parts, fmt.Sprintf("%d upvotes on Reddit", s.Engagement.UpvoteCount()))
	case models.PlatformHackerNews:
		parts = append(parts, fmt.Sprintf("%d points on Hacker News", s.Engagement.UpvoteCount()))
	}
	if s.SignalStrength >= highEngagement {
		parts = append(parts, "High community engagement")
	}

	if len(parts) == 0 {
		return fallbackReason
	}
	return strings.Join(parts, reasonSeparator)
}

// Summary condenses an idea's matches for display.
type Summary struct {
	CommunityEvidence    []models.RelevanceMatch `json:"communityEvidence"`
	SignalStrength       int                     `json:"signalStrength"`
	TotalMatchingSignals int                     `json:"totalMatchingSignals"`
}

// Summarize keeps the top evidence matches and averages every match's score.
func Summarize(matches []models.RelevanceMatch, evidence int) Summary {
	top := matches
	if len(top) > evidence {
		top = top[:evidence]
	}

	strength := 0
	if len(matches) > 0 {
		total := 0
		for _, m := range matches {
			total += m.RelevanceScore
		}
		strength = int(math.Round(float64(total) / float64(len(matches))))
	}

	return Summary{
		CommunityEvidence:    top,
		SignalStrength:       strength,
		TotalMatchingSignals: len(matches),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
