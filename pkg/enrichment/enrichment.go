// Package enrichment derives sentiment, strength, problems and keywords from
// raw community post text. Everything here is a pure function.
package enrichment

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

var (
	positiveWords = []string{"love", "great", "amazing", "excellent", "perfect", "awesome", "fantastic"}
	negativeWords = []string{"hate", "terrible", "awful", "bad", "worst", "horrible", "frustrating", "annoying"}

	// ProblemIndicators are the phrases that mark a sentence as a complaint.
	ProblemIndicators = []string{
		"problem", "issue", "struggle", "difficult", "hard to", "cant", "impossible",
		"frustrating", "annoying", "waste of time", "inefficient", "slow", "broken",
	}

	// Stopwords are dropped from keyword extraction after the length filter.
	Stopwords = map[string]bool{
		"this": true, "that": true, "with": true, "have": true,
		"been": true, "they": true, "were": true, "said": true,
	}

	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	nonWord       = regexp.MustCompile(`[^\w\s]`)
)

const (
	maxProblems        = 3
	maxKeywords        = 5
	minSentenceLength  = 10
	minKeywordLength   = 3
	minSignalStrength  = 1
	maxSignalStrength  = 10
	redditCommentScale = 2
	redditDamping      = 2.0
	hnDamping          = 2.5
)

// Enricher fills in the derived fields of a signal from its text.
type Enricher interface {
	Sentiment(text string) models.Sentiment
	Problems(text string) []string
	Keywords(text string) []string
}

// Heuristic is the word-list Enricher.
type Heuristic struct{}

var _ Enricher = Heuristic{}

func (Heuristic) Sentiment(text string) models.Sentiment {
	return Sentiment(text)
}

func (Heuristic) Problems(text string) []string {
	return ExtractProblems(text)
}

func (Heuristic) Keywords(text string) []string {
	return ExtractKeywords(text)
}

// Sentiment compares how many positive and negative words occur in text.
// Each word counts once no matter how often it repeats.
func Sentiment(text string) models.Sentiment {
	lower := strings.ToLower(text)
	positive := countPresent(lower, positiveWords)
	negative := countPresent(lower, negativeWords)

	switch {
	case negative > positive:
		return models.SentimentNegative
	case positive > negative:
		return models.SentimentPositive
	default:
		return models.SentimentNeutral
	}
}

func countPresent(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

// RedditStrength scores a Reddit post on the 1-10 scale.
// Comments count double.
func RedditStrength(upvotes, comments int) int {
	return strength(nonNegative(upvotes)+redditCommentScale*nonNegative(comments), redditDamping)
}

// HackerNewsStrength scores a Hacker News item on the 1-10 scale.
func HackerNewsStrength(points, comments int) int {
	return strength(nonNegative(points)+nonNegative(comments), hnDamping)
}

func strength(total int, damping float64) int {
	score := math.Log10(float64(total)+1) * damping
	score = math.Max(minSignalStrength, math.Min(maxSignalStrength, score))
	return int(math.Round(score))
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ExtractProblems returns up to three sentences that contain a problem indicator,
// in the order they appear.
func ExtractProblems(text string) []string {
	problems := []string{}
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= minSentenceLength {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, indicator := range ProblemIndicators {
			if strings.Contains(lower, indicator) {
				problems = append(problems, sentence)
				break
			}
		}
		if len(problems) == maxProblems {
			break
		}
	}
	return problems
}

// ExtractKeywords returns the five most frequent content words of text.
// Ties keep first-seen order.
func ExtractKeywords(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), "")

	counts := make(map[string]int)
	var order []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= minKeywordLength || Stopwords[word] {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}
