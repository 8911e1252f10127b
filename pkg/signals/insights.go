package signals

import (
	"math"
	"sort"
	"strings"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// StrongSignalThreshold is the strength at which a signal counts as strong.
const StrongSignalThreshold = 7

// ProblemCount is a normalized problem and its number of mentions.
type ProblemCount struct {
	Problem string `json:"problem"`
	Count   int    `json:"count"`
}

// SentimentBreakdown holds rounded percentages per sentiment.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// TopProblems counts lowercased, trimmed extracted problems and returns the
// limit most frequent. Ties keep first-seen order.
func TopProblems(signals []models.CommunitySignal, limit int) []ProblemCount {
	index := map[string]int{}
	counts := []ProblemCount{}
	for _, s := range signals {
		for _, p := range s.ExtractedProblems {
			key := strings.ToLower(strings.TrimSpace(p))
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, ProblemCount{Problem: key, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// SentimentDistribution returns the share of each sentiment as a rounded
// percentage. An empty input yields all zeros.
func SentimentDistribution(signals []models.CommunitySignal) SentimentBreakdown {
	if len(signals) == 0 {
		return SentimentBreakdown{}
	}
	var pos, neg, neu int
	for _, s := range signals {
		switch s.Sentiment {
		case models.SentimentPositive:
			pos++
		case models.SentimentNegative:
			neg++
		case models.SentimentNeutral:
			neu++
		}
	}
	pct := func(n int) int {
		return int(math.Round(float64(n) / float64(len(signals)) * 100))
	}
	return SentimentBreakdown{Positive: pct(pos), Negative: pct(neg), Neutral: pct(neu)}
}

// StrongSignals counts signals at or above StrongSignalThreshold.
func StrongSignals(signals []models.CommunitySignal) int {
	n := 0
	for _, s := range signals {
		if s.SignalStrength >= StrongSignalThreshold {
			n++
		}
	}
	return n
}

// Platforms returns the distinct platforms in first-seen order.
func Platforms(signals []models.CommunitySignal) []models.Platform {
	seen := map[models.Platform]bool{}
	out := []models.Platform{}
	for _, s := range signals {
		if !seen[s.Platform] {
			seen[s.Platform] = true
			out = append(out, s.Platform)
		}
	}
	return out
}

// FilterByPlatform keeps the signals of one platform. An empty platform keeps all.
func FilterByPlatform(signals []models.CommunitySignal, platform string) []models.CommunitySignal {
	if platform == "" {
		return signals
	}
	out := []models.CommunitySignal{}
	for _, s := range signals {
		if string(s.Platform) == platform {
			out = append(out, s)
		}
	}
	return out
}

// AtLeast keeps signals whose strength is at least min, up to limit entries.
func AtLeast(signals []models.CommunitySignal, min, limit int) []models.CommunitySignal {
	out := []models.CommunitySignal{}
	for _, s := range signals {
		if len(out) == limit {
			break
		}
		if s.SignalStrength >= min {
			out = append(out, s)
		}
	}
	return out
}

// Head returns at most n signals from the front.
func Head(signals []models.CommunitySignal, n int) []models.CommunitySignal {
	if len(signals) > n {
		return signals[:n]
	}
	return signals
}
