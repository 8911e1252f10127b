package main

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

//go:embed ideas.yaml
var catalogueYAML []byte

// seedIdea is one entry of ideas.yaml.
type seedIdea struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Problem      string `yaml:"problem"`
	Solution     string `yaml:"solution"`
	TargetMarket string `yaml:"target_market"`
	RevenueModel string `yaml:"revenue_model"`
}

type catalogue struct {
	Ideas []seedIdea `yaml:"ideas"`
}

// loadCatalogue parses a YAML idea catalogue. Every idea needs a title and description.
func loadCatalogue(data []byte) ([]seedIdea, error) {
	var c catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse idea catalogue: %w", err)
	}
	for i, idea := range c.Ideas {
		if strings.TrimSpace(idea.Title) == "" || strings.TrimSpace(idea.Description) == "" {
			return nil, fmt.Errorf("idea %d: title and description are required", i+1)
		}
	}
	return c.Ideas, nil
}

func (s seedIdea) toModel(userID uuid.UUID) *models.Idea {
	return &models.Idea{
		Title:        s.Title,
		Description:  s.Description,
		Problem:      optional(s.Problem),
		Solution:     optional(s.Solution),
		TargetMarket: optional(s.TargetMarket),
		RevenueModel: optional(s.RevenueModel),
		Status:       models.IdeaStatusPublished,
		UserID:       userID,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const maxSeedKeywords = 5

var (
	nonWord   = regexp.MustCompile(`[^A-Za-z0-9_\s]`)
	stopWords = []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
		"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
		"will", "would", "could", "should", "may", "might", "can", "cannot", "using", "that", "this",
		"these", "those", "from", "into", "over", "under", "above", "below",
	}
)

// seedKeywords picks up to five distinct words longer than three letters
// from the title and description, in order of first appearance.
func seedKeywords(title, description string) []string {
	text := nonWord.ReplaceAllString(strings.ToLower(title+" "+description), "")

	var out []string
	for _, word := range strings.Fields(text) {
		if len(word) <= 3 || slices.Contains(stopWords, word) || slices.Contains(out, word) {
			continue
		}
		out = append(out, word)
		if len(out) == maxSeedKeywords {
			break
		}
	}
	return out
}

var competitionLevels = []models.CompetitionLevel{
	models.CompetitionLow, models.CompetitionMedium, models.CompetitionHigh,
}

// randomKeyword fills the demo search metrics of a keyword.
func randomKeyword(r *rand.Rand, ideaID uuid.UUID, term string) *models.Keyword {
	volume := r.IntN(10000) + 1000
	competition := competitionLevels[r.IntN(len(competitionLevels))]
	growth := (r.Float64() - 0.5) * 100
	return &models.Keyword{
		IdeaID:       ideaID,
		Keyword:      term,
		SearchVolume: &volume,
		Competition:  &competition,
		GrowthRate:   &growth,
	}
}

// seedPlatforms are the platforms each seeded idea gets an authored signal for.
var seedPlatforms = []string{"reddit", "twitter"}

// randomSignals builds the authored community signals of a seeded idea.
func randomSignals(r *rand.Rand, ideaID uuid.UUID, keyword string) []*models.IdeaCommunitySignal {
	signals := make([]*models.IdeaCommunitySignal, 0, len(seedPlatforms))
	for _, platform := range seedPlatforms {
		members := r.IntN(100000) + 1000
		engagement := float64(r.IntN(10) + 1)
		strength := r.IntN(10) + 1
		url := fmt.Sprintf("https://%s.com/r/%s", platform, keyword)
		signals = append(signals, &models.IdeaCommunitySignal{
			IdeaID:          ideaID,
			Platform:        platform,
			CommunityName:   fmt.Sprintf("%s%d", keyword, r.IntN(100)),
			MemberCount:     &members,
			EngagementScore: &engagement,
			SignalStrength:  &strength,
			SourceURL:       &url,
		})
	}
	return signals
}
