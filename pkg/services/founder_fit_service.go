package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/llm"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/prompts"
)

const (
	founderFitMaxTokens = 4000
	sessionSuffixLength = 9
	base36Alphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// FounderFitResult is the personalized idea set for one quiz session.
type FounderFitResult struct {
	SessionID string                    `json:"sessionId"`
	Ideas     []models.PersonalizedIdea `json:"ideas"`
	Fallback  bool                      `json:"fallback"`
}

// FounderFitService turns founder quiz answers into tailored ideas.
type FounderFitService interface {
	// Generate never fails: a model or parse failure yields the fallback idea.
	Generate(ctx context.Context, answers map[string][]string) *FounderFitResult
}

type founderFitService struct {
	llmClient llm.LLMClient
	now       func() time.Time
	logger    *zap.Logger
}

// NewFounderFitService creates a new FounderFitService.
func NewFounderFitService(llmClient llm.LLMClient, logger *zap.Logger) FounderFitService {
	return &founderFitService{
		llmClient: llmClient,
		now:       time.Now,
		logger:    logger.Named("founder-fit"),
	}
}

var _ FounderFitService = (*founderFitService)(nil)

func (s *founderFitService) Generate(ctx context.Context, answers map[string][]string) *FounderFitResult {
	result := &FounderFitResult{SessionID: NewSessionID(s.now())}

	ideas, err := s.generate(ctx, answers)
	if err != nil {
		s.logger.Warn("Falling back to default founder-fit idea", zap.Error(err))
		result.Ideas = fallbackPersonalizedIdeas()
		result.Fallback = true
		return result
	}
	result.Ideas = ideas
	return result
}

func (s *founderFitService) generate(ctx context.Context, answers map[string][]string) ([]models.PersonalizedIdea, error) {
	resp, err := s.llmClient.GenerateResponse(ctx, prompts.BuildFounderFitPrompt(answers), llm.GenerateOptions{
		MaxTokens: founderFitMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSONArray(resp.Content)
	if err != nil {
		return nil, err
	}
	var ideas []models.PersonalizedIdea
	if err := json.Unmarshal([]byte(raw), &ideas); err != nil {
		return nil, fmt.Errorf("failed to decode personalized ideas: %w", err)
	}
	if len(ideas) == 0 {
		return nil, fmt.Errorf("model returned no ideas")
	}
	return ideas, nil
}

// NewSessionID returns session_{unixMillis}_{9 random base36 characters}.
func NewSessionID(now time.Time) string {
	suffix := make([]byte, sessionSuffixLength)
	for i := range suffix {
		suffix[i] = base36Alphabet[rand.IntN(len(base36Alphabet))]
	}
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

func fallbackPersonalizedIdeas() []models.PersonalizedIdea {
	return []models.PersonalizedIdea{{
		Title:             "AI-Powered Code Review Assistant",
		Problem:           "Manual code reviews are time-consuming and often miss critical issues",
		Solution:          "AI assistant that automatically reviews code commits and provides feedback",
		FounderFit:        "Matches your technical background and interest in solving developer problems",
		TargetMarket:      "Software development teams",
		RevenueModel:      "SaaS subscription per developer",
		TimeToMVP:         "3-6 months",
		InitialInvestment: "$10K - $50K",
		KeySuccessFactors: []string{
			"Integration with popular version control systems",
			"High accuracy in issue detection",
			"Developer adoption",
		},
		EstimatedARR: "$100K - $1M ARR",
	}}
}
