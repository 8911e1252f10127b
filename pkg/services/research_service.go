package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/llm"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/prompts"
)

const researchMaxTokens = 4000

// ResearchResult is a research report and whether it is the static fallback.
type ResearchResult struct {
	Report   *models.ResearchReport
	Fallback bool
}

// ResearchService produces market research for a free-text idea.
type ResearchService interface {
	// Research never fails: a model or parse failure yields the fallback report.
	Research(ctx context.Context, idea string) *ResearchResult
}

type researchService struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

// NewResearchService creates a new ResearchService.
func NewResearchService(llmClient llm.LLMClient, logger *zap.Logger) ResearchService {
	return &researchService{
		llmClient: llmClient,
		logger:    logger.Named("research"),
	}
}

var _ ResearchService = (*researchService)(nil)

func (s *researchService) Research(ctx context.Context, idea string) *ResearchResult {
	report, err := s.research(ctx, idea)
	if err != nil {
		s.logger.Warn("Falling back to default research report", zap.Error(err))
		return &ResearchResult{Report: fallbackResearchReport(), Fallback: true}
	}
	return &ResearchResult{Report: report}
}

func (s *researchService) research(ctx context.Context, idea string) (*models.ResearchReport, error) {
	resp, err := s.llmClient.GenerateResponse(ctx, prompts.BuildResearchPrompt(idea), llm.GenerateOptions{
		MaxTokens: researchMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSONObject(resp.Content)
	if err != nil {
		return nil, err
	}
	var report models.ResearchReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("failed to decode research report: %w", err)
	}
	return &report, nil
}

func fallbackResearchReport() *models.ResearchReport {
	return &models.ResearchReport{
		Title:            "Startup Idea Analysis",
		MarketSize:       "$1B+ addressable market",
		CompetitionLevel: "Medium",
		OpportunityScore: 6,
		FeasibilityScore: 7,
		KeyInsights: []string{
			"Market validation is crucial before building",
			"Consider starting with a smaller, focused market segment",
			"User acquisition will be a key challenge to address early",
		},
		TargetMarket: "Digital-first consumers and early adopters",
		RevenueModel: "Freemium model with premium subscriptions",
		TimeToMVP:    "4-6 months",
		EstimatedARR: "$100K - $1M ARR",
		KeyTrends: []string{
			"Growing demand for digital solutions",
			"Increased focus on user experience",
			"Mobile-first approach becoming essential",
		},
		CompetitorAnalysis: []models.Competitor{
			{
				Name:        "Generic Competitor A",
				Description: "Established player with broad market presence",
				Weakness:    "Limited focus on user experience and modern interface",
			},
			{
				Name:        "Startup Competitor B",
				Description: "Newer entrant with similar approach",
				Weakness:    "Lacks market penetration and brand recognition",
			},
		},
		Risks: []string{
			"Market saturation with similar solutions",
			"User acquisition costs may be high",
			"Technology development complexity",
		},
		NextSteps: []string{
			"Conduct customer interviews to validate the problem",
			"Build a simple landing page to test interest",
			"Create a minimum viable prototype",
			"Develop a go-to-market strategy",
		},
	}
}
