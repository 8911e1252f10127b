package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/llm"
	"github.com/ekaya-inc/upstart-engine/pkg/matching"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/prompts"
	"github.com/ekaya-inc/upstart-engine/pkg/repositories"
	"github.com/ekaya-inc/upstart-engine/pkg/signals"
)

// DefaultSignalKeywords are collected when a request names none.
var DefaultSignalKeywords = []string{"startup", "business", "SaaS", "productivity"}

// DiscoveryKeywords are collected to find evidence for every stored idea.
var DiscoveryKeywords = []string{
	"startup", "business", "SaaS", "productivity", "AI", "automation",
	"finance", "healthcare", "education", "e-commerce", "sustainability",
	"fitness", "mental health", "remote work", "development tools",
}

const (
	collectLimit        = 50
	investigateLimit    = 20
	topProblemLimit     = 10
	ideaSignalMinimum   = 6
	ideaSignalLimit     = 10
	evidencePerIdea     = 3
	signalIdeasMaxToken = 2000
)

// SignalListing is the response of a plain signal collection.
type SignalListing struct {
	Signals     []models.CommunitySignal `json:"signals"`
	TotalCount  int                      `json:"totalCount"`
	Platforms   []models.Platform        `json:"platforms"`
	LastUpdated time.Time                `json:"lastUpdated"`
	Sources     []signals.Report         `json:"sources"`
}

// SignalAnalysis summarizes an investigated signal set.
type SignalAnalysis struct {
	TotalSignals  int                        `json:"totalSignals"`
	StrongSignals int                        `json:"strongSignals"`
	Platforms     []models.Platform          `json:"platforms"`
	TopProblems   []signals.ProblemCount     `json:"topProblems"`
	Sentiment     signals.SentimentBreakdown `json:"sentiment"`
}

// Investigation is the response of a signal investigation.
type Investigation struct {
	Signals        []models.CommunitySignal `json:"signals"`
	GeneratedIdeas []models.SignalIdea      `json:"generatedIdeas"`
	Analysis       SignalAnalysis           `json:"analysis"`
}

// IdeaWithSignals is an idea summary plus its community evidence.
type IdeaWithSignals struct {
	*models.IdeaSummary
	matching.Summary
}

// IdeasWithSignals is every idea matched against a fresh signal collection.
type IdeasWithSignals struct {
	Ideas        []IdeaWithSignals `json:"ideas"`
	TotalSignals int               `json:"totalSignals"`
	LastUpdated  time.Time         `json:"lastUpdated"`
}

// SignalService collects community signals and relates them to ideas.
type SignalService interface {
	// Collect gathers signals for keywords, optionally for one platform only.
	Collect(ctx context.Context, keywords []string, platform string) *SignalListing

	// Investigate collects signals, summarizes them and optionally asks the
	// model for ideas. GeneratedIdeas is nil when not requested or on failure.
	Investigate(ctx context.Context, keywords []string, generateIdeas bool) *Investigation

	// IdeasWithSignals scores every stored idea against the discovery keywords' signals.
	IdeasWithSignals(ctx context.Context) (*IdeasWithSignals, error)
}

type signalService struct {
	aggregator *signals.Aggregator
	matcher    *matching.Matcher
	ideaRepo   repositories.IdeaRepository
	llmClient  llm.LLMClient
	now        func() time.Time
	logger     *zap.Logger
}

// NewSignalService creates a new SignalService.
func NewSignalService(
	aggregator *signals.Aggregator,
	matcher *matching.Matcher,
	ideaRepo repositories.IdeaRepository,
	llmClient llm.LLMClient,
	logger *zap.Logger,
) SignalService {
	return &signalService{
		aggregator: aggregator,
		matcher:    matcher,
		ideaRepo:   ideaRepo,
		llmClient:  llmClient,
		now:        time.Now,
		logger:     logger.Named("signals"),
	}
}

var _ SignalService = (*signalService)(nil)

func (s *signalService) Collect(ctx context.Context, keywords []string, platform string) *SignalListing {
	if len(keywords) == 0 {
		keywords = DefaultSignalKeywords
	}

	collection := s.aggregator.Collect(ctx, keywords)
	filtered := signals.FilterByPlatform(collection.Signals, platform)

	return &SignalListing{
		Signals:     signals.Head(filtered, collectLimit),
		TotalCount:  len(filtered),
		Platforms:   s.aggregator.Platforms(),
		LastUpdated: s.now().UTC(),
		Sources:     collection.Reports,
	}
}

func (s *signalService) Investigate(ctx context.Context, keywords []string, generateIdeas bool) *Investigation {
	collection := s.aggregator.Collect(ctx, keywords)
	all := collection.Signals

	problems := signals.TopProblems(all, topProblemLimit)
	out := &Investigation{
		Signals: signals.Head(all, investigateLimit),
		Analysis: SignalAnalysis{
			TotalSignals:  len(all),
			StrongSignals: signals.StrongSignals(all),
			Platforms:     signals.Platforms(all),
			TopProblems:   problems,
			Sentiment:     signals.SentimentDistribution(all),
		},
	}

	if generateIdeas {
		ideas, err := s.generateIdeas(ctx, problems, all)
		if err != nil {
			s.logger.Warn("Failed to generate ideas from signals", zap.Error(err))
		} else {
			out.GeneratedIdeas = ideas
		}
	}
	return out
}

func (s *signalService) generateIdeas(ctx context.Context, problems []signals.ProblemCount, all []models.CommunitySignal) ([]models.SignalIdea, error) {
	problemLines := make([]prompts.ProblemCount, len(problems))
	for i, p := range problems {
		problemLines[i] = prompts.ProblemCount{Problem: p.Problem, Count: p.Count}
	}

	strong := signals.AtLeast(all, ideaSignalMinimum, ideaSignalLimit)
	signalLines := make([]prompts.SignalLine, len(strong))
	for i, sig := range strong {
		signalLines[i] = prompts.SignalLine{
			Title:          sig.Title,
			Platform:       string(sig.Platform),
			SignalStrength: sig.SignalStrength,
		}
	}

	resp, err := s.llmClient.GenerateResponse(ctx, prompts.BuildSignalIdeasPrompt(problemLines, signalLines), llm.GenerateOptions{
		MaxTokens: signalIdeasMaxToken,
	})
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSONArray(resp.Content)
	if err != nil {
		return nil, err
	}
	var ideas []models.SignalIdea
	if err := json.Unmarshal([]byte(raw), &ideas); err != nil {
		return nil, fmt.Errorf("failed to decode generated ideas: %w", err)
	}
	return ideas, nil
}

func (s *signalService) IdeasWithSignals(ctx context.Context) (*IdeasWithSignals, error) {
	summaries, err := s.ideaRepo.ListSummaries(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	collection := s.aggregator.Collect(ctx, DiscoveryKeywords)

	out := &IdeasWithSignals{
		Ideas:        make([]IdeaWithSignals, len(summaries)),
		TotalSignals: len(collection.Signals),
		LastUpdated:  s.now().UTC(),
	}
	for i, summary := range summaries {
		DecorateSummary(summary)
		matches := s.matcher.Match(summary.Idea, collection.Signals)
		out.Ideas[i] = IdeaWithSignals{
			IdeaSummary: summary,
			Summary:     matching.Summarize(matches, evidencePerIdea),
		}
	}
	return out, nil
}
