package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ekaya-inc/upstart-engine/pkg/apperrors"
	"github.com/ekaya-inc/upstart-engine/pkg/llm"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/prompts"
	"github.com/ekaya-inc/upstart-engine/pkg/repositories"
)

const (
	analysisMaxTokens = 4000
	keywordMaxTokens  = 200
)

// AnalysisStage names the step at which a model reply was rejected.
type AnalysisStage string

const (
	StageExtract  AnalysisStage = "extract"
	StageDecode   AnalysisStage = "decode"
	StageValidate AnalysisStage = "validate"
)

// AnalysisError reports a model reply that could not become an analysis.
type AnalysisError struct {
	Stage   AnalysisStage
	Missing []string // validation problems, set for StageValidate
	Cause   error
}

func (e *AnalysisError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("analysis %s failed: %s", e.Stage, strings.Join(e.Missing, "; "))
	case e.Cause != nil:
		return fmt.Sprintf("analysis %s failed: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("analysis %s failed", e.Stage)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// ParseAnalysis extracts the JSON object from a model reply, decodes it with
// strict types and checks that every section is present and every score is in range.
func ParseAnalysis(content string) (*models.AnalysisResult, error) {
	raw, err := llm.ExtractJSONObject(content)
	if err != nil {
		return nil, &AnalysisError{Stage: StageExtract, Cause: err}
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &AnalysisError{Stage: StageDecode, Cause: err}
	}

	if problems := result.Problems(); len(problems) > 0 {
		return nil, &AnalysisError{Stage: StageValidate, Missing: problems}
	}
	return &result, nil
}

// AnalysisOutcome is an analysis and whether it came from the cache window.
type AnalysisOutcome struct {
	Analysis *models.Analysis
	Cached   bool
}

// BatchItem is the result for one idea of a batch run.
type BatchItem struct {
	IdeaID uuid.UUID `json:"ideaId"`
	Title  string    `json:"title"`
	Score  int       `json:"opportunityScore,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// BatchReport summarizes a batch analysis run.
type BatchReport struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// AnalysisService runs and caches LLM analyses of ideas.
type AnalysisService interface {
	// Analyze returns a fresh analysis, or the latest one if it was created
	// within the cache window. Concurrent calls for one idea share a single
	// model request.
	Analyze(ctx context.Context, ideaID uuid.UUID) (*AnalysisOutcome, error)

	// GetLatest returns the newest analysis of an idea.
	GetLatest(ctx context.Context, ideaID uuid.UUID) (*models.Analysis, error)

	// BatchAnalyze analyzes up to limit never-analyzed ideas, oldest first,
	// waiting delay between items. Per-idea failures are recorded, not returned.
	BatchAnalyze(ctx context.Context, limit int, delay time.Duration) (*BatchReport, error)

	// ExtractKeywords asks the model for an idea's keywords and stores them.
	ExtractKeywords(ctx context.Context, ideaID uuid.UUID) ([]*models.Keyword, error)
}

// AnalysisServiceConfig tunes the analysis service.
type AnalysisServiceConfig struct {
	CacheWindow time.Duration
	Temperature float64
	Now         func() time.Time // defaults to time.Now
}

type analysisService struct {
	ideaRepo     repositories.IdeaRepository
	analysisRepo repositories.AnalysisRepository
	keywordRepo  repositories.KeywordRepository
	signalRepo   repositories.CommunitySignalRepository
	llmClient    llm.LLMClient
	config       AnalysisServiceConfig
	flights      singleflight.Group
	sleep        func(ctx context.Context, d time.Duration) error
	logger       *zap.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	ideaRepo repositories.IdeaRepository,
	analysisRepo repositories.AnalysisRepository,
	keywordRepo repositories.KeywordRepository,
	signalRepo repositories.CommunitySignalRepository,
	llmClient llm.LLMClient,
	config AnalysisServiceConfig,
	logger *zap.Logger,
) AnalysisService {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &analysisService{
		ideaRepo:     ideaRepo,
		analysisRepo: analysisRepo,
		keywordRepo:  keywordRepo,
		signalRepo:   signalRepo,
		llmClient:    llmClient,
		config:       config,
		sleep:        sleepContext,
		logger:       logger.Named("analysis"),
	}
}

var _ AnalysisService = (*analysisService)(nil)

func (s *analysisService) Analyze(ctx context.Context, ideaID uuid.UUID) (*AnalysisOutcome, error) {
	idea, err := s.ideaRepo.Get(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	cached, err := s.cachedAnalysis(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		s.logger.Debug("Returning cached analysis", zap.String("idea_id", ideaID.String()))
		return &AnalysisOutcome{Analysis: cached, Cached: true}, nil
	}

	v, err, shared := s.flights.Do(ideaID.String(), func() (any, error) {
		return s.analyze(ctx, idea)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Shared in-flight analysis", zap.String("idea_id", ideaID.String()))
	}
	return &AnalysisOutcome{Analysis: v.(*models.Analysis)}, nil
}

func (s *analysisService) cachedAnalysis(ctx context.Context, ideaID uuid.UUID) (*models.Analysis, error) {
	if s.config.CacheWindow <= 0 {
		return nil, nil
	}
	since := s.config.Now().Add(-s.config.CacheWindow)
	a, err := s.analysisRepo.GetLatestSince(ctx, ideaID, since)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check cached analysis: %w", err)
	}
	return a, nil
}

// analyze calls the model and persists the result. Nothing is stored on failure.
func (s *analysisService) analyze(ctx context.Context, idea *models.Idea) (*models.Analysis, error) {
	input, err := s.promptInput(ctx, idea)
	if err != nil {
		return nil, err
	}

	start := s.config.Now()
	resp, err := s.llmClient.GenerateResponse(ctx, prompts.BuildAnalysisPrompt(input), llm.GenerateOptions{
		Temperature: llm.Temperature(s.config.Temperature),
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis: %w", err)
	}

	result, err := ParseAnalysis(resp.Content)
	if err != nil {
		s.logger.Warn("Rejected analysis response",
			zap.String("idea_id", idea.ID.String()),
			zap.Error(err))
		return nil, err
	}

	core := result.CoreScoring
	analysis := &models.Analysis{
		IdeaID:              idea.ID,
		OpportunityScore:    core.Opportunity.Score,
		ProblemScore:        core.Problem.Score,
		FeasibilityScore:    core.Feasibility.Score,
		TimingScore:         core.WhyNow.Score,
		RevenueRange:        result.RevenueRange(),
		ExecutionDifficulty: result.BusinessFit.ExecutionDifficulty.Score,
		CompetitionLevel:    string(models.CompetitionMedium),
		AnalysisData:        result,
		CreatedAt:           s.config.Now(),
	}
	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	s.logger.Info("Analyzed idea",
		zap.String("idea_id", idea.ID.String()),
		zap.Int("opportunity_score", analysis.OpportunityScore),
		zap.Int("total_tokens", resp.TotalTokens),
		zap.Duration("elapsed", s.config.Now().Sub(start)))
	return analysis, nil
}

func (s *analysisService) promptInput(ctx context.Context, idea *models.Idea) (prompts.AnalysisInput, error) {
	keywords, err := s.keywordRepo.ListByIdea(ctx, idea.ID)
	if err != nil {
		return prompts.AnalysisInput{}, fmt.Errorf("failed to list keywords: %w", err)
	}
	signals, err := s.signalRepo.ListByIdea(ctx, idea.ID)
	if err != nil {
		return prompts.AnalysisInput{}, fmt.Errorf("failed to list community signals: %w", err)
	}

	search := make([]prompts.SearchDatum, len(keywords))
	for i, k := range keywords {
		var competition *string
		if k.Competition != nil {
			c := string(*k.Competition)
			competition = &c
		}
		search[i] = prompts.SearchDatum{
			Keyword:      k.Keyword,
			SearchVolume: k.SearchVolume,
			Competition:  competition,
			GrowthRate:   k.GrowthRate,
		}
	}

	community := make([]prompts.CommunityDatum, len(signals))
	for i, c := range signals {
		community[i] = prompts.CommunityDatum{
			Platform:        c.Platform,
			CommunityName:   c.CommunityName,
			MemberCount:     c.MemberCount,
			EngagementScore: c.EngagementScore,
			SourceURL:       c.SourceURL,
		}
	}

	return prompts.AnalysisInput{
		Title:         idea.Title,
		Description:   idea.Description,
		Problem:       derefString(idea.Problem),
		Solution:      derefString(idea.Solution),
		TargetMarket:  derefString(idea.TargetMarket),
		RevenueModel:  derefString(idea.RevenueModel),
		SearchData:    search,
		CommunityData: community,
		MarketData:    []any{},
	}, nil
}

func (s *analysisService) GetLatest(ctx context.Context, ideaID uuid.UUID) (*models.Analysis, error) {
	return s.analysisRepo.GetLatest(ctx, ideaID)
}

func (s *analysisService) BatchAnalyze(ctx context.Context, limit int, delay time.Duration) (*BatchReport, error) {
	ideas, err := s.ideaRepo.ListWithoutAnalyses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unanalyzed ideas: %w", err)
	}

	s.logger.Info("Starting batch analysis", zap.Int("ideas", len(ideas)))

	report := &BatchReport{Items: []BatchItem{}}
	for i, idea := range ideas {
		if i > 0 {
			if err := s.sleep(ctx, delay); err != nil {
				s.logger.Info("Batch analysis interrupted", zap.Error(err))
				break
			}
		}

		item := BatchItem{IdeaID: idea.ID, Title: idea.Title}
		analysis, err := s.analyze(ctx, idea)
		if err != nil {
			item.Error = err.Error()
			report.Failed++
			s.logger.Error("Failed to analyze idea",
				zap.String("idea_id", idea.ID.String()),
				zap.Error(err))
		} else {
			item.Score = analysis.OpportunityScore
			report.Succeeded++
		}
		report.Items = append(report.Items, item)
	}

	s.logger.Info("Finished batch analysis",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *analysisService) ExtractKeywords(ctx context.Context, ideaID uuid.UUID) ([]*models.Keyword, error) {
	idea, err := s.ideaRepo.Get(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	resp, err := s.llmClient.GenerateResponse(ctx, prompts.BuildKeywordPrompt(idea.Description), llm.GenerateOptions{
		MaxTokens: keywordMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract keywords: %w", err)
	}

	keywords := []*models.Keyword{}
	var terms []string
	raw, err := llm.ExtractJSONArray(resp.Content)
	if err == nil {
		err = json.Unmarshal([]byte(raw), &terms)
	}
	if err != nil {
		s.logger.Warn("Keyword response held no JSON array",
			zap.String("idea_id", ideaID.String()),
			zap.Error(err))
		return keywords, nil
	}

	seen := map[string]bool{}
	for _, term := range terms {
		term = strings.TrimSpace(term)
		key := strings.ToLower(term)
		if term == "" || seen[key] {
			continue
		}
		seen[key] = true

		k := &models.Keyword{IdeaID: ideaID, Keyword: term}
		if err := s.keywordRepo.Create(ctx, k); err != nil {
			return nil, fmt.Errorf("failed to save keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	return keywords, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
