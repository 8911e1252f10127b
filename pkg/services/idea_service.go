package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/apperrors"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
	"github.com/ekaya-inc/upstart-engine/pkg/repositories"
)

// Listing bounds.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreateIdeaInput is a new idea submission. UserID is optional; without it
// the idea is owned by the demo user.
type CreateIdeaInput struct {
	Title        string
	Description  string
	Problem      *string
	Solution     *string
	TargetMarket *string
	RevenueModel *string
	UserID       *uuid.UUID
}

// IdeaService provides idea CRUD and the display fields derived from analyses.
type IdeaService interface {
	// List returns one page of ideas, newest first. Out-of-range page and
	// limit values are clamped.
	List(ctx context.Context, page, limit int) (*models.IdeaPage, error)

	// Create stores a new draft idea.
	Create(ctx context.Context, input *CreateIdeaInput) (*models.Idea, error)

	// Get returns the idea with its owner and every related record.
	Get(ctx context.Context, id uuid.UUID) (*models.IdeaDetail, error)

	// Update applies a partial update. Absent fields are left unchanged.
	Update(ctx context.Context, id uuid.UUID, update *models.IdeaUpdate) (*models.Idea, error)

	// Delete removes the idea and everything attached to it.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddCommunitySignal attaches an authored community reference to an idea.
	AddCommunitySignal(ctx context.Context, ideaID uuid.UUID, signal *models.IdeaCommunitySignal) error
}

type ideaService struct {
	ideaRepo     repositories.IdeaRepository
	userRepo     repositories.UserRepository
	analysisRepo repositories.AnalysisRepository
	keywordRepo  repositories.KeywordRepository
	signalRepo   repositories.CommunitySignalRepository
	logger       *zap.Logger
}

// NewIdeaService creates a new IdeaService.
func NewIdeaService(
	ideaRepo repositories.IdeaRepository,
	userRepo repositories.UserRepository,
	analysisRepo repositories.AnalysisRepository,
	keywordRepo repositories.KeywordRepository,
	signalRepo repositories.CommunitySignalRepository,
	logger *zap.Logger,
) IdeaService {
	return &ideaService{
		ideaRepo:     ideaRepo,
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
		keywordRepo:  keywordRepo,
		signalRepo:   signalRepo,
		logger:       logger.Named("ideas"),
	}
}

var _ IdeaService = (*ideaService)(nil)

// NormalizePage clamps listing parameters to their allowed ranges.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (s *ideaService) List(ctx context.Context, page, limit int) (*models.IdeaPage, error) {
	page, limit = NormalizePage(page, limit)

	summaries, err := s.ideaRepo.ListSummaries(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	total, err := s.ideaRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count ideas: %w", err)
	}

	for _, summary := range summaries {
		DecorateSummary(summary)
	}

	return &models.IdeaPage{
		Ideas:      summaries,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// DecorateSummary fills the revenue estimate and scores from the latest analysis.
func DecorateSummary(summary *models.IdeaSummary) {
	summary.RevenueEstimate = EstimateRevenue(summary.LatestAnalysis, summary.TargetMarket, summary.RevenueModel)
	summary.Scores = models.ScoresFromAnalysis(summary.LatestAnalysis)
}

func (s *ideaService) Create(ctx context.Context, input *CreateIdeaInput) (*models.Idea, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.Invalid("Title and description are required")
	}

	owner, err := s.resolveOwner(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	idea := &models.Idea{
		Title:        input.Title,
		Description:  input.Description,
		Problem:      input.Problem,
		Solution:     input.Solution,
		TargetMarket: input.TargetMarket,
		RevenueModel: input.RevenueModel,
		Status:       models.IdeaStatusDraft,
		UserID:       owner,
	}
	if err := s.ideaRepo.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}

	s.logger.Info("Created idea",
		zap.String("idea_id", idea.ID.String()),
		zap.String("user_id", owner.String()))
	return idea, nil
}

func (s *ideaService) resolveOwner(ctx context.Context, userID *uuid.UUID) (uuid.UUID, error) {
	if userID != nil {
		user, err := s.userRepo.GetByID(ctx, *userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return uuid.Nil, apperrors.Invalid("User not found")
			}
			return uuid.Nil, fmt.Errorf("failed to get user: %w", err)
		}
		return user.ID, nil
	}

	name := models.DemoUserName
	demo, err := s.userRepo.EnsureByEmail(ctx, models.DemoUserEmail, &name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to provision demo user: %w", err)
	}
	return demo.ID, nil
}

func (s *ideaService) Get(ctx context.Context, id uuid.UUID) (*models.IdeaDetail, error) {
	idea, err := s.ideaRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, idea.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get idea owner: %w", err)
	}
	analyses, err := s.analysisRepo.ListByIdea(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	keywords, err := s.keywordRepo.ListByIdea(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	signals, err := s.signalRepo.ListByIdea(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list community signals: %w", err)
	}

	var latest *models.Analysis
	if len(analyses) > 0 {
		latest = analyses[0]
	}

	return &models.IdeaDetail{
		Idea:             idea,
		User:             &models.UserSummary{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		Analyses:         analyses,
		Keywords:         keywords,
		CommunitySignals: signals,
		RevenueEstimate:  EstimateRevenue(latest, idea.TargetMarket, idea.RevenueModel),
		Scores:           models.ScoresFromAnalysis(latest),
	}, nil
}

func (s *ideaService) Update(ctx context.Context, id uuid.UUID, update *models.IdeaUpdate) (*models.Idea, error) {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, apperrors.Invalid("Title cannot be empty")
	}
	if update.Description != nil && strings.TrimSpace(*update.Description) == "" {
		return nil, apperrors.Invalid("Description cannot be empty")
	}
	if update.Status != nil && !update.Status.IsValid() {
		return nil, apperrors.Invalid("Invalid status %q", *update.Status)
	}

	idea, err := s.ideaRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return idea, nil
	}

	update.Apply(idea)
	if err := s.ideaRepo.Update(ctx, idea); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update idea: %w", err)
	}
	return idea, nil
}

func (s *ideaService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.ideaRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	s.logger.Info("Deleted idea", zap.String("idea_id", id.String()))
	return nil
}

func (s *ideaService) AddCommunitySignal(ctx context.Context, ideaID uuid.UUID, signal *models.IdeaCommunitySignal) error {
	if strings.TrimSpace(signal.Platform) == "" || strings.TrimSpace(signal.CommunityName) == "" {
		return apperrors.Invalid("Platform and community name are required")
	}
	if _, err := s.ideaRepo.Get(ctx, ideaID); err != nil {
		return err
	}

	signal.IdeaID = ideaID
	if err := s.signalRepo.Create(ctx, signal); err != nil {
		return fmt.Errorf("failed to add community signal: %w", err)
	}
	return nil
}
