package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/upstart-engine/pkg/apperrors"
	"github.com/ekaya-inc/upstart-engine/pkg/database"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// AnalysisRepository defines the interface for analysis data access.
// Analyses are immutable: there is no update.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	// GetLatest returns the newest analysis of an idea, or apperrors.ErrNotFound.
	GetLatest(ctx context.Context, ideaID uuid.UUID) (*models.Analysis, error)
	// GetLatestSince is GetLatest restricted to analyses created at or after since.
	GetLatestSince(ctx context.Context, ideaID uuid.UUID, since time.Time) (*models.Analysis, error)
	// ListByIdea returns every analysis of an idea, newest first.
	ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.Analysis, error)
}

type analysisRepository struct{}

// NewAnalysisRepository creates a new analysis repository.
func NewAnalysisRepository() AnalysisRepository {
	return &analysisRepository{}
}

var _ AnalysisRepository = (*analysisRepository)(nil)

const analysisColumns = `id, idea_id, opportunity_score, problem_score, feasibility_score, timing_score,
	revenue_range, execution_difficulty, market_size, competition_level, analysis_data, created_at`

func (r *analysisRepository) Create(ctx context.Context, a *models.Analysis) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CompetitionLevel == "" {
		a.CompetitionLevel = string(models.CompetitionMedium)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	data, err := json.Marshal(a.AnalysisData)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis data: %w", err)
	}

	query := `
		INSERT INTO analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = scope.Conn.Exec(ctx, query,
		a.ID,
		a.IdeaID,
		a.OpportunityScore,
		a.ProblemScore,
		a.FeasibilityScore,
		a.TimingScore,
		a.RevenueRange,
		a.ExecutionDifficulty,
		a.MarketSize,
		a.CompetitionLevel,
		data,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

func (r *analysisRepository) GetLatest(ctx context.Context, ideaID uuid.UUID) (*models.Analysis, error) {
	return r.getLatest(ctx, ideaID, time.Time{})
}

func (r *analysisRepository) GetLatestSince(ctx context.Context, ideaID uuid.UUID, since time.Time) (*models.Analysis, error) {
	return r.getLatest(ctx, ideaID, since)
}

func (r *analysisRepository) getLatest(ctx context.Context, ideaID uuid.UUID, since time.Time) (*models.Analysis, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE idea_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1`

	a, err := scanAnalysis(scope.Conn.QueryRow(ctx, query, ideaID, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest analysis: %w", err)
	}
	return a, nil
}

func (r *analysisRepository) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.Analysis, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE idea_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, ideaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	analyses := []*models.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return analyses, nil
}

func scanAnalysis(row pgx.Row) (*models.Analysis, error) {
	var a models.Analysis
	var data []byte
	err := row.Scan(
		&a.ID,
		&a.IdeaID,
		&a.OpportunityScore,
		&a.ProblemScore,
		&a.FeasibilityScore,
		&a.TimingScore,
		&a.RevenueRange,
		&a.ExecutionDifficulty,
		&a.MarketSize,
		&a.CompetitionLevel,
		&data,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalAnalysisData(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func unmarshalAnalysisData(data []byte, a *models.Analysis) error {
	if len(data) == 0 {
		return nil
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to unmarshal analysis data: %w", err)
	}
	a.AnalysisData = &result
	return nil
}

// nullableAnalysis receives the LEFT JOIN columns of an idea's latest analysis.
type nullableAnalysis struct {
	ID                  *uuid.UUID
	OpportunityScore    *int
	ProblemScore        *int
	FeasibilityScore    *int
	TimingScore         *int
	RevenueRange        *string
	ExecutionDifficulty *int
	MarketSize          *string
	CompetitionLevel    *string
	Data                []byte
	CreatedAt           *time.Time
}

// toAnalysis returns nil when the idea had no analysis.
func (n *nullableAnalysis) toAnalysis(ideaID uuid.UUID) (*models.Analysis, error) {
	if n.ID == nil {
		return nil, nil
	}
	a := &models.Analysis{
		ID:                  *n.ID,
		IdeaID:              ideaID,
		OpportunityScore:    deref(n.OpportunityScore),
		ProblemScore:        deref(n.ProblemScore),
		FeasibilityScore:    deref(n.FeasibilityScore),
		TimingScore:         deref(n.TimingScore),
		RevenueRange:        deref(n.RevenueRange),
		ExecutionDifficulty: deref(n.ExecutionDifficulty),
		MarketSize:          n.MarketSize,
		CompetitionLevel:    deref(n.CompetitionLevel),
		CreatedAt:           deref(n.CreatedAt),
	}
	if err := unmarshalAnalysisData(n.Data, a); err != nil {
		return nil, err
	}
	return a, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
