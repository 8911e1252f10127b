package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/upstart-engine/pkg/apperrors"
	"github.com/ekaya-inc/upstart-engine/pkg/database"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// IdeaRepository defines the interface for idea data access.
type IdeaRepository interface {
	Create(ctx context.Context, idea *models.Idea) error
	Get(ctx context.Context, id uuid.UUID) (*models.Idea, error)
	// ListSummaries returns ideas newest first, each with its owner, counts and
	// latest analysis. A limit of 0 returns every idea.
	ListSummaries(ctx context.Context, limit, offset int) ([]*models.IdeaSummary, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, idea *models.Idea) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListWithoutAnalyses returns up to limit ideas that have never been analyzed, oldest first.
	ListWithoutAnalyses(ctx context.Context, limit int) ([]*models.Idea, error)
}

type ideaRepository struct{}

// NewIdeaRepository creates a new idea repository.
func NewIdeaRepository() IdeaRepository {
	return &ideaRepository{}
}

var _ IdeaRepository = (*ideaRepository)(nil)

const ideaColumns = `i.id, i.title, i.description, i.problem, i.solution, i.target_market,
	i.revenue_model, i.status, i.user_id, i.created_at, i.updated_at`

func (r *ideaRepository) Create(ctx context.Context, idea *models.Idea) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if idea.ID == uuid.Nil {
		idea.ID = uuid.New()
	}
	if idea.Status == "" {
		idea.Status = models.IdeaStatusDraft
	}
	now := time.Now()
	idea.CreatedAt = now
	idea.UpdatedAt = now

	query := `
		INSERT INTO ideas (id, title, description, problem, solution, target_market,
			revenue_model, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := scope.Conn.Exec(ctx, query,
		idea.ID,
		idea.Title,
		idea.Description,
		idea.Problem,
		idea.Solution,
		idea.TargetMarket,
		idea.RevenueModel,
		idea.Status,
		idea.UserID,
		idea.CreatedAt,
		idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}
	return nil
}

func (r *ideaRepository) Get(ctx context.Context, id uuid.UUID) (*models.Idea, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + ideaColumns + ` FROM ideas i WHERE i.id = $1`

	idea, err := scanIdea(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	return idea, nil
}

func (r *ideaRepository) ListSummaries(ctx context.Context, limit, offset int) ([]*models.IdeaSummary, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}

	query := `
		SELECT ` + ideaColumns + `,
			u.id, u.name, u.email,
			(SELECT COUNT(*) FROM analyses a WHERE a.idea_id = i.id),
			(SELECT COUNT(*) FROM keywords k WHERE k.idea_id = i.id),
			(SELECT COUNT(*) FROM idea_community_signals s WHERE s.idea_id = i.id),
			la.id, la.opportunity_score, la.problem_score, la.feasibility_score, la.timing_score,
			la.revenue_range, la.execution_difficulty, la.market_size, la.competition_level,
			la.analysis_data, la.created_at
		FROM ideas i
		JOIN users u ON u.id = i.user_id
		LEFT JOIN LATERAL (
			SELECT * FROM analyses a
			WHERE a.idea_id = i.id
			ORDER BY a.created_at DESC
			LIMIT 1
		) la ON true
		ORDER BY i.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := scope.Conn.Query(ctx, query, limitArg, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	summaries := []*models.IdeaSummary{}
	for rows.Next() {
		s, err := scanIdeaSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return summaries, nil
}

func (r *ideaRepository) Count(ctx context.Context) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	var n int
	if err := scope.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM ideas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ideas: %w", err)
	}
	return n, nil
}

func (r *ideaRepository) Update(ctx context.Context, idea *models.Idea) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	idea.UpdatedAt = time.Now()

	query := `
		UPDATE ideas
		SET title = $2, description = $3, problem = $4, solution = $5,
			target_market = $6, revenue_model = $7, status = $8, updated_at = $9
		WHERE id = $1`

	tag, err := scope.Conn.Exec(ctx, query,
		idea.ID,
		idea.Title,
		idea.Description,
		idea.Problem,
		idea.Solution,
		idea.TargetMarket,
		idea.RevenueModel,
		idea.Status,
		idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes the idea. Keywords, authored signals and analyses go with it.
func (r *ideaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ideaRepository) ListWithoutAnalyses(ctx context.Context, limit int) ([]*models.Idea, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT ` + ideaColumns + `
		FROM ideas i
		WHERE NOT EXISTS (SELECT 1 FROM analyses a WHERE a.idea_id = i.id)
		ORDER BY i.created_at ASC
		LIMIT $1`

	rows, err := scope.Conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unanalyzed ideas: %w", err)
	}
	defer rows.Close()

	ideas := []*models.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return ideas, nil
}

func scanIdea(row pgx.Row) (*models.Idea, error) {
	var idea models.Idea
	err := row.Scan(
		&idea.ID,
		&idea.Title,
		&idea.Description,
		&idea.Problem,
		&idea.Solution,
		&idea.TargetMarket,
		&idea.RevenueModel,
		&idea.Status,
		&idea.UserID,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

func scanIdeaSummary(row pgx.Row) (*models.IdeaSummary, error) {
	var idea models.Idea
	var user models.UserSummary
	var counts models.IdeaCounts
	var la nullableAnalysis

	err := row.Scan(
		&idea.ID,
		&idea.Title,
		&idea.Description,
		&idea.Problem,
		&idea.Solution,
		&idea.TargetMarket,
		&idea.RevenueModel,
		&idea.Status,
		&idea.UserID,
		&idea.CreatedAt,
		&idea.UpdatedAt,
		&user.ID,
		&user.Name,
		&user.Email,
		&counts.Analyses,
		&counts.Keywords,
		&counts.CommunitySignals,
		&la.ID,
		&la.OpportunityScore,
		&la.ProblemScore,
		&la.FeasibilityScore,
		&la.TimingScore,
		&la.RevenueRange,
		&la.ExecutionDifficulty,
		&la.MarketSize,
		&la.CompetitionLevel,
		&la.Data,
		&la.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan idea summary: %w", err)
	}

	latest, err := la.toAnalysis(idea.ID)
	if err != nil {
		return nil, err
	}

	return &models.IdeaSummary{
		Idea:           &idea,
		User:           &user,
		LatestAnalysis: latest,
		Counts:         counts,
	}, nil
}
