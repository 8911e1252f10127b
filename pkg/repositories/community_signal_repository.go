package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/upstart-engine/pkg/database"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// CommunitySignalRepository stores community references authored against an idea.
type CommunitySignalRepository interface {
	Create(ctx context.Context, signal *models.IdeaCommunitySignal) error
	ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.IdeaCommunitySignal, error)
}

type communitySignalRepository struct{}

// NewCommunitySignalRepository creates a new authored signal repository.
func NewCommunitySignalRepository() CommunitySignalRepository {
	return &communitySignalRepository{}
}

var _ CommunitySignalRepository = (*communitySignalRepository)(nil)

func (r *communitySignalRepository) Create(ctx context.Context, s *models.IdeaCommunitySignal) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()

	query := `
		INSERT INTO idea_community_signals (id, idea_id, platform, community_name, member_count,
			engagement_score, signal_strength, source_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Conn.Exec(ctx, query,
		s.ID,
		s.IdeaID,
		s.Platform,
		s.CommunityName,
		s.MemberCount,
		s.EngagementScore,
		s.SignalStrength,
		s.SourceURL,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create community signal: %w", err)
	}
	return nil
}

func (r *communitySignalRepository) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.IdeaCommunitySignal, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, idea_id, platform, community_name, member_count, engagement_score,
			signal_strength, source_url, created_at
		FROM idea_community_signals
		WHERE idea_id = $1
		ORDER BY created_at ASC`

	rows, err := scope.Conn.Query(ctx, query, ideaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list community signals: %w", err)
	}
	defer rows.Close()

	signals := []*models.IdeaCommunitySignal{}
	for rows.Next() {
		s, err := scanCommunitySignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community signal: %w", err)
		}
		signals = append(signals, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate community signals: %w", err)
	}
	return signals, nil
}

func scanCommunitySignal(row pgx.Row) (*models.IdeaCommunitySignal, error) {
	var s models.IdeaCommunitySignal
	err := row.Scan(
		&s.ID,
		&s.IdeaID,
		&s.Platform,
		&s.CommunityName,
		&s.MemberCount,
		&s.EngagementScore,
		&s.SignalStrength,
		&s.SourceURL,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
