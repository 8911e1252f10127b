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

// KeywordRepository defines the interface for keyword data access.
type KeywordRepository interface {
	Create(ctx context.Context, keyword *models.Keyword) error
	ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.Keyword, error)
}

type keywordRepository struct{}

// NewKeywordRepository creates a new keyword repository.
func NewKeywordRepository() KeywordRepository {
	return &keywordRepository{}
}

var _ KeywordRepository = (*keywordRepository)(nil)

func (r *keywordRepository) Create(ctx context.Context, k *models.Keyword) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	k.CreatedAt = time.Now()

	query := `
		INSERT INTO keywords (id, idea_id, keyword, search_volume, competition, growth_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		k.ID,
		k.IdeaID,
		k.Keyword,
		k.SearchVolume,
		k.Competition,
		k.GrowthRate,
		k.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create keyword: %w", err)
	}
	return nil
}

// ListByIdea returns the idea's keywords in insertion order.
func (r *keywordRepository) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]*models.Keyword, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, idea_id, keyword, search_volume, competition, growth_rate, created_at
		FROM keywords
		WHERE idea_id = $1
		ORDER BY created_at ASC, keyword ASC`

	rows, err := scope.Conn.Query(ctx, query, ideaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	keywords := []*models.Keyword{}
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keywords: %w", err)
	}
	return keywords, nil
}

func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var k models.Keyword
	err := row.Scan(&k.ID, &k.IdeaID, &k.Keyword, &k.SearchVolume, &k.Competition, &k.GrowthRate, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
