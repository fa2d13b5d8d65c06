package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgStoryRepository creates a PostgreSQL-backed StoryRepository. It takes
// the pool rather than DBTX because story creation opens its own
// transaction.
func NewPgStoryRepository(pool *pgxpool.Pool, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		pool:   pool,
		logger: logger.Named("PgStoryRepo"),
	}
}

const createStoryQuery = `
INSERT INTO stories (id, title, author_id, created_at, last_updated)
VALUES ($1, $2, $3, $4, $5)`

const getStoryByIDQuery = `
SELECT id, title, author_id, created_at, last_updated
FROM stories
WHERE id = $1`

const listStoriesQuery = `
SELECT id, title, author_id, created_at, last_updated
FROM stories
ORDER BY last_updated DESC
LIMIT $1`

const touchStoryQuery = `
UPDATE stories
SET last_updated = $2
WHERE id = $1`

// CreateWithFirstChapter inserts the story and its opening chapter in a
// single transaction, so a story can never exist without an ordinal-1 root.
func (r *pgStoryRepository) CreateWithFirstChapter(ctx context.Context, story *models.Story, first *models.Chapter) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	now := time.Now()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	if story.LastUpdated.IsZero() {
		story.LastUpdated = now
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin story creation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createStoryQuery,
		story.ID, story.Title, story.AuthorID, story.CreatedAt, story.LastUpdated); err != nil {
		r.logger.Error("Failed to create story", zap.Error(err), zap.String("title", story.Title))
		return fmt.Errorf("failed to create story: %w", err)
	}

	first.StoryID = story.ID
	first.Ordinal = 1
	first.PreviousChapterID = nil
	chapterRepo := NewPgChapterRepository(tx, r.logger)
	if err := chapterRepo.Create(ctx, first); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit story creation: %w", err)
	}
	r.logger.Info("Story created",
		zap.String("storyID", story.ID.String()),
		zap.String("firstChapterID", first.ID.String()))
	return nil
}

// GetByID retrieves a story by its primary key.
func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	var story models.Story
	err := pgxscan.Get(ctx, r.pool, &story, getStoryByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story", zap.Error(err), zap.String("storyID", id.String()))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return &story, nil
}

// List returns stories ordered by recent activity.
func (r *pgStoryRepository) List(ctx context.Context, limit int) ([]models.Story, error) {
	if limit <= 0 {
		limit = 50
	}
	var stories []models.Story
	if err := pgxscan.Select(ctx, r.pool, &stories, listStoriesQuery, limit); err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

// TouchLastUpdated advances the story's last_updated stamp.
func (r *pgStoryRepository) TouchLastUpdated(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, touchStoryQuery, id, at)
	if err != nil {
		r.logger.Error("Failed to touch story", zap.Error(err), zap.String("storyID", id.String()))
		return fmt.Errorf("failed to touch story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
