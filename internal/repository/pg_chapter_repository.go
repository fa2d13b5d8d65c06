package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ ChapterRepository = (*pgChapterRepository)(nil)

type pgChapterRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgChapterRepository creates a PostgreSQL-backed ChapterRepository.
func NewPgChapterRepository(db DBTX, logger *zap.Logger) ChapterRepository {
	return &pgChapterRepository{
		db:     db,
		logger: logger.Named("PgChapterRepo"),
	}
}

const chapterColumns = `id, story_id, author_id, ordinal, title, content, draft, submitted_for_review, score, feedback, previous_chapter_id, created_at, updated_at`

const createChapterQuery = `
INSERT INTO chapters (id, story_id, author_id, ordinal, title, content, draft, submitted_for_review, previous_chapter_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const getChapterByIDQuery = `
SELECT ` + chapterColumns + `
FROM chapters
WHERE id = $1`

const updateChapterContentQuery = `
UPDATE chapters
SET title = $2, content = $3, updated_at = $4
WHERE id = $1 AND draft = TRUE AND submitted_for_review = FALSE`

const markSubmittedQuery = `
UPDATE chapters
SET submitted_for_review = TRUE, updated_at = $2
WHERE id = $1 AND draft = TRUE AND submitted_for_review = FALSE`

const clearSubmittedQuery = `
UPDATE chapters
SET submitted_for_review = FALSE
WHERE id = $1`

const saveReviewOutcomeQuery = `
UPDATE chapters
SET score = $2, feedback = $3, draft = $4, submitted_for_review = FALSE, updated_at = $5
WHERE id = $1`

const listChildrenQuery = `
SELECT ` + chapterColumns + `
FROM chapters
WHERE previous_chapter_id = $1
ORDER BY created_at`

const listPublishedChildrenQuery = `
SELECT ` + chapterColumns + `
FROM chapters
WHERE previous_chapter_id = $1 AND draft = FALSE
ORDER BY created_at`

const getFirstChapterQuery = `
SELECT ` + chapterColumns + `
FROM chapters
WHERE story_id = $1 AND ordinal = 1
ORDER BY created_at
LIMIT 1`

// Create inserts a new chapter record.
func (r *pgChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	if chapter.ID == uuid.Nil {
		chapter.ID = uuid.New()
	}
	now := time.Now()
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = now
	}
	if chapter.UpdatedAt.IsZero() {
		chapter.UpdatedAt = now
	}

	_, err := r.db.Exec(ctx, createChapterQuery,
		chapter.ID,
		chapter.StoryID,
		chapter.AuthorID,
		chapter.Ordinal,
		chapter.Title,
		chapter.Content,
		chapter.Draft,
		chapter.SubmittedForReview,
		chapter.PreviousChapterID,
		chapter.CreatedAt,
		chapter.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create chapter", zap.Error(err), zap.String("storyID", chapter.StoryID.String()))
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	r.logger.Info("Chapter created", zap.String("chapterID", chapter.ID.String()), zap.Int("ordinal", chapter.Ordinal))
	return nil
}

// GetByID retrieves a chapter by its primary key.
func (r *pgChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error) {
	var chapter models.Chapter
	err := pgxscan.Get(ctx, r.db, &chapter, getChapterByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Chapter not found", zap.String("chapterID", id.String()))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get chapter", zap.Error(err), zap.String("chapterID", id.String()))
		return nil, fmt.Errorf("failed to get chapter %s: %w", id, err)
	}
	return &chapter, nil
}

// UpdateContent persists title/content edits for an editable draft.
func (r *pgChapterRepository) UpdateContent(ctx context.Context, chapter *models.Chapter) error {
	tag, err := r.db.Exec(ctx, updateChapterContentQuery,
		chapter.ID, chapter.Title, chapter.Content, time.Now())
	if err != nil {
		r.logger.Error("Failed to update chapter content", zap.Error(err), zap.String("chapterID", chapter.ID.String()))
		return fmt.Errorf("failed to update chapter %s: %w", chapter.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkSubmittedForReview flips the review lock for an editable draft.
func (r *pgChapterRepository) MarkSubmittedForReview(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, markSubmittedQuery, id, at)
	if err != nil {
		r.logger.Error("Failed to mark chapter submitted", zap.Error(err), zap.String("chapterID", id.String()))
		return fmt.Errorf("failed to mark chapter %s submitted: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Chapter submitted for review", zap.String("chapterID", id.String()))
	return nil
}

// ClearSubmittedForReview rolls the review lock back.
func (r *pgChapterRepository) ClearSubmittedForReview(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, clearSubmittedQuery, id)
	if err != nil {
		r.logger.Error("Failed to clear submitted flag", zap.Error(err), zap.String("chapterID", id.String()))
		return fmt.Errorf("failed to clear submitted flag for chapter %s: %w", id, err)
	}
	return nil
}

// SaveReviewOutcome persists the terminal review state in one statement.
func (r *pgChapterRepository) SaveReviewOutcome(ctx context.Context, id uuid.UUID, score int, feedback string, draft bool, at time.Time) error {
	tag, err := r.db.Exec(ctx, saveReviewOutcomeQuery, id, score, feedback, draft, at)
	if err != nil {
		r.logger.Error("Failed to save review outcome", zap.Error(err), zap.String("chapterID", id.String()))
		return fmt.Errorf("failed to save review outcome for chapter %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Review outcome saved",
		zap.String("chapterID", id.String()),
		zap.Int("score", score),
		zap.Bool("draft", draft))
	return nil
}

// ListChildren returns the chapters branching off the given chapter.
func (r *pgChapterRepository) ListChildren(ctx context.Context, parentID uuid.UUID, publishedOnly bool) ([]models.Chapter, error) {
	query := listChildrenQuery
	if publishedOnly {
		query = listPublishedChildrenQuery
	}
	var chapters []models.Chapter
	if err := pgxscan.Select(ctx, r.db, &chapters, query, parentID); err != nil {
		r.logger.Error("Failed to list child chapters", zap.Error(err), zap.String("parentID", parentID.String()))
		return nil, fmt.Errorf("failed to list children of chapter %s: %w", parentID, err)
	}
	return chapters, nil
}

// GetFirstChapter returns the ordinal-1 chapter of a story.
func (r *pgChapterRepository) GetFirstChapter(ctx context.Context, storyID uuid.UUID) (*models.Chapter, error) {
	var chapter models.Chapter
	err := pgxscan.Get(ctx, r.db, &chapter, getFirstChapterQuery, storyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get first chapter", zap.Error(err), zap.String("storyID", storyID.String()))
		return nil, fmt.Errorf("failed to get first chapter of story %s: %w", storyID, err)
	}
	return &chapter, nil
}
