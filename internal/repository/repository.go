package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/justinrutledge1992/feathertree/internal/models"
)

// DBTX abstracts over *pgxpool.Pool and pgx.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChapterRepository defines storage operations on chapters.
type ChapterRepository interface {
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error)
	// UpdateContent persists title/content edits for a chapter that is
	// still editable.
	UpdateContent(ctx context.Context, chapter *models.Chapter) error
	// MarkSubmittedForReview flips submitted_for_review false->true, but
	// only for an editable draft. Returns ErrNotFound when no row matched
	// (missing chapter, already submitted, or already published).
	MarkSubmittedForReview(ctx context.Context, id uuid.UUID, at time.Time) error
	// ClearSubmittedForReview rolls the flag back without touching any
	// review fields. Used when enqueueing the review task fails.
	ClearSubmittedForReview(ctx context.Context, id uuid.UUID) error
	// SaveReviewOutcome persists the terminal state of a review in one
	// statement: score, feedback, draft flag, and the cleared
	// submitted_for_review lock.
	SaveReviewOutcome(ctx context.Context, id uuid.UUID, score int, feedback string, draft bool, at time.Time) error
	// ListChildren returns the chapters branching off the given chapter,
	// ordered by creation time. When publishedOnly is set, drafts are
	// filtered out.
	ListChildren(ctx context.Context, parentID uuid.UUID, publishedOnly bool) ([]models.Chapter, error)
	// GetFirstChapter returns the ordinal-1 chapter of a story.
	GetFirstChapter(ctx context.Context, storyID uuid.UUID) (*models.Chapter, error)
}

// StoryRepository defines storage operations on stories.
type StoryRepository interface {
	// CreateWithFirstChapter inserts the story and its ordinal-1 chapter
	// in a single transaction.
	CreateWithFirstChapter(ctx context.Context, story *models.Story, first *models.Chapter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	List(ctx context.Context, limit int) ([]models.Story, error)
	// TouchLastUpdated advances the story's last_updated stamp. Called when
	// a descendant chapter is newly published.
	TouchLastUpdated(ctx context.Context, id uuid.UUID, at time.Time) error
}
