// Package service implements the authoring workflow: creating stories and
// chapter branches, editing under the review lock, and submitting chapters
// for continuity review.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/messaging"
	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/repository"
)

// AuthoringService defines the authoring operations exposed over HTTP.
type AuthoringService interface {
	// CreateStory creates a story together with its ordinal-1 opening
	// chapter.
	CreateStory(ctx context.Context, authorID uuid.UUID, title, chapterTitle, content string) (*models.Story, *models.Chapter, error)
	// CreateChapter branches a new draft chapter off an existing one.
	CreateChapter(ctx context.Context, authorID, previousChapterID uuid.UUID, title, content string) (*models.Chapter, error)
	// UpdateChapter edits a draft chapter that is not locked by a review.
	UpdateChapter(ctx context.Context, chapterID uuid.UUID, title, content string) (*models.Chapter, error)
	// SubmitForReview locks the chapter and enqueues exactly one review
	// task. Returns the task ID.
	SubmitForReview(ctx context.Context, chapterID uuid.UUID) (string, error)
	// GetChapter returns a chapter with its continuations. Draft
	// continuations are only included when includeDrafts is set.
	GetChapter(ctx context.Context, chapterID uuid.UUID, includeDrafts bool) (*models.Chapter, []models.Chapter, error)
	// GetStory returns a story together with its ordinal-1 opening
	// chapter.
	GetStory(ctx context.Context, storyID uuid.UUID) (*models.Story, *models.Chapter, error)
	// ListStories returns stories ordered by recent activity.
	ListStories(ctx context.Context, limit int) ([]models.Story, error)
}

type authoringServiceImpl struct {
	chapters  repository.ChapterRepository
	stories   repository.StoryRepository
	publisher messaging.ReviewTaskPublisher
	logger    *zap.Logger
}

// NewAuthoringService creates a new instance of AuthoringService.
func NewAuthoringService(
	chapters repository.ChapterRepository,
	stories repository.StoryRepository,
	publisher messaging.ReviewTaskPublisher,
	logger *zap.Logger,
) AuthoringService {
	return &authoringServiceImpl{
		chapters:  chapters,
		stories:   stories,
		publisher: publisher,
		logger:    logger.Named("AuthoringService"),
	}
}

// CreateStory creates a story and its opening chapter in one transaction.
func (s *authoringServiceImpl) CreateStory(ctx context.Context, authorID uuid.UUID, title, chapterTitle, content string) (*models.Story, *models.Chapter, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, ErrEmptyContent
	}

	story := &models.Story{
		Title:    title,
		AuthorID: authorID,
	}
	first := &models.Chapter{
		AuthorID: authorID,
		Title:    chapterTitle,
		Content:  content,
		Draft:    true,
	}
	if err := s.stories.CreateWithFirstChapter(ctx, story, first); err != nil {
		return nil, nil, err
	}
	return story, first, nil
}

// CreateChapter branches a new draft chapter off an existing chapter. The
// new chapter's ordinal is exactly one greater than its parent's.
func (s *authoringServiceImpl) CreateChapter(ctx context.Context, authorID, previousChapterID uuid.UUID, title, content string) (*models.Chapter, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	previous, err := s.chapters.GetByID(ctx, previousChapterID)
	if err != nil {
		return nil, err
	}

	prevID := previous.ID
	chapter := &models.Chapter{
		StoryID:           previous.StoryID,
		AuthorID:          authorID,
		Ordinal:           previous.Ordinal + 1,
		Title:             title,
		Content:           content,
		Draft:             true,
		PreviousChapterID: &prevID,
	}
	if err := s.chapters.Create(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// UpdateChapter edits a draft chapter. Editing is rejected while a review
// is outstanding and on published chapters.
func (s *authoringServiceImpl) UpdateChapter(ctx context.Context, chapterID uuid.UUID, title, content string) (*models.Chapter, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter.SubmittedForReview {
		return nil, ErrChapterLocked
	}
	if !chapter.Draft {
		return nil, ErrChapterPublished
	}

	chapter.Title = title
	chapter.Content = content
	if err := s.chapters.UpdateContent(ctx, chapter); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Lost a race with a concurrent submit; report the lock.
			return nil, ErrChapterLocked
		}
		return nil, err
	}
	return chapter, nil
}

// SubmitForReview transitions submitted_for_review false->true and then
// publishes one review task. The flag transition is the publish guard: a
// chapter already submitted is never enqueued twice. If publishing fails
// the flag is rolled back so the chapter is not locked without a pending
// task.
func (s *authoringServiceImpl) SubmitForReview(ctx context.Context, chapterID uuid.UUID) (string, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return "", err
	}
	if chapter.SubmittedForReview {
		return "", ErrChapterLocked
	}
	if !chapter.Draft {
		return "", ErrChapterPublished
	}

	if err := s.chapters.MarkSubmittedForReview(ctx, chapterID, time.Now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", ErrChapterLocked
		}
		return "", err
	}

	taskID := uuid.New().String()
	payload := messaging.ReviewTaskPayload{
		TaskID:    taskID,
		ChapterID: chapterID.String(),
	}
	if err := s.publisher.PublishReviewTask(ctx, payload); err != nil {
		s.logger.Error("Failed to enqueue review task, rolling submission back",
			zap.Error(err),
			zap.String("chapterID", chapterID.String()))
		if clearErr := s.chapters.ClearSubmittedForReview(ctx, chapterID); clearErr != nil {
			return "", fmt.Errorf("failed to enqueue review (%w) and to roll back submission: %v", err, clearErr)
		}
		return "", fmt.Errorf("failed to enqueue review task: %w", err)
	}

	s.logger.Info("Chapter submitted for review",
		zap.String("chapterID", chapterID.String()),
		zap.String("taskID", taskID))
	return taskID, nil
}

// GetChapter returns a chapter and its continuations.
func (s *authoringServiceImpl) GetChapter(ctx context.Context, chapterID uuid.UUID, includeDrafts bool) (*models.Chapter, []models.Chapter, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, nil, err
	}
	children, err := s.chapters.ListChildren(ctx, chapterID, !includeDrafts)
	if err != nil {
		return nil, nil, err
	}
	return chapter, children, nil
}

// GetStory returns a story and its opening chapter.
func (s *authoringServiceImpl) GetStory(ctx context.Context, storyID uuid.UUID) (*models.Story, *models.Chapter, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}
	opening, err := s.chapters.GetFirstChapter(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}
	return story, opening, nil
}

// ListStories returns stories ordered by recent activity.
func (s *authoringServiceImpl) ListStories(ctx context.Context, limit int) ([]models.Story, error) {
	return s.stories.List(ctx, limit)
}
