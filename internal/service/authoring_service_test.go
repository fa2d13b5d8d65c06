package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/messaging"
	"github.com/justinrutledge1992/feathertree/internal/mocks"
	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/service"
)

type serviceFixture struct {
	chapters  *mocks.MockChapterRepository
	stories   *mocks.MockStoryRepository
	publisher *mocks.MockReviewTaskPublisher
	svc       service.AuthoringService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	chapters := mocks.NewMockChapterRepository(t)
	stories := mocks.NewMockStoryRepository(t)
	publisher := mocks.NewMockReviewTaskPublisher(t)

	return &serviceFixture{
		chapters:  chapters,
		stories:   stories,
		publisher: publisher,
		svc:       service.NewAuthoringService(chapters, stories, publisher, zap.NewNop()),
	}
}

func draftChapter(ordinal int) *models.Chapter {
	return &models.Chapter{
		ID:       uuid.New(),
		StoryID:  uuid.New(),
		AuthorID: uuid.New(),
		Ordinal:  ordinal,
		Title:    "Chapter",
		Content:  "Some content.",
		Draft:    true,
	}
}

func TestAuthoringService_CreateStory(t *testing.T) {
	t.Run("Creates story with ordinal-1 opening chapter", func(t *testing.T) {
		f := newServiceFixture(t)
		authorID := uuid.New()

		f.stories.On("CreateWithFirstChapter", mock.Anything,
			mock.AnythingOfType("*models.Story"), mock.AnythingOfType("*models.Chapter")).
			Return(nil).Once().
			Run(func(args mock.Arguments) {
				story := args.Get(1).(*models.Story)
				first := args.Get(2).(*models.Chapter)
				assert.Equal(t, "My Story", story.Title)
				assert.Equal(t, authorID, story.AuthorID)
				assert.Equal(t, authorID, first.AuthorID)
				assert.True(t, first.Draft)
			})

		story, first, err := f.svc.CreateStory(context.Background(), authorID, "My Story", "Opening", "It begins.")
		require.NoError(t, err)
		assert.NotNil(t, story)
		assert.NotNil(t, first)
	})

	t.Run("Rejects empty content", func(t *testing.T) {
		f := newServiceFixture(t)

		_, _, err := f.svc.CreateStory(context.Background(), uuid.New(), "T", "CT", "   ")
		assert.ErrorIs(t, err, service.ErrEmptyContent)
		f.stories.AssertNotCalled(t, "CreateWithFirstChapter", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthoringService_CreateChapter(t *testing.T) {
	t.Run("New chapter continues the parent", func(t *testing.T) {
		f := newServiceFixture(t)

		parent := draftChapter(3)
		parent.Draft = false
		authorID := uuid.New()

		f.chapters.On("GetByID", mock.Anything, parent.ID).Return(parent, nil).Once()
		f.chapters.On("Create", mock.Anything, mock.AnythingOfType("*models.Chapter")).
			Return(nil).Once().
			Run(func(args mock.Arguments) {
				created := args.Get(1).(*models.Chapter)
				assert.Equal(t, parent.StoryID, created.StoryID)
				assert.Equal(t, 4, created.Ordinal)
				require.NotNil(t, created.PreviousChapterID)
				assert.Equal(t, parent.ID, *created.PreviousChapterID)
				assert.True(t, created.Draft)
			})

		chapter, err := f.svc.CreateChapter(context.Background(), authorID, parent.ID, "Next", "More story.")
		require.NoError(t, err)
		assert.Equal(t, 4, chapter.Ordinal)
	})

	t.Run("Missing parent propagates not found", func(t *testing.T) {
		f := newServiceFixture(t)

		missing := uuid.New()
		f.chapters.On("GetByID", mock.Anything, missing).Return(nil, models.ErrNotFound).Once()

		_, err := f.svc.CreateChapter(context.Background(), uuid.New(), missing, "T", "Content.")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestAuthoringService_UpdateChapter(t *testing.T) {
	t.Run("Edits an editable draft", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(1)
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("UpdateContent", mock.Anything, chapter).Return(nil).Once()

		updated, err := f.svc.UpdateChapter(context.Background(), chapter.ID, "New Title", "New content.")
		require.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, "New content.", updated.Content)
	})

	t.Run("Locked while submitted for review", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(1)
		chapter.SubmittedForReview = true
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()

		_, err := f.svc.UpdateChapter(context.Background(), chapter.ID, "T", "C")
		assert.ErrorIs(t, err, service.ErrChapterLocked)
		f.chapters.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything)
	})

	t.Run("Published chapters cannot be edited", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(1)
		chapter.Draft = false
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()

		_, err := f.svc.UpdateChapter(context.Background(), chapter.ID, "T", "C")
		assert.ErrorIs(t, err, service.ErrChapterPublished)
	})
}

func TestAuthoringService_SubmitForReview(t *testing.T) {
	t.Run("Marks the chapter and publishes one task", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(2)
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("MarkSubmittedForReview", mock.Anything, chapter.ID, mock.Anything).Return(nil).Once()
		f.publisher.On("PublishReviewTask", mock.Anything, mock.AnythingOfType("messaging.ReviewTaskPayload")).
			Return(nil).Once().
			Run(func(args mock.Arguments) {
				payload := args.Get(1).(messaging.ReviewTaskPayload)
				assert.Equal(t, chapter.ID.String(), payload.ChapterID)
				assert.NotEmpty(t, payload.TaskID)
			})

		taskID, err := f.svc.SubmitForReview(context.Background(), chapter.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, taskID)
	})

	t.Run("Already submitted chapter is not enqueued again", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(2)
		chapter.SubmittedForReview = true
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()

		_, err := f.svc.SubmitForReview(context.Background(), chapter.ID)
		assert.ErrorIs(t, err, service.ErrChapterLocked)
		f.publisher.AssertNotCalled(t, "PublishReviewTask", mock.Anything, mock.Anything)
	})

	t.Run("Publish failure rolls the submission flag back", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(2)
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("MarkSubmittedForReview", mock.Anything, chapter.ID, mock.Anything).Return(nil).Once()
		f.publisher.On("PublishReviewTask", mock.Anything, mock.AnythingOfType("messaging.ReviewTaskPayload")).
			Return(assert.AnError).Once()
		f.chapters.On("ClearSubmittedForReview", mock.Anything, chapter.ID).Return(nil).Once()

		_, err := f.svc.SubmitForReview(context.Background(), chapter.ID)
		assert.Error(t, err)
		f.chapters.AssertExpectations(t)
	})

	t.Run("Lost race on the submission flag reports the lock", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(2)
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("MarkSubmittedForReview", mock.Anything, chapter.ID, mock.Anything).
			Return(models.ErrNotFound).Once()

		_, err := f.svc.SubmitForReview(context.Background(), chapter.ID)
		assert.ErrorIs(t, err, service.ErrChapterLocked)
		f.publisher.AssertNotCalled(t, "PublishReviewTask", mock.Anything, mock.Anything)
	})
}

func TestAuthoringService_GetChapter(t *testing.T) {
	t.Run("Readers see only published continuations", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(1)
		chapter.Draft = false
		published := *draftChapter(2)
		published.Draft = false

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("ListChildren", mock.Anything, chapter.ID, true).
			Return([]models.Chapter{published}, nil).Once()

		got, children, err := f.svc.GetChapter(context.Background(), chapter.ID, false)
		require.NoError(t, err)
		assert.Equal(t, chapter.ID, got.ID)
		require.Len(t, children, 1)
		assert.False(t, children[0].Draft)
	})

	t.Run("Authors can include drafts", func(t *testing.T) {
		f := newServiceFixture(t)

		chapter := draftChapter(1)
		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("ListChildren", mock.Anything, chapter.ID, false).
			Return([]models.Chapter{*draftChapter(2)}, nil).Once()

		_, children, err := f.svc.GetChapter(context.Background(), chapter.ID, true)
		require.NoError(t, err)
		assert.Len(t, children, 1)
	})
}
