package review_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/ancestry"
	"github.com/justinrutledge1992/feathertree/internal/judge"
	"github.com/justinrutledge1992/feathertree/internal/messaging"
	"github.com/justinrutledge1992/feathertree/internal/mocks"
	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/review"
)

const testPublishThreshold = 2

type handlerFixture struct {
	chapters *mocks.MockChapterRepository
	stories  *mocks.MockStoryRepository
	judge    *mocks.MockJudgeClient
	handler  *review.TaskHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	chapters := mocks.NewMockChapterRepository(t)
	stories := mocks.NewMockStoryRepository(t)
	judgeClient := mocks.NewMockJudgeClient(t)
	logger := zap.NewNop()

	return &handlerFixture{
		chapters: chapters,
		stories:  stories,
		judge:    judgeClient,
		handler: review.NewTaskHandler(
			chapters,
			stories,
			ancestry.NewReconstructor(chapters, logger),
			judgeClient,
			testPublishThreshold,
			logger,
		),
	}
}

func submittedChapter(storyID uuid.UUID, previous *uuid.UUID, content string) *models.Chapter {
	return &models.Chapter{
		ID:                 uuid.New(),
		StoryID:            storyID,
		AuthorID:           uuid.New(),
		Ordinal:            2,
		Title:              "A Continuation",
		Content:            content,
		Draft:              true,
		SubmittedForReview: true,
		PreviousChapterID:  previous,
	}
}

func taskFor(chapter *models.Chapter) messaging.ReviewTaskPayload {
	return messaging.ReviewTaskPayload{
		TaskID:    uuid.New().String(),
		ChapterID: chapter.ID.String(),
	}
}

func verdict(score int, feedback string) string {
	return fmt.Sprintf("<feedback>%s</feedback>\n<score>%d</score>", feedback, score)
}

func TestTaskHandler_Handle(t *testing.T) {
	t.Run("Score above threshold publishes and touches the story", func(t *testing.T) {
		f := newHandlerFixture(t)

		storyID := uuid.New()
		root := &models.Chapter{ID: uuid.New(), StoryID: storyID, Content: "Root text."}
		chapter := submittedChapter(storyID, &root.ID, "Continuation text.")

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("GetByID", mock.Anything, root.ID).Return(root, nil).Once()
		f.judge.On("Score", mock.Anything, mock.AnythingOfType("judge.Payload")).
			Return(verdict(3, "Coherent continuation."), nil).Once()
		f.chapters.On("SaveReviewOutcome", mock.Anything, chapter.ID, 3, "Coherent continuation.", false, mock.Anything).
			Return(nil).Once()
		f.stories.On("TouchLastUpdated", mock.Anything, storyID, mock.Anything).Return(nil).Once()

		err := f.handler.Handle(context.Background(), taskFor(chapter))
		require.NoError(t, err)
		f.chapters.AssertExpectations(t)
		f.stories.AssertExpectations(t)
	})

	t.Run("Score at threshold rejects and leaves the story untouched", func(t *testing.T) {
		f := newHandlerFixture(t)

		chapter := submittedChapter(uuid.New(), nil, "Continuation text.")

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.judge.On("Score", mock.Anything, mock.AnythingOfType("judge.Payload")).
			Return(verdict(2, "Tone drifts."), nil).Once()
		f.chapters.On("SaveReviewOutcome", mock.Anything, chapter.ID, 2, "Tone drifts.", true, mock.Anything).
			Return(nil).Once()

		err := f.handler.Handle(context.Background(), taskFor(chapter))
		require.NoError(t, err)
		f.stories.AssertNotCalled(t, "TouchLastUpdated", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Prompt carries ancestor text and current content", func(t *testing.T) {
		f := newHandlerFixture(t)

		storyID := uuid.New()
		rootID := uuid.New()
		root := &models.Chapter{ID: rootID, StoryID: storyID, Content: "R"}
		middle := &models.Chapter{ID: uuid.New(), StoryID: storyID, Content: "M", PreviousChapterID: &rootID}
		chapter := submittedChapter(storyID, &middle.ID, "C")

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.chapters.On("GetByID", mock.Anything, middle.ID).Return(middle, nil).Once()
		f.chapters.On("GetByID", mock.Anything, rootID).Return(root, nil).Once()

		var sentPayload judge.Payload
		f.judge.On("Score", mock.Anything, mock.AnythingOfType("judge.Payload")).
			Return(verdict(5, "Excellent."), nil).Once().
			Run(func(args mock.Arguments) {
				sentPayload = args.Get(1).(judge.Payload)
			})
		f.chapters.On("SaveReviewOutcome", mock.Anything, chapter.ID, 5, "Excellent.", false, mock.Anything).
			Return(nil).Once()
		f.stories.On("TouchLastUpdated", mock.Anything, storyID, mock.Anything).Return(nil).Once()

		err := f.handler.Handle(context.Background(), taskFor(chapter))
		require.NoError(t, err)

		assert.Contains(t, sentPayload.Prompt, "<previous_text>\nR\nM\n\n</previous_text>")
		assert.Contains(t, sentPayload.Prompt, "<current_text>\nC\n</current_text>")
		assert.Equal(t, 512, sentPayload.MaxTokens)
	})

	t.Run("Judge timeout marks review failed and unlocks the chapter", func(t *testing.T) {
		f := newHandlerFixture(t)

		chapter := submittedChapter(uuid.New(), nil, "Continuation text.")

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.judge.On("Score", mock.Anything, mock.AnythingOfType("judge.Payload")).
			Return("", judge.ErrTimeout).Once()
		f.chapters.On("SaveReviewOutcome", mock.Anything, chapter.ID, 0, mock.AnythingOfType("string"), true, mock.Anything).
			Return(nil).Once().
			Run(func(args mock.Arguments) {
				feedback := args.Get(3).(string)
				assert.Contains(t, feedback, "did not respond in time")
			})

		err := f.handler.Handle(context.Background(), taskFor(chapter))
		require.NoError(t, err)
		f.stories.AssertNotCalled(t, "TouchLastUpdated", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unparseable verdict marks review failed", func(t *testing.T) {
		f := newHandlerFixture(t)

		chapter := submittedChapter(uuid.New(), nil, "Continuation text.")

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.judge.On("Score", mock.Anything, mock.AnythingOfType("judge.Payload")).
			Return("I refuse to answer in the requested format.", nil).Once()
		f.chapters.On("SaveReviewOutcome", mock.Anything, chapter.ID, 0, mock.AnythingOfType("string"), true, mock.Anything).
			Return(nil).Once()

		err := f.handler.Handle(context.Background(), taskFor(chapter))
		require.NoError(t, err)
	})

	t.Run("Out-of-range score marks review failed", func(t *testing.T) {
		f := newHandlerFixture(t)

		chapter := submittedChapter(uuid.New(), nil, "Continuation text.")

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.judge.On("Score", mock.Anything, mock.AnythingOfType("judge.Payload")).
			Return("<feedback>Odd.</feedback><score>7</score>", nil).Once()
		f.chapters.On("SaveReviewOutcome", mock.Anything, chapter.ID, 0, mock.AnythingOfType("string"), true, mock.Anything).
			Return(nil).Once()

		err := f.handler.Handle(context.Background(), taskFor(chapter))
		require.NoError(t, err)
		f.stories.AssertNotCalled(t, "TouchLastUpdated", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed ancestry marks review failed", func(t *testing.T) {
		f := newHandlerFixture(t)

		storyID := uuid.New()
		aID := uuid.New()
		bID := uuid.New()
		b := &models.Chapter{ID: bID, StoryID: storyID, Content: "B", PreviousChapterID: &aID}
		chapter := submittedChapter(storyID, &bID, "C")
		chapter.ID = aID // a -> b -> a

		f.chapters.On("GetByID", mock.Anything, aID).Return(chapter, nil).Once()
		f.chapters.On("GetByID", mock.Anything, bID).Return(b, nil).Once()
		f.chapters.On("SaveReviewOutcome", mock.Anything, aID, 0, mock.AnythingOfType("string"), true, mock.Anything).
			Return(nil).Once()

		err := f.handler.Handle(context.Background(), messaging.ReviewTaskPayload{
			TaskID:    uuid.New().String(),
			ChapterID: aID.String(),
		})
		require.NoError(t, err)
		f.judge.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
	})

	t.Run("Deleted chapter is dropped without error", func(t *testing.T) {
		f := newHandlerFixture(t)

		missingID := uuid.New()
		f.chapters.On("GetByID", mock.Anything, missingID).Return(nil, models.ErrNotFound).Once()

		err := f.handler.Handle(context.Background(), messaging.ReviewTaskPayload{
			TaskID:    uuid.New().String(),
			ChapterID: missingID.String(),
		})
		require.NoError(t, err)
	})

	t.Run("Invalid chapter ID is an error for the dead letter queue", func(t *testing.T) {
		f := newHandlerFixture(t)

		err := f.handler.Handle(context.Background(), messaging.ReviewTaskPayload{
			TaskID:    uuid.New().String(),
			ChapterID: "not-a-uuid",
		})
		assert.Error(t, err)
	})

	t.Run("Persistence failure after verdict surfaces as error", func(t *testing.T) {
		f := newHandlerFixture(t)

		chapter := submittedChapter(uuid.New(), nil, "Continuation text.")

		f.chapters.On("GetByID", mock.Anything, chapter.ID).Return(chapter, nil).Once()
		f.judge.On("Score", mock.Anything, mock.AnythingOfType("judge.Payload")).
			Return(verdict(4, "Good."), nil).Once()
		f.chapters.On("SaveReviewOutcome", mock.Anything, chapter.ID, 4, "Good.", false, mock.Anything).
			Return(assert.AnError).Once()

		err := f.handler.Handle(context.Background(), taskFor(chapter))
		assert.Error(t, err)
	})
}
