package ancestry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/ancestry"
	"github.com/justinrutledge1992/feathertree/internal/mocks"
	"github.com/justinrutledge1992/feathertree/internal/models"
)

func chainChapter(id uuid.UUID, previous *uuid.UUID, content string) *models.Chapter {
	return &models.Chapter{
		ID:                id,
		Content:           content,
		PreviousChapterID: previous,
	}
}

func TestReconstructor_PreviousText(t *testing.T) {
	logger := zap.NewNop()

	t.Run("Root chapter yields empty string", func(t *testing.T) {
		repo := mocks.NewMockChapterRepository(t)
		r := ancestry.NewReconstructor(repo, logger)

		root := chainChapter(uuid.New(), nil, "Once upon a time.")

		text, err := r.PreviousText(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, "", text)
		repo.AssertNotCalled(t, "GetByID")
	})

	t.Run("Chain is concatenated oldest first with trailing newlines", func(t *testing.T) {
		repo := mocks.NewMockChapterRepository(t)
		r := ancestry.NewReconstructor(repo, logger)

		rootID := uuid.New()
		middleID := uuid.New()
		leafID := uuid.New()

		root := chainChapter(rootID, nil, "A")
		middle := chainChapter(middleID, &rootID, "B")
		leaf := chainChapter(leafID, &middleID, "C")

		repo.On("GetByID", mock.Anything, middleID).Return(middle, nil).Once()
		repo.On("GetByID", mock.Anything, rootID).Return(root, nil).Once()

		text, err := r.PreviousText(context.Background(), leaf)
		require.NoError(t, err)
		assert.Equal(t, "A\nB\n", text)
		repo.AssertExpectations(t)
	})

	t.Run("Single parent yields parent content plus newline", func(t *testing.T) {
		repo := mocks.NewMockChapterRepository(t)
		r := ancestry.NewReconstructor(repo, logger)

		rootID := uuid.New()
		root := chainChapter(rootID, nil, "The first chapter.")
		child := chainChapter(uuid.New(), &rootID, "The second chapter.")

		repo.On("GetByID", mock.Anything, rootID).Return(root, nil).Once()

		text, err := r.PreviousText(context.Background(), child)
		require.NoError(t, err)
		assert.Equal(t, "The first chapter.\n", text)
	})

	t.Run("Cycle in the chain returns ErrMalformedAncestry", func(t *testing.T) {
		repo := mocks.NewMockChapterRepository(t)
		r := ancestry.NewReconstructor(repo, logger)

		aID := uuid.New()
		bID := uuid.New()

		// a -> b -> a
		a := chainChapter(aID, &bID, "A")
		b := chainChapter(bID, &aID, "B")

		repo.On("GetByID", mock.Anything, bID).Return(b, nil).Once()

		_, err := r.PreviousText(context.Background(), a)
		assert.ErrorIs(t, err, ancestry.ErrMalformedAncestry)
	})

	t.Run("Self-referencing chapter returns ErrMalformedAncestry", func(t *testing.T) {
		repo := mocks.NewMockChapterRepository(t)
		r := ancestry.NewReconstructor(repo, logger)

		id := uuid.New()
		self := chainChapter(id, &id, "Ouroboros")

		_, err := r.PreviousText(context.Background(), self)
		assert.ErrorIs(t, err, ancestry.ErrMalformedAncestry)
		repo.AssertNotCalled(t, "GetByID")
	})

	t.Run("Repository error is propagated", func(t *testing.T) {
		repo := mocks.NewMockChapterRepository(t)
		r := ancestry.NewReconstructor(repo, logger)

		parentID := uuid.New()
		child := chainChapter(uuid.New(), &parentID, "C")

		repo.On("GetByID", mock.Anything, parentID).Return(nil, models.ErrNotFound).Once()

		_, err := r.PreviousText(context.Background(), child)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
