package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/repository"
)

// MockChapterRepository is a mock type for the repository.ChapterRepository type
type MockChapterRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, chapter
func (_m *MockChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	ret := _m.Called(ctx, chapter)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Chapter
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Chapter); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Chapter)
		}
	}

	return r0, ret.Error(1)
}

// UpdateContent provides a mock function with given fields: ctx, chapter
func (_m *MockChapterRepository) UpdateContent(ctx context.Context, chapter *models.Chapter) error {
	ret := _m.Called(ctx, chapter)
	return ret.Error(0)
}

// MarkSubmittedForReview provides a mock function with given fields: ctx, id, at
func (_m *MockChapterRepository) MarkSubmittedForReview(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

// ClearSubmittedForReview provides a mock function with given fields: ctx, id
func (_m *MockChapterRepository) ClearSubmittedForReview(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// SaveReviewOutcome provides a mock function with given fields: ctx, id, score, feedback, draft, at
func (_m *MockChapterRepository) SaveReviewOutcome(ctx context.Context, id uuid.UUID, score int, feedback string, draft bool, at time.Time) error {
	ret := _m.Called(ctx, id, score, feedback, draft, at)
	return ret.Error(0)
}

// ListChildren provides a mock function with given fields: ctx, parentID, publishedOnly
func (_m *MockChapterRepository) ListChildren(ctx context.Context, parentID uuid.UUID, publishedOnly bool) ([]models.Chapter, error) {
	ret := _m.Called(ctx, parentID, publishedOnly)

	var r0 []models.Chapter
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, bool) []models.Chapter); ok {
		r0 = rf(ctx, parentID, publishedOnly)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.Chapter)
		}
	}

	return r0, ret.Error(1)
}

// GetFirstChapter provides a mock function with given fields: ctx, storyID
func (_m *MockChapterRepository) GetFirstChapter(ctx context.Context, storyID uuid.UUID) (*models.Chapter, error) {
	ret := _m.Called(ctx, storyID)

	var r0 *models.Chapter
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Chapter); ok {
		r0 = rf(ctx, storyID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Chapter)
		}
	}

	return r0, ret.Error(1)
}

// NewMockChapterRepository creates a new instance of MockChapterRepository. It also registers a testing interface on the mock.
// The first argument is typically a *testing.T value.
func NewMockChapterRepository(t interface {
	mock.TestingT
	Helper()
}) *MockChapterRepository {
	m := &MockChapterRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.ChapterRepository = (*MockChapterRepository)(nil)
