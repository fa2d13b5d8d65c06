package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/justinrutledge1992/feathertree/internal/models"
	"github.com/justinrutledge1992/feathertree/internal/repository"
)

// MockStoryRepository is a mock type for the repository.StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

// CreateWithFirstChapter provides a mock function with given fields: ctx, story, first
func (_m *MockStoryRepository) CreateWithFirstChapter(ctx context.Context, story *models.Story, first *models.Chapter) error {
	ret := _m.Called(ctx, story, first)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Story
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Story); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Story)
		}
	}

	return r0, ret.Error(1)
}

// List provides a mock function with given fields: ctx, limit
func (_m *MockStoryRepository) List(ctx context.Context, limit int) ([]models.Story, error) {
	ret := _m.Called(ctx, limit)

	var r0 []models.Story
	if rf, ok := ret.Get(0).(func(context.Context, int) []models.Story); ok {
		r0 = rf(ctx, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.Story)
		}
	}

	return r0, ret.Error(1)
}

// TouchLastUpdated provides a mock function with given fields: ctx, id, at
func (_m *MockStoryRepository) TouchLastUpdated(ctx context.Context, id uuid.UUID, at time.Time) error {
	ret := _m.Called(ctx, id, at)
	return ret.Error(0)
}

// NewMockStoryRepository creates a new instance of MockStoryRepository. It also registers a testing interface on the mock.
// The first argument is typically a *testing.T value.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoryRepository = (*MockStoryRepository)(nil)
