package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/justinrutledge1992/feathertree/internal/messaging"
)

// MockReviewTaskPublisher is a mock type for the messaging.ReviewTaskPublisher type
type MockReviewTaskPublisher struct {
	mock.Mock
}

// PublishReviewTask provides a mock function with given fields: ctx, payload
func (_m *MockReviewTaskPublisher) PublishReviewTask(ctx context.Context, payload messaging.ReviewTaskPayload) error {
	ret := _m.Called(ctx, payload)
	return ret.Error(0)
}

// NewMockReviewTaskPublisher creates a new instance of MockReviewTaskPublisher. It also registers a testing interface on the mock.
// The first argument is typically a *testing.T value.
func NewMockReviewTaskPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockReviewTaskPublisher {
	m := &MockReviewTaskPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ messaging.ReviewTaskPublisher = (*MockReviewTaskPublisher)(nil)
