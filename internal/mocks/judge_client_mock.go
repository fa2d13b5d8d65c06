package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/justinrutledge1992/feathertree/internal/judge"
)

// MockJudgeClient is a mock type for the judge.Client type
type MockJudgeClient struct {
	mock.Mock
}

// Score provides a mock function with given fields: ctx, payload
func (_m *MockJudgeClient) Score(ctx context.Context, payload judge.Payload) (string, error) {
	ret := _m.Called(ctx, payload)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, judge.Payload) string); ok {
		r0 = rf(ctx, payload)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, judge.Payload) error); ok {
		r1 = rf(ctx, payload)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockJudgeClient creates a new instance of MockJudgeClient. It also registers a testing interface on the mock.
// The first argument is typically a *testing.T value.
func NewMockJudgeClient(t interface {
	mock.TestingT
	Helper()
}) *MockJudgeClient {
	m := &MockJudgeClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ judge.Client = (*MockJudgeClient)(nil)
