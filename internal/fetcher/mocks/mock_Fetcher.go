// Package mocks provides test doubles for the page fetcher.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

// MockFetcher is a mock type for the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

// Fetch provides a mock function with given fields: ctx, rawURL, maxAttempts
func (_m *MockFetcher) Fetch(ctx context.Context, rawURL string, maxAttempts int) string {
	ret := _m.Called(ctx, rawURL, maxAttempts)

	if len(ret) == 0 {
		panic("no return value specified for Fetch")
	}

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, int) string); ok {
		r0 = rf(ctx, rawURL, maxAttempts)
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// NewMockFetcher creates a new instance of MockFetcher.
func NewMockFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFetcher {
	mock := &MockFetcher{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
