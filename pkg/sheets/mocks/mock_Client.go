// Package mocks provides test doubles for the sheets client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// SheetTitles provides a mock function with given fields: ctx
func (_m *MockClient) SheetTitles(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for SheetTitles")
	}

	var r0 []string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]string, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []string); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]string)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// AddSheet provides a mock function with given fields: ctx, title, rows, cols
func (_m *MockClient) AddSheet(ctx context.Context, title string, rows int, cols int) error {
	ret := _m.Called(ctx, title, rows, cols)

	if len(ret) == 0 {
		panic("no return value specified for AddSheet")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int, int) error); ok {
		r0 = rf(ctx, title, rows, cols)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Values provides a mock function with given fields: ctx, title
func (_m *MockClient) Values(ctx context.Context, title string) ([][]string, error) {
	ret := _m.Called(ctx, title)

	if len(ret) == 0 {
		panic("no return value specified for Values")
	}

	var r0 [][]string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([][]string, error)); ok {
		return rf(ctx, title)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) [][]string); ok {
		r0 = rf(ctx, title)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([][]string)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, title)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// AppendRows provides a mock function with given fields: ctx, title, rows
func (_m *MockClient) AppendRows(ctx context.Context, title string, rows [][]string) error {
	ret := _m.Called(ctx, title, rows)

	if len(ret) == 0 {
		panic("no return value specified for AppendRows")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, [][]string) error); ok {
		r0 = rf(ctx, title, rows)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
