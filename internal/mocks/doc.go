// Package mocks provides testify/mock implementations of the store interfaces.
//
// Use them where a test needs to script a store failure at an exact step or
// assert that a call never happened. Tests that exercise behavior end to end
// should prefer the in-memory adapter in internal/platform/memstore.
//
//	tasks := new(mocks.TestifyMockTaskStore)
//	tasks.On("GetByID", mock.Anything, id).Return(nil, store.ErrTaskNotFound)
//	defer tasks.AssertExpectations(t)
package mocks
