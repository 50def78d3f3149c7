package queue

import (
	"context"
	"sync"

	"github.com/heartmarshall/qareview/internal/domain"
)

var _ eventRepo = &eventRepoMock{}

type eventRepoMock struct {
	ListPendingFunc  func(ctx context.Context, filter domain.QueueFilter, limit, offset int) ([]domain.ReviewEvent, error)
	CountPendingFunc func(ctx context.Context, filter domain.QueueFilter) (int, error)

	calls struct {
		ListPending []struct {
			Filter domain.QueueFilter
			Limit  int
			Offset int
		}
		CountPending []struct {
			Filter domain.QueueFilter
		}
	}
	lockListPending  sync.RWMutex
	lockCountPending sync.RWMutex
}

func (mock *eventRepoMock) ListPending(ctx context.Context, filter domain.QueueFilter, limit, offset int) ([]domain.ReviewEvent, error) {
	if mock.ListPendingFunc == nil {
		panic("eventRepoMock.ListPendingFunc: method is nil but eventRepo.ListPending was just called")
	}
	callInfo := struct {
		Filter domain.QueueFilter
		Limit  int
		Offset int
	}{Filter: filter, Limit: limit, Offset: offset}
	mock.lockListPending.Lock()
	mock.calls.ListPending = append(mock.calls.ListPending, callInfo)
	mock.lockListPending.Unlock()
	return mock.ListPendingFunc(ctx, filter, limit, offset)
}

func (mock *eventRepoMock) ListPendingCalls() []struct {
	Filter domain.QueueFilter
	Limit  int
	Offset int
} {
	mock.lockListPending.RLock()
	calls := mock.calls.ListPending
	mock.lockListPending.RUnlock()
	return calls
}

func (mock *eventRepoMock) CountPending(ctx context.Context, filter domain.QueueFilter) (int, error) {
	if mock.CountPendingFunc == nil {
		panic("eventRepoMock.CountPendingFunc: method is nil but eventRepo.CountPending was just called")
	}
	callInfo := struct {
		Filter domain.QueueFilter
	}{Filter: filter}
	mock.lockCountPending.Lock()
	mock.calls.CountPending = append(mock.calls.CountPending, callInfo)
	mock.lockCountPending.Unlock()
	return mock.CountPendingFunc(ctx, filter)
}

func (mock *eventRepoMock) CountPendingCalls() []struct {
	Filter domain.QueueFilter
} {
	mock.lockCountPending.RLock()
	calls := mock.calls.CountPending
	mock.lockCountPending.RUnlock()
	return calls
}
