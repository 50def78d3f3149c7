package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/queue"
)

var _ queueService = &queueServiceMock{}

type queueServiceMock struct {
	ListPendingFunc  func(ctx context.Context, input queue.ListPendingInput) ([]domain.ReviewQueueItem, error)
	CountPendingFunc func(ctx context.Context, filter domain.QueueFilter) (int, error)

	calls struct {
		ListPending []struct {
			Ctx   context.Context
			Input queue.ListPendingInput
		}
		CountPending []struct {
			Ctx    context.Context
			Filter domain.QueueFilter
		}
	}
	lockListPending  sync.RWMutex
	lockCountPending sync.RWMutex
}

func (mock *queueServiceMock) ListPending(ctx context.Context, input queue.ListPendingInput) ([]domain.ReviewQueueItem, error) {
	if mock.ListPendingFunc == nil {
		panic("queueServiceMock.ListPendingFunc: method is nil but queueService.ListPending was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input queue.ListPendingInput
	}{Ctx: ctx, Input: input}
	mock.lockListPending.Lock()
	mock.calls.ListPending = append(mock.calls.ListPending, callInfo)
	mock.lockListPending.Unlock()
	return mock.ListPendingFunc(ctx, input)
}

func (mock *queueServiceMock) ListPendingCalls() []struct {
	Ctx   context.Context
	Input queue.ListPendingInput
} {
	mock.lockListPending.RLock()
	calls := mock.calls.ListPending
	mock.lockListPending.RUnlock()
	return calls
}

func (mock *queueServiceMock) CountPending(ctx context.Context, filter domain.QueueFilter) (int, error) {
	if mock.CountPendingFunc == nil {
		panic("queueServiceMock.CountPendingFunc: method is nil but queueService.CountPending was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.QueueFilter
	}{Ctx: ctx, Filter: filter}
	mock.lockCountPending.Lock()
	mock.calls.CountPending = append(mock.calls.CountPending, callInfo)
	mock.lockCountPending.Unlock()
	return mock.CountPendingFunc(ctx, filter)
}

func (mock *queueServiceMock) CountPendingCalls() []struct {
	Ctx    context.Context
	Filter domain.QueueFilter
} {
	mock.lockCountPending.RLock()
	calls := mock.calls.CountPending
	mock.lockCountPending.RUnlock()
	return calls
}
