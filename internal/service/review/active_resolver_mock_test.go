package review

import (
	"context"
	"sync"

	"github.com/heartmarshall/qareview/internal/domain"
)

var _ activeResolver = &activeResolverMock{}

type activeResolverMock struct {
	ActiveFunc     func(ctx context.Context, key domain.GroupKey) (*domain.ActiveRecord, error)
	ActiveManyFunc func(ctx context.Context, keys []domain.GroupKey) (map[domain.GroupKey]*domain.ActiveRecord, error)
	InvalidateFunc func(key domain.GroupKey)

	calls struct {
		Active []struct {
			Ctx context.Context
			Key domain.GroupKey
		}
		ActiveMany []struct {
			Ctx  context.Context
			Keys []domain.GroupKey
		}
		Invalidate []struct {
			Key domain.GroupKey
		}
	}
	lockActive     sync.RWMutex
	lockActiveMany sync.RWMutex
	lockInvalidate sync.RWMutex
}

func (mock *activeResolverMock) Active(ctx context.Context, key domain.GroupKey) (*domain.ActiveRecord, error) {
	if mock.ActiveFunc == nil {
		panic("activeResolverMock.ActiveFunc: method is nil but activeResolver.Active was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key domain.GroupKey
	}{Ctx: ctx, Key: key}
	mock.lockActive.Lock()
	mock.calls.Active = append(mock.calls.Active, callInfo)
	mock.lockActive.Unlock()
	return mock.ActiveFunc(ctx, key)
}

func (mock *activeResolverMock) ActiveCalls() []struct {
	Ctx context.Context
	Key domain.GroupKey
} {
	mock.lockActive.RLock()
	calls := mock.calls.Active
	mock.lockActive.RUnlock()
	return calls
}

func (mock *activeResolverMock) ActiveMany(ctx context.Context, keys []domain.GroupKey) (map[domain.GroupKey]*domain.ActiveRecord, error) {
	if mock.ActiveManyFunc == nil {
		panic("activeResolverMock.ActiveManyFunc: method is nil but activeResolver.ActiveMany was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Keys []domain.GroupKey
	}{Ctx: ctx, Keys: keys}
	mock.lockActiveMany.Lock()
	mock.calls.ActiveMany = append(mock.calls.ActiveMany, callInfo)
	mock.lockActiveMany.Unlock()
	return mock.ActiveManyFunc(ctx, keys)
}

func (mock *activeResolverMock) ActiveManyCalls() []struct {
	Ctx  context.Context
	Keys []domain.GroupKey
} {
	mock.lockActiveMany.RLock()
	calls := mock.calls.ActiveMany
	mock.lockActiveMany.RUnlock()
	return calls
}

func (mock *activeResolverMock) Invalidate(key domain.GroupKey) {
	if mock.InvalidateFunc == nil {
		panic("activeResolverMock.InvalidateFunc: method is nil but activeResolver.Invalidate was just called")
	}
	callInfo := struct {
		Key domain.GroupKey
	}{Key: key}
	mock.lockInvalidate.Lock()
	mock.calls.Invalidate = append(mock.calls.Invalidate, callInfo)
	mock.lockInvalidate.Unlock()
	mock.InvalidateFunc(key)
}

func (mock *activeResolverMock) InvalidateCalls() []struct {
	Key domain.GroupKey
} {
	mock.lockInvalidate.RLock()
	calls := mock.calls.Invalidate
	mock.lockInvalidate.RUnlock()
	return calls
}
