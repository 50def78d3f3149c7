package guard

import (
	"context"
	"sync"
)

var _ subjectRegistry = &subjectRegistryMock{}

type subjectRegistryMock struct {
	ExistsFunc func(ctx context.Context, subjectID string) (bool, error)

	calls struct {
		Exists []struct {
			Ctx       context.Context
			SubjectID string
		}
	}
	lockExists sync.RWMutex
}

func (mock *subjectRegistryMock) Exists(ctx context.Context, subjectID string) (bool, error) {
	if mock.ExistsFunc == nil {
		panic("subjectRegistryMock.ExistsFunc: method is nil but subjectRegistry.Exists was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
	}{Ctx: ctx, SubjectID: subjectID}
	mock.lockExists.Lock()
	mock.calls.Exists = append(mock.calls.Exists, callInfo)
	mock.lockExists.Unlock()
	return mock.ExistsFunc(ctx, subjectID)
}

func (mock *subjectRegistryMock) ExistsCalls() []struct {
	Ctx       context.Context
	SubjectID string
} {
	mock.lockExists.RLock()
	calls := mock.calls.Exists
	mock.lockExists.RUnlock()
	return calls
}
