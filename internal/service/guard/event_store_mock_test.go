package guard

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/qareview/internal/domain"
)

var _ eventStore = &eventStoreMock{}

type eventStoreMock struct {
	FirstBySubjectFunc func(ctx context.Context, subjectID string, order domain.SortOrder) (*domain.ReviewEvent, error)
	FindDuplicateFunc  func(ctx context.Context, subjectID string, hash []byte, window time.Duration) (*domain.ReviewEvent, error)

	calls struct {
		FirstBySubject []struct {
			Ctx       context.Context
			SubjectID string
			Order     domain.SortOrder
		}
		FindDuplicate []struct {
			Ctx       context.Context
			SubjectID string
			Hash      []byte
			Window    time.Duration
		}
	}
	lockFirstBySubject sync.RWMutex
	lockFindDuplicate  sync.RWMutex
}

func (mock *eventStoreMock) FirstBySubject(ctx context.Context, subjectID string, order domain.SortOrder) (*domain.ReviewEvent, error) {
	if mock.FirstBySubjectFunc == nil {
		panic("eventStoreMock.FirstBySubjectFunc: method is nil but eventStore.FirstBySubject was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
		Order     domain.SortOrder
	}{Ctx: ctx, SubjectID: subjectID, Order: order}
	mock.lockFirstBySubject.Lock()
	mock.calls.FirstBySubject = append(mock.calls.FirstBySubject, callInfo)
	mock.lockFirstBySubject.Unlock()
	return mock.FirstBySubjectFunc(ctx, subjectID, order)
}

func (mock *eventStoreMock) FirstBySubjectCalls() []struct {
	Ctx       context.Context
	SubjectID string
	Order     domain.SortOrder
} {
	mock.lockFirstBySubject.RLock()
	calls := mock.calls.FirstBySubject
	mock.lockFirstBySubject.RUnlock()
	return calls
}

func (mock *eventStoreMock) FindDuplicate(ctx context.Context, subjectID string, hash []byte, window time.Duration) (*domain.ReviewEvent, error) {
	if mock.FindDuplicateFunc == nil {
		panic("eventStoreMock.FindDuplicateFunc: method is nil but eventStore.FindDuplicate was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
		Hash      []byte
		Window    time.Duration
	}{Ctx: ctx, SubjectID: subjectID, Hash: hash, Window: window}
	mock.lockFindDuplicate.Lock()
	mock.calls.FindDuplicate = append(mock.calls.FindDuplicate, callInfo)
	mock.lockFindDuplicate.Unlock()
	return mock.FindDuplicateFunc(ctx, subjectID, hash, window)
}

func (mock *eventStoreMock) FindDuplicateCalls() []struct {
	Ctx       context.Context
	SubjectID string
	Hash      []byte
	Window    time.Duration
} {
	mock.lockFindDuplicate.RLock()
	calls := mock.calls.FindDuplicate
	mock.lockFindDuplicate.RUnlock()
	return calls
}
