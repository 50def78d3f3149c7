package review

import (
	"context"
	"sync"

	"github.com/heartmarshall/qareview/internal/domain"
)

var _ consistencyGuard = &consistencyGuardMock{}

type consistencyGuardMock struct {
	CheckStatusFunc   func(status domain.QaStatus) error
	CheckSubjectFunc  func(ctx context.Context, subjectID string, key domain.GroupKey, allowNew bool) (*domain.ReviewEvent, error)
	FindDuplicateFunc func(ctx context.Context, subjectID string, hash []byte) (*domain.ReviewEvent, error)

	calls struct {
		CheckStatus []struct {
			Status domain.QaStatus
		}
		CheckSubject []struct {
			Ctx       context.Context
			SubjectID string
			Key       domain.GroupKey
			AllowNew  bool
		}
		FindDuplicate []struct {
			Ctx       context.Context
			SubjectID string
			Hash      []byte
		}
	}
	lockCheckStatus   sync.RWMutex
	lockCheckSubject  sync.RWMutex
	lockFindDuplicate sync.RWMutex
}

func (mock *consistencyGuardMock) CheckStatus(status domain.QaStatus) error {
	if mock.CheckStatusFunc == nil {
		panic("consistencyGuardMock.CheckStatusFunc: method is nil but consistencyGuard.CheckStatus was just called")
	}
	callInfo := struct {
		Status domain.QaStatus
	}{Status: status}
	mock.lockCheckStatus.Lock()
	mock.calls.CheckStatus = append(mock.calls.CheckStatus, callInfo)
	mock.lockCheckStatus.Unlock()
	return mock.CheckStatusFunc(status)
}

func (mock *consistencyGuardMock) CheckStatusCalls() []struct {
	Status domain.QaStatus
} {
	mock.lockCheckStatus.RLock()
	calls := mock.calls.CheckStatus
	mock.lockCheckStatus.RUnlock()
	return calls
}

func (mock *consistencyGuardMock) CheckSubject(ctx context.Context, subjectID string, key domain.GroupKey, allowNew bool) (*domain.ReviewEvent, error) {
	if mock.CheckSubjectFunc == nil {
		panic("consistencyGuardMock.CheckSubjectFunc: method is nil but consistencyGuard.CheckSubject was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
		Key       domain.GroupKey
		AllowNew  bool
	}{Ctx: ctx, SubjectID: subjectID, Key: key, AllowNew: allowNew}
	mock.lockCheckSubject.Lock()
	mock.calls.CheckSubject = append(mock.calls.CheckSubject, callInfo)
	mock.lockCheckSubject.Unlock()
	return mock.CheckSubjectFunc(ctx, subjectID, key, allowNew)
}

func (mock *consistencyGuardMock) CheckSubjectCalls() []struct {
	Ctx       context.Context
	SubjectID string
	Key       domain.GroupKey
	AllowNew  bool
} {
	mock.lockCheckSubject.RLock()
	calls := mock.calls.CheckSubject
	mock.lockCheckSubject.RUnlock()
	return calls
}

func (mock *consistencyGuardMock) FindDuplicate(ctx context.Context, subjectID string, hash []byte) (*domain.ReviewEvent, error) {
	if mock.FindDuplicateFunc == nil {
		panic("consistencyGuardMock.FindDuplicateFunc: method is nil but consistencyGuard.FindDuplicate was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
		Hash      []byte
	}{Ctx: ctx, SubjectID: subjectID, Hash: hash}
	mock.lockFindDuplicate.Lock()
	mock.calls.FindDuplicate = append(mock.calls.FindDuplicate, callInfo)
	mock.lockFindDuplicate.Unlock()
	return mock.FindDuplicateFunc(ctx, subjectID, hash)
}

func (mock *consistencyGuardMock) FindDuplicateCalls() []struct {
	Ctx       context.Context
	SubjectID string
	Hash      []byte
} {
	mock.lockFindDuplicate.RLock()
	calls := mock.calls.FindDuplicate
	mock.lockFindDuplicate.RUnlock()
	return calls
}
