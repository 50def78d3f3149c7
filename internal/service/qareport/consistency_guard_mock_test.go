package qareport

import (
	"context"
	"sync"

	"github.com/heartmarshall/qareview/internal/domain"
)

var _ consistencyGuard = &consistencyGuardMock{}

type consistencyGuardMock struct {
	RequireSubjectFunc func(ctx context.Context, subjectID string) (*domain.ReviewEvent, error)
	WithPairLockFunc   func(ctx context.Context, operation string, subjectID string, reporterUserID string, fn func(ctx context.Context) error) error

	calls struct {
		RequireSubject []struct {
			Ctx       context.Context
			SubjectID string
		}
		WithPairLock []struct {
			Ctx            context.Context
			Operation      string
			SubjectID      string
			ReporterUserID string
			Fn             func(ctx context.Context) error
		}
	}
	lockRequireSubject sync.RWMutex
	lockWithPairLock   sync.RWMutex
}

func (mock *consistencyGuardMock) RequireSubject(ctx context.Context, subjectID string) (*domain.ReviewEvent, error) {
	if mock.RequireSubjectFunc == nil {
		panic("consistencyGuardMock.RequireSubjectFunc: method is nil but consistencyGuard.RequireSubject was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
	}{Ctx: ctx, SubjectID: subjectID}
	mock.lockRequireSubject.Lock()
	mock.calls.RequireSubject = append(mock.calls.RequireSubject, callInfo)
	mock.lockRequireSubject.Unlock()
	return mock.RequireSubjectFunc(ctx, subjectID)
}

func (mock *consistencyGuardMock) RequireSubjectCalls() []struct {
	Ctx       context.Context
	SubjectID string
} {
	mock.lockRequireSubject.RLock()
	calls := mock.calls.RequireSubject
	mock.lockRequireSubject.RUnlock()
	return calls
}

func (mock *consistencyGuardMock) WithPairLock(ctx context.Context, operation string, subjectID string, reporterUserID string, fn func(ctx context.Context) error) error {
	if mock.WithPairLockFunc == nil {
		panic("consistencyGuardMock.WithPairLockFunc: method is nil but consistencyGuard.WithPairLock was just called")
	}
	callInfo := struct {
		Ctx            context.Context
		Operation      string
		SubjectID      string
		ReporterUserID string
		Fn             func(ctx context.Context) error
	}{Ctx: ctx, Operation: operation, SubjectID: subjectID, ReporterUserID: reporterUserID, Fn: fn}
	mock.lockWithPairLock.Lock()
	mock.calls.WithPairLock = append(mock.calls.WithPairLock, callInfo)
	mock.lockWithPairLock.Unlock()
	return mock.WithPairLockFunc(ctx, operation, subjectID, reporterUserID, fn)
}

func (mock *consistencyGuardMock) WithPairLockCalls() []struct {
	Ctx            context.Context
	Operation      string
	SubjectID      string
	ReporterUserID string
	Fn             func(ctx context.Context) error
} {
	mock.lockWithPairLock.RLock()
	calls := mock.calls.WithPairLock
	mock.lockWithPairLock.RUnlock()
	return calls
}
