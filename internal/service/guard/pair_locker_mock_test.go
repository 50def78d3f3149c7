package guard

import (
	"context"
	"sync"
	"time"
)

var _ pairLocker = &pairLockerMock{}

type pairLockerMock struct {
	LockPairFunc func(ctx context.Context, subjectID string, reporterUserID string, timeout time.Duration) error

	calls struct {
		LockPair []struct {
			Ctx            context.Context
			SubjectID      string
			ReporterUserID string
			Timeout        time.Duration
		}
	}
	lockLockPair sync.RWMutex
}

func (mock *pairLockerMock) LockPair(ctx context.Context, subjectID string, reporterUserID string, timeout time.Duration) error {
	if mock.LockPairFunc == nil {
		panic("pairLockerMock.LockPairFunc: method is nil but pairLocker.LockPair was just called")
	}
	callInfo := struct {
		Ctx            context.Context
		SubjectID      string
		ReporterUserID string
		Timeout        time.Duration
	}{Ctx: ctx, SubjectID: subjectID, ReporterUserID: reporterUserID, Timeout: timeout}
	mock.lockLockPair.Lock()
	mock.calls.LockPair = append(mock.calls.LockPair, callInfo)
	mock.lockLockPair.Unlock()
	return mock.LockPairFunc(ctx, subjectID, reporterUserID, timeout)
}

func (mock *pairLockerMock) LockPairCalls() []struct {
	Ctx            context.Context
	SubjectID      string
	ReporterUserID string
	Timeout        time.Duration
} {
	mock.lockLockPair.RLock()
	calls := mock.calls.LockPair
	mock.lockLockPair.RUnlock()
	return calls
}
