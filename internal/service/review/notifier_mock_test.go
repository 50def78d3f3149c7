package review

import (
	"sync"

	"github.com/heartmarshall/qareview/internal/domain"
)

var _ notifier = &notifierMock{}

type notifierMock struct {
	NotifyFunc func(ev domain.StatusChanged) bool

	calls struct {
		Notify []struct {
			Ev domain.StatusChanged
		}
	}
	lockNotify sync.RWMutex
}

func (mock *notifierMock) Notify(ev domain.StatusChanged) bool {
	if mock.NotifyFunc == nil {
		panic("notifierMock.NotifyFunc: method is nil but notifier.Notify was just called")
	}
	callInfo := struct {
		Ev domain.StatusChanged
	}{Ev: ev}
	mock.lockNotify.Lock()
	mock.calls.Notify = append(mock.calls.Notify, callInfo)
	mock.lockNotify.Unlock()
	return mock.NotifyFunc(ev)
}

func (mock *notifierMock) NotifyCalls() []struct {
	Ev domain.StatusChanged
} {
	mock.lockNotify.RLock()
	calls := mock.calls.Notify
	mock.lockNotify.RUnlock()
	return calls
}
