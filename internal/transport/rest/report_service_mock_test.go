package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/qareport"
)

var _ reportService = &reportServiceMock{}

type reportServiceMock struct {
	SubmitFunc      func(ctx context.Context, input qareport.SubmitInput) (*domain.QaReport, error)
	GetFunc         func(ctx context.Context, subjectID string, reportID uuid.UUID) (*domain.QaReport, error)
	SearchFunc      func(ctx context.Context, filter domain.ReportFilter) ([]domain.QaReport, error)
	CountActiveFunc func(ctx context.Context, subjectIDs []string) (int, error)
	SetActiveFunc   func(ctx context.Context, input qareport.SetActiveInput) (*domain.QaReport, error)

	calls struct {
		Submit []struct {
			Ctx   context.Context
			Input qareport.SubmitInput
		}
		Get []struct {
			Ctx       context.Context
			SubjectID string
			ReportID  uuid.UUID
		}
		Search []struct {
			Ctx    context.Context
			Filter domain.ReportFilter
		}
		CountActive []struct {
			Ctx        context.Context
			SubjectIDs []string
		}
		SetActive []struct {
			Ctx   context.Context
			Input qareport.SetActiveInput
		}
	}
	lockSubmit      sync.RWMutex
	lockGet         sync.RWMutex
	lockSearch      sync.RWMutex
	lockCountActive sync.RWMutex
	lockSetActive   sync.RWMutex
}

func (mock *reportServiceMock) Submit(ctx context.Context, input qareport.SubmitInput) (*domain.QaReport, error) {
	if mock.SubmitFunc == nil {
		panic("reportServiceMock.SubmitFunc: method is nil but reportService.Submit was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input qareport.SubmitInput
	}{Ctx: ctx, Input: input}
	mock.lockSubmit.Lock()
	mock.calls.Submit = append(mock.calls.Submit, callInfo)
	mock.lockSubmit.Unlock()
	return mock.SubmitFunc(ctx, input)
}

func (mock *reportServiceMock) SubmitCalls() []struct {
	Ctx   context.Context
	Input qareport.SubmitInput
} {
	mock.lockSubmit.RLock()
	calls := mock.calls.Submit
	mock.lockSubmit.RUnlock()
	return calls
}

func (mock *reportServiceMock) Get(ctx context.Context, subjectID string, reportID uuid.UUID) (*domain.QaReport, error) {
	if mock.GetFunc == nil {
		panic("reportServiceMock.GetFunc: method is nil but reportService.Get was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
		ReportID  uuid.UUID
	}{Ctx: ctx, SubjectID: subjectID, ReportID: reportID}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, subjectID, reportID)
}

func (mock *reportServiceMock) GetCalls() []struct {
	Ctx       context.Context
	SubjectID string
	ReportID  uuid.UUID
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

func (mock *reportServiceMock) Search(ctx context.Context, filter domain.ReportFilter) ([]domain.QaReport, error) {
	if mock.SearchFunc == nil {
		panic("reportServiceMock.SearchFunc: method is nil but reportService.Search was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.ReportFilter
	}{Ctx: ctx, Filter: filter}
	mock.lockSearch.Lock()
	mock.calls.Search = append(mock.calls.Search, callInfo)
	mock.lockSearch.Unlock()
	return mock.SearchFunc(ctx, filter)
}

func (mock *reportServiceMock) SearchCalls() []struct {
	Ctx    context.Context
	Filter domain.ReportFilter
} {
	mock.lockSearch.RLock()
	calls := mock.calls.Search
	mock.lockSearch.RUnlock()
	return calls
}

func (mock *reportServiceMock) CountActive(ctx context.Context, subjectIDs []string) (int, error) {
	if mock.CountActiveFunc == nil {
		panic("reportServiceMock.CountActiveFunc: method is nil but reportService.CountActive was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		SubjectIDs []string
	}{Ctx: ctx, SubjectIDs: subjectIDs}
	mock.lockCountActive.Lock()
	mock.calls.CountActive = append(mock.calls.CountActive, callInfo)
	mock.lockCountActive.Unlock()
	return mock.CountActiveFunc(ctx, subjectIDs)
}

func (mock *reportServiceMock) CountActiveCalls() []struct {
	Ctx        context.Context
	SubjectIDs []string
} {
	mock.lockCountActive.RLock()
	calls := mock.calls.CountActive
	mock.lockCountActive.RUnlock()
	return calls
}

func (mock *reportServiceMock) SetActive(ctx context.Context, input qareport.SetActiveInput) (*domain.QaReport, error) {
	if mock.SetActiveFunc == nil {
		panic("reportServiceMock.SetActiveFunc: method is nil but reportService.SetActive was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input qareport.SetActiveInput
	}{Ctx: ctx, Input: input}
	mock.lockSetActive.Lock()
	mock.calls.SetActive = append(mock.calls.SetActive, callInfo)
	mock.lockSetActive.Unlock()
	return mock.SetActiveFunc(ctx, input)
}

func (mock *reportServiceMock) SetActiveCalls() []struct {
	Ctx   context.Context
	Input qareport.SetActiveInput
} {
	mock.lockSetActive.RLock()
	calls := mock.calls.SetActive
	mock.lockSetActive.RUnlock()
	return calls
}
