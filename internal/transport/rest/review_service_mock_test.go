package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/review"
)

var _ reviewService = &reviewServiceMock{}

type reviewServiceMock struct {
	SubmitFunc         func(ctx context.Context, input review.SubmitInput) (*review.SubmitResult, error)
	RegisterUploadFunc func(ctx context.Context, input review.UploadInput) (*review.SubmitResult, error)
	ReviewBatchFunc    func(ctx context.Context, input review.BatchInput) (*review.BatchResult, error)
	HistoryFunc        func(ctx context.Context, subjectID string) ([]domain.ReviewEvent, error)
	SearchFunc         func(ctx context.Context, input review.SearchInput) (*review.SearchResult, error)

	calls struct {
		Submit []struct {
			Ctx   context.Context
			Input review.SubmitInput
		}
		RegisterUpload []struct {
			Ctx   context.Context
			Input review.UploadInput
		}
		ReviewBatch []struct {
			Ctx   context.Context
			Input review.BatchInput
		}
		History []struct {
			Ctx       context.Context
			SubjectID string
		}
		Search []struct {
			Ctx   context.Context
			Input review.SearchInput
		}
	}
	lockSubmit         sync.RWMutex
	lockRegisterUpload sync.RWMutex
	lockReviewBatch    sync.RWMutex
	lockHistory        sync.RWMutex
	lockSearch         sync.RWMutex
}

func (mock *reviewServiceMock) Submit(ctx context.Context, input review.SubmitInput) (*review.SubmitResult, error) {
	if mock.SubmitFunc == nil {
		panic("reviewServiceMock.SubmitFunc: method is nil but reviewService.Submit was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input review.SubmitInput
	}{Ctx: ctx, Input: input}
	mock.lockSubmit.Lock()
	mock.calls.Submit = append(mock.calls.Submit, callInfo)
	mock.lockSubmit.Unlock()
	return mock.SubmitFunc(ctx, input)
}

func (mock *reviewServiceMock) SubmitCalls() []struct {
	Ctx   context.Context
	Input review.SubmitInput
} {
	mock.lockSubmit.RLock()
	calls := mock.calls.Submit
	mock.lockSubmit.RUnlock()
	return calls
}

func (mock *reviewServiceMock) RegisterUpload(ctx context.Context, input review.UploadInput) (*review.SubmitResult, error) {
	if mock.RegisterUploadFunc == nil {
		panic("reviewServiceMock.RegisterUploadFunc: method is nil but reviewService.RegisterUpload was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input review.UploadInput
	}{Ctx: ctx, Input: input}
	mock.lockRegisterUpload.Lock()
	mock.calls.RegisterUpload = append(mock.calls.RegisterUpload, callInfo)
	mock.lockRegisterUpload.Unlock()
	return mock.RegisterUploadFunc(ctx, input)
}

func (mock *reviewServiceMock) RegisterUploadCalls() []struct {
	Ctx   context.Context
	Input review.UploadInput
} {
	mock.lockRegisterUpload.RLock()
	calls := mock.calls.RegisterUpload
	mock.lockRegisterUpload.RUnlock()
	return calls
}

func (mock *reviewServiceMock) ReviewBatch(ctx context.Context, input review.BatchInput) (*review.BatchResult, error) {
	if mock.ReviewBatchFunc == nil {
		panic("reviewServiceMock.ReviewBatchFunc: method is nil but reviewService.ReviewBatch was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input review.BatchInput
	}{Ctx: ctx, Input: input}
	mock.lockReviewBatch.Lock()
	mock.calls.ReviewBatch = append(mock.calls.ReviewBatch, callInfo)
	mock.lockReviewBatch.Unlock()
	return mock.ReviewBatchFunc(ctx, input)
}

func (mock *reviewServiceMock) ReviewBatchCalls() []struct {
	Ctx   context.Context
	Input review.BatchInput
} {
	mock.lockReviewBatch.RLock()
	calls := mock.calls.ReviewBatch
	mock.lockReviewBatch.RUnlock()
	return calls
}

func (mock *reviewServiceMock) History(ctx context.Context, subjectID string) ([]domain.ReviewEvent, error) {
	if mock.HistoryFunc == nil {
		panic("reviewServiceMock.HistoryFunc: method is nil but reviewService.History was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		SubjectID string
	}{Ctx: ctx, SubjectID: subjectID}
	mock.lockHistory.Lock()
	mock.calls.History = append(mock.calls.History, callInfo)
	mock.lockHistory.Unlock()
	return mock.HistoryFunc(ctx, subjectID)
}

func (mock *reviewServiceMock) HistoryCalls() []struct {
	Ctx       context.Context
	SubjectID string
} {
	mock.lockHistory.RLock()
	calls := mock.calls.History
	mock.lockHistory.RUnlock()
	return calls
}

func (mock *reviewServiceMock) Search(ctx context.Context, input review.SearchInput) (*review.SearchResult, error) {
	if mock.SearchFunc == nil {
		panic("reviewServiceMock.SearchFunc: method is nil but reviewService.Search was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input review.SearchInput
	}{Ctx: ctx, Input: input}
	mock.lockSearch.Lock()
	mock.calls.Search = append(mock.calls.Search, callInfo)
	mock.lockSearch.Unlock()
	return mock.SearchFunc(ctx, input)
}

func (mock *reviewServiceMock) SearchCalls() []struct {
	Ctx   context.Context
	Input review.SearchInput
} {
	mock.lockSearch.RLock()
	calls := mock.calls.Search
	mock.lockSearch.RUnlock()
	return calls
}
