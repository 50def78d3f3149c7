package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/review"
	"github.com/heartmarshall/qareview/pkg/ctxutil"
)

// reviewService defines the operations needed by ReviewHandler.
type reviewService interface {
	Submit(ctx context.Context, input review.SubmitInput) (*review.SubmitResult, error)
	RegisterUpload(ctx context.Context, input review.UploadInput) (*review.SubmitResult, error)
	ReviewBatch(ctx context.Context, input review.BatchInput) (*review.BatchResult, error)
	History(ctx context.Context, subjectID string) ([]domain.ReviewEvent, error)
	Search(ctx context.Context, input review.SearchInput) (*review.SearchResult, error)
}

// ReviewHandler serves review event endpoints.
type ReviewHandler struct {
	svc reviewService
	log *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc reviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: logger.With("handler", "review")}
}

type groupKeyJSON struct {
	EntityID        string `json:"entityId"`
	LogicalType     string `json:"logicalType"`
	ReportingPeriod string `json:"reportingPeriod"`
}

func (k groupKeyJSON) toDomain() domain.GroupKey {
	return domain.GroupKey{
		EntityID:        k.EntityID,
		LogicalType:     k.LogicalType,
		ReportingPeriod: k.ReportingPeriod,
	}
}

func toGroupKeyJSON(k domain.GroupKey) groupKeyJSON {
	return groupKeyJSON{
		EntityID:        k.EntityID,
		LogicalType:     k.LogicalType,
		ReportingPeriod: k.ReportingPeriod,
	}
}

type submitReviewRequest struct {
	SubjectID      string       `json:"subjectId"`
	GroupKey       groupKeyJSON `json:"groupKey"`
	Status         string       `json:"status"`
	ReporterUserID string       `json:"reporterUserId"`
	Comment        *string      `json:"comment"`
}

type uploadRequest struct {
	SubjectID      string       `json:"subjectId"`
	GroupKey       groupKeyJSON `json:"groupKey"`
	UploaderUserID string       `json:"uploaderUserId"`
	BypassQA       bool         `json:"bypassQa"`
}

type batchReviewRequest struct {
	SubjectIDs     []string `json:"subjectIds"`
	Status         string   `json:"status"`
	ReporterUserID string   `json:"reporterUserId"`
	Comment        *string  `json:"comment"`
	Overwrite      bool     `json:"overwrite"`
}

type eventResponse struct {
	EventID        string       `json:"eventId"`
	SubjectID      string       `json:"subjectId"`
	GroupKey       groupKeyJSON `json:"groupKey"`
	Status         string       `json:"status"`
	ReporterUserID string       `json:"reporterUserId"`
	Comment        *string      `json:"comment,omitempty"`
	CorrelationID  string       `json:"correlationId,omitempty"`
	RecordedAt     time.Time    `json:"recordedAt"`
}

type submitResponse struct {
	EventID   string        `json:"eventId"`
	Duplicate bool          `json:"duplicate"`
	Event     eventResponse `json:"event"`
}

type batchResponse struct {
	Events  []eventResponse `json:"events"`
	Skipped []string        `json:"skipped"`
}

type searchResponse struct {
	Events []eventResponse `json:"events"`
	Total  int             `json:"total"`
}

// Submit handles POST /api/v1/reviews.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Submit(r.Context(), review.SubmitInput{
		SubjectID:      req.SubjectID,
		GroupKey:       req.GroupKey.toDomain(),
		Status:         domain.QaStatus(req.Status),
		ReporterUserID: req.ReporterUserID,
		Comment:        req.Comment,
		CorrelationID:  correlationID(r),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, submitStatus(result), toSubmitResponse(result))
}

// Upload handles POST /api/v1/uploads.
func (h *ReviewHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.RegisterUpload(r.Context(), review.UploadInput{
		SubjectID:      req.SubjectID,
		GroupKey:       req.GroupKey.toDomain(),
		UploaderUserID: req.UploaderUserID,
		BypassQA:       req.BypassQA,
		CorrelationID:  correlationID(r),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, submitStatus(result), toSubmitResponse(result))
}

// Batch handles POST /api/v1/reviews/batch.
func (h *ReviewHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.ReviewBatch(r.Context(), review.BatchInput{
		SubjectIDs:     req.SubjectIDs,
		Status:         domain.QaStatus(req.Status),
		ReporterUserID: req.ReporterUserID,
		Comment:        req.Comment,
		CorrelationID:  correlationID(r),
		Overwrite:      req.Overwrite,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	writeJSON(w, http.StatusOK, batchResponse{
		Events:  toEventResponses(result.Events),
		Skipped: skipped,
	})
}

// History handles GET /api/v1/reviews/{subjectId}.
func (h *ReviewHandler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.History(r.Context(), r.PathValue("subjectId"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponses(events))
}

// Search handles GET /api/v1/reviews.
func (h *ReviewHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	input := review.SearchInput{
		Filter: domain.ReviewFilter{
			EntityID:        q.optString("entityId"),
			LogicalType:     q.optString("logicalType"),
			ReportingPeriod: q.optString("reportingPeriod"),
			ReporterUserID:  q.optString("reporterUserId"),
		},
		OnlyLatest: q.boolParam("onlyLatest"),
		Limit:      q.intParam("limit", 0),
		Offset:     q.intParam("offset", 0),
	}
	if raw := q.optString("status"); raw != nil {
		status := domain.QaStatus(*raw)
		input.Filter.Status = &status
	}
	if err := q.err(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	result, err := h.svc.Search(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Events: toEventResponses(result.Events),
		Total:  result.Total,
	})
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

// submitStatus is 201 for a new event and 200 when an earlier identical
// submission absorbed this one.
func submitStatus(result *review.SubmitResult) int {
	if result.Duplicate {
		return http.StatusOK
	}
	return http.StatusCreated
}

func toSubmitResponse(result *review.SubmitResult) submitResponse {
	ev := toEventResponse(*result.Event)
	return submitResponse{
		EventID:   ev.EventID,
		Duplicate: result.Duplicate,
		Event:     ev,
	}
}

func toEventResponse(ev domain.ReviewEvent) eventResponse {
	return eventResponse{
		EventID:        ev.ID.String(),
		SubjectID:      ev.SubjectID,
		GroupKey:       toGroupKeyJSON(ev.GroupKey),
		Status:         ev.Status.String(),
		ReporterUserID: ev.ReporterUserID,
		Comment:        ev.Comment,
		CorrelationID:  ev.CorrelationID,
		RecordedAt:     ev.RecordedAt,
	}
}

func toEventResponses(events []domain.ReviewEvent) []eventResponse {
	out := make([]eventResponse, len(events))
	for i, ev := range events {
		out[i] = toEventResponse(ev)
	}
	return out
}

// correlationID prefers an explicit header and falls back to the request id.
func correlationID(r *http.Request) string {
	if id := r.Header.Get("X-Correlation-ID"); id != "" {
		return id
	}
	return ctxutil.RequestIDFromCtx(r.Context())
}
