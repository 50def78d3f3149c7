package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/queue"
)

const maxGroupKeys = 1000

// activeResolver defines the operations needed by ActiveHandler.
type activeResolver interface {
	Active(ctx context.Context, key domain.GroupKey) (*domain.ActiveRecord, error)
	ActiveMany(ctx context.Context, keys []domain.GroupKey) (map[domain.GroupKey]*domain.ActiveRecord, error)
}

// queueService defines the operations needed by ActiveHandler.
type queueService interface {
	ListPending(ctx context.Context, input queue.ListPendingInput) ([]domain.ReviewQueueItem, error)
	CountPending(ctx context.Context, filter domain.QueueFilter) (int, error)
}

// ActiveHandler serves the derived views: active records and the review
// queue.
type ActiveHandler struct {
	resolver activeResolver
	queue    queueService
	log      *slog.Logger
}

// NewActiveHandler creates an ActiveHandler.
func NewActiveHandler(resolver activeResolver, queue queueService, logger *slog.Logger) *ActiveHandler {
	return &ActiveHandler{resolver: resolver, queue: queue, log: logger.With("handler", "active")}
}

type activeRecordResponse struct {
	GroupKey   groupKeyJSON `json:"groupKey"`
	SubjectID  *string      `json:"subjectId"`
	EventID    *string      `json:"eventId,omitempty"`
	AcceptedAt *time.Time   `json:"acceptedAt,omitempty"`
}

type activeRecordsRequest struct {
	GroupKeys []groupKeyJSON `json:"groupKeys"`
}

type queueItemResponse struct {
	SubjectID      string       `json:"subjectId"`
	GroupKey       groupKeyJSON `json:"groupKey"`
	EventID        string       `json:"eventId"`
	PendingSince   time.Time    `json:"pendingSince"`
	ReporterUserID string       `json:"reporterUserId"`
}

type queueResponse struct {
	Items      []queueItemResponse `json:"items"`
	SubjectIDs []string            `json:"subjectIds"`
}

type countResponse struct {
	Count int `json:"count"`
}

// ActiveRecord handles GET /api/v1/active-record.
func (h *ActiveHandler) ActiveRecord(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	key := q.groupKey()
	if err := q.err(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	rec, err := h.resolver.Active(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toActiveRecordResponse(key, rec))
}

// ActiveRecords handles POST /api/v1/active-records. Results keep the
// request order; repeated keys are answered once per occurrence.
func (h *ActiveHandler) ActiveRecords(w http.ResponseWriter, r *http.Request) {
	var req activeRecordsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.GroupKeys) > maxGroupKeys {
		writeServiceError(w, r, h.log, domain.NewValidationError("groupKeys", "too many"))
		return
	}

	keys := make([]domain.GroupKey, len(req.GroupKeys))
	var errs []domain.FieldError
	for i, k := range req.GroupKeys {
		keys[i] = k.toDomain()
		if k.EntityID == "" || k.LogicalType == "" || k.ReportingPeriod == "" {
			errs = append(errs, domain.FieldError{Field: "groupKeys", Message: "incomplete group key"})
		}
	}
	if len(errs) > 0 {
		writeServiceError(w, r, h.log, domain.NewValidationErrors(errs))
		return
	}

	records, err := h.resolver.ActiveMany(r.Context(), keys)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	out := make([]activeRecordResponse, len(keys))
	for i, k := range keys {
		out[i] = toActiveRecordResponse(k, records[k])
	}
	writeJSON(w, http.StatusOK, out)
}

// Queue handles GET /api/v1/review-queue.
func (h *ActiveHandler) Queue(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	input := queue.ListPendingInput{
		Filter: queueFilter(q),
		Limit:  q.intParam("limit", 0),
		Offset: q.intParam("offset", 0),
	}
	if err := q.err(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	items, err := h.queue.ListPending(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	resp := queueResponse{
		Items:      make([]queueItemResponse, len(items)),
		SubjectIDs: make([]string, len(items)),
	}
	for i, it := range items {
		resp.Items[i] = queueItemResponse{
			SubjectID:      it.SubjectID,
			GroupKey:       toGroupKeyJSON(it.GroupKey),
			EventID:        it.EventID.String(),
			PendingSince:   it.PendingSince,
			ReporterUserID: it.ReporterUserID,
		}
		resp.SubjectIDs[i] = it.SubjectID
	}
	writeJSON(w, http.StatusOK, resp)
}

// QueueCount handles GET /api/v1/review-queue/count.
func (h *ActiveHandler) QueueCount(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := queueFilter(q)
	if err := q.err(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	count, err := h.queue.CountPending(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func queueFilter(q *queryReader) domain.QueueFilter {
	return domain.QueueFilter{
		EntityID:        q.optString("entityId"),
		LogicalType:     q.optString("logicalType"),
		ReportingPeriod: q.optString("reportingPeriod"),
	}
}

func toActiveRecordResponse(key domain.GroupKey, rec *domain.ActiveRecord) activeRecordResponse {
	resp := activeRecordResponse{GroupKey: toGroupKeyJSON(key)}
	if rec == nil {
		return resp
	}
	eventID := rec.EventID.String()
	acceptedAt := rec.AcceptedAt
	resp.SubjectID = &rec.SubjectID
	resp.EventID = &eventID
	resp.AcceptedAt = &acceptedAt
	return resp
}
