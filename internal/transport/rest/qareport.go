package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/qareport"
)

// reportService defines the operations needed by ReportHandler.
type reportService interface {
	Submit(ctx context.Context, input qareport.SubmitInput) (*domain.QaReport, error)
	Get(ctx context.Context, subjectID string, reportID uuid.UUID) (*domain.QaReport, error)
	Search(ctx context.Context, filter domain.ReportFilter) ([]domain.QaReport, error)
	CountActive(ctx context.Context, subjectIDs []string) (int, error)
	SetActive(ctx context.Context, input qareport.SetActiveInput) (*domain.QaReport, error)
}

// ReportHandler serves QA report endpoints.
type ReportHandler struct {
	svc reportService
	log *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(svc reportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: logger.With("handler", "qa_report")}
}

type submitReportRequest struct {
	SubjectID      string  `json:"subjectId"`
	ReporterUserID string  `json:"reporterUserId"`
	Content        string  `json:"content"`
	Verdict        *string `json:"verdict"`
	Comment        *string `json:"comment"`
}

type setActiveRequest struct {
	SubjectID string `json:"subjectId"`
	Active    *bool  `json:"active"`
}

type countReportsRequest struct {
	SubjectIDs []string `json:"subjectIds"`
}

type reportResponse struct {
	ReportID       string    `json:"reportId"`
	SubjectID      string    `json:"subjectId"`
	ReporterUserID string    `json:"reporterUserId"`
	Active         bool      `json:"active"`
	Content        string    `json:"content"`
	Verdict        *string   `json:"verdict,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Submit handles POST /api/v1/qa-reports.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := qareport.SubmitInput{
		SubjectID:      req.SubjectID,
		ReporterUserID: req.ReporterUserID,
		Content:        req.Content,
		Comment:        req.Comment,
		CorrelationID:  correlationID(r),
	}
	if req.Verdict != nil {
		v := domain.QaReportVerdict(*req.Verdict)
		input.Verdict = &v
	}

	report, err := h.svc.Submit(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReportResponse(*report))
}

// List handles GET /api/v1/qa-reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := domain.ReportFilter{
		SubjectID:      r.URL.Query().Get("subjectId"),
		ReporterUserID: q.optString("reporterUserId"),
		ShowInactive:   q.boolParam("showInactive"),
	}
	q.required("subjectId", filter.SubjectID)
	if err := q.err(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	reports, err := h.svc.Search(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	out := make([]reportResponse, len(reports))
	for i, rep := range reports {
		out[i] = toReportResponse(rep)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/qa-reports/{reportId}?subjectId=.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}

	q := newQueryReader(r)
	subjectID := r.URL.Query().Get("subjectId")
	q.required("subjectId", subjectID)
	if err := q.err(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	report, err := h.svc.Get(r.Context(), subjectID, reportID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(*report))
}

// SetActive handles PATCH /api/v1/qa-reports/{reportId}.
func (h *ReportHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}

	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Active == nil {
		writeServiceError(w, r, h.log, domain.NewValidationError("active", "required"))
		return
	}

	report, err := h.svc.SetActive(r.Context(), qareport.SetActiveInput{
		ReportID:  reportID,
		SubjectID: req.SubjectID,
		Active:    *req.Active,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(*report))
}

// Count handles POST /api/v1/qa-reports/count.
func (h *ReportHandler) Count(w http.ResponseWriter, r *http.Request) {
	var req countReportsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.svc.CountActive(r.Context(), req.SubjectIDs)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *ReportHandler) reportID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("reportId"))
	if err != nil {
		writeServiceError(w, r, h.log, domain.NewValidationError("reportId", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func toReportResponse(rep domain.QaReport) reportResponse {
	resp := reportResponse{
		ReportID:       rep.ID.String(),
		SubjectID:      rep.SubjectID,
		ReporterUserID: rep.ReporterUserID,
		Active:         rep.Active,
		Content:        rep.Content,
		CreatedAt:      rep.CreatedAt,
		UpdatedAt:      rep.UpdatedAt,
	}
	if rep.Verdict != nil {
		v := rep.Verdict.String()
		resp.Verdict = &v
	}
	return resp
}
