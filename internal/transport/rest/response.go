package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/qareview/internal/domain"
)

const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service error onto a status code. Only the
// error kind and message reach the client; internal causes are logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := errorResponse{Error: "validation error"}
		for _, fe := range verr.Errors {
			resp.Fields = append(resp.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConcurrentModification), errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "concurrent modification, retry the request")
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	case errors.Is(err, context.Canceled):
		log.DebugContext(r.Context(), "request canceled", slog.String("path", r.URL.Path))
		writeError(w, http.StatusServiceUnavailable, "request canceled")
	default:
		log.ErrorContext(r.Context(), "internal error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a single JSON object from the body. Unknown fields are
// rejected so that typos do not silently change meaning.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Query parameters
// ---------------------------------------------------------------------------

type queryReader struct {
	r    *http.Request
	errs []domain.FieldError
}

func newQueryReader(r *http.Request) *queryReader {
	return &queryReader{r: r}
}

// optString returns nil when the parameter is absent.
func (q *queryReader) optString(name string) *string {
	values := q.r.URL.Query()
	if !values.Has(name) {
		return nil
	}
	v := values.Get(name)
	return &v
}

func (q *queryReader) intParam(name string, def int) int {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs = append(q.errs, domain.FieldError{Field: name, Message: "must be an integer"})
		return def
	}
	return n
}

func (q *queryReader) boolParam(name string) bool {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.errs = append(q.errs, domain.FieldError{Field: name, Message: "must be a boolean"})
	}
	return b
}

func (q *queryReader) err() error {
	if len(q.errs) > 0 {
		return domain.NewValidationErrors(q.errs)
	}
	return nil
}

// groupKey reads the three group key parameters, all required.
func (q *queryReader) groupKey() domain.GroupKey {
	values := q.r.URL.Query()
	key := domain.GroupKey{
		EntityID:        values.Get("entityId"),
		LogicalType:     values.Get("logicalType"),
		ReportingPeriod: values.Get("reportingPeriod"),
	}
	q.required("entityId", key.EntityID)
	q.required("logicalType", key.LogicalType)
	q.required("reportingPeriod", key.ReportingPeriod)
	return key
}

func (q *queryReader) required(name, v string) {
	if v == "" {
		q.errs = append(q.errs, domain.FieldError{Field: name, Message: "required"})
	}
}
