// Package queue exposes the review queue: subjects whose latest review
// event is Pending. The queue is a live view over the event store; nothing
// is dequeued.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/qareview/internal/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

type eventRepo interface {
	ListPending(ctx context.Context, filter domain.QueueFilter, limit, offset int) ([]domain.ReviewEvent, error)
	CountPending(ctx context.Context, filter domain.QueueFilter) (int, error)
}

// Service provides review queue reads.
type Service struct {
	events       eventRepo
	defaultLimit int
	maxLimit     int
	log          *slog.Logger
}

// NewService creates a new queue service. Non-positive limits fall back to
// DefaultLimit and MaxLimit.
func NewService(log *slog.Logger, events eventRepo, defaultLimit, maxLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return &Service{
		events:       events,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		log:          log.With("service", "queue"),
	}
}

// ListPendingInput holds the parameters for listing the review queue.
type ListPendingInput struct {
	Filter domain.QueueFilter
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i ListPendingInput) Validate(maxLimit int) error {
	var errs []domain.FieldError
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > maxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("max %d", maxLimit)})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	errs = append(errs, validateFilter(i.Filter)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateFilter(f domain.QueueFilter) []domain.FieldError {
	var errs []domain.FieldError
	check := func(field string, v *string) {
		if v != nil && *v == "" {
			errs = append(errs, domain.FieldError{Field: field, Message: "must not be empty when set"})
		}
	}
	check("entity_id", f.EntityID)
	check("logical_type", f.LogicalType)
	check("reporting_period", f.ReportingPeriod)
	return errs
}

// ListPending returns queue items oldest first, ordered by the pending
// event's (recorded_at, id). A subject that goes back to Pending moves to the
// position of its new event.
func (s *Service) ListPending(ctx context.Context, input ListPendingInput) ([]domain.ReviewQueueItem, error) {
	if err := input.Validate(s.maxLimit); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	events, err := s.events.ListPending(ctx, input.Filter, limit, input.Offset)
	if err != nil {
		return nil, fmt.Errorf("list review queue: %w", err)
	}

	items := make([]domain.ReviewQueueItem, len(events))
	for i, ev := range events {
		items[i] = domain.ReviewQueueItem{
			SubjectID:      ev.SubjectID,
			GroupKey:       ev.GroupKey,
			EventID:        ev.ID,
			PendingSince:   ev.RecordedAt,
			ReporterUserID: ev.ReporterUserID,
		}
	}
	return items, nil
}

// CountPending returns the number of queued subjects matching filter.
func (s *Service) CountPending(ctx context.Context, filter domain.QueueFilter) (int, error) {
	if errs := validateFilter(filter); len(errs) > 0 {
		return 0, domain.NewValidationErrors(errs)
	}

	count, err := s.events.CountPending(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count review queue: %w", err)
	}
	return count, nil
}
