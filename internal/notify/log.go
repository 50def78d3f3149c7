package notify

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/qareview/internal/domain"
)

// LogPublisher writes status changes to the structured log. It is the
// default driver when no broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With("component", "notify")}
}

func (p *LogPublisher) Name() string { return "log" }

func (p *LogPublisher) Publish(ctx context.Context, ev domain.StatusChanged) error {
	attrs := []any{
		slog.String("subject_id", ev.SubjectID),
		slog.String("group_key", ev.GroupKey.String()),
		slog.String("status", string(ev.Status)),
		slog.String("event_id", ev.EventID.String()),
	}
	if ev.CurrentlyActiveSubjectID != nil {
		attrs = append(attrs, slog.String("active_subject_id", *ev.CurrentlyActiveSubjectID))
	}
	if ev.CorrelationID != "" {
		attrs = append(attrs, slog.String("correlation_id", ev.CorrelationID))
	}
	p.log.InfoContext(ctx, "qa status changed", attrs...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NopPublisher discards every fact.
type NopPublisher struct{}

func (NopPublisher) Name() string                                        { return "none" }
func (NopPublisher) Publish(context.Context, domain.StatusChanged) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
