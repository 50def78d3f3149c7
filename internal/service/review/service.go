// Package review orchestrates writes to and reads from the review event log:
// status submissions, upload registration, batch review and history reads.
package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
	"github.com/heartmarshall/qareview/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type eventRepo interface {
	Append(ctx context.Context, ev *domain.ReviewEvent) (*domain.ReviewEvent, error)
	LockSubject(ctx context.Context, subjectID string) error
	ListBySubject(ctx context.Context, subjectID string) ([]domain.ReviewEvent, error)
	FirstBySubject(ctx context.Context, subjectID string, order domain.SortOrder) (*domain.ReviewEvent, error)
	LatestBySubjects(ctx context.Context, subjectIDs []string) ([]domain.ReviewEvent, error)
	Search(ctx context.Context, filter domain.ReviewFilter, onlyLatest bool, limit, offset int) ([]domain.ReviewEvent, int, error)
}

type consistencyGuard interface {
	CheckStatus(status domain.QaStatus) error
	CheckSubject(ctx context.Context, subjectID string, key domain.GroupKey, allowNew bool) (*domain.ReviewEvent, error)
	FindDuplicate(ctx context.Context, subjectID string, hash []byte) (*domain.ReviewEvent, error)
}

type activeResolver interface {
	Active(ctx context.Context, key domain.GroupKey) (*domain.ActiveRecord, error)
	ActiveMany(ctx context.Context, keys []domain.GroupKey) (map[domain.GroupKey]*domain.ActiveRecord, error)
	Invalidate(key domain.GroupKey)
}

type notifier interface {
	Notify(ev domain.StatusChanged) bool
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInReadTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements review submission and history reads.
type Service struct {
	log       *slog.Logger
	events    eventRepo
	guard     consistencyGuard
	resolver  activeResolver
	notifier  notifier
	tx        txManager
	metrics   *metrics.EngineMetrics
	batchMax  int
	searchMax int
}

// Options holds review service limits.
type Options struct {
	BatchMaxSubjects int
	SearchMaxLimit   int
}

// NewService creates a new review service.
func NewService(
	logger *slog.Logger,
	events eventRepo,
	guard consistencyGuard,
	resolver activeResolver,
	notifier notifier,
	tx txManager,
	m *metrics.EngineMetrics,
	opts Options,
) *Service {
	if opts.BatchMaxSubjects <= 0 {
		opts.BatchMaxSubjects = 1000
	}
	if opts.SearchMaxLimit <= 0 {
		opts.SearchMaxLimit = 1000
	}
	return &Service{
		log:       logger.With("service", "review"),
		events:    events,
		guard:     guard,
		resolver:  resolver,
		notifier:  notifier,
		tx:        tx,
		metrics:   m,
		batchMax:  opts.BatchMaxSubjects,
		searchMax: opts.SearchMaxLimit,
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// actorFor returns the user on whose behalf a write is made. An
// authenticated caller may only act as themselves unless they are an admin.
func actorFor(ctx context.Context, claimed string) (string, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	switch {
	case !ok && claimed == "":
		return "", domain.NewValidationError("reporter_user_id", "required")
	case !ok:
		return claimed, nil
	case claimed == "" || claimed == userID:
		return userID, nil
	case ctxutil.IsAdminCtx(ctx):
		return claimed, nil
	default:
		return "", fmt.Errorf("act as %s: %w", claimed, domain.ErrForbidden)
	}
}

// published runs after a non-duplicate append has committed. Failures here
// never undo the write.
func (s *Service) published(ctx context.Context, ev *domain.ReviewEvent) {
	s.resolver.Invalidate(ev.GroupKey)

	var currentlyActive *string
	active, err := s.resolver.Active(ctx, ev.GroupKey)
	if err != nil {
		s.warnUnresolved(ctx, ev.GroupKey, err)
	} else if active != nil {
		currentlyActive = &active.SubjectID
	}

	s.announce(ctx, ev, currentlyActive)
}

// publishedBatch is published for the events of one committed batch. The
// groups they touch are resolved together once.
func (s *Service) publishedBatch(ctx context.Context, events []domain.ReviewEvent) {
	if len(events) == 0 {
		return
	}

	keys := make([]domain.GroupKey, 0, len(events))
	seen := make(map[domain.GroupKey]struct{}, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.GroupKey]; ok {
			continue
		}
		seen[ev.GroupKey] = struct{}{}
		keys = append(keys, ev.GroupKey)
		s.resolver.Invalidate(ev.GroupKey)
	}

	active, err := s.resolver.ActiveMany(ctx, keys)
	if err != nil {
		s.log.WarnContext(ctx, "resolve active records for notification",
			slog.Int("groups", len(keys)),
			slog.String("error", err.Error()),
		)
	}

	for i := range events {
		var currentlyActive *string
		if rec := active[events[i].GroupKey]; rec != nil {
			currentlyActive = &rec.SubjectID
		}
		s.announce(ctx, &events[i], currentlyActive)
	}
}

func (s *Service) warnUnresolved(ctx context.Context, key domain.GroupKey, err error) {
	s.log.WarnContext(ctx, "resolve active record for notification",
		slog.String("group_key", key.String()),
		slog.String("error", err.Error()),
	)
}

func (s *Service) announce(ctx context.Context, ev *domain.ReviewEvent, currentlyActive *string) {
	s.metrics.RecordAppend(string(ev.Status))

	s.notifier.Notify(domain.StatusChanged{
		SubjectID:                ev.SubjectID,
		GroupKey:                 ev.GroupKey,
		Status:                   ev.Status,
		EventID:                  ev.ID,
		ReporterUserID:           ev.ReporterUserID,
		CorrelationID:            ev.CorrelationID,
		OccurredAt:               ev.RecordedAt,
		CurrentlyActiveSubjectID: currentlyActive,
	})

	s.log.InfoContext(ctx, "review event appended",
		slog.String("subject_id", ev.SubjectID),
		slog.String("status", string(ev.Status)),
		slog.String("event_id", ev.ID.String()),
		slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
	)
}
