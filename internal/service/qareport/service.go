// Package qareport manages QA reports. At most one report per (subject,
// reporter) pair is active; submitting a new one supersedes the previous.
package qareport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
	"github.com/heartmarshall/qareview/internal/service/review"
	"github.com/heartmarshall/qareview/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type reportRepo interface {
	DeactivateActive(ctx context.Context, subjectID, reporterUserID string) (int, error)
	Insert(ctx context.Context, report *domain.QaReport) (*domain.QaReport, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, expectedVersion int) (*domain.QaReport, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QaReport, error)
	ListActive(ctx context.Context, subjectID string, reporterUserID *string) ([]domain.QaReport, error)
	Search(ctx context.Context, filter domain.ReportFilter) ([]domain.QaReport, error)
	CountActive(ctx context.Context, subjectIDs []string) (int, error)
}

type consistencyGuard interface {
	RequireSubject(ctx context.Context, subjectID string) (*domain.ReviewEvent, error)
	WithPairLock(ctx context.Context, operation, subjectID, reporterUserID string, fn func(ctx context.Context) error) error
}

type reviewer interface {
	SubmitInTx(ctx context.Context, input review.SubmitInput) (*review.SubmitResult, error)
	Publish(ctx context.Context, res *review.SubmitResult)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the QA report business logic.
type Service struct {
	log      *slog.Logger
	reports  reportRepo
	guard    consistencyGuard
	reviews  reviewer
	metrics  *metrics.EngineMetrics
	countMax int
}

// NewService creates a new QA report service. countMax bounds the number of
// subjects accepted by CountActive.
func NewService(
	logger *slog.Logger,
	reports reportRepo,
	guard consistencyGuard,
	reviews reviewer,
	m *metrics.EngineMetrics,
	countMax int,
) *Service {
	if countMax <= 0 {
		countMax = 1000
	}
	return &Service{
		log:      logger.With("service", "qareport"),
		reports:  reports,
		guard:    guard,
		reviews:  reviews,
		metrics:  m,
		countMax: countMax,
	}
}

// reporterFor returns the user on whose behalf a report is written.
func reporterFor(ctx context.Context, claimed string) (string, error) {
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
