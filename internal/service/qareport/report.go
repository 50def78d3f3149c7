package qareport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/pkg/ctxutil"
)

const opSetActive = "qa_report.set_active"

// Get returns a report of the given subject.
func (s *Service) Get(ctx context.Context, subjectID string, reportID uuid.UUID) (*domain.QaReport, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.SubjectID != subjectID {
		return nil, domain.NewValidationError("subject_id",
			fmt.Sprintf("report %s is not associated with subject %s", reportID, subjectID))
	}
	return report, nil
}

// ListActive returns the active reports of a subject, optionally for one
// reporter only.
func (s *Service) ListActive(ctx context.Context, subjectID string, reporterUserID *string) ([]domain.QaReport, error) {
	if subjectID == "" {
		return nil, domain.NewValidationError("subject_id", "required")
	}
	return s.reports.ListActive(ctx, subjectID, reporterUserID)
}

// Search returns the reports of a subject; withdrawn and superseded reports
// are included when filter.ShowInactive is set.
func (s *Service) Search(ctx context.Context, filter domain.ReportFilter) ([]domain.QaReport, error) {
	if filter.SubjectID == "" {
		return nil, domain.NewValidationError("subject_id", "required")
	}
	return s.reports.Search(ctx, filter)
}

// CountActive returns the number of active reports across subjectIDs.
func (s *Service) CountActive(ctx context.Context, subjectIDs []string) (int, error) {
	if len(subjectIDs) > s.countMax {
		return 0, domain.NewValidationError("subject_ids", "too many")
	}
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	return s.reports.CountActive(ctx, subjectIDs)
}

// SetActive withdraws or reactivates a report. Only the report's reporter
// or an admin may do so. Reactivating deactivates any other active report
// of the same pair.
func (s *Service) SetActive(ctx context.Context, input SetActiveInput) (*domain.QaReport, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	current, err := s.Get(ctx, input.SubjectID, input.ReportID)
	if err != nil {
		return nil, err
	}
	if current.ReporterUserID != userID && !ctxutil.IsAdminCtx(ctx) {
		return nil, fmt.Errorf("qa_report %s: %w", input.ReportID, domain.ErrForbidden)
	}

	var updated *domain.QaReport
	err = s.guard.WithPairLock(ctx, opSetActive, current.SubjectID, current.ReporterUserID, func(txCtx context.Context) error {
		// Re-read under the lock; the version guards against writers that
		// raced the read above.
		report, err := s.reports.GetByID(txCtx, input.ReportID)
		if err != nil {
			return err
		}
		if report.Active == input.Active {
			updated = report
			return nil
		}

		if input.Active {
			if _, err := s.reports.DeactivateActive(txCtx, report.SubjectID, report.ReporterUserID); err != nil {
				return fmt.Errorf("deactivate reports: %w", err)
			}
		}

		updated, err = s.reports.SetActive(txCtx, report.ID, input.Active, report.Version)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "qa report status set",
		slog.String("report_id", updated.ID.String()),
		slog.Bool("active", updated.Active),
		slog.String("user_id", userID),
	)
	return updated, nil
}
