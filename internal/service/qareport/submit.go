package qareport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/review"
)

const opSubmit = "qa_report.submit"

// Submit stores a new active report for the (subject, reporter) pair and
// deactivates the pair's previous one. An accepting or rejecting verdict
// also reviews the subject. All of it commits in one transaction or none of
// it does.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.QaReport, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	reporter, err := reporterFor(ctx, input.ReporterUserID)
	if err != nil {
		return nil, err
	}

	latest, err := s.guard.RequireSubject(ctx, input.SubjectID)
	if err != nil {
		return nil, err
	}

	var status domain.QaStatus
	decisive := false
	if input.Verdict != nil {
		status, decisive = input.Verdict.QaStatus()
	}
	if decisive && latest == nil {
		return nil, domain.NewValidationError("verdict", "subject has no review history to update")
	}

	var (
		stored   *domain.QaReport
		reviewed *review.SubmitResult
	)
	err = s.guard.WithPairLock(ctx, opSubmit, input.SubjectID, reporter, func(txCtx context.Context) error {
		reviewed = nil

		replaced, err := s.reports.DeactivateActive(txCtx, input.SubjectID, reporter)
		if err != nil {
			return fmt.Errorf("deactivate reports: %w", err)
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate report id: %w", err)
		}

		stored, err = s.reports.Insert(txCtx, &domain.QaReport{
			ID:             id,
			SubjectID:      input.SubjectID,
			ReporterUserID: reporter,
			Active:         true,
			Content:        input.Content,
			Verdict:        input.Verdict,
		})
		if err != nil {
			return fmt.Errorf("insert report: %w", err)
		}

		if replaced > 0 {
			s.log.DebugContext(txCtx, "superseded active qa report",
				slog.String("subject_id", input.SubjectID),
				slog.Int("count", replaced),
			)
		}

		if !decisive {
			return nil
		}
		reviewed, err = s.reviews.SubmitInTx(txCtx, review.SubmitInput{
			SubjectID:      input.SubjectID,
			GroupKey:       latest.GroupKey,
			Status:         status,
			ReporterUserID: reporter,
			Comment:        input.Comment,
			CorrelationID:  input.CorrelationID,
		})
		if err != nil {
			return fmt.Errorf("review subject: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	verdict := ""
	if input.Verdict != nil {
		verdict = string(*input.Verdict)
	}
	s.metrics.RecordReport(verdict)

	s.log.InfoContext(ctx, "qa report submitted",
		slog.String("subject_id", stored.SubjectID),
		slog.String("report_id", stored.ID.String()),
		slog.String("verdict", verdict),
	)

	if reviewed != nil {
		s.reviews.Publish(ctx, reviewed)
	}

	return stored, nil
}
