package qareport

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/qareview/internal/domain"
)

const (
	maxContentLength = 1 << 20
	maxCommentLength = 10000
)

// SubmitInput holds the parameters for submitting a QA report.
type SubmitInput struct {
	SubjectID      string
	ReporterUserID string
	Content        string
	Verdict        *domain.QaReportVerdict
	// Comment is recorded on the review event a decisive verdict triggers.
	Comment       *string
	CorrelationID string
}

// Validate checks all fields and collects all errors.
func (i *SubmitInput) Validate() error {
	var errs []domain.FieldError

	if i.SubjectID == "" {
		errs = append(errs, domain.FieldError{Field: "subject_id", Message: "required"})
	}
	if i.Content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	} else if len(i.Content) > maxContentLength {
		errs = append(errs, domain.FieldError{Field: "content", Message: "too long"})
	}
	if i.Verdict != nil && !i.Verdict.IsValid() {
		errs = append(errs, domain.FieldError{Field: "verdict", Message: "unknown verdict"})
	}
	if i.Comment != nil && len(*i.Comment) > maxCommentLength {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "too long (max 10000)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SetActiveInput withdraws or reactivates a report.
type SetActiveInput struct {
	ReportID  uuid.UUID
	SubjectID string
	Active    bool
}

// Validate checks all fields and collects all errors.
func (i *SetActiveInput) Validate() error {
	var errs []domain.FieldError
	if i.ReportID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "report_id", Message: "required"})
	}
	if i.SubjectID == "" {
		errs = append(errs, domain.FieldError{Field: "subject_id", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
