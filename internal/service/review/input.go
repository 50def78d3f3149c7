package review

import (
	"github.com/heartmarshall/qareview/internal/domain"
)

const (
	maxIDLength      = 256
	maxCommentLength = 10000
)

// SubmitInput holds the parameters for recording a review status.
type SubmitInput struct {
	SubjectID      string
	GroupKey       domain.GroupKey
	Status         domain.QaStatus
	ReporterUserID string
	Comment        *string
	CorrelationID  string
}

// Validate checks all fields and collects all errors. Status values are
// checked separately by the guard.
func (i *SubmitInput) Validate() error {
	var errs []domain.FieldError
	errs = append(errs, validateSubjectID("subject_id", i.SubjectID)...)
	errs = append(errs, validateGroupKey(i.GroupKey)...)
	errs = append(errs, validateComment(i.Comment)...)
	return toError(errs)
}

// UploadInput registers a freshly uploaded subject.
type UploadInput struct {
	SubjectID      string
	GroupKey       domain.GroupKey
	UploaderUserID string
	BypassQA       bool
	CorrelationID  string
}

// Validate checks all fields and collects all errors.
func (i *UploadInput) Validate() error {
	var errs []domain.FieldError
	errs = append(errs, validateSubjectID("subject_id", i.SubjectID)...)
	errs = append(errs, validateGroupKey(i.GroupKey)...)
	return toError(errs)
}

// BatchInput reviews a set of subjects at once, as done when an assembled
// dataset is reviewed as a whole.
type BatchInput struct {
	SubjectIDs     []string
	Status         domain.QaStatus
	ReporterUserID string
	Comment        *string
	CorrelationID  string
	// Overwrite changes every subject. Otherwise only subjects whose
	// current status is Pending are changed.
	Overwrite bool
}

// Validate checks all fields and collects all errors.
func (i *BatchInput) Validate(maxSubjects int) error {
	var errs []domain.FieldError
	switch {
	case len(i.SubjectIDs) == 0:
		errs = append(errs, domain.FieldError{Field: "subject_ids", Message: "required"})
	case len(i.SubjectIDs) > maxSubjects:
		errs = append(errs, domain.FieldError{Field: "subject_ids", Message: "too many"})
	}
	for _, id := range i.SubjectIDs {
		errs = append(errs, validateSubjectID("subject_ids", id)...)
	}
	errs = append(errs, validateComment(i.Comment)...)
	return toError(errs)
}

// SearchInput holds the parameters for searching review history.
type SearchInput struct {
	Filter     domain.ReviewFilter
	OnlyLatest bool
	Limit      int
	Offset     int
}

// Validate checks all fields and collects all errors.
func (i *SearchInput) Validate(maxLimit int) error {
	var errs []domain.FieldError
	if i.Limit < 0 || i.Limit > maxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "out of range"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if i.Filter.Status != nil && !i.Filter.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	return toError(errs)
}

// SubmitResult reports the stored event and whether the submission was
// absorbed as a duplicate of an earlier one.
type SubmitResult struct {
	Event     *domain.ReviewEvent
	Duplicate bool
}

// BatchResult lists the appended events and the subjects left unchanged.
type BatchResult struct {
	Events  []domain.ReviewEvent
	Skipped []string
}

// SearchResult is one page of review events plus the total match count.
type SearchResult struct {
	Events []domain.ReviewEvent
	Total  int
}

func validateSubjectID(field, id string) []domain.FieldError {
	if id == "" {
		return []domain.FieldError{{Field: field, Message: "required"}}
	}
	if len(id) > maxIDLength {
		return []domain.FieldError{{Field: field, Message: "too long"}}
	}
	return nil
}

func validateGroupKey(k domain.GroupKey) []domain.FieldError {
	var errs []domain.FieldError
	if k.EntityID == "" {
		errs = append(errs, domain.FieldError{Field: "group_key.entity_id", Message: "required"})
	}
	if k.LogicalType == "" {
		errs = append(errs, domain.FieldError{Field: "group_key.logical_type", Message: "required"})
	}
	if k.ReportingPeriod == "" {
		errs = append(errs, domain.FieldError{Field: "group_key.reporting_period", Message: "required"})
	}
	return errs
}

func validateComment(c *string) []domain.FieldError {
	if c != nil && len(*c) > maxCommentLength {
		return []domain.FieldError{{Field: "comment", Message: "too long (max 10000)"}}
	}
	return nil
}

func toError(errs []domain.FieldError) error {
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
