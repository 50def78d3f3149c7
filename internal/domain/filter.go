package domain

// QueueFilter narrows the review queue. Nil fields match everything.
type QueueFilter struct {
	EntityID        *string
	LogicalType     *string
	ReportingPeriod *string
}

// ReviewFilter narrows a review event search. Nil fields match everything.
type ReviewFilter struct {
	EntityID        *string
	LogicalType     *string
	ReportingPeriod *string
	Status          *QaStatus
	ReporterUserID  *string
}

// ReportFilter narrows a QA report listing.
type ReportFilter struct {
	SubjectID      string
	ReporterUserID *string
	ShowInactive   bool
}
