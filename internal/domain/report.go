package domain

import (
	"time"

	"github.com/google/uuid"
)

// QaReport is a reviewer's annotation on a subject. Reports are never
// deleted; withdrawn reports stay with Active = false.
type QaReport struct {
	ID             uuid.UUID
	SubjectID      string
	ReporterUserID string
	Active         bool
	Content        string
	Verdict        *QaReportVerdict
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int
}
