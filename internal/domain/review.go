package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// SystemActor is the reporter recorded for events the engine creates itself.
const SystemActor = "system"

// BypassQAComment is attached to upload events whose review was skipped.
const BypassQAComment = "Automatically QA approved."

// GroupKey identifies the slot that at most one active subject may occupy.
type GroupKey struct {
	EntityID        string
	LogicalType     string
	ReportingPeriod string
}

func (k GroupKey) String() string {
	return k.EntityID + "/" + k.LogicalType + "/" + k.ReportingPeriod
}

// ReviewEvent is an immutable record of one review decision on a subject.
type ReviewEvent struct {
	ID             uuid.UUID
	SubjectID      string
	GroupKey       GroupKey
	Status         QaStatus
	ReporterUserID string
	Comment        *string
	CorrelationID  string
	PayloadHash    []byte
	RecordedAt     time.Time
}

// After reports whether e is ordered after other by (RecordedAt, ID).
func (e ReviewEvent) After(other ReviewEvent) bool {
	if !e.RecordedAt.Equal(other.RecordedAt) {
		return e.RecordedAt.After(other.RecordedAt)
	}
	return bytes.Compare(e.ID[:], other.ID[:]) > 0
}

// SubjectState is the current status of a single subject, projected from
// its event history.
type SubjectState struct {
	SubjectID  string
	GroupKey   GroupKey
	Status     QaStatus
	EventID    uuid.UUID
	RecordedAt time.Time
	Reporter   string
}

// ActiveRecord is the subject currently considered authoritative for a group.
type ActiveRecord struct {
	GroupKey   GroupKey
	SubjectID  string
	EventID    uuid.UUID
	AcceptedAt time.Time
}

// ReviewQueueItem is a subject whose latest event is Pending.
type ReviewQueueItem struct {
	SubjectID      string
	GroupKey       GroupKey
	EventID        uuid.UUID
	PendingSince   time.Time
	ReporterUserID string
}

// StatusChanged is published after a review event commits.
type StatusChanged struct {
	SubjectID                string    `json:"subjectId"`
	GroupKey                 GroupKey  `json:"groupKey"`
	Status                   QaStatus  `json:"status"`
	EventID                  uuid.UUID `json:"eventId"`
	ReporterUserID           string    `json:"reporterUserId"`
	CurrentlyActiveSubjectID *string   `json:"currentlyActiveSubjectId"`
	CorrelationID            string    `json:"correlationId"`
	OccurredAt               time.Time `json:"occurredAt"`
}
