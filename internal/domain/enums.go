package domain

import "fmt"

// QaStatus is the review status carried by a review event.
type QaStatus string

const (
	QaStatusPending  QaStatus = "Pending"
	QaStatusAccepted QaStatus = "Accepted"
	QaStatusRejected QaStatus = "Rejected"
)

func (s QaStatus) String() string { return string(s) }

func (s QaStatus) IsValid() bool {
	switch s {
	case QaStatusPending, QaStatusAccepted, QaStatusRejected:
		return true
	}
	return false
}

// ParseQaStatus converts raw input into a QaStatus.
// Unknown values wrap ErrInvalidTransition.
func ParseQaStatus(raw string) (QaStatus, error) {
	s := QaStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("status %q: %w", raw, ErrInvalidTransition)
	}
	return s, nil
}

// QaReportVerdict is the reviewer's verdict attached to a QA report.
type QaReportVerdict string

const (
	QaReportVerdictAccepted     QaReportVerdict = "QaAccepted"
	QaReportVerdictRejected     QaReportVerdict = "QaRejected"
	QaReportVerdictInconclusive QaReportVerdict = "QaInconclusive"
	QaReportVerdictNotAttempted QaReportVerdict = "QaNotAttempted"
)

func (v QaReportVerdict) String() string { return string(v) }

func (v QaReportVerdict) IsValid() bool {
	switch v {
	case QaReportVerdictAccepted, QaReportVerdictRejected,
		QaReportVerdictInconclusive, QaReportVerdictNotAttempted:
		return true
	}
	return false
}

// QaStatus maps a decisive verdict to the review status it implies.
// Inconclusive verdicts return false.
func (v QaReportVerdict) QaStatus() (QaStatus, bool) {
	switch v {
	case QaReportVerdictAccepted:
		return QaStatusAccepted, true
	case QaReportVerdictRejected:
		return QaStatusRejected, true
	}
	return "", false
}

// SortOrder selects ascending or descending time order.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// ActivePolicy selects how the active record of a group is chosen.
type ActivePolicy string

const (
	// ActivePolicyLatestEvent: the group's newest current subject state
	// decides; if it is not Accepted, the group has no active record.
	ActivePolicyLatestEvent ActivePolicy = "latest_event"
	// ActivePolicyLatestAccepted: the newest subject whose own current
	// status is Accepted wins, regardless of newer pending subjects.
	ActivePolicyLatestAccepted ActivePolicy = "latest_accepted"
)

func (p ActivePolicy) IsValid() bool {
	return p == ActivePolicyLatestEvent || p == ActivePolicyLatestAccepted
}
