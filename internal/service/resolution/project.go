// Package resolution derives subject states and active records from review
// event history. The projection and resolution functions are pure; Service
// adds storage access, request coalescing and a short-lived cache.
package resolution

import "github.com/heartmarshall/qareview/internal/domain"

// ProjectSubjectState returns the state carried by the event with the
// greatest (RecordedAt, ID). Input order does not matter. Returns false for
// an empty history.
func ProjectSubjectState(events []domain.ReviewEvent) (domain.SubjectState, bool) {
	if len(events) == 0 {
		return domain.SubjectState{}, false
	}

	latest := events[0]
	for _, ev := range events[1:] {
		if ev.After(latest) {
			latest = ev
		}
	}

	return stateOf(latest), true
}

func stateOf(ev domain.ReviewEvent) domain.SubjectState {
	return domain.SubjectState{
		SubjectID:  ev.SubjectID,
		GroupKey:   ev.GroupKey,
		Status:     ev.Status,
		EventID:    ev.ID,
		RecordedAt: ev.RecordedAt,
		Reporter:   ev.ReporterUserID,
	}
}

// stateAfter orders subject states by (RecordedAt, EventID).
func stateAfter(a, b domain.SubjectState) bool {
	return domain.ReviewEvent{ID: a.EventID, RecordedAt: a.RecordedAt}.
		After(domain.ReviewEvent{ID: b.EventID, RecordedAt: b.RecordedAt})
}
