package resolution

import "github.com/heartmarshall/qareview/internal/domain"

// Resolve computes the active record of each requested group from events.
// events may be full histories or only the latest event per subject; events
// outside the requested groups are ignored. Every requested key is present
// in the result, with a nil value when the group has no active record.
//
// With ActivePolicyLatestEvent the group's newest subject state decides: the
// group is active only if that state is Accepted, so a newer pending or
// rejected subject supersedes an older accepted one. With
// ActivePolicyLatestAccepted the newest subject whose own state is Accepted
// wins.
func Resolve(keys []domain.GroupKey, events []domain.ReviewEvent, policy domain.ActivePolicy) map[domain.GroupKey]*domain.ActiveRecord {
	result := make(map[domain.GroupKey]*domain.ActiveRecord, len(keys))
	for _, k := range keys {
		result[k] = nil
	}

	bySubject := make(map[string][]domain.ReviewEvent)
	for _, ev := range events {
		if _, requested := result[ev.GroupKey]; !requested {
			continue
		}
		bySubject[ev.SubjectID] = append(bySubject[ev.SubjectID], ev)
	}

	winners := make(map[domain.GroupKey]domain.SubjectState, len(keys))
	for _, history := range bySubject {
		state, ok := ProjectSubjectState(history)
		if !ok {
			continue
		}
		if policy == domain.ActivePolicyLatestAccepted && state.Status != domain.QaStatusAccepted {
			continue
		}
		current, seen := winners[state.GroupKey]
		if !seen || stateAfter(state, current) {
			winners[state.GroupKey] = state
		}
	}

	for key, state := range winners {
		if state.Status != domain.QaStatusAccepted {
			continue
		}
		result[key] = &domain.ActiveRecord{
			GroupKey:   key,
			SubjectID:  state.SubjectID,
			EventID:    state.EventID,
			AcceptedAt: state.RecordedAt,
		}
	}

	return result
}
