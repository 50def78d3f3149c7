package review

import (
	"context"
	"fmt"

	"github.com/heartmarshall/qareview/internal/domain"
)

// History returns every review event of a subject, newest first.
func (s *Service) History(ctx context.Context, subjectID string) ([]domain.ReviewEvent, error) {
	if err := toError(validateSubjectID("subject_id", subjectID)); err != nil {
		return nil, err
	}

	events, err := s.events.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}
	return events, nil
}

// Latest returns the subject's current review event.
func (s *Service) Latest(ctx context.Context, subjectID string) (*domain.ReviewEvent, error) {
	if err := toError(validateSubjectID("subject_id", subjectID)); err != nil {
		return nil, err
	}
	return s.events.FirstBySubject(ctx, subjectID, domain.SortDesc)
}

// Search returns review events matching the filter, newest first. With
// OnlyLatest each subject contributes at most its latest event, and status
// filters apply to that event. Page and total come from one snapshot.
func (s *Service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	if err := input.Validate(s.searchMax); err != nil {
		return nil, err
	}
	if input.Limit == 0 {
		input.Limit = 50
	}

	var result SearchResult
	err := s.tx.RunInReadTx(ctx, func(txCtx context.Context) error {
		events, total, err := s.events.Search(txCtx, input.Filter, input.OnlyLatest, input.Limit, input.Offset)
		if err != nil {
			return fmt.Errorf("search review events: %w", err)
		}
		result = SearchResult{Events: events, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
