package review

import (
	"context"
	"fmt"
	"slices"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/guard"
)

// ReviewBatch applies one status to a set of subjects in a single
// transaction. Every subject must already have review history. Without
// Overwrite, subjects that are no longer Pending are skipped.
func (s *Service) ReviewBatch(ctx context.Context, input BatchInput) (*BatchResult, error) {
	if err := input.Validate(s.batchMax); err != nil {
		return nil, err
	}
	if err := s.guard.CheckStatus(input.Status); err != nil {
		return nil, err
	}

	reporter, err := actorFor(ctx, input.ReporterUserID)
	if err != nil {
		return nil, err
	}

	// Sorted lock order keeps concurrent batches from deadlocking.
	ids := slices.Clone(input.SubjectIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	result := &BatchResult{}
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			if err := s.events.LockSubject(txCtx, id); err != nil {
				return err
			}
		}

		latest, err := s.events.LatestBySubjects(txCtx, ids)
		if err != nil {
			return fmt.Errorf("latest by subjects: %w", err)
		}
		current := make(map[string]domain.ReviewEvent, len(latest))
		for _, ev := range latest {
			current[ev.SubjectID] = ev
		}

		for _, id := range ids {
			prev, ok := current[id]
			if !ok {
				return fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
			}
			if !input.Overwrite && prev.Status != domain.QaStatusPending {
				result.Skipped = append(result.Skipped, id)
				continue
			}

			ev := &domain.ReviewEvent{
				SubjectID:      id,
				GroupKey:       prev.GroupKey,
				Status:         input.Status,
				ReporterUserID: reporter,
				Comment:        input.Comment,
				CorrelationID:  input.CorrelationID,
			}
			ev.PayloadHash = guard.PayloadHash(id, ev.GroupKey, ev.Status, reporter, ev.Comment)

			dup, err := s.guard.FindDuplicate(txCtx, id, ev.PayloadHash)
			if err != nil {
				return err
			}
			if dup != nil {
				result.Skipped = append(result.Skipped, id)
				continue
			}

			stored, err := s.append(txCtx, ev)
			if err != nil {
				return err
			}
			result.Events = append(result.Events, *stored)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishedBatch(ctx, result.Events)
	return result, nil
}
