package review

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/service/guard"
)

// Submit records a review status for a known subject. An identical
// submission inside the dedup window returns the earlier event with
// Duplicate set and appends nothing.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	ev, err := s.submitEvent(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.appendOne(ctx, ev, false)
}

// SubmitInTx is Submit for callers that already run a transaction; ctx must
// carry it. Nothing is published: once the caller's transaction commits it
// must pass the result to Publish.
func (s *Service) SubmitInTx(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	ev, err := s.submitEvent(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.appendLocked(ctx, ev, false)
}

// Publish announces a result obtained from SubmitInTx after its
// transaction has committed. Duplicates are ignored.
func (s *Service) Publish(ctx context.Context, res *SubmitResult) {
	if res == nil || res.Duplicate {
		return
	}
	s.published(ctx, res.Event)
}

func (s *Service) submitEvent(ctx context.Context, input SubmitInput) (*domain.ReviewEvent, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.guard.CheckStatus(input.Status); err != nil {
		return nil, err
	}

	reporter, err := actorFor(ctx, input.ReporterUserID)
	if err != nil {
		return nil, err
	}

	return &domain.ReviewEvent{
		SubjectID:      input.SubjectID,
		GroupKey:       input.GroupKey,
		Status:         input.Status,
		ReporterUserID: reporter,
		Comment:        input.Comment,
		CorrelationID:  input.CorrelationID,
	}, nil
}

// RegisterUpload records the first review event of a new subject. The
// subject enters the queue as Pending unless QA is bypassed, in which case
// it is accepted on behalf of the uploader.
func (s *Service) RegisterUpload(ctx context.Context, input UploadInput) (*SubmitResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	uploader, err := actorFor(ctx, input.UploaderUserID)
	if err != nil {
		return nil, err
	}

	ev := &domain.ReviewEvent{
		SubjectID:      input.SubjectID,
		GroupKey:       input.GroupKey,
		Status:         domain.QaStatusPending,
		ReporterUserID: uploader,
		CorrelationID:  input.CorrelationID,
	}
	if input.BypassQA {
		comment := domain.BypassQAComment
		ev.Status = domain.QaStatusAccepted
		ev.Comment = &comment
	}

	return s.appendOne(ctx, ev, true)
}

// appendOne runs the append transaction for a single subject and publishes
// the result after commit.
func (s *Service) appendOne(ctx context.Context, ev *domain.ReviewEvent, allowNew bool) (*SubmitResult, error) {
	var result *SubmitResult
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.appendLocked(txCtx, ev, allowNew)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Publish(ctx, result)
	return result, nil
}

// appendLocked takes the subject lock, checks the write and appends ev
// unless it duplicates a recent event. ctx must carry a transaction.
func (s *Service) appendLocked(ctx context.Context, ev *domain.ReviewEvent, allowNew bool) (*SubmitResult, error) {
	ev.PayloadHash = guard.PayloadHash(ev.SubjectID, ev.GroupKey, ev.Status, ev.ReporterUserID, ev.Comment)

	if err := s.events.LockSubject(ctx, ev.SubjectID); err != nil {
		return nil, err
	}

	if _, err := s.guard.CheckSubject(ctx, ev.SubjectID, ev.GroupKey, allowNew); err != nil {
		return nil, err
	}

	dup, err := s.guard.FindDuplicate(ctx, ev.SubjectID, ev.PayloadHash)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return &SubmitResult{Event: dup, Duplicate: true}, nil
	}

	stored, err := s.append(ctx, ev)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Event: stored}, nil
}

func (s *Service) append(ctx context.Context, ev *domain.ReviewEvent) (*domain.ReviewEvent, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	ev.ID = id

	stored, err := s.events.Append(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("append review event: %w", err)
	}
	return stored, nil
}
