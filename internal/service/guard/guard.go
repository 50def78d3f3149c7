// Package guard enforces the write-side consistency rules of the review
// engine: subjects must be known and stay in one group, identical
// submissions inside the dedup window are absorbed, and QA report writes
// for a (subject, reporter) pair are serialized with bounded retries.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
)

type eventStore interface {
	FirstBySubject(ctx context.Context, subjectID string, order domain.SortOrder) (*domain.ReviewEvent, error)
	FindDuplicate(ctx context.Context, subjectID string, hash []byte, window time.Duration) (*domain.ReviewEvent, error)
}

type pairLocker interface {
	LockPair(ctx context.Context, subjectID, reporterUserID string, timeout time.Duration) error
}

type subjectRegistry interface {
	Exists(ctx context.Context, subjectID string) (bool, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options tunes the guard.
type Options struct {
	DedupWindow    time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	LockTimeout    time.Duration
}

// Guard validates writes before they reach the event store.
type Guard struct {
	events   eventStore
	locker   pairLocker
	registry subjectRegistry
	tx       txManager
	metrics  *metrics.EngineMetrics
	opts     Options
	sleep    func(ctx context.Context, d time.Duration) error
	log      *slog.Logger
}

// New creates a Guard. registry may be nil, in which case only subjects
// with recorded history are known.
func New(
	log *slog.Logger,
	events eventStore,
	locker pairLocker,
	registry subjectRegistry,
	tx txManager,
	m *metrics.EngineMetrics,
	opts Options,
) *Guard {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 20 * time.Millisecond
	}
	return &Guard{
		events:   events,
		locker:   locker,
		registry: registry,
		tx:       tx,
		metrics:  m,
		opts:     opts,
		sleep:    sleepCtx,
		log:      log.With("service", "guard"),
	}
}

// CheckStatus rejects status values outside the known set. Any known status
// may follow any other.
func (g *Guard) CheckStatus(status domain.QaStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("status %q: %w", status, domain.ErrInvalidTransition)
	}
	return nil
}

// CheckSubject verifies that subjectID is known and that key matches the
// group of its existing history. It returns the subject's latest event, or
// nil when the subject has no history yet but the registry knows it.
// allowNew skips the registry for subjects being registered by an upload.
func (g *Guard) CheckSubject(ctx context.Context, subjectID string, key domain.GroupKey, allowNew bool) (*domain.ReviewEvent, error) {
	latest, err := g.events.FirstBySubject(ctx, subjectID, domain.SortDesc)
	switch {
	case err == nil:
		if latest.GroupKey != key {
			return nil, domain.NewValidationError("group_key",
				fmt.Sprintf("subject belongs to group %s", latest.GroupKey))
		}
		return latest, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("check subject: %w", err)
	}

	if allowNew {
		return nil, nil
	}
	return nil, g.checkRegistry(ctx, subjectID)
}

// RequireSubject verifies that subjectID is known and returns its latest
// event, or nil when only the registry knows it.
func (g *Guard) RequireSubject(ctx context.Context, subjectID string) (*domain.ReviewEvent, error) {
	latest, err := g.events.FirstBySubject(ctx, subjectID, domain.SortDesc)
	if err == nil {
		return latest, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check subject: %w", err)
	}
	return nil, g.checkRegistry(ctx, subjectID)
}

func (g *Guard) checkRegistry(ctx context.Context, subjectID string) error {
	if g.registry == nil {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}

	exists, err := g.registry.Exists(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("check subject: %w", err)
	}
	if !exists {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}
	return nil
}

// FindDuplicate returns an event of subjectID with the same payload hash
// recorded inside the dedup window, or nil. The window is measured on the
// database clock that assigns recorded_at. Callers hold the subject lock.
func (g *Guard) FindDuplicate(ctx context.Context, subjectID string, hash []byte) (*domain.ReviewEvent, error) {
	if g.opts.DedupWindow <= 0 {
		return nil, nil
	}

	dup, err := g.events.FindDuplicate(ctx, subjectID, hash, g.opts.DedupWindow)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate: %w", err)
	}

	g.metrics.RecordDuplicate()
	g.log.InfoContext(ctx, "duplicate review submission absorbed",
		slog.String("subject_id", subjectID),
		slog.String("event_id", dup.ID.String()),
	)
	return dup, nil
}

// WithPairLock runs fn in a transaction holding the (subject, reporter)
// lock. Conflicts are retried up to MaxRetries attempts in total.
func (g *Guard) WithPairLock(ctx context.Context, operation, subjectID, reporterUserID string, fn func(ctx context.Context) error) error {
	return g.Retry(ctx, operation, func(ctx context.Context) error {
		return g.tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := g.locker.LockPair(ctx, subjectID, reporterUserID, g.opts.LockTimeout); err != nil {
				return err
			}
			return fn(ctx)
		})
	})
}

// Retry runs fn until it succeeds, fails with a non-conflict error, or the
// attempt budget is spent. Exhaustion surfaces domain.ErrConcurrentModification.
func (g *Guard) Retry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	delay := g.opts.RetryBaseDelay

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isConflict(err) {
			return err
		}

		if attempt >= g.opts.MaxRetries {
			g.metrics.RecordConflict(operation)
			g.log.WarnContext(ctx, "conflict retries exhausted",
				slog.String("operation", operation),
				slog.Int("attempts", attempt),
				slog.String("error", err.Error()),
			)
			if errors.Is(err, domain.ErrConcurrentModification) {
				return fmt.Errorf("%s: %w", operation, err)
			}
			return fmt.Errorf("%s: %w: %v", operation, domain.ErrConcurrentModification, err)
		}

		g.metrics.RecordConflictRetry(operation)
		g.log.DebugContext(ctx, "retrying after conflict",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
		)

		if err := g.sleep(ctx, jitter(delay)); err != nil {
			return err
		}
		delay *= 2
	}
}

// isConflict reports whether err is a lost race worth retrying. Unique
// violations count because two writers may both pass the deactivate step.
func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConcurrentModification) || errors.Is(err, domain.ErrAlreadyExists)
}

// jitter returns a duration in [d/2, d).
func jitter(d time.Duration) time.Duration {
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
