package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	gocache "github.com/patrickmn/go-cache"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
)

const maxBatch = 100

type eventReader interface {
	LatestByGroupKeys(ctx context.Context, keys []domain.GroupKey) ([]domain.ReviewEvent, error)
}

// Options tunes the resolver.
type Options struct {
	Policy domain.ActivePolicy
	// CacheTTL bounds how long a resolved group may be served without a
	// fresh read. Zero disables the cache.
	CacheTTL time.Duration
	// LoaderWait is how long concurrent single-key lookups are collected
	// before one batched query runs.
	LoaderWait time.Duration
}

// Service answers "which subject is active for this group" from the event
// store. Concurrent Active calls are coalesced into one query through a
// shared batched loader.
type Service struct {
	events  eventReader
	policy  domain.ActivePolicy
	cache   *gocache.Cache
	loader  *dataloader.Loader[domain.GroupKey, *domain.ActiveRecord]
	metrics *metrics.EngineMetrics
	log     *slog.Logger

	// generation is bumped by Invalidate. A batch only fills the cache if no
	// invalidation happened while it was reading.
	generation atomic.Uint64
}

// NewService creates a new resolution service.
func NewService(
	log *slog.Logger,
	events eventReader,
	m *metrics.EngineMetrics,
	opts Options,
) *Service {
	if !opts.Policy.IsValid() {
		opts.Policy = domain.ActivePolicyLatestEvent
	}
	if opts.LoaderWait <= 0 {
		opts.LoaderWait = 2 * time.Millisecond
	}

	s := &Service{
		events:  events,
		policy:  opts.Policy,
		metrics: m,
		log:     log.With("service", "resolution"),
	}
	if opts.CacheTTL > 0 {
		s.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	// The loader must not memoize: freshness is governed by the TTL cache.
	s.loader = dataloader.NewBatchedLoader(
		s.batchActive,
		dataloader.WithWait[domain.GroupKey, *domain.ActiveRecord](opts.LoaderWait),
		dataloader.WithBatchCapacity[domain.GroupKey, *domain.ActiveRecord](maxBatch),
		dataloader.WithCache[domain.GroupKey, *domain.ActiveRecord](&dataloader.NoCache[domain.GroupKey, *domain.ActiveRecord]{}),
	)

	return s
}

// Policy returns the active-record policy in use.
func (s *Service) Policy() domain.ActivePolicy { return s.policy }

// Active returns the active record for key, or nil if the group has none.
func (s *Service) Active(ctx context.Context, key domain.GroupKey) (*domain.ActiveRecord, error) {
	if rec, ok := s.cached(key); ok {
		return rec, nil
	}

	thunk := s.loader.Load(ctx, key)

	type result struct {
		rec *domain.ActiveRecord
		err error
	}
	done := make(chan result, 1)
	go func() {
		rec, err := thunk()
		done <- result{rec: rec, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.rec, r.err
	}
}

// ActiveMany resolves several groups with one query over one snapshot.
// Every requested key is present in the result.
func (s *Service) ActiveMany(ctx context.Context, keys []domain.GroupKey) (map[domain.GroupKey]*domain.ActiveRecord, error) {
	result := make(map[domain.GroupKey]*domain.ActiveRecord, len(keys))

	distinct := make([]domain.GroupKey, 0, len(keys))
	for _, k := range keys {
		if _, dup := result[k]; dup {
			continue
		}
		result[k] = nil
		distinct = append(distinct, k)
	}
	if len(distinct) == 0 {
		return result, nil
	}

	// Cached answers are only trusted for a single key. Several keys are
	// always read together so the answers share one snapshot.
	if len(distinct) == 1 {
		if rec, ok := s.cached(distinct[0]); ok {
			result[distinct[0]] = rec
			return result, nil
		}
	}

	resolved, err := s.resolve(ctx, distinct)
	if err != nil {
		return nil, err
	}
	for k, rec := range resolved {
		result[k] = rec
	}
	return result, nil
}

// Invalidate drops any cached answer for key. Called after every committed
// append to the group.
func (s *Service) Invalidate(key domain.GroupKey) {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Delete(cacheKey(key))
	}
}

func (s *Service) batchActive(ctx context.Context, keys []domain.GroupKey) []*dataloader.Result[*domain.ActiveRecord] {
	// One caller's cancellation must not fail the lookups it was batched with.
	ctx = context.WithoutCancel(ctx)

	results := make([]*dataloader.Result[*domain.ActiveRecord], len(keys))

	resolved, err := s.resolve(ctx, keys)
	if err != nil {
		for i := range results {
			results[i] = &dataloader.Result[*domain.ActiveRecord]{Error: err}
		}
		return results
	}

	for i, k := range keys {
		results[i] = &dataloader.Result[*domain.ActiveRecord]{Data: resolved[k]}
	}
	return results
}

func (s *Service) resolve(ctx context.Context, keys []domain.GroupKey) (map[domain.GroupKey]*domain.ActiveRecord, error) {
	gen := s.generation.Load()
	s.metrics.RecordResolverBatch(len(keys))

	events, err := s.events.LatestByGroupKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("resolve active records: %w", err)
	}

	resolved := Resolve(keys, events, s.policy)

	if s.cache != nil && s.generation.Load() == gen {
		for k, rec := range resolved {
			s.cache.SetDefault(cacheKey(k), rec)
		}
	}

	s.log.DebugContext(ctx, "resolved active records", slog.Int("groups", len(keys)), slog.Int("events", len(events)))
	return resolved, nil
}

func (s *Service) cached(key domain.GroupKey) (*domain.ActiveRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(cacheKey(key))
	s.metrics.RecordCacheLookup(ok)
	if !ok {
		return nil, false
	}
	return v.(*domain.ActiveRecord), true
}

func cacheKey(k domain.GroupKey) string {
	return k.EntityID + "\x1f" + k.LogicalType + "\x1f" + k.ReportingPeriod
}
