// Package metrics provides Prometheus metrics for the review engine.
// All Record methods are safe to call on a nil receiver so components can
// run without metrics in tests and tools.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics holds the review engine's domain metrics.
type EngineMetrics struct {
	EventsAppendedTotal   *prometheus.CounterVec // Appended review events by status
	DuplicatesTotal       prometheus.Counter     // Submissions absorbed by the idempotency window
	ConflictRetriesTotal  *prometheus.CounterVec // Retries after a concurrency conflict by operation
	ConflictsTotal        *prometheus.CounterVec // Conflicts that exhausted the retry budget by operation
	CacheLookupsTotal     *prometheus.CounterVec // Active-record cache lookups by result
	ResolverBatchSize     prometheus.Histogram   // Group keys per coalesced resolver batch
	ReportsSubmittedTotal *prometheus.CounterVec // QA reports submitted by verdict

	NotificationsTotal *prometheus.CounterVec // Status-change notifications by driver and outcome
	NotifyQueueDepth   prometheus.Gauge       // Facts waiting in the dispatcher buffer
}

// NewEngineMetrics creates the engine metrics and registers them with registry.
func NewEngineMetrics(registry prometheus.Registerer) (*EngineMetrics, error) {
	m := &EngineMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register engine metrics: %w", err)
	}
	return m, nil
}

func (m *EngineMetrics) initMetrics() {
	m.EventsAppendedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_review_events_appended_total",
			Help: "Total number of review events appended by status",
		},
		[]string{"status"},
	)

	m.DuplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qa_review_duplicates_total",
		Help: "Total number of review submissions answered from the idempotency window",
	})

	m.ConflictRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_conflict_retries_total",
			Help: "Total number of retries after a concurrency conflict by operation",
		},
		[]string{"operation"},
	)

	m.ConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_conflicts_total",
			Help: "Total number of operations that failed after exhausting conflict retries",
		},
		[]string{"operation"},
	)

	m.CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_active_record_cache_lookups_total",
			Help: "Total number of active-record cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	m.ResolverBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qa_resolver_batch_size",
		Help:    "Number of group keys resolved per coalesced batch",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	m.ReportsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_reports_submitted_total",
			Help: "Total number of QA reports submitted by verdict",
		},
		[]string{"verdict"},
	)

	m.NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_notifications_total",
			Help: "Total number of status-change notifications by driver and outcome",
		},
		[]string{"driver", "outcome"}, // outcome: published, failed, dropped
	)

	m.NotifyQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qa_notify_queue_depth",
		Help: "Number of status-change facts waiting to be published",
	})
}

// RecordAppend records an appended review event.
func (m *EngineMetrics) RecordAppend(status string) {
	if m == nil {
		return
	}
	m.EventsAppendedTotal.WithLabelValues(status).Inc()
}

// RecordDuplicate records a submission absorbed by the idempotency window.
func (m *EngineMetrics) RecordDuplicate() {
	if m == nil {
		return
	}
	m.DuplicatesTotal.Inc()
}

// RecordConflictRetry records a retry after a concurrency conflict.
func (m *EngineMetrics) RecordConflictRetry(operation string) {
	if m == nil {
		return
	}
	m.ConflictRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordConflict records an operation that ran out of retries.
func (m *EngineMetrics) RecordConflict(operation string) {
	if m == nil {
		return
	}
	m.ConflictsTotal.WithLabelValues(operation).Inc()
}

// RecordCacheLookup records an active-record cache hit or miss.
func (m *EngineMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordResolverBatch records the size of a coalesced resolver batch.
func (m *EngineMetrics) RecordResolverBatch(size int) {
	if m == nil {
		return
	}
	m.ResolverBatchSize.Observe(float64(size))
}

// RecordReport records a submitted QA report.
func (m *EngineMetrics) RecordReport(verdict string) {
	if m == nil {
		return
	}
	if verdict == "" {
		verdict = "none"
	}
	m.ReportsSubmittedTotal.WithLabelValues(verdict).Inc()
}

// RecordNotification records the outcome of a status-change notification.
func (m *EngineMetrics) RecordNotification(driver, outcome string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(driver, outcome).Inc()
}

// SetNotifyQueueDepth sets the dispatcher buffer depth.
func (m *EngineMetrics) SetNotifyQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.NotifyQueueDepth.Set(float64(depth))
}

// Describe implements the prometheus.Collector interface.
func (m *EngineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.EventsAppendedTotal.Describe(ch)
	m.DuplicatesTotal.Describe(ch)
	m.ConflictRetriesTotal.Describe(ch)
	m.ConflictsTotal.Describe(ch)
	m.CacheLookupsTotal.Describe(ch)
	m.ResolverBatchSize.Describe(ch)
	m.ReportsSubmittedTotal.Describe(ch)
	m.NotificationsTotal.Describe(ch)
	m.NotifyQueueDepth.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *EngineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.EventsAppendedTotal.Collect(ch)
	m.DuplicatesTotal.Collect(ch)
	m.ConflictRetriesTotal.Collect(ch)
	m.ConflictsTotal.Collect(ch)
	m.CacheLookupsTotal.Collect(ch)
	m.ResolverBatchSize.Collect(ch)
	m.ReportsSubmittedTotal.Collect(ch)
	m.NotificationsTotal.Collect(ch)
	m.NotifyQueueDepth.Collect(ch)
}
