// Package notify delivers status-change facts to downstream consumers.
//
// Facts are handed to a Dispatcher after the originating transaction has
// committed. The Dispatcher owns one goroutine and a bounded buffer; a full
// buffer drops the fact rather than blocking the writer.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
)

// Publisher sends one status-change fact to a transport.
type Publisher interface {
	Publish(ctx context.Context, ev domain.StatusChanged) error
	Name() string
	Close() error
}

const (
	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeDropped = "dropped"

	publishTimeout = 5 * time.Second
	drainTimeout   = 5 * time.Second
)

// Dispatcher buffers facts and publishes them in order from one goroutine.
type Dispatcher struct {
	pub     Publisher
	queue   chan domain.StatusChanged
	metrics *metrics.EngineMetrics
	log     *slog.Logger
}

// NewDispatcher creates a Dispatcher. Call Run to start delivery.
func NewDispatcher(log *slog.Logger, pub Publisher, bufferSize int, m *metrics.EngineMetrics) *Dispatcher {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Dispatcher{
		pub:     pub,
		queue:   make(chan domain.StatusChanged, bufferSize),
		metrics: m,
		log:     log.With("component", "notify", "driver", pub.Name()),
	}
}

// Notify enqueues ev without blocking. It reports false when the buffer is
// full and the fact was dropped.
func (d *Dispatcher) Notify(ev domain.StatusChanged) bool {
	select {
	case d.queue <- ev:
		d.metrics.SetNotifyQueueDepth(len(d.queue))
		return true
	default:
		d.metrics.RecordNotification(d.pub.Name(), outcomeDropped)
		d.log.Warn("notification buffer full, dropping status change",
			slog.String("subject_id", ev.SubjectID),
			slog.String("event_id", ev.EventID.String()),
		)
		return false
	}
}

// Run publishes queued facts until ctx is canceled, then drains what is
// already buffered within a short grace period and closes the publisher.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer func() {
		if err := d.pub.Close(); err != nil {
			d.log.Error("close publisher", slog.String("error", err.Error()))
		}
	}()

	for {
		select {
		case ev := <-d.queue:
			d.publish(ctx, ev)
		case <-ctx.Done():
			d.drain()
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case ev := <-d.queue:
			d.publish(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, ev domain.StatusChanged) {
	d.metrics.SetNotifyQueueDepth(len(d.queue))

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := d.pub.Publish(pctx, ev); err != nil {
		d.metrics.RecordNotification(d.pub.Name(), outcomeFailed)
		d.log.Error("publish status change",
			slog.String("subject_id", ev.SubjectID),
			slog.String("event_id", ev.EventID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	d.metrics.RecordNotification(d.pub.Name(), outcomeSent)
}
