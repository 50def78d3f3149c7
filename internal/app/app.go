package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/qareview/internal/adapter/postgres"
	qareportrepo "github.com/heartmarshall/qareview/internal/adapter/postgres/qareport"
	"github.com/heartmarshall/qareview/internal/adapter/postgres/reviewevent"
	"github.com/heartmarshall/qareview/internal/adapter/registry"
	"github.com/heartmarshall/qareview/internal/config"
	"github.com/heartmarshall/qareview/internal/notify"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
	"github.com/heartmarshall/qareview/internal/service/guard"
	"github.com/heartmarshall/qareview/internal/service/qareport"
	"github.com/heartmarshall/qareview/internal/service/queue"
	"github.com/heartmarshall/qareview/internal/service/resolution"
	"github.com/heartmarshall/qareview/internal/service/review"
)

// subjectChecker is satisfied by the registry client. It stays a nil
// interface when no registry is configured.
type subjectChecker interface {
	Exists(ctx context.Context, subjectID string) (bool, error)
}

// Run is the application entry point. It wires storage, services, the
// notification dispatcher and the HTTP server, then serves until ctx is
// canceled. In-flight requests finish before pending notifications are
// drained.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("active_policy", string(cfg.QA.ActivePolicy)),
		slog.String("notify_driver", cfg.Notify.Driver),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics, err := metrics.NewEngineMetrics(promRegistry)
	if err != nil {
		return err
	}
	httpMetrics, err := metrics.NewHTTPMetrics(promRegistry)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(ctx, cfg.Notify, logger)
	if err != nil {
		return fmt.Errorf("notify publisher: %w", err)
	}
	dispatcher := notify.NewDispatcher(logger, publisher, cfg.Notify.BufferSize, engineMetrics)

	// Repositories.
	txm := postgres.NewTxManager(pool)
	events := reviewevent.New(pool)
	reports := qareportrepo.New(pool)

	var subjects subjectChecker
	if cfg.Registry.BaseURL != "" {
		subjects = registry.NewClient(logger, cfg.Registry.BaseURL, cfg.Registry.Timeout, cfg.Registry.CacheTTL, nil)
	}

	// Services.
	consistency := guard.New(logger, events, reports, subjects, txm, engineMetrics, guard.Options{
		DedupWindow:    cfg.QA.DedupWindow,
		MaxRetries:     cfg.QA.MaxRetries,
		RetryBaseDelay: cfg.QA.RetryBaseDelay,
		LockTimeout:    cfg.QA.LockTimeout,
	})
	resolver := resolution.NewService(logger, events, engineMetrics, resolution.Options{
		Policy:     cfg.QA.ActivePolicy,
		CacheTTL:   cfg.QA.CacheTTL,
		LoaderWait: cfg.QA.LoaderWait,
	})
	queueSvc := queue.NewService(logger, events, cfg.QA.QueueDefaultLimit, cfg.QA.QueueMaxLimit)
	reviewSvc := review.NewService(logger, events, consistency, resolver, dispatcher, txm, engineMetrics, review.Options{
		BatchMaxSubjects: cfg.QA.BatchMaxSubjects,
		SearchMaxLimit:   cfg.QA.QueueMaxLimit,
	})
	reportSvc := qareport.NewService(logger, reports, consistency, reviewSvc, engineMetrics, cfg.QA.BatchMaxSubjects)

	srv := newServer(cfg, logger, services{
		pool:        pool,
		publisher:   publisher,
		reviews:     reviewSvc,
		resolver:    resolver,
		queue:       queueSvc,
		reports:     reportSvc,
		httpMetrics: httpMetrics,
		gatherer:    promRegistry,
	})

	// The dispatcher outlives the server so that events published by the
	// last requests are still delivered.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})

	g.Go(func() error {
		defer stopDispatch()

		serveErr := make(chan error, 1)
		go func() {
			logger.Info("http server listening", slog.String("addr", srv.Addr))
			serveErr <- srv.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		case <-gctx.Done():
		}

		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("application stopped")
	return err
}
