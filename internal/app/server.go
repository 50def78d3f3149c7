package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/qareview/internal/auth"
	"github.com/heartmarshall/qareview/internal/config"
	"github.com/heartmarshall/qareview/internal/notify"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
	"github.com/heartmarshall/qareview/internal/service/qareport"
	"github.com/heartmarshall/qareview/internal/service/queue"
	"github.com/heartmarshall/qareview/internal/service/resolution"
	"github.com/heartmarshall/qareview/internal/service/review"
	"github.com/heartmarshall/qareview/internal/transport/middleware"
	"github.com/heartmarshall/qareview/internal/transport/rest"
)

// accessTokenTTL is only used when this process mints tokens; validation
// relies on the exp claim.
const accessTokenTTL = 15 * time.Minute

type services struct {
	pool        *pgxpool.Pool
	publisher   notify.Publisher
	reviews     *review.Service
	resolver    *resolution.Service
	queue       *queue.Service
	reports     *qareport.Service
	httpMetrics *metrics.HTTPMetrics
	gatherer    prometheus.Gatherer
}

func newServer(cfg *config.Config, logger *slog.Logger, s services) *http.Server {
	var checks []rest.Check
	if p, ok := s.publisher.(*notify.RedisStreamPublisher); ok {
		checks = append(checks, rest.Check{Name: "notify", Pinger: p})
	}

	handlers := rest.Handlers{
		Health: rest.NewHealthHandler(s.pool, Version, checks...),
		Review: rest.NewReviewHandler(s.reviews, logger),
		Active: rest.NewActiveHandler(s.resolver, s.queue, logger),
		Report: rest.NewReportHandler(s.reports, logger),
	}

	apiChain := []middleware.Middleware{}
	if cfg.Auth.Enabled() {
		jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, accessTokenTTL)
		apiChain = append(apiChain, middleware.Auth(jwtManager, cfg.Auth.AdminRole, cfg.Auth.Required))
	}
	// Metrics must sit right above the API mux to see the matched pattern.
	apiChain = append(apiChain, middleware.Metrics(s.httpMetrics))

	opts := rest.RouterOptions{
		APIMiddleware: middleware.Chain(apiChain...),
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
		opts.MetricsHandler = promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
	}

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(rest.NewRouter(handlers, opts))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}
