package rest

import (
	"net/http"
)

// APIPrefix is the path prefix every API route lives under.
const APIPrefix = "/api/v1/"

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Health *HealthHandler
	Review *ReviewHandler
	Active *ActiveHandler
	Report *ReportHandler
}

// RouterOptions configures the outer router.
type RouterOptions struct {
	// APIMiddleware wraps only the API routes, never the health checks.
	APIMiddleware func(http.Handler) http.Handler
	// MetricsPath and MetricsHandler expose Prometheus metrics when both
	// are set.
	MetricsPath    string
	MetricsHandler http.Handler
}

// NewAPIMux registers the API routes. Patterns carry the method so that
// unsupported methods get a 405 from the mux.
func NewAPIMux(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/reviews", h.Review.Submit)
	mux.HandleFunc("POST /api/v1/reviews/batch", h.Review.Batch)
	mux.HandleFunc("GET /api/v1/reviews", h.Review.Search)
	mux.HandleFunc("GET /api/v1/reviews/{subjectId}", h.Review.History)
	mux.HandleFunc("POST /api/v1/uploads", h.Review.Upload)

	mux.HandleFunc("GET /api/v1/active-record", h.Active.ActiveRecord)
	mux.HandleFunc("POST /api/v1/active-records", h.Active.ActiveRecords)
	mux.HandleFunc("GET /api/v1/review-queue", h.Active.Queue)
	mux.HandleFunc("GET /api/v1/review-queue/count", h.Active.QueueCount)

	mux.HandleFunc("POST /api/v1/qa-reports", h.Report.Submit)
	mux.HandleFunc("GET /api/v1/qa-reports", h.Report.List)
	mux.HandleFunc("POST /api/v1/qa-reports/count", h.Report.Count)
	mux.HandleFunc("GET /api/v1/qa-reports/{reportId}", h.Report.Get)
	mux.HandleFunc("PATCH /api/v1/qa-reports/{reportId}", h.Report.SetActive)

	return mux
}

// NewRouter mounts the health checks, the metrics endpoint and the API.
func NewRouter(h Handlers, opts RouterOptions) *http.ServeMux {
	root := http.NewServeMux()

	root.HandleFunc("GET /live", h.Health.Live)
	root.HandleFunc("GET /ready", h.Health.Ready)
	root.HandleFunc("GET /health", h.Health.Health)

	if opts.MetricsPath != "" && opts.MetricsHandler != nil {
		root.Handle("GET "+opts.MetricsPath, opts.MetricsHandler)
	}

	var api http.Handler = NewAPIMux(h)
	if opts.APIMiddleware != nil {
		api = opts.APIMiddleware(api)
	}
	root.Handle(APIPrefix, api)

	return root
}
