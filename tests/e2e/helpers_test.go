//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/qareview/internal/adapter/postgres"
	qareportrepo "github.com/heartmarshall/qareview/internal/adapter/postgres/qareport"
	"github.com/heartmarshall/qareview/internal/adapter/postgres/reviewevent"
	"github.com/heartmarshall/qareview/internal/adapter/postgres/testhelper"
	authpkg "github.com/heartmarshall/qareview/internal/auth"
	"github.com/heartmarshall/qareview/internal/domain"
	"github.com/heartmarshall/qareview/internal/notify"
	"github.com/heartmarshall/qareview/internal/observability/metrics"
	"github.com/heartmarshall/qareview/internal/service/guard"
	"github.com/heartmarshall/qareview/internal/service/qareport"
	"github.com/heartmarshall/qareview/internal/service/queue"
	"github.com/heartmarshall/qareview/internal/service/resolution"
	"github.com/heartmarshall/qareview/internal/service/review"
	"github.com/heartmarshall/qareview/internal/transport/middleware"
	"github.com/heartmarshall/qareview/internal/transport/rest"
)

const adminRole = "ROLE_ADMIN"

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *authpkg.JWTManager
	pub    *recordingPublisher
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// ---------------------------------------------------------------------------
// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
// ---------------------------------------------------------------------------

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	// 1. Get pool from testcontainers-backed helper.
	pool := testhelper.SetupTestDB(t)

	// 2. Infrastructure.
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)
	registry := prometheus.NewRegistry()
	engineMetrics, err := metrics.NewEngineMetrics(registry)
	require.NoError(t, err)
	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	require.NoError(t, err)

	// 3. Repositories.
	events := reviewevent.New(pool)
	reports := qareportrepo.New(pool)

	// 4. Notifications are captured instead of published.
	pub := &recordingPublisher{}
	dispatcher := notify.NewDispatcher(logger, pub, 64, engineMetrics)
	startDispatcher(t, dispatcher)

	// 5. JWT manager with a test secret (>= 32 chars).
	jwtMgr := authpkg.NewJWTManager("test-secret-at-least-32-chars-long!!", "test-issuer", 15*time.Minute)

	// 6. Services. No registry: subjects become known through uploads.
	consistency := guard.New(logger, events, reports, nil, txm, engineMetrics, guard.Options{
		DedupWindow: 30 * time.Second,
		LockTimeout: 2 * time.Second,
	})
	resolver := resolution.NewService(logger, events, engineMetrics, resolution.Options{
		Policy: domain.ActivePolicyLatestEvent,
	})
	queueSvc := queue.NewService(logger, events, 10, 1000)
	reviewSvc := review.NewService(logger, events, consistency, resolver, dispatcher, txm, engineMetrics, review.Options{})
	reportSvc := qareport.NewService(logger, reports, consistency, reviewSvc, engineMetrics, 100)

	// 7. Router and middleware chain.
	router := rest.NewRouter(rest.Handlers{
		Health: rest.NewHealthHandler(pool, "test-version"),
		Review: rest.NewReviewHandler(reviewSvc, logger),
		Active: rest.NewActiveHandler(resolver, queueSvc, logger),
		Report: rest.NewReportHandler(reportSvc, logger),
	}, rest.RouterOptions{
		APIMiddleware: middleware.Chain(
			middleware.Auth(jwtMgr, adminRole, false),
			middleware.Metrics(httpMetrics),
		),
		MetricsPath:    "/metrics",
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(router)

	// 8. httptest server.
	srv := httptest.NewServer(handler)
	t.Cleanup(func() { srv.Close() })

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		jwt:    jwtMgr,
		pub:    pub,
	}
}

func startDispatcher(t *testing.T, d *notify.Dispatcher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// recordingPublisher keeps every delivered notification in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.StatusChanged
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Name() string { return "recording" }

func (p *recordingPublisher) Close() error { return nil }

// forSubject returns the statuses delivered for subjectID in order.
func (p *recordingPublisher) forSubject(subjectID string) []domain.QaStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.QaStatus
	for _, ev := range p.events {
		if ev.SubjectID == subjectID {
			out = append(out, ev.Status)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

// call sends a JSON request and decodes the JSON response into out when out
// is non-nil. It returns the status code.
func (ts *testServer) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), "status %d body %s", resp.StatusCode, raw)
	}
	return resp.StatusCode
}

// token issues a bearer token for userID.
func (ts *testServer) token(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	tok, err := ts.jwt.GenerateAccessToken(userID, roles...)
	require.NoError(t, err)
	return tok
}

// upload registers a subject; bypass marks it Accepted right away.
func (ts *testServer) upload(t *testing.T, subjectID string, key domain.GroupKey, bypass bool) {
	t.Helper()
	status := ts.call(t, http.MethodPost, "/api/v1/uploads", "", map[string]any{
		"subjectId":      subjectID,
		"groupKey":       groupKeyBody(key),
		"uploaderUserId": "uploader-1",
		"bypassQa":       bypass,
	}, nil)
	require.Equal(t, http.StatusCreated, status)
}

// review records a status for a known subject.
func (ts *testServer) review(t *testing.T, subjectID string, key domain.GroupKey, status domain.QaStatus, reporter string) {
	t.Helper()
	code := ts.call(t, http.MethodPost, "/api/v1/reviews", "", map[string]any{
		"subjectId":      subjectID,
		"groupKey":       groupKeyBody(key),
		"status":         string(status),
		"reporterUserId": reporter,
	}, nil)
	require.Equal(t, http.StatusCreated, code)
}

type activeRecord struct {
	SubjectID *string `json:"subjectId"`
}

func (ts *testServer) activeRecord(t *testing.T, key domain.GroupKey) *string {
	t.Helper()
	var rec activeRecord
	status := ts.call(t, http.MethodGet, "/api/v1/active-record?"+groupKeyQuery(key), "", nil, &rec)
	require.Equal(t, http.StatusOK, status)
	return rec.SubjectID
}

func groupKeyBody(key domain.GroupKey) map[string]string {
	return map[string]string{
		"entityId":        key.EntityID,
		"logicalType":     key.LogicalType,
		"reportingPeriod": key.ReportingPeriod,
	}
}

func groupKeyQuery(key domain.GroupKey) string {
	return "entityId=" + key.EntityID + "&logicalType=" + key.LogicalType + "&reportingPeriod=" + key.ReportingPeriod
}
