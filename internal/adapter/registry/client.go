// Package registry is an HTTP client for the metadata registry that knows
// which subjects have been uploaded.
package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/heartmarshall/qareview/internal/domain"
)

// Client checks subject existence against the registry. Positive answers
// are cached; subjects are never removed from the registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
	log        *slog.Logger
}

// NewClient creates a registry client. httpClient may be nil, in which case
// a client with the given timeout is used.
func NewClient(log *slog.Logger, baseURL string, timeout, cacheTTL time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		log:        log.With("adapter", "registry"),
	}
}

// Exists reports whether the registry knows subjectID. 200 means yes and 404
// means no; anything else, including transport failures, is
// domain.ErrStorageUnavailable.
func (c *Client) Exists(ctx context.Context, subjectID string) (bool, error) {
	if _, found := c.cache.Get(subjectID); found {
		return true, nil
	}

	endpoint := c.baseURL + "/metadata/" + url.PathEscape(subjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("registry: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("registry: subject %s: %w", subjectID, ctx.Err())
		}
		return false, fmt.Errorf("registry: subject %s: %w: %v", subjectID, domain.ErrStorageUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		c.cache.SetDefault(subjectID, struct{}{})
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		c.log.WarnContext(ctx, "unexpected registry response",
			slog.String("subject_id", subjectID),
			slog.Int("status", resp.StatusCode),
		)
		return false, fmt.Errorf("registry: subject %s: %w: status %d", subjectID, domain.ErrStorageUnavailable, resp.StatusCode)
	}
}
