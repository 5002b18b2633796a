package swapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/OFFIS-RIT/holocron/internal/util"
	"github.com/OFFIS-RIT/holocron/pkg/logger"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://swapi.dev/api/"

	defaultAttemptTimeout = 30 * time.Second
	maxBodyBytes          = 8 << 20
)

// Client is a DataSource backed by the catalog's HTTP API.
//
// Concurrent requests are bounded by MaxConcurrentRequests, identical
// concurrent fetches share one request, and transport failures are retried.
// Nothing is cached between calls.
//
// A Client should be created using NewClient.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	maxRetries int
	backoff    time.Duration
	timeout    time.Duration

	reqLock *semaphore.Weighted
	limiter *rate.Limiter
	group   singleflight.Group
}

// NewClientParams configures NewClient.
//
// BaseURL is the API root, e.g. https://swapi.dev/api/. MaxRetries counts
// attempts per request and Timeout bounds each attempt (30s when unset).
// RequestsPerSecond <= 0 disables rate limiting.
type NewClientParams struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration

	MaxRetries int
	Backoff    time.Duration

	MaxConcurrentRequests int64
	RequestsPerSecond     float64
}

func NewClient(params NewClientParams) (*Client, error) {
	base := params.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("Invalid base url %q: %w", params.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("Invalid base url %q: scheme must be http or https", params.BaseURL)
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: params.Timeout}
	}

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	var limiter *rate.Limiter
	if params.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(params.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		maxRetries: params.MaxRetries,
		backoff:    params.Backoff,
		timeout:    timeout,
		reqLock:    semaphore.NewWeighted(maxConcurrent),
		limiter:    limiter,
	}, nil
}

// Fetch retrieves a single resource. Relative references are resolved
// against the base URL.
func (c *Client) Fetch(ctx context.Context, ref Reference) (json.RawMessage, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	target, err := c.resolve(string(ref))
	if err != nil {
		return nil, err
	}
	return c.getShared(ctx, target)
}

// FetchPage retrieves one page of a collection. Pages start at 1.
func (c *Client) FetchPage(ctx context.Context, resource string, page int) (Page, error) {
	if resource == "" || strings.ContainsAny(resource, "/?#") {
		return Page{}, fmt.Errorf("Invalid resource name %q", resource)
	}
	if page < 1 {
		return Page{}, fmt.Errorf("Invalid page number %d", page)
	}

	target, err := c.resolve(resource + "/?page=" + strconv.Itoa(page))
	if err != nil {
		return Page{}, err
	}
	body, err := c.getShared(ctx, target)
	if err != nil {
		return Page{}, err
	}

	var p Page
	if err := json.Unmarshal(body, &p); err != nil {
		return Page{}, fmt.Errorf("%w: %s page %d: %v", ErrMalformedData, resource, page, err)
	}
	return p, nil
}

func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: invalid reference %q: %v", ErrNotFound, ref, err)
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

// getShared joins or starts the in-flight request for target. The request
// itself is detached from any single caller's context so that one caller
// giving up does not fail the others; each attempt is bounded by the client
// timeout instead. A caller whose ctx ends stops waiting immediately.
func (c *Client) getShared(ctx context.Context, target string) (json.RawMessage, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(target, func() (any, error) {
		return util.RetryIfWithContext(detached, c.maxRetries, c.backoff, IsRetryable, func(ctx context.Context) ([]byte, error) {
			return c.attempt(ctx, target)
		})
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			logger.Debug("Shared in-flight catalog request", "url", target)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return json.RawMessage(res.Val.([]byte)), nil
	}
}

// attempt runs one request under the per-attempt timeout. Running out of time
// is a transport failure, not a cancellation.
func (c *Client) attempt(ctx context.Context, target string) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.get(actx, target)
	if err != nil && actx.Err() != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("%w: GET %s: no response within %s", ErrTransport, target, c.timeout)
	}
	return body, err
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, target, err)
	}
	defer resp.Body.Close()

	logger.Debug("Catalog request", "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTransport, target, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s did not return JSON", ErrMalformedData, target)
	}
	return body, nil
}
