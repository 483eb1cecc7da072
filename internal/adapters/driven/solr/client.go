package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.IndexClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 5 * time.Second
	DefaultBurst   = 10
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("solr client closed")

// Config holds configuration for the Solr client.
type Config struct {
	// BaseURL is the URL of the core, e.g. http://localhost:8983/solr/books.
	BaseURL string

	// Timeout bounds each request (default: 5s).
	Timeout time.Duration

	// RequestsPerSecond throttles requests; zero disables throttling.
	RequestsPerSecond float64

	// Burst is the number of requests allowed at once (default: 10).
	Burst int

	// HTTPClient overrides the HTTP client, mainly for tests.
	HTTPClient *http.Client
}

// ConfigFromEndpoint builds a client configuration for an endpoint.
func ConfigFromEndpoint(ep domain.Endpoint, requestsPerSecond float64) Config {
	return Config{
		BaseURL:           ep.URL(),
		Timeout:           ep.Timeout,
		RequestsPerSecond: requestsPerSecond,
	}
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("solr %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("solr %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Client talks to one Solr core.
type Client struct {
	client  *http.Client
	baseURL string
	limiter *RateLimiter

	mu     sync.RWMutex
	closed bool
}

// NewClient creates a new Solr client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: solr url %q", domain.ErrConfiguration, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:  client,
		baseURL: base,
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

// Add adds or replaces documents.
func (c *Client) Add(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	body, err := encodeAdd(docs)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	logger.Debug("Solr add: %d document(s)", len(docs))
	return c.update(ctx, "add", body)
}

// DeleteByQuery deletes every document matching query.
func (c *Client) DeleteByQuery(ctx context.Context, query string) error {
	body, err := json.Marshal(map[string]any{"delete": map[string]string{"query": query}})
	if err != nil {
		return fmt.Errorf("encode delete: %w", err)
	}
	logger.Debug("Solr delete: %s", query)
	return c.update(ctx, "delete", body)
}

// Commit makes pending changes visible.
func (c *Client) Commit(ctx context.Context) error {
	return c.update(ctx, "commit", []byte(`{"commit":{}}`))
}

// Query runs a select request and returns the documents in ranking order.
func (c *Client) Query(ctx context.Context, query domain.SearchQuery) ([]*domain.Document, error) {
	params := url.Values{}
	q := query.Query
	if q == "" {
		q = domain.MatchAllQuery
	}
	params.Set("q", q)
	params.Set("wt", "json")
	for _, fq := range query.Filters {
		params.Add("fq", fq)
	}
	if query.Start > 0 {
		params.Set("start", strconv.Itoa(query.Start))
	}
	if query.Rows > 0 {
		params.Set("rows", strconv.Itoa(query.Rows))
	}

	resp, err := c.do(ctx, "select", http.MethodGet, c.baseURL+"/select?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeSelect(resp.Body)
}

// Close releases idle connections. Later calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) update(ctx context.Context, op string, body []byte) error {
	resp, err := c.do(ctx, op, http.MethodPost, c.baseURL+"/update?wt=json", body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do sends a request and returns the response of a 2xx status. Other statuses
// are turned into a *StatusError.
func (c *Client) do(ctx context.Context, op, method, target string, body []byte) (*http.Response, error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("solr %s: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solr %s: %w", op, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		c.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
	}

	statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	if err == nil {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error.Msg != "" {
			statusErr.Message = e.Error.Msg
		} else {
			statusErr.Message = strings.TrimSpace(string(raw))
		}
	}
	return nil, statusErr
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
