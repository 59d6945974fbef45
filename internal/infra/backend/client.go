// Package backend is the client for the first-party dashboard API: news,
// podcasts and rug pull analysis. Unlike the market-data client it has no
// fallback data; every failure is returned to the caller.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"coin-dashboard/internal/observability/logging"
	"coin-dashboard/internal/observability/metrics"
	"coin-dashboard/internal/observability/tracing"
	"coin-dashboard/internal/resilience/circuitbreaker"
)

const (
	// DefaultBaseURL is the local development API root.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultTimeout bounds a single request. Podcast generation is slow.
	DefaultTimeout = 60 * time.Second

	// RequestIDHeader carries the correlation id of each call.
	RequestIDHeader = "X-Request-ID"

	apiName = "backend"

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 10 << 20
)

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the backend. Each method issues exactly one request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker guards every call. An open breaker fails fast with the breaker's error.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: tracing.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call describes one request.
type call struct {
	op       string // verb phrase for errors and logs
	endpoint string // metric label
	method   string
	path     string
	query    url.Values
	body     any
}

// send issues c and returns the raw 2xx body.
func (c *Client) send(ctx context.Context, req call) ([]byte, error) {
	if c.breaker == nil {
		return c.roundTrip(ctx, req)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (c *Client) roundTrip(ctx context.Context, rc call) ([]byte, error) {
	target := c.baseURL + rc.path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	var body io.Reader
	if rc.body != nil {
		payload, err := json.Marshal(rc.body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", rc.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", rc.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(apiName, rc.endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%s: execute request: %w", rc.op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest(apiName, rc.endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Op: rc.op, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", rc.op, err)
	}
	return raw, nil
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Status string          `json:"status,omitempty"`
}

// getData sends rc and decodes the data member of the envelope into out.
func (c *Client) getData(ctx context.Context, rc call, out any) error {
	raw, err := c.send(ctx, rc)
	if err != nil {
		c.logFailure(ctx, rc.op, err)
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		err = fmt.Errorf("%s: decode response: %w", rc.op, err)
		c.logFailure(ctx, rc.op, err)
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		err := fmt.Errorf("%s: response has no data", rc.op)
		c.logFailure(ctx, rc.op, err)
		return err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		err = fmt.Errorf("%s: decode data: %w", rc.op, err)
		c.logFailure(ctx, rc.op, err)
		return err
	}
	return nil
}

func (c *Client) logFailure(ctx context.Context, op string, err error) {
	logger := logging.FromContext(ctx)
	if IsRateLimited(err) {
		logger.Warn("backend rate limit reached", slog.String("operation", op))
		return
	}
	logger.Error("backend request failed",
		slog.String("operation", op),
		slog.Any("error", err))
}
