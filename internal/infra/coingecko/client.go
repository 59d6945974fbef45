// Package coingecko is the market-data client. Every operation degrades to the
// static fallback set instead of returning an upstream error, so callers
// always have something to render.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/infra/fallback"
	"coin-dashboard/internal/infra/keyring"
	"coin-dashboard/internal/observability/logging"
	"coin-dashboard/internal/observability/metrics"
	"coin-dashboard/internal/observability/tracing"
	"coin-dashboard/internal/resilience/circuitbreaker"
)

const (
	// DefaultBaseURL is the public v3 API root.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 10 * time.Second

	// DefaultSearchFallbackDelay is how long Search waits for live results
	// before answering from the fallback set.
	DefaultSearchFallbackDelay = 400 * time.Millisecond

	// DefaultSearchMaxIDs caps how many search hits are priced.
	DefaultSearchMaxIDs = 10

	// DefaultPerPage is the page size for TopCoins when none is given.
	DefaultPerPage = 20

	apiName = "coingecko"
)

// Endpoint labels. Coin ids are not part of the label to bound metric cardinality.
const (
	endpointMarkets = "coins/markets"
	endpointSearch  = "search"
	endpointCoin    = "coins/{id}"
	endpointChart   = "coins/{id}/market_chart"
)

// Config holds client settings.
type Config struct {
	BaseURL             string
	Timeout             time.Duration
	SearchFallbackDelay time.Duration
	SearchMaxIDs        int
	// DateLayout formats chart dates. Empty means the en-US short date.
	DateLayout string
	// Location renders chart dates. Nil means time.Local.
	Location *time.Location
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		Timeout:             DefaultTimeout,
		SearchFallbackDelay: DefaultSearchFallbackDelay,
		SearchMaxIDs:        DefaultSearchMaxIDs,
		DateLayout:          fallback.DefaultDateLayout,
	}
}

// Client fetches market data with key rotation and fallback.
type Client struct {
	cfg        Config
	httpClient *http.Client
	keys       *keyring.Rotator
	breaker    *circuitbreaker.CircuitBreaker
	limiter    *RateLimiter
	now        func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker guards every upstream call. An open breaker serves fallback at once.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// WithRateLimiter sets a local request budget.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithClock replaces time.Now for fallback timestamps and series.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRand seeds the synthetic chart noise.
func WithRand(r *rand.Rand) Option {
	return func(c *Client) { c.rand = r }
}

// NewClient returns a Client. keys may be nil or empty for unauthenticated use.
func NewClient(cfg Config, keys *keyring.Rotator, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.SearchFallbackDelay <= 0 {
		cfg.SearchFallbackDelay = def.SearchFallbackDelay
	}
	if cfg.SearchMaxIDs <= 0 {
		cfg.SearchMaxIDs = def.SearchMaxIDs
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = def.DateLayout
	}
	if keys == nil {
		keys = keyring.New(nil)
	}

	c := &Client{
		cfg:  cfg,
		keys: keys,
		now:  time.Now,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: tracing.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rand == nil {
		// #nosec G404 -- chart noise does not need cryptographic randomness.
		c.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// TopCoins returns coins ordered by market cap. Upstream failure yields the
// first perPage fallback records.
func (c *Client) TopCoins(ctx context.Context, perPage, page int) []entity.Coin {
	const op = "top_coins"
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	ctx, span := tracing.StartSpan(ctx, "coingecko.TopCoins",
		attribute.Int("per_page", perPage), attribute.Int("page", page))
	defer span.End()

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "24h")

	var coins []entity.Coin
	if err := c.getJSON(ctx, endpointMarkets, "/coins/markets", q, &coins); err != nil {
		tracing.RecordError(span, err)
		c.degrade(ctx, op, err)
		return fallback.Top(perPage, c.now())
	}
	metrics.RecordFetchOutcome(op, metrics.OutcomeLive)
	if coins == nil {
		coins = []entity.Coin{}
	}
	return coins
}

// CoinDetails returns the detail record for id. Upstream failure yields a
// synthesized record, or nil when id is not in the fallback set.
func (c *Client) CoinDetails(ctx context.Context, id string) *entity.CoinDetail {
	const op = "coin_details"
	ctx, span := tracing.StartSpan(ctx, "coingecko.CoinDetails", attribute.String("coin_id", id))
	defer span.End()

	if err := entity.ValidateCoinID(id); err != nil {
		c.degrade(ctx, op, err)
		return fallback.Detail(id, fallback.ReasonUnavailable, c.now())
	}

	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	var detail detailWire
	if err := c.getJSON(ctx, endpointCoin, "/coins/"+entity.EscapeCoinID(id), q, &detail); err != nil {
		tracing.RecordError(span, err)
		c.degrade(ctx, op, err)
		return fallback.Detail(id, fallbackReason(err), c.now())
	}
	metrics.RecordFetchOutcome(op, metrics.OutcomeLive)
	return detail.toEntity()
}

type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// HistoricalData returns daily USD prices for id over days, oldest first.
// Upstream failure yields a synthetic series of days+1 points.
func (c *Client) HistoricalData(ctx context.Context, id string, days int) []entity.ChartPoint {
	const op = "historical_data"
	if days < 0 {
		days = 0
	}
	ctx, span := tracing.StartSpan(ctx, "coingecko.HistoricalData",
		attribute.String("coin_id", id), attribute.Int("days", days))
	defer span.End()

	if err := entity.ValidateCoinID(id); err != nil {
		c.degrade(ctx, op, err)
		return c.syntheticHistory(id, days)
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))

	var chart marketChart
	if err := c.getJSON(ctx, endpointChart, "/coins/"+entity.EscapeCoinID(id)+"/market_chart", q, &chart); err != nil {
		tracing.RecordError(span, err)
		c.degrade(ctx, op, err)
		return c.syntheticHistory(id, days)
	}
	metrics.RecordFetchOutcome(op, metrics.OutcomeLive)

	loc := c.location()
	points := make([]entity.ChartPoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		points = append(points, entity.ChartPoint{
			Date:  time.UnixMilli(int64(p[0])).In(loc).Format(c.cfg.DateLayout),
			Price: p[1],
		})
	}
	return points
}

func (c *Client) syntheticHistory(id string, days int) []entity.ChartPoint {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	return fallback.History(id, days, fallback.SeriesOptions{
		Now:      c.now(),
		Layout:   c.cfg.DateLayout,
		Location: c.location(),
		Rand:     c.rand,
	})
}

func (c *Client) location() *time.Location {
	if c.cfg.Location != nil {
		return c.cfg.Location
	}
	return time.Local
}

// getJSON issues one GET and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if !c.limiter.Allow() {
		return fmt.Errorf("%s: local request budget exhausted: %w", endpoint, ErrThrottled)
	}
	if c.breaker == nil {
		return c.do(ctx, endpoint, path, query, out)
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, endpoint, path, query, out)
	})
	return err
}

func (c *Client) do(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	c.keys.Apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(apiName, endpoint, 0, time.Since(start))
		return fmt.Errorf("%s: execute request: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest(apiName, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Endpoint: endpoint, RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

// degrade logs why op is being served from fallback data and counts it.
func (c *Client) degrade(ctx context.Context, op string, err error) {
	logger := logging.FromContext(ctx)
	if IsThrottled(err) {
		attrs := []any{slog.String("operation", op), slog.Any("error", err)}
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			attrs = append(attrs, slog.Duration("retry_after", rl.RetryAfter))
		}
		logger.Info("market data rate limit reached, serving fallback data", attrs...)
		metrics.RecordFetchOutcome(op, metrics.OutcomeRateLimited)
		return
	}
	if circuitbreaker.IsRejected(err) {
		logger.Info("market data circuit open, serving fallback data",
			slog.String("operation", op))
	} else {
		logger.Warn("market data request failed, serving fallback data",
			slog.String("operation", op),
			slog.Any("error", err))
	}
	metrics.RecordFetchOutcome(op, metrics.OutcomeFallback)
}
