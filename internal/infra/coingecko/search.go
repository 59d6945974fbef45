package coingecko

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/infra/fallback"
	"coin-dashboard/internal/observability/logging"
	"coin-dashboard/internal/observability/metrics"
	"coin-dashboard/internal/observability/tracing"
)

type searchResponse struct {
	Coins []struct {
		ID string `json:"id"`
	} `json:"coins"`
}

// Search finds coins matching query. Queries shorter than
// entity.MinSearchQueryLength return an empty result without any request.
//
// The live lookup races a timer of Config.SearchFallbackDelay. If the timer
// fires first, the fallback records matching query are returned and the live
// lookup is left to finish on its own. A live search with no hits returns an
// empty result. A failing live lookup returns the matching fallback records.
func (c *Client) Search(ctx context.Context, query string) []entity.Coin {
	const op = "search"
	if !entity.IsSearchable(query) {
		return []entity.Coin{}
	}
	ctx, span := tracing.StartSpan(ctx, "coingecko.Search", attribute.String("query", query))
	defer span.End()

	filtered := fallback.Filter(query, c.now())

	// Buffered so the live lookup never blocks after losing the race.
	// Only the winner's outcome is recorded.
	results := make(chan liveResult, 1)
	liveCtx := context.WithoutCancel(ctx)
	go func() {
		coins, err := c.searchLive(liveCtx, query)
		results <- liveResult{coins: coins, err: err}
	}()

	timer := time.NewTimer(c.cfg.SearchFallbackDelay)
	defer timer.Stop()

	select {
	case res := <-results:
		metrics.RecordSearchRace(metrics.WinnerLive)
		span.SetAttributes(attribute.String("search.winner", metrics.WinnerLive))
		switch {
		case res.err != nil:
			tracing.RecordError(span, res.err)
			c.degrade(ctx, op, res.err)
			return filtered
		case len(res.coins) == 0:
			metrics.RecordFetchOutcome(op, metrics.OutcomeEmpty)
			return []entity.Coin{}
		default:
			metrics.RecordFetchOutcome(op, metrics.OutcomeLive)
			return res.coins
		}
	case <-timer.C:
		logging.FromContext(ctx).Info("search taking too long, serving fallback data",
			slog.String("query", query),
			slog.Duration("delay", c.cfg.SearchFallbackDelay))
		metrics.RecordSearchRace(metrics.WinnerTimer)
		metrics.RecordFetchOutcome(op, metrics.OutcomeFallback)
		span.SetAttributes(attribute.String("search.winner", metrics.WinnerTimer))
		return filtered
	case <-ctx.Done():
		metrics.RecordSearchRace(metrics.WinnerCanceled)
		span.SetAttributes(attribute.String("search.winner", metrics.WinnerCanceled))
		return filtered
	}
}

type liveResult struct {
	coins []entity.Coin
	err   error
}

// searchLive resolves query to ids, then prices the first SearchMaxIDs of them.
// It neither logs nor records outcomes; the race winner does.
func (c *Client) searchLive(ctx context.Context, query string) ([]entity.Coin, error) {
	q := url.Values{}
	q.Set("query", query)
	var found searchResponse
	if err := c.getJSON(ctx, endpointSearch, "/search", q, &found); err != nil {
		return nil, err
	}
	if len(found.Coins) == 0 {
		return []entity.Coin{}, nil
	}

	ids := make([]string, 0, c.cfg.SearchMaxIDs)
	for _, hit := range found.Coins {
		if len(ids) == c.cfg.SearchMaxIDs {
			break
		}
		ids = append(ids, hit.ID)
	}

	mq := url.Values{}
	mq.Set("vs_currency", "usd")
	mq.Set("ids", strings.Join(ids, ","))
	mq.Set("order", "market_cap_desc")
	mq.Set("sparkline", "false")
	mq.Set("price_change_percentage", "24h")
	var coins []entity.Coin
	if err := c.getJSON(ctx, endpointMarkets, "/coins/markets", mq, &coins); err != nil {
		return nil, err
	}
	if coins == nil {
		coins = []entity.Coin{}
	}
	return coins, nil
}
