// Package market aggregates the per-coin view: detail, price history and
// rug pull analysis.
package market

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/observability/logging"
)

// DefaultHistoryDays is the chart window used when days is negative.
// Zero days is a valid request for the current price alone.
const DefaultHistoryDays = 30

// MarketData is the market-data source. Its methods never fail; they degrade
// to fallback data.
type MarketData interface {
	CoinDetails(ctx context.Context, id string) *entity.CoinDetail
	HistoricalData(ctx context.Context, id string, days int) []entity.ChartPoint
}

// Analyst produces rug pull analyses.
type Analyst interface {
	Analyze(ctx context.Context, coinID string, coinData any) (*entity.RugPullRisk, error)
}

// Overview is everything shown for one coin.
type Overview struct {
	Detail   *entity.CoinDetail
	History  []entity.ChartPoint
	Analysis *entity.RugPullRisk
	// AnalysisErr is set when the analysis could not be produced.
	AnalysisErr error
}

// Service builds coin overviews.
type Service struct {
	Market  MarketData
	Analyst Analyst
}

// NewService wires a Service.
func NewService(md MarketData, analyst Analyst) *Service {
	return &Service{Market: md, Analyst: analyst}
}

// Overview loads detail and history concurrently, then asks for the analysis
// with the detail attached. It returns entity.ErrNotFound when no detail exists
// for id. A failed analysis does not fail the overview.
func (s *Service) Overview(ctx context.Context, id string, days int) (*Overview, error) {
	if err := entity.ValidateCoinID(id); err != nil {
		return nil, err
	}
	if days < 0 {
		days = DefaultHistoryDays
	}

	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Detail = s.Market.CoinDetails(gctx, id)
		return nil
	})
	g.Go(func() error {
		out.History = s.Market.HistoricalData(gctx, id, days)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.Detail == nil {
		return nil, fmt.Errorf("overview %s: %w", id, entity.ErrNotFound)
	}

	out.Analysis, out.AnalysisErr = s.Analyst.Analyze(ctx, id, out.Detail)
	if out.AnalysisErr != nil {
		logging.FromContext(ctx).Info("overview served without analysis",
			slog.String("coin_id", id),
			slog.Any("error", out.AnalysisErr))
	}
	return &out, nil
}
