package rugpull

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/infra/backend"
	"coin-dashboard/internal/infra/cache"
	"coin-dashboard/internal/observability/logging"
	"coin-dashboard/internal/observability/metrics"
	"coin-dashboard/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Analyzer fetches a fresh analysis from the backend.
type Analyzer interface {
	RugPullAnalysis(ctx context.Context, coinID string, coinData any) (*entity.RugPullRisk, error)
}

// Cache stores analyses between calls.
type Cache interface {
	Get(ctx context.Context, coinID string) (entity.RugPullRisk, bool)
	Put(ctx context.Context, coinID string, risk entity.RugPullRisk) cache.PutResult
}

// Service serves analyses from the cache and falls through to the backend.
type Service struct {
	Analyzer Analyzer
	Cache    Cache

	group singleflight.Group
}

// NewService wires a Service.
func NewService(analyzer Analyzer, c Cache) *Service {
	return &Service{Analyzer: analyzer, Cache: c}
}

// Analyze returns the rug pull risk for coinID.
//
// A valid cached analysis is returned without a network call. Otherwise the
// backend is asked once per coin no matter how many callers are waiting, and
// the answer is cached. coinData, when non-nil, is forwarded so the backend
// can skip its own market lookup. Backend failures leave the cache untouched
// and are returned wrapped in ErrAnalysisUnavailable. A caller whose ctx ends
// gets ctx.Err() while the shared request carries on for the others.
func (s *Service) Analyze(ctx context.Context, coinID string, coinData any) (*entity.RugPullRisk, error) {
	if err := entity.ValidateCoinID(coinID); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "rugpull.Analyze", attribute.String("coin_id", coinID))
	defer span.End()

	if risk, ok := s.Cache.Get(ctx, coinID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &risk, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// The flight is shared, so it must not inherit one caller's cancellation.
	// The backend client's timeout still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(coinID, func() (interface{}, error) {
		// a flight that finished between our miss and this call may have filled the cache
		if risk, ok := s.Cache.Get(flightCtx, coinID); ok {
			return risk, nil
		}
		return s.fetch(flightCtx, coinID, coinData)
	})

	select {
	case <-ctx.Done():
		tracing.RecordError(span, ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			tracing.RecordError(span, res.Err)
			return nil, res.Err
		}
		span.SetAttributes(attribute.Bool("singleflight.shared", res.Shared))
		risk := res.Val.(entity.RugPullRisk)
		return &risk, nil
	}
}

func (s *Service) fetch(ctx context.Context, coinID string, coinData any) (entity.RugPullRisk, error) {
	logger := logging.FromContext(ctx)

	risk, err := s.Analyzer.RugPullAnalysis(ctx, coinID, coinData)
	if err != nil {
		metrics.RecordAnalysisRequest(false)
		if backend.IsRateLimited(err) {
			logger.Warn("rug pull analysis throttled", slog.String("coin_id", coinID))
		} else {
			logger.Error("rug pull analysis failed",
				slog.String("coin_id", coinID),
				slog.Any("error", err))
		}
		return entity.RugPullRisk{}, fmt.Errorf("%w: %s: %w", ErrAnalysisUnavailable, coinID, err)
	}
	metrics.RecordAnalysisRequest(true)

	if res := s.Cache.Put(ctx, coinID, *risk); !res.Persisted() {
		logger.Debug("rug pull analysis cached in memory only",
			slog.String("coin_id", coinID),
			slog.Any("error", res.DurableErr))
	}
	return *risk, nil
}
