// Package worker runs the dashboard's scheduled refresh: it re-reads the top
// coin list, warms the analysis cache for favorites and exposes health and
// metrics endpoints while it runs.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"coin-dashboard/internal/domain/entity"
)

// TopLister returns the current market listing.
type TopLister interface {
	TopCoins(ctx context.Context, perPage, page int) []entity.Coin
}

// Analyst produces (and caches) rug-pull analyses.
type Analyst interface {
	Analyze(ctx context.Context, coinID string, coinData any) (*entity.RugPullRisk, error)
}

// FavoriteLister returns the user's favorite coin ids.
type FavoriteLister interface {
	List(ctx context.Context) []string
}

// Job status labels.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)

// Defaults for JobConfig.
const (
	DefaultPerPage     = 20
	DefaultTimeout     = 2 * time.Minute
	DefaultParallelism = 3
)

// JobConfig tunes a refresh run.
type JobConfig struct {
	PerPage     int
	Timeout     time.Duration
	Parallelism int
}

// Snapshot is the result of the latest refresh.
type Snapshot struct {
	Coins       []entity.Coin
	RefreshedAt time.Time
	Warmed      int
	Failed      int
	Status      string
}

// Job refreshes the top list and warms favorite analyses. Analyst and
// favorites may be nil, in which case warming is skipped.
type Job struct {
	cfg       JobConfig
	top       TopLister
	analyst   Analyst
	favorites FavoriteLister
	metrics   *WatchMetrics
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.RWMutex
	latest Snapshot
}

// NewJob wires a refresh job. metrics may be nil.
func NewJob(cfg JobConfig, top TopLister, analyst Analyst, favorites FavoriteLister, metrics *WatchMetrics, logger *slog.Logger) *Job {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		cfg:       cfg,
		top:       top,
		analyst:   analyst,
		favorites: favorites,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one refresh. Market data never fails (it degrades to the
// fallback set), so the status only reflects analysis warming and the run
// deadline.
func (j *Job) Run(ctx context.Context) Snapshot {
	start := j.now()
	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	j.logger.Info("watch refresh started")

	coins := j.top.TopCoins(ctx, j.cfg.PerPage, 1)
	warmed, failed := j.warm(ctx)

	snap := Snapshot{
		Coins:       coins,
		RefreshedAt: j.now(),
		Warmed:      warmed,
		Failed:      failed,
		Status:      StatusSuccess,
	}
	switch {
	case ctx.Err() != nil:
		snap.Status = StatusFailure
	case failed > 0:
		snap.Status = StatusPartial
	}

	j.mu.Lock()
	j.latest = snap
	j.mu.Unlock()

	if j.metrics != nil {
		j.metrics.RecordJobRun(snap.Status)
		j.metrics.RecordJobDuration(j.now().Sub(start).Seconds())
		j.metrics.RecordCoinsRefreshed(len(coins))
		j.metrics.RecordAnalysesWarmed(warmed)
		if snap.Status != StatusFailure {
			j.metrics.RecordLastSuccess()
		}
	}

	j.logger.Info("watch refresh completed",
		slog.String("status", snap.Status),
		slog.Int("coins", len(coins)),
		slog.Int("analyses_warmed", warmed),
		slog.Int("analyses_failed", failed),
		slog.Duration("duration", j.now().Sub(start)))

	return snap
}

// Latest returns the most recent snapshot. RefreshedAt is zero before the
// first run.
func (j *Job) Latest() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest
}

func (j *Job) warm(ctx context.Context) (warmed, failed int) {
	if j.analyst == nil || j.favorites == nil {
		return 0, 0
	}
	ids := j.favorites.List(ctx)
	if len(ids) == 0 {
		return 0, 0
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.cfg.Parallelism)
	for _, id := range ids {
		g.Go(func() error {
			_, err := j.analyst.Analyze(gctx, id, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				j.logger.Debug("analysis warm failed", slog.String("coin_id", id), slog.Any("error", err))
				return nil
			}
			warmed++
			return nil
		})
	}
	_ = g.Wait()
	return warmed, failed
}
