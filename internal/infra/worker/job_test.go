package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/domain/entity"
)

type stubTop struct {
	calls   atomic.Int32
	perPage int
	coins   []entity.Coin
	block   bool
}

func (s *stubTop) TopCoins(ctx context.Context, perPage, _ int) []entity.Coin {
	s.calls.Add(1)
	s.perPage = perPage
	if s.block {
		<-ctx.Done()
	}
	return s.coins
}

type stubAnalyst struct {
	mu     sync.Mutex
	seen   []string
	failOn map[string]bool
}

func (s *stubAnalyst) Analyze(_ context.Context, coinID string, _ any) (*entity.RugPullRisk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, coinID)
	if s.failOn[coinID] {
		return nil, errors.New("backend unavailable")
	}
	return &entity.RugPullRisk{Score: 10, Justification: coinID}, nil
}

type stubFavorites []string

func (s stubFavorites) List(context.Context) []string { return s }

func TestJob_RunRefreshesAndWarms(t *testing.T) {
	top := &stubTop{coins: []entity.Coin{{ID: "bitcoin"}, {ID: "ethereum"}}}
	analyst := &stubAnalyst{}
	reg := prometheus.NewRegistry()
	m := NewWatchMetrics(reg)

	job := NewJob(JobConfig{PerPage: 2}, top, analyst, stubFavorites{"bitcoin", "solana"}, m, discardLogger())

	assert.True(t, job.Latest().RefreshedAt.IsZero())

	snap := job.Run(context.Background())

	assert.Equal(t, StatusSuccess, snap.Status)
	assert.Len(t, snap.Coins, 2)
	assert.Equal(t, 2, top.perPage)
	assert.Equal(t, 2, snap.Warmed)
	assert.Equal(t, 0, snap.Failed)
	assert.ElementsMatch(t, []string{"bitcoin", "solana"}, analyst.seen)
	assert.False(t, snap.RefreshedAt.IsZero())
	assert.Equal(t, snap, job.Latest())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobCoinsRefreshed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobAnalysesWarmedTotal))
	assert.Greater(t, testutil.ToFloat64(m.JobLastSuccessTimestamp), 0.0)
}

func TestJob_PartialWhenAnalysisFails(t *testing.T) {
	top := &stubTop{coins: []entity.Coin{{ID: "bitcoin"}}}
	analyst := &stubAnalyst{failOn: map[string]bool{"dogecoin": true}}
	m := NewWatchMetrics(prometheus.NewRegistry())

	job := NewJob(JobConfig{}, top, analyst, stubFavorites{"bitcoin", "dogecoin"}, m, discardLogger())
	snap := job.Run(context.Background())

	assert.Equal(t, StatusPartial, snap.Status)
	assert.Equal(t, 1, snap.Warmed)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, DefaultPerPage, top.perPage)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(StatusPartial)))
	assert.Greater(t, testutil.ToFloat64(m.JobLastSuccessTimestamp), 0.0)
}

func TestJob_NoWarmingWithoutAnalyst(t *testing.T) {
	top := &stubTop{coins: []entity.Coin{{ID: "bitcoin"}}}

	job := NewJob(JobConfig{}, top, nil, stubFavorites{"bitcoin"}, nil, nil)
	snap := job.Run(context.Background())

	assert.Equal(t, StatusSuccess, snap.Status)
	assert.Zero(t, snap.Warmed)
}

func TestJob_TimeoutIsFailure(t *testing.T) {
	top := &stubTop{block: true}
	m := NewWatchMetrics(prometheus.NewRegistry())

	job := NewJob(JobConfig{Timeout: 20 * time.Millisecond}, top, nil, nil, m, discardLogger())
	snap := job.Run(context.Background())

	assert.Equal(t, StatusFailure, snap.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(StatusFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.JobLastSuccessTimestamp))
}

func TestJob_ParallelismBound(t *testing.T) {
	var inFlight, peak atomic.Int32
	analyst := analystFunc(func(ctx context.Context, id string) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	favs := stubFavorites{"a1", "a2", "a3", "a4", "a5", "a6"}
	job := NewJob(JobConfig{Parallelism: 2}, &stubTop{}, analyst, favs, nil, discardLogger())
	snap := job.Run(context.Background())

	require.Equal(t, 6, snap.Warmed)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

type analystFunc func(ctx context.Context, id string) error

func (f analystFunc) Analyze(ctx context.Context, coinID string, _ any) (*entity.RugPullRisk, error) {
	if err := f(ctx, coinID); err != nil {
		return nil, err
	}
	return &entity.RugPullRisk{Justification: coinID}, nil
}
