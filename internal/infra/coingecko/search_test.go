package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/observability/metrics"
)

// searchServer answers /search with hits and /coins/markets with one coin per requested id.
func searchServer(t *testing.T, hits []string, delay time.Duration, release <-chan struct{}) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var calls atomic.Int32
	var marketIDs atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-release:
			}
		}
		switch r.URL.Path {
		case "/search":
			parts := make([]string, 0, len(hits))
			for _, id := range hits {
				parts = append(parts, fmt.Sprintf(`{"id":%q}`, id))
			}
			_, _ = fmt.Fprintf(w, `{"coins":[%s]}`, strings.Join(parts, ","))
		case "/coins/markets":
			ids := r.URL.Query().Get("ids")
			marketIDs.Store(ids)
			coins := make([]entity.Coin, 0)
			for _, id := range strings.Split(ids, ",") {
				coins = append(coins, entity.Coin{ID: id, Name: id})
			}
			writeJSON(t, w, coins)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv, &calls, &marketIDs
}

func searchClient(t *testing.T, srv *httptest.Server, delay time.Duration) *Client {
	t.Helper()
	c := newTestClient(t, srv, nil)
	c.cfg.SearchFallbackDelay = delay
	return c
}

func TestSearch_ShortQueryIssuesNoRequest(t *testing.T) {
	srv, calls, _ := searchServer(t, []string{"bitcoin"}, 0, nil)
	defer srv.Close()
	c := searchClient(t, srv, time.Second)

	for _, q := range []string{"", "b", " ", "é"} {
		got := c.Search(context.Background(), q)
		assert.NotNil(t, got, "query %q", q)
		assert.Empty(t, got, "query %q", q)
	}

	assert.Zero(t, calls.Load())
}

func TestSearch_LiveWins(t *testing.T) {
	// Arrange: 12 hits, only the first 10 are priced
	hits := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		hits = append(hits, fmt.Sprintf("coin-%d", i))
	}
	srv, calls, marketIDs := searchServer(t, hits, 0, nil)
	defer srv.Close()
	c := searchClient(t, srv, 2*time.Second)

	// Act
	got := c.Search(context.Background(), "coin")

	// Assert
	require.Len(t, got, 10)
	assert.Equal(t, "coin-0", got[0].ID)
	assert.Equal(t, "coin-9", got[9].ID)
	assert.Equal(t, strings.Join(hits[:10], ","), marketIDs.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_TimerWins(t *testing.T) {
	release := make(chan struct{})
	srv, _, _ := searchServer(t, []string{"bitcoin"}, 5*time.Second, release)
	defer srv.Close()
	defer close(release)
	c := searchClient(t, srv, 50*time.Millisecond)

	start := time.Now()
	got := c.Search(context.Background(), "bit")
	elapsed := time.Since(start)

	assert.Equal(t, []string{"bitcoin"}, coinIDs(got))
	assert.Less(t, elapsed, time.Second)
}

func TestSearch_TimerWinsWithNoFallbackMatch(t *testing.T) {
	release := make(chan struct{})
	srv, _, _ := searchServer(t, []string{"dogecoin"}, 5*time.Second, release)
	defer srv.Close()
	defer close(release)
	c := searchClient(t, srv, 20*time.Millisecond)

	got := c.Search(context.Background(), "doge")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_ZeroMatchesReturnsEmptyNotFallback(t *testing.T) {
	srv, calls, _ := searchServer(t, nil, 0, nil)
	defer srv.Close()
	c := searchClient(t, srv, 2*time.Second)

	// "bit" matches a fallback record; a live zero-hit answer must still win.
	got := c.Search(context.Background(), "bit")

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_PipelineFailureServesFilteredFallback(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		status int
	}{
		{"search throttled", "/search", http.StatusTooManyRequests},
		{"search error", "/search", http.StatusInternalServerError},
		{"markets throttled", "/coins/markets", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == tt.failOn {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte(`{"coins":[{"id":"ethereum"}]}`))
			}))
			defer srv.Close()
			c := searchClient(t, srv, 2*time.Second)

			got := c.Search(context.Background(), "ETH")

			assert.Equal(t, []string{"ethereum"}, coinIDs(got))
		})
	}
}

func TestSearch_CallerCancellationServesFallback(t *testing.T) {
	release := make(chan struct{})
	srv, _, _ := searchServer(t, []string{"solana"}, 5*time.Second, release)
	defer srv.Close()
	defer close(release)
	c := searchClient(t, srv, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	got := c.Search(ctx, "sol")

	assert.Equal(t, []string{"solana"}, coinIDs(got))
}

func TestSearch_LoserIsNotCanceled(t *testing.T) {
	// The live lookup keeps running after the timer wins and reaches the server.
	reached := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(`{"coins":[{"id":"cardano"}]}`))
			return
		}
		reached <- r.URL.Query().Get("ids")
		writeJSON(t, w, []entity.Coin{{ID: "cardano"}})
	}))
	defer srv.Close()
	c := searchClient(t, srv, 10*time.Millisecond)

	got := c.Search(context.Background(), "ada")
	require.Equal(t, []string{"cardano"}, coinIDs(got))

	select {
	case ids := <-reached:
		assert.Equal(t, "cardano", ids)
	case <-time.After(2 * time.Second):
		t.Fatal("live lookup was abandoned before pricing")
	}
}

func TestSearch_FailingLoserRecordsNoSecondOutcome(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		defer close(done)
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := searchClient(t, srv, 10*time.Millisecond)

	fallbackOutcomes := metrics.FetchOutcomesTotal.WithLabelValues("search", metrics.OutcomeFallback)
	before := testutil.ToFloat64(fallbackOutcomes)

	got := c.Search(context.Background(), "ripple")
	require.Equal(t, []string{"ripple"}, coinIDs(got))

	<-done
	// give the losing lookup time to return to the race
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(fallbackOutcomes))
}
