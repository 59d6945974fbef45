package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/resilience/circuitbreaker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthServer_Liveness(t *testing.T) {
	server := NewHealthServer(":0", discardLogger())

	rec := get(t, server.Handler(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthServer_Readiness(t *testing.T) {
	server := NewHealthServer(":0", discardLogger())
	h := server.Handler()

	rec := get(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready")

	server.SetReady(true)
	rec = get(t, h, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	server.SetReady(false)
	rec = get(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthServer_Breakers(t *testing.T) {
	cfg := circuitbreaker.DefaultConfig("test-health-upstream")
	cfg.MinRequests = 1
	cfg.FailureThreshold = 0.5
	cb := circuitbreaker.New(cfg)

	server := NewHealthServer(":0", discardLogger(), WithBreakers(cb, nil))
	h := server.Handler()

	rec := get(t, h, "/health/breakers")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp breakersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Healthy)
	require.Len(t, resp.Breakers, 1)
	assert.Equal(t, breakerStatus{Name: "test-health-upstream", State: "closed"}, resp.Breakers[0])

	_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("upstream down") })
	require.True(t, cb.IsOpen())

	rec = get(t, h, "/health/breakers")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Healthy)
	assert.True(t, resp.Breakers[0].Open)
	assert.Equal(t, "open", resp.Breakers[0].State)
}

func TestHealthServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWatchMetrics(reg)
	m.RecordJobRun(StatusSuccess)

	server := NewHealthServer(":0", discardLogger(), WithGatherer(reg))

	rec := get(t, server.Handler(), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `watch_job_runs_total{status="success"} 1`)
	assert.Contains(t, rec.Body.String(), "dashboard_config_fallback_active")
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	server := NewHealthServer(addr, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
