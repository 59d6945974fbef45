package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coin-dashboard/internal/resilience/circuitbreaker"
)

// HealthServer exposes liveness, readiness, breaker state and Prometheus
// metrics for the watch command.
//
// Endpoints:
//   - GET /health: liveness probe (always 200 OK)
//   - GET /health/ready: 200 once the first refresh has completed, 503 before
//   - GET /health/breakers: upstream breaker states, 503 while any is open
//   - GET /metrics: Prometheus exposition
//
// Example usage:
//
//	healthServer := NewHealthServer(":9090", logger, WithBreakers(cgBreaker, backendBreaker))
//	go func() {
//	    if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
//	        logger.Error("health server failed", slog.Any("error", err))
//	    }
//	}()
//	healthServer.SetReady(true)
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	isReady  *atomic.Bool
	server   *http.Server
	gatherer prometheus.Gatherer
	breakers []*circuitbreaker.CircuitBreaker
}

// healthResponse is the JSON response format for health check endpoints.
type healthResponse struct {
	Status string `json:"status"`
}

// breakerStatus reports one circuit breaker.
type breakerStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Open  bool   `json:"open"`
}

type breakersResponse struct {
	Healthy  bool            `json:"healthy"`
	Breakers []breakerStatus `json:"breakers"`
}

// HealthOption configures a HealthServer.
type HealthOption func(*HealthServer)

// WithGatherer sets the metrics source for /metrics. Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) HealthOption {
	return func(h *HealthServer) {
		if g != nil {
			h.gatherer = g
		}
	}
}

// WithBreakers lists the breakers reported on /health/breakers.
func WithBreakers(cbs ...*circuitbreaker.CircuitBreaker) HealthOption {
	return func(h *HealthServer) {
		for _, cb := range cbs {
			if cb != nil {
				h.breakers = append(h.breakers, cb)
			}
		}
	}
}

// NewHealthServer creates a server listening on addr (e.g. ":9090").
// It starts as not ready.
func NewHealthServer(addr string, logger *slog.Logger, opts ...HealthOption) *HealthServer {
	isReady := &atomic.Bool{}
	isReady.Store(false)

	h := &HealthServer{
		addr:     addr,
		logger:   logger,
		isReady:  isReady,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler returns the routing for all endpoints.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	mux.HandleFunc("/health/breakers", h.handleBreakers)
	mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves until ctx is cancelled, then shuts down within 5 seconds.
// It returns http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if err == http.ErrServerClosed {
			return err
		}
		h.logger.Error("health server failed", slog.Any("error", err))
		return err
	}
}

// SetReady sets the readiness reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	if h.isReady.Swap(ready) != ready {
		h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
	}
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.isReady.Load() {
		h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
}

// handleBreakers reports 503 while any breaker is open. Market data is still
// served from fallback in that state, so this is a degradation signal only.
func (h *HealthServer) handleBreakers(w http.ResponseWriter, _ *http.Request) {
	resp := breakersResponse{Healthy: true, Breakers: make([]breakerStatus, 0, len(h.breakers))}
	for _, cb := range h.breakers {
		open := cb.IsOpen()
		resp.Breakers = append(resp.Breakers, breakerStatus{
			Name:  cb.Name(),
			State: cb.State().String(),
			Open:  open,
		})
		if open {
			resp.Healthy = false
		}
	}

	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
