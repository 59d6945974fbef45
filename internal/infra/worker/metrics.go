package worker

import (
	"coin-dashboard/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WatchMetrics provides Prometheus metrics for the watch command.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// refresh-job metrics.
//
// Embedded metrics (from ConfigMetrics):
//   - dashboard_config_load_timestamp
//   - dashboard_config_validation_errors_total
//   - dashboard_config_fallbacks_total
//   - dashboard_config_fallback_active
//
// Watch-specific metrics:
//   - watch_job_runs_total: refresh runs by status (success, partial, failure)
//   - watch_job_duration_seconds: refresh duration histogram
//   - watch_job_coins_refreshed: coins in the latest top list
//   - watch_job_analyses_warmed_total: favorite analyses warmed into the cache
//   - watch_job_last_success_timestamp: Unix timestamp of the last successful run
type WatchMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal            *prometheus.CounterVec
	JobDurationSeconds      prometheus.Histogram
	JobCoinsRefreshed       prometheus.Gauge
	JobAnalysesWarmedTotal  prometheus.Counter
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewWatchMetrics registers the watch metrics with reg. A nil reg uses the
// Prometheus default registerer.
func NewWatchMetrics(reg prometheus.Registerer) *WatchMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &WatchMetrics{
		ConfigMetrics: config.NewConfigMetrics("dashboard", reg),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "watch_job_runs_total",
			Help: "Total number of watch refresh runs by status (success/partial/failure)",
		}, []string{"status"}),

		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "watch_job_duration_seconds",
			Help:    "Duration of watch refresh runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60},
		}),

		JobCoinsRefreshed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "watch_job_coins_refreshed",
			Help: "Number of coins in the most recent top list",
		}),

		JobAnalysesWarmedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "watch_job_analyses_warmed_total",
			Help: "Total number of favorite analyses warmed into the cache",
		}),

		JobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "watch_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful watch refresh",
		}),
	}
}

// RecordJobRun increments the run counter for status.
func (m *WatchMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes one run's duration in seconds.
func (m *WatchMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordCoinsRefreshed sets the size of the latest top list.
func (m *WatchMetrics) RecordCoinsRefreshed(count int) {
	m.JobCoinsRefreshed.Set(float64(count))
}

// RecordAnalysesWarmed adds count warmed analyses.
func (m *WatchMetrics) RecordAnalysesWarmed(count int) {
	m.JobAnalysesWarmedTotal.Add(float64(count))
}

// RecordLastSuccess records now as the last successful run.
func (m *WatchMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
