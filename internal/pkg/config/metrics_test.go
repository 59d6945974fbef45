package config

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewConfigMetrics("dashboard", reg)

	assert.NotNil(t, metrics.LoadTimestamp)
	assert.NotNil(t, metrics.ValidationErrorsTotal)
	assert.NotNil(t, metrics.FallbacksTotal)
	assert.NotNil(t, metrics.FallbackActive)
	assert.Equal(t, "dashboard", metrics.componentName)
}

func TestNewConfigMetrics_DuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewConfigMetrics("dashboard", reg)

	assert.Panics(t, func() { NewConfigMetrics("dashboard", reg) })
	assert.NotPanics(t, func() { NewConfigMetrics("dashboard", prometheus.NewRegistry()) })
}

func TestRecordLoadTimestamp_UpdatesMetric(t *testing.T) {
	metrics := NewConfigMetrics("test_load", prometheus.NewRegistry())

	metrics.RecordLoadTimestamp()

	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0))
}

func TestRecordValidationErrorAndFallback(t *testing.T) {
	metrics := NewConfigMetrics("test_fields", prometheus.NewRegistry())

	metrics.RecordValidationError("search_fallback_delay")
	metrics.RecordValidationError("search_fallback_delay")
	metrics.RecordFallback("search_fallback_delay")
	metrics.RecordFallback("chart_timezone")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("search_fallback_delay")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("search_fallback_delay")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("chart_timezone")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("analysis_cache_ttl")))
}

func TestSetFallbackActive_Toggle(t *testing.T) {
	metrics := NewConfigMetrics("test_toggle", prometheus.NewRegistry())

	metrics.SetFallbackActive(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))

	metrics.SetFallbackActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbackActive))
}

func TestMetrics_ConcurrentAccess(t *testing.T) {
	metrics := NewConfigMetrics("test_concurrent", prometheus.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.RecordFallback("backend_timeout")
			metrics.RecordLoadTimestamp()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("backend_timeout")))
}

func TestMetrics_PrometheusExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewConfigMetrics("test_expo", reg)
	metrics.SetFallbackActive(true)

	expected := `
# HELP test_expo_config_fallback_active 1 if any test_expo configuration fallback is active, 0 otherwise
# TYPE test_expo_config_fallback_active gauge
test_expo_config_fallback_active 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_expo_config_fallback_active")
	require.NoError(t, err)
}
