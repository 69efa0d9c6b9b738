package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/citysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/citysim-go/test/helpers"
)

func TestSimulationMetricsCollector_RecordsReports(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	collector := metrics.NewSimulationMetricsCollector("test")
	require.NoError(t, collector.RegisterWith(reg))

	// Act
	require.NoError(t, collector.Publish(context.Background(), helpers.SampleReport("run-1", 1)))
	require.NoError(t, collector.Publish(context.Background(), helpers.SampleReport("run-1", 2)))

	// Assert
	expected := `
# HELP test_engine_matches_total Proposed matches by pipeline and outcome
# TYPE test_engine_matches_total counter
test_engine_matches_total{outcome="confirmed",pipeline="employment"} 2
test_engine_matches_total{outcome="confirmed",pipeline="housing"} 2
test_engine_matches_total{outcome="resigned",pipeline="employment"} 0
test_engine_matches_total{outcome="resigned",pipeline="housing"} 0
# HELP test_engine_power_missing_wh Power requested by uncovered consumers
# TYPE test_engine_power_missing_wh gauge
test_engine_power_missing_wh 300
# HELP test_engine_ticks_total Total number of completed ticks
# TYPE test_engine_ticks_total counter
test_engine_ticks_total 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"test_engine_matches_total", "test_engine_power_missing_wh", "test_engine_ticks_total")
	assert.NoError(t, err)
}

func TestSimulationMetricsCollector_RegisterIsNoOpWhenDisabled(t *testing.T) {
	metrics.Registry = nil
	collector := metrics.NewSimulationMetricsCollector("")

	assert.NoError(t, collector.Register())
	assert.False(t, metrics.IsEnabled())
}

func TestHandler_ServesRegistry(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.Registry = nil })
	collector := metrics.NewSimulationMetricsCollector("")
	require.NoError(t, collector.Register())
	collector.RecordTick(helpers.SampleReport("run-1", 1))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "citysim_engine_population 1")
}
