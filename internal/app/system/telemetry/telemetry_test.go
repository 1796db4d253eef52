package telemetry_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/realtycrm/internal/app/system/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.New(reg)

	m.Observe("stats", "admin", telemetry.OutcomeOK, 20*time.Millisecond)
	m.Observe("stats", "admin", telemetry.OutcomeOK, 30*time.Millisecond)
	m.Observe("stats", "associate", telemetry.OutcomeError, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("stats", "admin", telemetry.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("stats", "associate", telemetry.OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DurationSeconds))
}

func TestObserve_NilMetrics(t *testing.T) {
	var m *telemetry.Metrics
	assert.NotPanics(t, func() {
		m.Observe("stats", "admin", telemetry.OutcomeOK, time.Millisecond)
	})
}

func TestHandler_ExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	telemetry.New(reg).Observe("lead-sources", "associate", telemetry.OutcomeOK, time.Millisecond)

	rec := httptest.NewRecorder()
	telemetry.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "realtycrm_dashboard_requests_total"))
}
