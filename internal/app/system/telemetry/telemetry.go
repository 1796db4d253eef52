// Package telemetry holds the Prometheus collectors for dashboard traffic.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeBadInput  = "bad_request"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)

// Metrics holds Prometheus collectors for dashboard endpoints.
// A nil *Metrics records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	DurationSeconds *prometheus.HistogramVec
}

// New registers dashboard collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realtycrm_dashboard_requests_total",
			Help: "Dashboard requests by endpoint, caller role and outcome",
		}, []string{"endpoint", "role", "outcome"}),
		DurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "realtycrm_dashboard_request_duration_seconds",
			Help:    "Time to compute a dashboard response",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"endpoint"}),
	}
}

// Observe records one finished request.
func (m *Metrics) Observe(endpoint, role, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, role, outcome).Inc()
	m.DurationSeconds.WithLabelValues(endpoint).Observe(took.Seconds())
}

// Handler exposes the collectors in g for scraping.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
