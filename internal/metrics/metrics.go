// Package metrics exposes Prometheus collectors for chat turns and sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skinmatch"

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing, so callers never need to branch on whether metrics are enabled.
type Metrics struct {
	turns    *prometheus.CounterVec
	duration prometheus.Histogram
	returned prometheus.Histogram
	active   prometheus.Gauge
	evicted  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns processed, by classified intent",
		}, []string{"intent"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent processing one chat turn",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		returned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendations_returned",
			Help:      "Products listed per recommendation reply",
			Buckets:   []float64{0, 1, 2, 3, 5, 7, 10},
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory",
		}),
		evicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions removed by the idle sweeper",
		}),
	}
}

// ObserveTurn records one processed turn.
func (m *Metrics) ObserveTurn(intent string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(intent).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// ObserveRecommendations records the size of a product list reply.
func (m *Metrics) ObserveRecommendations(n int) {
	if m == nil {
		return
	}
	m.returned.Observe(float64(n))
}

// SetActiveSessions sets the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}

// AddEvicted counts sessions removed by eviction.
func (m *Metrics) AddEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evicted.Add(float64(n))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
