// Package metrics exposes dashboard counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	RecordsLoaded     prometheus.Gauge
	LoadFailures      prometheus.Counter
	FilterChanges     *prometheus.CounterVec
	ViewComputeTime   *prometheus.HistogramVec
	StateSaves        *prometheus.CounterVec
	StateRestores     *prometheus.CounterVec
	FilteredRecordSet prometheus.Gauge
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecordsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "epidash_records_loaded",
			Help: "Number of case records held by the record store",
		}),
		LoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "epidash_load_failures_total",
			Help: "Record source loads that failed and left the store empty",
		}),
		FilterChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "epidash_filter_changes_total",
			Help: "Selection events by facet",
		}, []string{"facet"}),
		ViewComputeTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "epidash_view_compute_seconds",
			Help:    "Time spent filtering and aggregating views",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"view"}),
		StateSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "epidash_state_saves_total",
			Help: "Selection saves by outcome",
		}, []string{"outcome"}),
		StateRestores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "epidash_state_restores_total",
			Help: "Selection restores by outcome",
		}, []string{"outcome"}),
		FilteredRecordSet: factory.NewGauge(prometheus.GaugeOpts{
			Name: "epidash_filtered_records",
			Help: "Records passing the active selection",
		}),
	}
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveView records how long computing a view took
func (m *Metrics) ObserveView(view string, started time.Time) {
	if m == nil {
		return
	}
	m.ViewComputeTime.WithLabelValues(view).Observe(time.Since(started).Seconds())
}
