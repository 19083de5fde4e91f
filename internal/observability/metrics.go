package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relief"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Stock catalog and allocation metrics.
	CatalogLoads    *prometheus.CounterVec
	CatalogSaves    *prometheus.CounterVec
	CatalogRecords  prometheus.Gauge
	NearestLookups  *prometheus.CounterVec
	NearestDistance prometheus.Histogram
	Allocations     *prometheus.CounterVec
	AllocatedUnits  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec

	// Prediction metrics.
	Predictions    *prometheus.CounterVec
	PredictionTime *prometheus.HistogramVec
	TokenRefreshes *prometheus.CounterVec

	// Session metrics.
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CatalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Stock catalog loads by outcome.",
		}, []string{"outcome"}),
		CatalogSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_saves_total",
			Help:      "Stock catalog saves by outcome.",
		}, []string{"outcome"}),
		CatalogRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_records",
			Help:      "Number of stock records in the last loaded catalog.",
		}),
		NearestLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nearest_lookups_total",
			Help:      "Nearest stock location lookups by outcome.",
		}, []string{"outcome"}),
		NearestDistance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nearest_distance_km",
			Help:      "Geodesic distance from the query to the resolved stock location.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		Allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Allocation transactions by outcome.",
		}, []string{"outcome"}),
		AllocatedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_units_total",
			Help:      "Units allocated by resource type.",
		}, []string{"resource"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_events_published_total",
			Help:      "Allocation events published by outcome.",
		}, []string{"outcome"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by model and outcome.",
		}, []string{"model", "outcome"}),
		PredictionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Scoring request duration in seconds, token exchange included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"model"}),
		TokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "IAM access token exchanges by outcome.",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Dashboard sessions currently held in memory.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CatalogLoads,
		m.CatalogSaves,
		m.CatalogRecords,
		m.NearestLookups,
		m.NearestDistance,
		m.Allocations,
		m.AllocatedUnits,
		m.EventsPublished,
		m.Predictions,
		m.PredictionTime,
		m.TokenRefreshes,
		m.ActiveSessions,
	}
}
