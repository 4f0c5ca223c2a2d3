// Package metrics exposes Prometheus collectors for a collection run.
// A run is a one-shot batch, so the registry is exported to a textfile
// (node_exporter textfile collector format) instead of being served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors for one run.
type Metrics struct {
	Registry          *prometheus.Registry
	PagesTotal        *prometheus.CounterVec
	AcquireDuration   prometheus.Histogram
	SnapshotsTotal    prometheus.Counter
	CardsTotal        *prometheus.CounterVec
	ProductsCollected prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promoscrape_pages_total",
			Help: "Listing URLs processed, by acquisition mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
	acquireDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promoscrape_acquire_duration_seconds",
			Help:    "Time spent acquiring snapshots for one URL.",
			Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90, 120},
		},
	)
	snapshots := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promoscrape_snapshots_total",
			Help: "Snapshots fed to the extractor.",
		},
	)
	cards := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promoscrape_cards_total",
			Help: "Product cards evaluated, by result.",
		},
		[]string{"result"},
	)
	collected := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promoscrape_products_collected",
			Help: "Unique products collected in the run.",
		},
	)

	registry.MustRegister(pages, acquireDuration, snapshots, cards, collected)

	return &Metrics{
		Registry:          registry,
		PagesTotal:        pages,
		AcquireDuration:   acquireDuration,
		SnapshotsTotal:    snapshots,
		CardsTotal:        cards,
		ProductsCollected: collected,
	}
}

// IncPage counts one processed URL.
func (m *Metrics) IncPage(mode, outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveAcquire records how long one acquisition took.
func (m *Metrics) ObserveAcquire(d time.Duration) {
	if m == nil {
		return
	}
	m.AcquireDuration.Observe(d.Seconds())
}

// IncSnapshots counts a snapshot fed to the extractor.
func (m *Metrics) IncSnapshots() {
	if m == nil {
		return
	}
	m.SnapshotsTotal.Inc()
}

// AddCards adds n cards with the given result label.
func (m *Metrics) AddCards(result string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.CardsTotal.WithLabelValues(result).Add(float64(n))
}

// SetCollected records the final product count.
func (m *Metrics) SetCollected(n int) {
	if m == nil {
		return
	}
	m.ProductsCollected.Set(float64(n))
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
