package leakcheck

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace is the default namespace of detector metrics.
const MetricsNamespace = "leakctl"

// Metrics holds the Prometheus instruments of a detector. A nil *Metrics
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Checks             *prometheus.CounterVec
	LeakedOwners       *prometheus.CounterVec
	TrackedOwners      *prometheus.CounterVec
	PendingHandles     prometheus.Gauge
	CollectionDuration prometheus.Histogram
}

// NewMetrics registers the detector metrics on reg. A nil reg gets a fresh
// registry.
func NewMetrics(reg *prometheus.Registry, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = MetricsNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		Checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "leakcheck",
				Name:      "checks_total",
				Help:      "Total number of leak checkpoints run",
			},
			[]string{"strategy"},
		),

		LeakedOwners: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "leakcheck",
				Name:      "leaked_owners_total",
				Help:      "Total number of owners found reachable at a checkpoint",
			},
			[]string{"strategy", "kind"},
		),

		TrackedOwners: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "leakcheck",
				Name:      "tracked_owners_total",
				Help:      "Total number of owners recorded by the tracker",
			},
			[]string{"kind"},
		),

		PendingHandles: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "leakcheck",
				Name:      "pending_handles",
				Help:      "Number of handles waiting for the next checkpoint",
			},
		),

		CollectionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "leakcheck",
				Name:      "collection_duration_seconds",
				Help:      "Time spent forcing garbage collection and scanning",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) observeTracked(kind string) {
	if m == nil {
		return
	}
	m.TrackedOwners.WithLabelValues(kind).Inc()
	m.PendingHandles.Inc()
}

func (m *Metrics) observeCollection(d time.Duration) {
	if m == nil {
		return
	}
	m.CollectionDuration.Observe(d.Seconds())
	m.PendingHandles.Set(0)
}

func (m *Metrics) observeCheck(strategy Strategy, leaks Leaks) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(string(strategy)).Inc()
	for _, leak := range leaks {
		for _, owner := range leak.Owners {
			m.LeakedOwners.WithLabelValues(string(strategy), kindOf(owner)).Inc()
		}
	}
}

// WriteTextfile writes the current metric values in the text exposition
// format, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
