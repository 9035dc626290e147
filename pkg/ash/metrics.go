package ash

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "ash"
	subsystem        = "registry"
)

var (
	// Mutation metrics
	AddNodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "add_node_total",
			Help:      "Total number of add node operations",
		},
		[]string{"status"}, // success, error
	)

	AddHyperedgeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "add_hyperedge_total",
			Help:      "Total number of add hyperedge operations",
		},
		[]string{"status"},
	)

	RemoveNodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "remove_node_total",
			Help:      "Total number of remove node operations",
		},
		[]string{"status"},
	)

	RemoveHyperedgeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "remove_hyperedge_total",
			Help:      "Total number of remove hyperedge operations",
		},
		[]string{"status"},
	)

	// Mutation duration metrics
	AddHyperedgeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "add_hyperedge_duration_seconds",
			Help:      "Time taken to add a hyperedge",
			Buckets:   prometheus.DefBuckets,
		},
	)

	RemoveHyperedgeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "remove_hyperedge_duration_seconds",
			Help:      "Time taken to remove a hyperedge",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Registry size metrics
	NodeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "node_count",
			Help:      "Current number of registered nodes",
		},
	)

	HyperedgeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "hyperedge_count",
			Help:      "Current number of registered hyperedges",
		},
	)
)

// observeStatus resolves an error to the status label value.
func observeStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// recordSizes refreshes the registry size gauges.
func (h *ASH) recordSizes() {
	if !h.opts.Metrics {
		return
	}
	NodeCount.Set(float64(len(h.nodeAttrs)))
	HyperedgeCount.Set(float64(len(h.edgeNodes)))
}
