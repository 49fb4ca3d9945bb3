package introspect

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	snapshotBuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_snapshot_builds_total",
			Help: "Number of snapshot builds attempted.",
		},
	)
	snapshotBuildErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_snapshot_build_errors_total",
			Help: "Number of snapshot builds aborted, by reason.",
		},
		[]string{"reason"},
	)
	snapshotBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "explorer_snapshot_build_duration_seconds",
			Help:    "Time taken to build a snapshot.",
			Buckets: prometheus.DefBuckets,
		},
	)
	snapshotComponents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_snapshot_components",
			Help: "Number of components in the last built snapshot.",
		},
	)
	snapshotDanglingExtensions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_snapshot_dangling_extensions",
			Help: "Number of contributions whose target extension point was not found in the last built snapshot.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		snapshotBuildsTotal,
		snapshotBuildErrorsTotal,
		snapshotBuildDuration,
		snapshotComponents,
		snapshotDanglingExtensions,
	)
}
