package queryserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	queryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_query_requests_total",
			Help: "Number of snapshot query requests by method and status code.",
		},
		[]string{"method", "code"},
	)
	queryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_query_request_duration_seconds",
			Help:    "Time taken to serve a snapshot query request.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	graphBuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_graph_builds_total",
			Help: "Number of graphs built, cache hits excluded.",
		},
	)
	graphCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_graph_cache_hits_total",
			Help: "Number of graph requests served from the cache.",
		},
	)
	graphNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_graph_nodes",
			Help: "Number of nodes in the last built graph.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		queryRequestsTotal,
		queryRequestDuration,
		graphBuildsTotal,
		graphCacheHitsTotal,
		graphNodes,
	)
}
