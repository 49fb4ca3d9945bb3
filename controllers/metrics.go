package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	explorerControllerReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_controller_reconcile_total",
			Help: "Number of reconciliations by controller.",
		},
		[]string{"controller"},
	)
	explorerControllerReconcileErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_controller_reconcile_error_total",
			Help: "Number of reconciliation errors by controller.",
		},
		[]string{"controller"},
	)

	snapshotExportSelectedBundles = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "explorer_snapshotexport_selected_bundles",
			Help: "Number of bundles selected by a SnapshotExport in its last reconcile.",
		},
		[]string{"namespace", "name"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		explorerControllerReconcileTotal,
		explorerControllerReconcileErrorTotal,
		snapshotExportSelectedBundles,
	)
}
