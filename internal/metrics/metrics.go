package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ReconcileChecked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_links_checked_total",
			Help: "Payment links checked against the gateway",
		},
	)

	ReconcileUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_links_updated_total",
			Help: "Payment links whose status changed after a check",
		},
	)

	ReconcileErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_link_errors_total",
			Help: "Per-link reconciliation failures",
		},
	)

	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "reconcile_sweep_duration_seconds",
			Help: "Time taken by a full reconciliation sweep",
		},
	)
)

func Register() {
	prometheus.MustRegister(ReconcileChecked, ReconcileUpdated, ReconcileErrors, ReconcileDuration)
}
