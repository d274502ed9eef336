package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Intake reconciliation metrics
	PatientsSynced prometheus.Counter
	RowsSkipped    *prometheus.CounterVec
	SyncFailures   prometheus.Counter
	SyncLatency    prometheus.Histogram

	// Deletion mirror metrics
	MirrorDeletes *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics against the
// given registerer. Tests pass a private registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PatientsSynced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_patients_synced_total",
			Help:      "Total number of patients inserted from the intake sheet",
		}),
		RowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_rows_skipped_total",
			Help:      "Total number of intake rows skipped during reconciliation",
		}, []string{"reason"}),
		SyncFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_sync_failures_total",
			Help:      "Total number of reconciliation runs that degraded to a no-op",
		}),
		SyncLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "intake_sync_duration_seconds",
			Help:      "Time spent pulling and reconciling the intake sheet",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		MirrorDeletes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_mirror_deletes_total",
			Help:      "Total number of external row deletions attempted",
		}, []string{"outcome"}),
	}
}
