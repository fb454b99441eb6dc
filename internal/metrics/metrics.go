package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	storeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "store_requests_total",
			Help:      "Record store requests by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "sync_runs_total",
			Help:      "Tenant data pulls by outcome (ok, error, stale).",
		},
		[]string{"outcome"},
	)

	snapshotReplaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "snapshot_replaced_total",
			Help:      "Tenant snapshot swaps applied to the projection.",
		},
		[]string{"tenant"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "booking_conflicts_total",
			Help:      "Appointment creations rejected for overlap.",
		},
	)

	autoStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "auto_start_transitions_total",
			Help:      "Appointments advanced to IN_PROGRESS by the clock trigger.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendei",
			Name:      "http_requests_total",
			Help:      "API requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			storeRequests, syncRuns, snapshotReplaced,
			bookingConflicts, autoStarts, httpRequests,
		)
	})
}

func IncStoreRequest(action, outcome string) {
	storeRequests.WithLabelValues(action, outcome).Inc()
}

func IncSyncRun(outcome string) {
	syncRuns.WithLabelValues(outcome).Inc()
}

func IncSnapshotReplaced(tenant string) {
	snapshotReplaced.WithLabelValues(tenant).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncAutoStart() {
	autoStarts.Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
