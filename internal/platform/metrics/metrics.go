package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bot pipeline.
type Metrics struct {
	SubmissionsAccepted prometheus.Counter
	LateUpdatesApplied  prometheus.Counter
	LateUpdatesDropped  prometheus.Counter
	ParseRejections     prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	ScheduledCycles     *prometheus.CounterVec
	StoreFailures       prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		SubmissionsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "davomat_submissions_accepted_total",
			Help: "Attendance submissions parsed and persisted",
		}),
		LateUpdatesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "davomat_late_updates_applied_total",
			Help: "Arrival/departure updates applied to an existing record",
		}),
		LateUpdatesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "davomat_late_updates_dropped_total",
			Help: "Arrival/departure updates dropped for lack of a base record",
		}),
		ParseRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "davomat_parse_rejections_total",
			Help: "Messages matching neither grammar, or naming an unknown class",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "davomat_notifications_sent_total",
			Help: "Per-recipient notification deliveries that succeeded",
		}),
		NotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "davomat_notifications_failed_total",
			Help: "Per-recipient notification deliveries that failed",
		}),
		ScheduledCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "davomat_scheduled_cycles_total",
			Help: "Completed scheduled cycles by job name",
		}, []string{"job"}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "davomat_store_failures_total",
			Help: "Store accessor calls that returned an error",
		}),
	}
}

// The increment helpers are nil-safe so unit tests can construct services
// without registering collectors.

func (m *Metrics) IncSubmissionsAccepted() {
	if m == nil {
		return
	}
	m.SubmissionsAccepted.Inc()
}

func (m *Metrics) IncLateUpdatesApplied() {
	if m == nil {
		return
	}
	m.LateUpdatesApplied.Inc()
}

func (m *Metrics) IncLateUpdatesDropped() {
	if m == nil {
		return
	}
	m.LateUpdatesDropped.Inc()
}

func (m *Metrics) IncParseRejections() {
	if m == nil {
		return
	}
	m.ParseRejections.Inc()
}

func (m *Metrics) IncNotificationsSent() {
	if m == nil {
		return
	}
	m.NotificationsSent.Inc()
}

func (m *Metrics) IncNotificationsFailed() {
	if m == nil {
		return
	}
	m.NotificationsFailed.Inc()
}

func (m *Metrics) IncScheduledCycle(job string) {
	if m == nil {
		return
	}
	m.ScheduledCycles.WithLabelValues(job).Inc()
}

func (m *Metrics) IncStoreFailures() {
	if m == nil {
		return
	}
	m.StoreFailures.Inc()
}
