package messaging

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters the service updates. Register them on a
// caller-owned registry; tests use a fresh prometheus.NewRegistry().
type Metrics struct {
	MessagesSent         prometheus.Counter
	NotificationsEmitted prometheus.Counter
	EditsArchived        prometheus.Counter
	EditsUnchanged       prometheus.Counter
	CascadeDeleted       *prometheus.CounterVec
	Failures             *prometheus.CounterVec
	ThreadNodes          prometheus.Histogram
}

// NewMetrics builds the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quill_messages_sent_total",
			Help: "Messages committed by send or reply.",
		}),
		NotificationsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quill_notifications_emitted_total",
			Help: "Notifications committed alongside a new message.",
		}),
		EditsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quill_edits_archived_total",
			Help: "Edits that changed content and archived a pre-image.",
		}),
		EditsUnchanged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quill_edits_unchanged_total",
			Help: "Edits with identical content that wrote nothing.",
		}),
		CascadeDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_cascade_deleted_total",
			Help: "Rows removed by user and message deletion, by entity.",
		}, []string{"entity"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_operation_failures_total",
			Help: "Failed operations by operation and error kind.",
		}, []string{"op", "kind"}),
		ThreadNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quill_thread_nodes",
			Help:    "Messages per assembled thread.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.MessagesSent,
			m.NotificationsEmitted,
			m.EditsArchived,
			m.EditsUnchanged,
			m.CascadeDeleted,
			m.Failures,
			m.ThreadNodes,
		)
	}
	return m
}
