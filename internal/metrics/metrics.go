package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_events_total",
			Help: "Duel events processed by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	HandlerPanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_handler_panics_total",
			Help: "Handler panics recovered by the consumer loop, by event kind",
		},
		[]string{"kind"},
	)

	ActiveDuels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "duel_active_duels",
			Help: "Duels currently held in the store",
		},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "duel_queue_depth",
			Help: "Events waiting in the event queue",
		},
	)

	DuelsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_swept_total",
			Help: "Unmatched duels evicted by the sweeper",
		},
	)

	DuelsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duel_completed_total",
			Help: "Duels that ended with a result",
		},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_notifications_total",
			Help: "Notifications pushed to connections by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	Connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "duel_connections",
			Help: "Open websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(HandlerPanicsTotal)
	prometheus.MustRegister(ActiveDuels)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(DuelsSweptTotal)
	prometheus.MustRegister(DuelsCompletedTotal)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(Connections)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
