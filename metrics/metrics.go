package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "alertrelay"

// Metrics groups the relay's collectors. All methods are safe on a nil receiver so
// components can run without instrumentation.
type Metrics struct {
	// Alert pipeline
	alertsIngested *prometheus.CounterVec
	alertsRejected *prometheus.CounterVec
	alertsResolved *prometheus.CounterVec
	alertsCleared  prometheus.Counter

	// Push channel
	broadcasts       *prometheus.CounterVec
	droppedMessages  prometheus.Counter
	liveConnections  prometheus.Gauge
	trackingSessions prometheus.Gauge
	officersOnline   prometheus.Gauge
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		alertsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_ingested_total",
				Help:      "Alerts accepted from sensors",
			},
			[]string{"kind"},
		),

		alertsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_rejected_total",
				Help:      "Alert submissions refused before storage",
			},
			[]string{"kind", "reason"},
		),

		alertsResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_resolved_total",
				Help:      "Alerts marked resolved",
			},
			[]string{"kind"},
		),

		alertsCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_cleared_total",
				Help:      "Alerts removed by clear operations",
			},
		),

		broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_broadcasts_total",
				Help:      "Events pushed to connected clients",
			},
			[]string{"event"},
		),

		droppedMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_dropped_messages_total",
				Help:      "Messages dropped because a client send buffer was full",
			},
		),

		liveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_live_connections",
				Help:      "Currently connected push clients",
			},
		),

		trackingSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tracking_sessions",
				Help:      "Responders currently tracking an alert",
			},
		),

		officersOnline: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "officers_online",
				Help:      "Logged-in responders",
			},
		),
	}
}

func (m *Metrics) AlertIngested(kind string) {
	if m == nil {
		return
	}
	m.alertsIngested.WithLabelValues(kind).Inc()
}

func (m *Metrics) AlertRejected(kind, reason string) {
	if m == nil {
		return
	}
	m.alertsRejected.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) AlertResolved(kind string) {
	if m == nil {
		return
	}
	m.alertsResolved.WithLabelValues(kind).Inc()
}

func (m *Metrics) AlertsCleared(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.alertsCleared.Add(float64(count))
}

func (m *Metrics) Broadcast(event string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(event).Inc()
}

func (m *Metrics) MessageDropped() {
	if m == nil {
		return
	}
	m.droppedMessages.Inc()
}

func (m *Metrics) SetLiveConnections(n int) {
	if m == nil {
		return
	}
	m.liveConnections.Set(float64(n))
}

func (m *Metrics) SetTrackingSessions(n int) {
	if m == nil {
		return
	}
	m.trackingSessions.Set(float64(n))
}

func (m *Metrics) SetOfficersOnline(n int) {
	if m == nil {
		return
	}
	m.officersOnline.Set(float64(n))
}
