package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expertbooking"

// Reservation and transition outcomes.
const (
	OutcomeBooked   = "booked"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeApplied  = "applied"
)

// StatusUnknown replaces a requested status that is not a booking status,
// keeping the status label set closed.
const StatusUnknown = "unknown"

// Metrics groups the collectors of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	reservations  *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	subscribers   prometheus.Gauge
	droppedEvents *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Reservation attempts by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_transitions_total",
			Help:      "Booking status transition requests by target status and outcome.",
		}, []string{"status", "outcome"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Connected live-update subscribers.",
		}),
		droppedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Events dropped because a consumer buffer was full.",
		}, []string{"sink"}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.reservations,
		m.transitions,
		m.subscribers,
		m.droppedEvents,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveReservation(outcome string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTransition(status, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status, outcome).Inc()
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

func (m *Metrics) IncDropped(sink string) {
	if m == nil {
		return
	}
	m.droppedEvents.WithLabelValues(sink).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
