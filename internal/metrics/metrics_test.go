package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveReservation(OutcomeBooked)
	m.ObserveReservation(OutcomeConflict)
	m.ObserveTransition("Confirmed", "ok")
	m.SetSubscribers(3)
	m.IncDropped("websocket")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `expertbooking_reservations_total{outcome="booked"} 1`)
	assert.Contains(t, body, `expertbooking_reservations_total{outcome="conflict"} 1`)
	assert.Contains(t, body, `expertbooking_live_subscribers 3`)
	assert.Contains(t, body, `expertbooking_dropped_events_total{sink="websocket"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReservation(OutcomeBooked)
		m.ObserveTransition("Confirmed", "ok")
		m.SetSubscribers(1)
		m.IncDropped("kafka")
	})
}
