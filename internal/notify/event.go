package notify

import (
	"time"

	"github.com/Domenick1991/expertbooking/internal/domain"
)

type EventType string

const (
	EventBookingCreated       EventType = "booking_created"
	EventBookingStatusChanged EventType = "booking_status_changed"
)

// Event is a booking outcome handed from the use cases to the sinks.
type Event struct {
	Type       EventType
	Booking    domain.Booking
	OccurredAt time.Time
}

func NewEvent(t EventType, b domain.Booking) Event {
	return Event{Type: t, Booking: b, OccurredAt: time.Now().UTC()}
}

// SlotBooked is the payload pushed to live subscribers when a slot is taken.
type SlotBooked struct {
	ExpertID string `json:"expertId"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

func (e Event) SlotBooked() SlotBooked {
	return SlotBooked{
		ExpertID: e.Booking.ExpertID.String(),
		Date:     e.Booking.Date.String(),
		TimeSlot: e.Booking.TimeSlot,
	}
}
