package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCompleted BookingStatus = "Completed"
)

var bookingStatusRank = map[BookingStatus]int{
	BookingStatusPending:   1,
	BookingStatusConfirmed: 2,
	BookingStatusCompleted: 3,
}

// BookingStatuses lists the recognized statuses in lifecycle order.
func BookingStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted}
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingStatusRank[s]
	return ok
}

// CanTransitionTo allows forward moves only. Skipping a state is allowed,
// staying in place or moving back is not.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	from, ok := bookingStatusRank[s]
	if !ok {
		return false
	}
	to, ok := bookingStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

type Booking struct {
	ID        uuid.UUID      `json:"_id"`
	ExpertID  uuid.UUID      `json:"-"`
	Expert    *ExpertSummary `json:"-"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Date      Date           `json:"date"`
	TimeSlot  string         `json:"timeSlot"`
	Notes     string         `json:"notes,omitempty"`
	Status    BookingStatus  `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// MarshalJSON renders "expert" as the embedded summary when the booking was
// read with its expert joined, and as the bare id otherwise.
func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	var expert any = b.ExpertID
	if b.Expert != nil {
		expert = b.Expert
	}
	return json.Marshal(struct {
		plain
		Expert any `json:"expert"`
	}{plain: plain(b), Expert: expert})
}
