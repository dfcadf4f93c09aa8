package domain

import (
	"time"

	"github.com/google/uuid"
)

type Expert struct {
	ID         uuid.UUID       `json:"_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Experience int             `json:"experience"`
	Rating     float64         `json:"rating"`
	Bio        string          `json:"bio,omitempty"`
	Calendar   []CalendarEntry `json:"availableSlots"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CalendarEntry is the set of slot labels still open for one expert on one date.
// Labels are opaque display strings ("09:00 AM") and are compared verbatim.
type CalendarEntry struct {
	Date  Date     `json:"date"`
	Slots []string `json:"slots"`
}

// HasSlot reports whether label is open on date.
func (e *Expert) HasSlot(date Date, label string) bool {
	for _, entry := range e.Calendar {
		if !entry.Date.Equal(date) {
			continue
		}
		for _, s := range entry.Slots {
			if s == label {
				return true
			}
		}
	}
	return false
}

// ExpertSummary is the part of an expert embedded into booking reads.
type ExpertSummary struct {
	ID       uuid.UUID `json:"_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

type ExpertFilter struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

func (f ExpertFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ExpertPage struct {
	Experts []Expert
	Total   int
	Page    int
	Limit   int
}

func (p ExpertPage) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}
