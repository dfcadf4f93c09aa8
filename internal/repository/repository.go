package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/google/uuid"
)

// ErrStatusChanged is returned by UpdateStatus when the booking no longer has
// the expected previous status.
var ErrStatusChanged = errors.New("booking status changed concurrently")

// ExpertRepository is the Slot Store. RemoveSlotIfPresent is the only
// operation that mutates a calendar.
type ExpertRepository interface {
	List(ctx context.Context, filter domain.ExpertFilter) ([]domain.Expert, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Expert, error)
	// RemoveSlotIfPresent removes label from the expert's calendar entry for
	// date in one indivisible step. Among concurrent callers for the same
	// triple at most one gets true.
	RemoveSlotIfPresent(ctx context.Context, expertID uuid.UUID, date domain.Date, label string) (bool, error)
	ReplaceAll(ctx context.Context, experts []domain.Expert) error
}

// BookingRepository is the Booking Ledger.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) (*domain.Booking, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
