package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingSelect = `SELECT b.id, b.expert_id, b.name, b.email, b.phone, b.slot_date, b.time_slot, b.notes, b.status,
	b.created_at, b.updated_at, e.name, e.category
	FROM bookings b
	LEFT JOIN experts e ON e.id = b.expert_id`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = domain.BookingStatusPending
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (id, expert_id, name, email, phone, slot_date, time_slot, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.ExpertID, booking.Name, booking.Email, booking.Phone, booking.Date.Time(), booking.TimeSlot,
		booking.Notes, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, bookingSelect+` WHERE b.email = $1 ORDER BY b.created_at DESC`, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// UpdateStatus only applies when the stored status still equals from.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) (*domain.Booking, error) {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusChanged
	}
	return r.GetByID(ctx, id)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b              domain.Booking
		slotDate       time.Time
		expertName     *string
		expertCategory *string
	)
	if err := row.Scan(&b.ID, &b.ExpertID, &b.Name, &b.Email, &b.Phone, &slotDate, &b.TimeSlot, &b.Notes, &b.Status,
		&b.CreatedAt, &b.UpdatedAt, &expertName, &expertCategory); err != nil {
		return nil, err
	}
	b.Date = domain.DateOf(slotDate)
	// The expert reference is weak: a deleted expert leaves the booking readable.
	if expertName != nil {
		b.Expert = &domain.ExpertSummary{ID: b.ExpertID, Name: *expertName}
		if expertCategory != nil {
			b.Expert.Category = *expertCategory
		}
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
