package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGExpertRepository struct {
	db *pgxpool.Pool
}

func NewExpertRepository(db *pgxpool.Pool) ExpertRepository {
	return &PGExpertRepository{db: db}
}

const expertColumns = `id, name, category, experience, rating, bio, created_at, updated_at`

const expertFilter = `($1 = '' OR name ILIKE $2) AND ($3 = '' OR lower(category) = lower($3))`

func (r *PGExpertRepository) List(ctx context.Context, filter domain.ExpertFilter) ([]domain.Expert, int, error) {
	pattern := containsPattern(filter.Search)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM experts WHERE `+expertFilter,
		filter.Search, pattern, filter.Category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count experts: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+expertColumns+` FROM experts WHERE `+expertFilter+`
		ORDER BY created_at DESC, id LIMIT $4 OFFSET $5`,
		filter.Search, pattern, filter.Category, filter.Limit, filter.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list experts: %w", err)
	}
	defer rows.Close()

	experts := make([]domain.Expert, 0, filter.Limit)
	for rows.Next() {
		var e domain.Expert
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.Experience, &e.Rating, &e.Bio, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan expert: %w", err)
		}
		experts = append(experts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadCalendars(ctx, experts); err != nil {
		return nil, 0, err
	}
	return experts, total, nil
}

func (r *PGExpertRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Expert, error) {
	var e domain.Expert
	err := r.db.QueryRow(ctx, `SELECT `+expertColumns+` FROM experts WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Category, &e.Experience, &e.Rating, &e.Bio, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get expert: %w", err)
	}

	experts := []domain.Expert{e}
	if err := r.loadCalendars(ctx, experts); err != nil {
		return nil, err
	}
	return &experts[0], nil
}

// removeSlotSQL deletes the slot row and touches the owning expert in one
// statement. The UPDATE only sees the expert when the DELETE matched, so one
// affected row means the slot was taken by this call.
const removeSlotSQL = `WITH removed AS (
	DELETE FROM expert_slots WHERE expert_id = $1 AND slot_date = $2 AND label = $3
	RETURNING expert_id
)
UPDATE experts SET updated_at = now() WHERE id IN (SELECT expert_id FROM removed)`

// RemoveSlotIfPresent relies on the row lock taken by DELETE: a second
// transaction deleting the same row waits, re-checks the predicate after the
// first commits and affects nothing.
func (r *PGExpertRepository) RemoveSlotIfPresent(ctx context.Context, expertID uuid.UUID, date domain.Date, label string) (bool, error) {
	res, err := r.db.Exec(ctx, removeSlotSQL, expertID, date.Time(), label)
	if err != nil {
		return false, fmt.Errorf("remove slot: %w", err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *PGExpertRepository) ReplaceAll(ctx context.Context, experts []domain.Expert) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM experts`); err != nil {
		return fmt.Errorf("delete experts: %w", err)
	}

	// Distinct timestamps keep newest-first listing stable across the seed set.
	base := time.Now().UTC()
	for i := range experts {
		e := &experts[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		e.UpdatedAt = e.CreatedAt
		if _, err := tx.Exec(ctx, `INSERT INTO experts (`+expertColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.Name, e.Category, e.Experience, e.Rating, e.Bio, e.CreatedAt, e.UpdatedAt); err != nil {
			return fmt.Errorf("insert expert %s: %w", e.Name, err)
		}
		for _, entry := range e.Calendar {
			if _, err := tx.Exec(ctx, `INSERT INTO calendar_days (expert_id, slot_date) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				e.ID, entry.Date.Time()); err != nil {
				return fmt.Errorf("insert calendar day: %w", err)
			}
			for pos, label := range entry.Slots {
				if _, err := tx.Exec(ctx, `INSERT INTO expert_slots (expert_id, slot_date, label, position) VALUES ($1, $2, $3, $4)
					ON CONFLICT DO NOTHING`, e.ID, entry.Date.Time(), label, pos); err != nil {
					return fmt.Errorf("insert slot: %w", err)
				}
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *PGExpertRepository) loadCalendars(ctx context.Context, experts []domain.Expert) error {
	if len(experts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(experts))
	index := make(map[uuid.UUID]int, len(experts))
	for i, e := range experts {
		ids = append(ids, e.ID.String())
		index[e.ID] = i
	}

	rows, err := r.db.Query(ctx, `SELECT d.expert_id, d.slot_date, s.label
		FROM calendar_days d
		LEFT JOIN expert_slots s ON s.expert_id = d.expert_id AND s.slot_date = d.slot_date
		WHERE d.expert_id = ANY($1::uuid[])
		ORDER BY d.expert_id, d.slot_date, s.position`, ids)
	if err != nil {
		return fmt.Errorf("load calendars: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			expertID uuid.UUID
			day      time.Time
			label    *string
		)
		if err := rows.Scan(&expertID, &day, &label); err != nil {
			return fmt.Errorf("scan calendar: %w", err)
		}
		e := &experts[index[expertID]]
		date := domain.DateOf(day)
		n := len(e.Calendar)
		if n == 0 || !e.Calendar[n-1].Date.Equal(date) {
			e.Calendar = append(e.Calendar, domain.CalendarEntry{Date: date, Slots: []string{}})
			n++
		}
		if label != nil {
			e.Calendar[n-1].Slots = append(e.Calendar[n-1].Slots, *label)
		}
	}
	return rows.Err()
}

var _ ExpertRepository = (*PGExpertRepository)(nil)
