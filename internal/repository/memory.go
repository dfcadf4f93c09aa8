package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore keeps experts and bookings in process. Each expert document has
// its own mutex, so slot removals for different experts never contend.
type MemoryStore struct {
	mu       sync.RWMutex
	experts  map[uuid.UUID]*expertDoc
	bookings map[uuid.UUID]*bookingRecord
	seq      uint64
	now      func() time.Time
}

type expertDoc struct {
	mu     sync.Mutex
	expert domain.Expert
}

type bookingRecord struct {
	seq     uint64
	booking domain.Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		experts:  make(map[uuid.UUID]*expertDoc),
		bookings: make(map[uuid.UUID]*bookingRecord),
		now:      time.Now,
	}
}

func (s *MemoryStore) Experts() ExpertRepository { return memoryExperts{s} }

func (s *MemoryStore) Bookings() BookingRepository { return memoryBookings{s} }

func (s *MemoryStore) doc(id uuid.UUID) *expertDoc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.experts[id]
}

func (d *expertDoc) snapshot() domain.Expert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneExpert(d.expert)
}

func cloneExpert(e domain.Expert) domain.Expert {
	calendar := make([]domain.CalendarEntry, len(e.Calendar))
	for i, entry := range e.Calendar {
		calendar[i] = domain.CalendarEntry{Date: entry.Date, Slots: slices.Clone(entry.Slots)}
		if calendar[i].Slots == nil {
			calendar[i].Slots = []string{}
		}
	}
	e.Calendar = calendar
	return e
}

type memoryExperts struct{ s *MemoryStore }

func (m memoryExperts) List(_ context.Context, filter domain.ExpertFilter) ([]domain.Expert, int, error) {
	m.s.mu.RLock()
	docs := make([]*expertDoc, 0, len(m.s.experts))
	for _, d := range m.s.experts {
		docs = append(docs, d)
	}
	m.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	matched := make([]domain.Expert, 0, len(docs))
	for _, d := range docs {
		e := d.snapshot()
		if search != "" && !strings.Contains(strings.ToLower(e.Name), search) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(e.Category, filter.Category) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(filter.Offset(), total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (m memoryExperts) GetByID(_ context.Context, id uuid.UUID) (*domain.Expert, error) {
	d := m.s.doc(id)
	if d == nil {
		return nil, domain.ErrNotFound
	}
	e := d.snapshot()
	return &e, nil
}

func (m memoryExperts) RemoveSlotIfPresent(_ context.Context, expertID uuid.UUID, date domain.Date, label string) (bool, error) {
	d := m.s.doc(expertID)
	if d == nil {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.expert.Calendar {
		entry := &d.expert.Calendar[i]
		if !entry.Date.Equal(date) {
			continue
		}
		idx := slices.Index(entry.Slots, label)
		if idx < 0 {
			continue
		}
		entry.Slots = slices.Delete(slices.Clone(entry.Slots), idx, idx+1)
		d.expert.UpdatedAt = m.s.now()
		return true, nil
	}
	return false, nil
}

func (m memoryExperts) ReplaceAll(_ context.Context, experts []domain.Expert) error {
	docs := make(map[uuid.UUID]*expertDoc, len(experts))
	base := m.s.now().UTC()
	for i := range experts {
		e := &experts[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		e.UpdatedAt = e.CreatedAt
		docs[e.ID] = &expertDoc{expert: cloneExpert(*e)}
	}

	m.s.mu.Lock()
	m.s.experts = docs
	m.s.mu.Unlock()
	return nil
}

type memoryBookings struct{ s *MemoryStore }

func (m memoryBookings) Create(_ context.Context, booking *domain.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = domain.BookingStatusPending
	booking.CreatedAt = m.s.now().UTC()
	booking.UpdatedAt = booking.CreatedAt

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.seq++
	stored := *booking
	stored.Expert = nil
	m.s.bookings[booking.ID] = &bookingRecord{seq: m.s.seq, booking: stored}
	return nil
}

func (m memoryBookings) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	rec, ok := m.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b := m.s.joinExpertLocked(rec.booking)
	return &b, nil
}

func (m memoryBookings) ListByEmail(_ context.Context, email string) ([]domain.Booking, error) {
	email = strings.ToLower(email)

	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	records := make([]*bookingRecord, 0)
	for _, rec := range m.s.bookings {
		if rec.booking.Email == email {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	bookings := make([]domain.Booking, 0, len(records))
	for _, rec := range records {
		bookings = append(bookings, m.s.joinExpertLocked(rec.booking))
	}
	return bookings, nil
}

func (m memoryBookings) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.BookingStatus) (*domain.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	rec, ok := m.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rec.booking.Status != from {
		return nil, ErrStatusChanged
	}
	rec.booking.Status = to
	rec.booking.UpdatedAt = m.s.now().UTC()
	b := m.s.joinExpertLocked(rec.booking)
	return &b, nil
}

// joinExpertLocked must be called with s.mu held.
func (s *MemoryStore) joinExpertLocked(b domain.Booking) domain.Booking {
	if d, ok := s.experts[b.ExpertID]; ok {
		d.mu.Lock()
		b.Expert = &domain.ExpertSummary{ID: d.expert.ID, Name: d.expert.Name, Category: d.expert.Category}
		d.mu.Unlock()
	}
	return b
}

var (
	_ ExpertRepository  = memoryExperts{}
	_ BookingRepository = memoryBookings{}
)
