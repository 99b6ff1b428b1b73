package reservations

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slotbook/backend/internal/models"
)

// memStore is an in-memory Store. A transaction holds the store lock for its
// whole duration, so transactions are serializable. Failed or panicking
// transactions restore the pre-transaction snapshot.
type memStore struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]models.TimeSlot
	reservations map[uuid.UUID]models.Reservation

	countErr      error
	updateSlotErr error
	commits       int
}

func newMemStore() *memStore {
	return &memStore{
		slots:        make(map[uuid.UUID]models.TimeSlot),
		reservations: make(map[uuid.UUID]models.Reservation),
	}
}

func (s *memStore) addSlot(capacity int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	now := time.Now()
	s.slots[id] = models.TimeSlot{
		ID:       id,
		Title:    "Wheel throwing",
		Capacity: capacity,
		StartAt:  now.Add(24 * time.Hour),
		EndAt:    now.Add(26 * time.Hour),
		Status:   "published",
	}
	return id
}

func (s *memStore) get(id uuid.UUID) (models.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	return r, ok
}

func (s *memStore) booked(slotID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(slotID)
}

func (s *memStore) countLocked(slotID uuid.UUID) int {
	n := 0
	for _, r := range s.reservations {
		if r.TimeSlotID == slotID && r.IsBooked() {
			n++
		}
	}
	return n
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	snapshot := make(map[uuid.UUID]models.Reservation, len(s.reservations))
	for k, v := range s.reservations {
		snapshot[k] = v
	}
	committed := false
	defer func() {
		if !committed {
			s.reservations = snapshot
		}
		s.mu.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&memTx{s: s}); err != nil {
		return err
	}
	committed = true
	s.commits++
	return nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) GetSlot(_ context.Context, slotID uuid.UUID) (*models.TimeSlot, error) {
	slot, ok := t.s.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &slot, nil
}

func (t *memTx) CountBooked(_ context.Context, slotID uuid.UUID) (int, error) {
	if t.s.countErr != nil {
		return 0, t.s.countErr
	}
	return t.s.countLocked(slotID), nil
}

func (t *memTx) FindActiveByUserAndSlot(_ context.Context, userID, slotID uuid.UUID) (*models.Reservation, error) {
	for _, r := range t.s.reservations {
		if r.UserID == userID && r.TimeSlotID == slotID && r.IsBooked() {
			return &r, nil
		}
	}
	return nil, nil
}

func (t *memTx) Create(ctx context.Context, userID, slotID uuid.UUID) (*models.Reservation, error) {
	if dup, _ := t.FindActiveByUserAndSlot(ctx, userID, slotID); dup != nil {
		return nil, ErrDuplicateBooking
	}
	now := time.Now().UTC()
	r := models.Reservation{
		ID:         uuid.New(),
		UserID:     userID,
		TimeSlotID: slotID,
		Status:     models.ReservationStatusBooked,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t.s.reservations[r.ID] = r
	return &r, nil
}

func (t *memTx) FindByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &r, nil
}

func (t *memTx) UpdateStatus(_ context.Context, id uuid.UUID, status models.ReservationStatus) (*models.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	t.s.reservations[id] = r
	return &r, nil
}

func (t *memTx) UpdateSlot(ctx context.Context, id, slotID uuid.UUID) (*models.Reservation, error) {
	if t.s.updateSlotErr != nil {
		return nil, t.s.updateSlotErr
	}
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	if dup, _ := t.FindActiveByUserAndSlot(ctx, r.UserID, slotID); dup != nil && dup.ID != id {
		return nil, ErrDuplicateBooking
	}
	r.TimeSlotID = slotID
	r.Status = models.ReservationStatusBooked
	r.UpdatedAt = time.Now().UTC()
	t.s.reservations[id] = r
	return &r, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.ReservationEvent
}

func (s *recordingSink) ReservationChanged(_ context.Context, ev models.ReservationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []models.ReservationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ReservationEvent(nil), s.events...)
}

type mockProfiles struct {
	mu       sync.Mutex
	upserted map[uuid.UUID]string
	err      error
}

func (m *mockProfiles) Upsert(_ context.Context, userID uuid.UUID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.upserted == nil {
		m.upserted = make(map[uuid.UUID]string)
	}
	m.upserted[userID] = email
	return nil
}
