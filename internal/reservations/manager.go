package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
)

// Manager owns the reservation lifecycle: booking, cancellation and rescheduling.
// It holds no mutable state; every check-then-write runs inside one store transaction.
type Manager struct {
	store    Store
	profiles ProfileSyncer
	events   EventSink
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a reservation manager. profiles and events may be nil.
func NewManager(store Store, profiles ProfileSyncer, events EventSink, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, profiles: profiles, events: events, logger: logger, now: time.Now}
}

// SyncProfile upserts the caller's customer profile when their email is known.
// Failures are logged and never fail the calling operation.
func (m *Manager) SyncProfile(ctx context.Context, id models.Identity) {
	if m.profiles == nil || id.Email == "" {
		return
	}
	if err := m.profiles.Upsert(ctx, id.UserID, id.Email); err != nil {
		m.logger.Warn("customer profile sync failed", zap.Error(err), zap.String("user_id", id.UserID.String()))
	}
}

// Book creates a booked reservation for the caller on slotID.
func (m *Manager) Book(ctx context.Context, id models.Identity, slotID uuid.UUID) (*models.Reservation, error) {
	if slotID == uuid.Nil {
		return nil, ErrMissingSlotID
	}
	m.SyncProfile(ctx, id)

	var created *models.Reservation
	err := m.store.WithinTx(ctx, func(tx Tx) error {
		slot, err := tx.GetSlot(ctx, slotID)
		if err != nil {
			return err
		}
		existing, err := tx.FindActiveByUserAndSlot(ctx, id.UserID, slotID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateBooking
		}
		booked, err := tx.CountBooked(ctx, slotID)
		if err != nil {
			return err
		}
		if booked >= slot.Capacity {
			return ErrSlotFull
		}
		created, err = tx.Create(ctx, id.UserID, slotID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.emit(ctx, models.ReservationEvent{
		Type:          models.EventReservationBooked,
		ReservationID: created.ID,
		UserID:        created.UserID,
		ActorID:       id.UserID,
		ToSlotID:      created.TimeSlotID,
	})
	return created, nil
}

// Cancel cancels a reservation. Non-admin callers may only cancel their own;
// someone else's reservation is reported as not found. Canceling an already
// canceled reservation returns it unchanged.
func (m *Manager) Cancel(ctx context.Context, id models.Identity, reservationID uuid.UUID, asAdmin bool) (*models.Reservation, error) {
	if !asAdmin {
		m.SyncProfile(ctx, id)
	}

	var (
		res     *models.Reservation
		changed bool
	)
	err := m.store.WithinTx(ctx, func(tx Tx) error {
		current, err := tx.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !asAdmin && !current.BelongsTo(id.UserID) {
			return ErrReservationNotFound
		}
		if !current.IsBooked() {
			res = current
			return nil
		}
		res, err = tx.UpdateStatus(ctx, reservationID, models.ReservationStatusCanceled)
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		evType := models.EventReservationCanceled
		if asAdmin {
			evType = models.EventReservationAdminCanceled
		}
		m.emit(ctx, models.ReservationEvent{
			Type:          evType,
			ReservationID: res.ID,
			UserID:        res.UserID,
			ActorID:       id.UserID,
			ToSlotID:      res.TimeSlotID,
		})
	}
	return res, nil
}

// Reschedule atomically moves the caller's booked reservation to targetSlotID.
func (m *Manager) Reschedule(ctx context.Context, id models.Identity, reservationID, targetSlotID uuid.UUID) (*models.Reservation, error) {
	if targetSlotID == uuid.Nil {
		return nil, ErrMissingSlotID
	}
	m.SyncProfile(ctx, id)

	var (
		moved  *models.Reservation
		fromID uuid.UUID
	)
	err := m.store.WithinTx(ctx, func(tx Tx) error {
		current, err := tx.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !current.BelongsTo(id.UserID) {
			return ErrReservationNotFound
		}
		if !current.IsBooked() {
			return ErrReservationCanceled
		}
		if current.TimeSlotID == targetSlotID {
			return ErrSameSlot
		}
		fromID = current.TimeSlotID

		dup, err := tx.FindActiveByUserAndSlot(ctx, id.UserID, targetSlotID)
		if err != nil {
			return err
		}
		if dup != nil {
			return ErrDuplicateInTarget
		}
		slot, err := tx.GetSlot(ctx, targetSlotID)
		if err != nil {
			if errors.Is(err, ErrSlotNotFound) {
				return ErrTargetSlotNotFound
			}
			return err
		}
		booked, err := tx.CountBooked(ctx, targetSlotID)
		if err != nil {
			return err
		}
		if booked >= slot.Capacity {
			return ErrTargetSlotFull
		}
		moved, err = tx.UpdateSlot(ctx, reservationID, targetSlotID)
		if errors.Is(err, ErrDuplicateBooking) {
			return ErrDuplicateInTarget
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	m.emit(ctx, models.ReservationEvent{
		Type:          models.EventReservationRescheduled,
		ReservationID: moved.ID,
		UserID:        moved.UserID,
		ActorID:       id.UserID,
		FromSlotID:    &fromID,
		ToSlotID:      moved.TimeSlotID,
	})
	return moved, nil
}

func (m *Manager) emit(ctx context.Context, ev models.ReservationEvent) {
	if m.events == nil {
		return
	}
	ev.At = m.now().UTC()
	m.events.ReservationChanged(ctx, ev)
}
