package reservations

import (
	"context"

	"github.com/google/uuid"

	"github.com/slotbook/backend/internal/models"
)

// SlotRepository reads slot capacity and its live booked count.
type SlotRepository interface {
	// GetSlot returns ErrSlotNotFound when the slot does not exist. Inside a
	// transaction the slot stays locked against other writers until the end of it.
	GetSlot(ctx context.Context, slotID uuid.UUID) (*models.TimeSlot, error)
	CountBooked(ctx context.Context, slotID uuid.UUID) (int, error)
}

// ReservationStore is durable reservation storage.
type ReservationStore interface {
	// FindActiveByUserAndSlot returns nil, nil when there is no booked reservation.
	FindActiveByUserAndSlot(ctx context.Context, userID, slotID uuid.UUID) (*models.Reservation, error)
	// Create returns ErrDuplicateBooking if the user already holds the slot.
	Create(ctx context.Context, userID, slotID uuid.UUID) (*models.Reservation, error)
	// FindByID returns ErrReservationNotFound when missing; the row stays locked until the end of the transaction.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) (*models.Reservation, error)
	UpdateSlot(ctx context.Context, id, slotID uuid.UUID) (*models.Reservation, error)
}

// Tx is both collaborators bound to one transaction.
type Tx interface {
	SlotRepository
	ReservationStore
}

// Store runs fn inside a transaction. It commits only when fn returns nil and
// rolls back on every other path.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// ProfileSyncer records the caller's email on their customer profile.
type ProfileSyncer interface {
	Upsert(ctx context.Context, userID uuid.UUID, email string) error
}

// EventSink receives committed reservation changes.
type EventSink interface {
	ReservationChanged(ctx context.Context, ev models.ReservationEvent)
}

// Sinks fans an event out to several sinks in order.
type Sinks []EventSink

// ReservationChanged implements EventSink.
func (s Sinks) ReservationChanged(ctx context.Context, ev models.ReservationEvent) {
	for _, sink := range s {
		if sink != nil {
			sink.ReservationChanged(ctx, ev)
		}
	}
}
