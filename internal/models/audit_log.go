package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationEventType names a committed reservation state change.
type ReservationEventType string

const (
	EventReservationBooked        ReservationEventType = "booked"
	EventReservationCanceled      ReservationEventType = "canceled"
	EventReservationAdminCanceled ReservationEventType = "admin_canceled"
	EventReservationRescheduled   ReservationEventType = "rescheduled"
)

// ReservationEvent is emitted after a reservation change commits.
// FromSlotID is set only for reschedules.
type ReservationEvent struct {
	Type          ReservationEventType `json:"type"`
	ReservationID uuid.UUID            `json:"reservation_id"`
	UserID        uuid.UUID            `json:"user_id"`
	ActorID       uuid.UUID            `json:"actor_id"`
	FromSlotID    *uuid.UUID           `json:"from_slot_id,omitempty"`
	ToSlotID      uuid.UUID            `json:"to_slot_id"`
	At            time.Time            `json:"at"`
}

// SlotIDs returns every slot whose availability the event changed.
func (e ReservationEvent) SlotIDs() []uuid.UUID {
	if e.FromSlotID != nil && *e.FromSlotID != e.ToSlotID {
		return []uuid.UUID{*e.FromSlotID, e.ToSlotID}
	}
	return []uuid.UUID{e.ToSlotID}
}

// AuditLog is a persisted reservation event.
type AuditLog struct {
	ID            uuid.UUID  `json:"id"`
	Action        string     `json:"action"`
	ActorID       uuid.UUID  `json:"actorId"`
	ReservationID uuid.UUID  `json:"reservationId"`
	UserID        uuid.UUID  `json:"userId"`
	FromSlotID    *uuid.UUID `json:"fromSlotId,omitempty"`
	ToSlotID      uuid.UUID  `json:"toSlotId"`
	OccurredAt    time.Time  `json:"occurredAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}
