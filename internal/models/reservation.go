package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the state of a reservation. Canceled is terminal.
type ReservationStatus string

const (
	ReservationStatusBooked   ReservationStatus = "booked"
	ReservationStatusCanceled ReservationStatus = "canceled"
)

// IsValid reports whether s is a known status.
func (s ReservationStatus) IsValid() bool {
	return s == ReservationStatusBooked || s == ReservationStatusCanceled
}

// Reservation is a user's claim on one seat of a time slot.
type Reservation struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"userId"`
	TimeSlotID uuid.UUID         `json:"timeSlotId"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// IsBooked reports whether the reservation currently holds a seat.
func (r *Reservation) IsBooked() bool {
	return r.Status == ReservationStatusBooked
}

// BelongsTo reports whether the reservation is owned by userID.
func (r *Reservation) BelongsTo(userID uuid.UUID) bool {
	return r.UserID == userID
}

// ReservationCustomer is the denormalized customer info attached to a reservation.
type ReservationCustomer struct {
	UserID   uuid.UUID `json:"userId"`
	Email    *string   `json:"email"`
	FullName *string   `json:"fullName"`
}

// ReservationDetail is a reservation with its customer and slot (venue, class type, category).
type ReservationDetail struct {
	Reservation
	Customer *ReservationCustomer `json:"customer"`
	TimeSlot *TimeSlotDetail      `json:"timeSlot"`
}
