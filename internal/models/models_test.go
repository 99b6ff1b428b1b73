package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSlotAvailability(t *testing.T) {
	id := uuid.New()

	a := NewSlotAvailability(id, 5, 3)
	assert.Equal(t, 2, a.SpotsLeft)

	full := NewSlotAvailability(id, 2, 3)
	assert.Equal(t, 0, full.SpotsLeft, "spots left never goes negative")
}

func TestReservationEvent_SlotIDs(t *testing.T) {
	from, to := uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{to}, ReservationEvent{ToSlotID: to}.SlotIDs())
	assert.Equal(t, []uuid.UUID{from, to}, ReservationEvent{FromSlotID: &from, ToSlotID: to}.SlotIDs())
	assert.Equal(t, []uuid.UUID{to}, ReservationEvent{FromSlotID: &to, ToSlotID: to}.SlotIDs())
}

func TestRole_IsStaff(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleLector.IsStaff())
	assert.False(t, RoleUser.IsStaff())
	assert.False(t, Role("").IsStaff())
}

func TestReservationStatus_IsValid(t *testing.T) {
	assert.True(t, ReservationStatusBooked.IsValid())
	assert.True(t, ReservationStatusCanceled.IsValid())
	assert.False(t, ReservationStatus("deleted").IsValid())
}
