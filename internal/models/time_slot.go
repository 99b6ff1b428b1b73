package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a scheduled, capacity-limited occurrence of a class type at a venue.
type TimeSlot struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ClassTypeID uuid.UUID `json:"classTypeId"`
	VenueID     uuid.UUID `json:"venueId"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Capacity    int       `json:"capacity"`
	PriceCents  int       `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TimeSlotDetail is a slot with its venue and class type, plus live availability when known.
type TimeSlotDetail struct {
	TimeSlot
	Venue       *Venue     `json:"venue,omitempty"`
	ClassType   *ClassType `json:"classType,omitempty"`
	BookedCount *int       `json:"bookedCount,omitempty"`
	SpotsLeft   *int       `json:"spotsLeft,omitempty"`
}

// SlotAvailability is the derived seat count of a slot. It is never stored.
type SlotAvailability struct {
	SlotID      uuid.UUID `json:"slotId"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"bookedCount"`
	SpotsLeft   int       `json:"spotsLeft"`
}

// NewSlotAvailability builds availability from capacity and the current booked count.
func NewSlotAvailability(slotID uuid.UUID, capacity, booked int) SlotAvailability {
	left := capacity - booked
	if left < 0 {
		left = 0
	}
	return SlotAvailability{SlotID: slotID, Capacity: capacity, BookedCount: booked, SpotsLeft: left}
}

// Category groups class types.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ClassType is a kind of class (e.g. "Pottery for beginners").
type ClassType struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CategoryID uuid.UUID `json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
}

// Venue is where a slot takes place.
type Venue struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address *string   `json:"address"`
	City    *string   `json:"city"`
}
