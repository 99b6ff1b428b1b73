package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotbook/backend/internal/models"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrInvalidEvent        = errors.New("invalid event")
	ErrUnknownReference    = errors.New("class type or venue not found")
	ErrCapacityBelowBooked = errors.New("capacity cannot be lower than the number of booked reservations")
)

// CreateEventInput is the body of POST /events.
type CreateEventInput struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ClassTypeID uuid.UUID `json:"classTypeId"`
	VenueID     uuid.UUID `json:"venueId"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Capacity    int       `json:"capacity"`
	PriceCents  int       `json:"price"`
}

// Slot returns the slot the input describes.
func (in CreateEventInput) Slot() models.TimeSlot {
	return models.TimeSlot{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ClassTypeID: in.ClassTypeID,
		VenueID:     in.VenueID,
		StartAt:     in.StartAt.UTC(),
		EndAt:       in.EndAt.UTC(),
		Capacity:    in.Capacity,
		PriceCents:  in.PriceCents,
		Status:      "published",
	}
}

// UpdateEventInput is the body of PATCH /events/:id. Nil fields are left unchanged.
type UpdateEventInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ClassTypeID *uuid.UUID `json:"classTypeId"`
	VenueID     *uuid.UUID `json:"venueId"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
	Capacity    *int       `json:"capacity"`
	PriceCents  *int       `json:"price"`
	Status      *string    `json:"status"`
}

// Apply overlays the set fields on s.
func (in UpdateEventInput) Apply(s *models.TimeSlot) {
	if in.Title != nil {
		s.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		s.Description = in.Description
	}
	if in.ClassTypeID != nil {
		s.ClassTypeID = *in.ClassTypeID
	}
	if in.VenueID != nil {
		s.VenueID = *in.VenueID
	}
	if in.StartAt != nil {
		s.StartAt = in.StartAt.UTC()
	}
	if in.EndAt != nil {
		s.EndAt = in.EndAt.UTC()
	}
	if in.Capacity != nil {
		s.Capacity = *in.Capacity
	}
	if in.PriceCents != nil {
		s.PriceCents = *in.PriceCents
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
}

// Validate checks the slot's own invariants.
func Validate(s models.TimeSlot) error {
	switch {
	case s.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case s.ClassTypeID == uuid.Nil:
		return fmt.Errorf("%w: classTypeId is required", ErrInvalidEvent)
	case s.VenueID == uuid.Nil:
		return fmt.Errorf("%w: venueId is required", ErrInvalidEvent)
	case s.StartAt.IsZero() || s.EndAt.IsZero():
		return fmt.Errorf("%w: startAt and endAt are required", ErrInvalidEvent)
	case !s.StartAt.Before(s.EndAt):
		return fmt.Errorf("%w: startAt must be before endAt", ErrInvalidEvent)
	case s.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidEvent)
	case s.PriceCents < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidEvent)
	case s.Status != "published" && s.Status != "draft" && s.Status != "canceled":
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, s.Status)
	}
	return nil
}

// CheckCapacity rejects a capacity below the slot's current booked count.
func CheckCapacity(capacity, booked int) error {
	if capacity < booked {
		return fmt.Errorf("%w (%d booked)", ErrCapacityBelowBooked, booked)
	}
	return nil
}
