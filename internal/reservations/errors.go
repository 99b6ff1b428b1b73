package reservations

import (
	"errors"
	"net/http"
)

// Business-rule failures. Anything else returned by the manager is a storage failure.
var (
	ErrMissingSlotID       = errors.New("time slot id is required")
	ErrSameSlot            = errors.New("you are already booked for this event")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotNotFound        = errors.New("event not found")
	ErrTargetSlotNotFound  = errors.New("target event not found")
	ErrDuplicateBooking    = errors.New("you already have a reservation for this event")
	ErrDuplicateInTarget   = errors.New("you already have a reservation for the target event")
	ErrSlotFull            = errors.New("event is full")
	ErrTargetSlotFull      = errors.New("target event is full")
	ErrReservationCanceled = errors.New("reservation is canceled")
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindUnexpected Kind = iota
	KindBadRequest
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unexpected"
}

// KindOf returns the kind of err. Unclassified errors are KindUnexpected.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnexpected
	case errors.Is(err, ErrMissingSlotID), errors.Is(err, ErrSameSlot):
		return KindBadRequest
	case errors.Is(err, ErrReservationNotFound), errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrTargetSlotNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateBooking), errors.Is(err, ErrDuplicateInTarget),
		errors.Is(err, ErrSlotFull), errors.Is(err, ErrTargetSlotFull),
		errors.Is(err, ErrReservationCanceled):
		return KindConflict
	}
	return KindUnexpected
}

// HTTPStatus maps a kind to its response code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
