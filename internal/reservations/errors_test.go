package reservations

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{ErrMissingSlotID, KindBadRequest},
		{ErrSameSlot, KindBadRequest},
		{ErrReservationNotFound, KindNotFound},
		{ErrSlotNotFound, KindNotFound},
		{ErrTargetSlotNotFound, KindNotFound},
		{ErrDuplicateBooking, KindConflict},
		{ErrDuplicateInTarget, KindConflict},
		{ErrSlotFull, KindConflict},
		{ErrTargetSlotFull, KindConflict},
		{ErrReservationCanceled, KindConflict},
		{fmt.Errorf("book: %w", ErrSlotFull), KindConflict},
		{errors.New("connection refused"), KindUnexpected},
		{nil, KindUnexpected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), "%v", tt.err)
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindBadRequest))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindUnexpected))
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "unexpected", KindUnexpected.String())
}
