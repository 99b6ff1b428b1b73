package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotbook/backend/internal/models"
)

func TestNewAuditJob(t *testing.T) {
	from := uuid.New()
	ev := models.ReservationEvent{
		Type:          models.EventReservationRescheduled,
		ReservationID: uuid.New(),
		UserID:        uuid.New(),
		ActorID:       uuid.New(),
		FromSlotID:    &from,
		ToSlotID:      uuid.New(),
		At:            time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	job, err := NewAuditJob(ev)
	require.NoError(t, err)
	assert.Equal(t, JobTypeAudit, job.Type)
	assert.Zero(t, job.Attempt)
	assert.NotEmpty(t, job.ID)

	var got models.ReservationEvent
	require.NoError(t, json.Unmarshal(job.Payload, &got))
	assert.Equal(t, ev, got)
}

func TestNewProfileBackfillJob(t *testing.T) {
	admin := uuid.New()
	job, err := NewProfileBackfillJob(admin)
	require.NoError(t, err)
	assert.Equal(t, JobTypeProfileBackfill, job.Type)
	assert.JSONEq(t, `{"requested_by":"`+admin.String()+`"}`, string(job.Payload))
}

func TestKeyFor(t *testing.T) {
	key, err := KeyFor(JobTypeAudit)
	require.NoError(t, err)
	assert.Equal(t, QueueAudit, key)

	key, err = KeyFor(JobTypeProfileBackfill)
	require.NoError(t, err)
	assert.Equal(t, QueueMaintenance, key)

	_, err = KeyFor("recording_upload")
	assert.ErrorIs(t, err, ErrUnknownJobType)
}
