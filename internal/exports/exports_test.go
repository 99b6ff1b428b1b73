package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotbook/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleList() []models.ReservationDetail {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return []models.ReservationDetail{
		{
			Reservation: models.Reservation{ID: uuid.New(), UserID: uuid.New(), Status: models.ReservationStatusBooked, CreatedAt: at},
			Customer:    &models.ReservationCustomer{Email: strPtr("ann@example.com"), FullName: strPtr("Ann, the potter")},
		},
		{
			Reservation: models.Reservation{ID: uuid.New(), UserID: uuid.New(), Status: models.ReservationStatusCanceled, CreatedAt: at},
		},
	}
}

func TestWriteAttendees(t *testing.T) {
	list := sampleList()
	var buf bytes.Buffer
	require.NoError(t, WriteAttendees(&buf, list))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{list[0].ID.String(), "booked", list[0].UserID.String(), "ann@example.com", "Ann, the potter", "2026-10-01T12:00:00Z"}, rows[1])
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "canceled", rows[2][1])
}

type mockLister struct {
	list []models.ReservationDetail
	err  error
}

func (m *mockLister) ListBySlot(context.Context, uuid.UUID) ([]models.ReservationDetail, error) {
	return m.list, m.err
}

type mockStore struct {
	uploaded  map[string]string
	uploadErr error
}

func (m *mockStore) ExportsBucket() string        { return "exports-bucket" }
func (m *mockStore) PresignExpire() time.Duration { return 10 * time.Minute }

func (m *mockStore) Upload(_ context.Context, bucket, key, _ string, body io.Reader) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	b, _ := io.ReadAll(body)
	if m.uploaded == nil {
		m.uploaded = make(map[string]string)
	}
	m.uploaded[bucket+"/"+key] = string(b)
	return nil
}

func (m *mockStore) PresignedDownloadURL(_ context.Context, bucket, key, _ string, _ time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + key, nil
}

func export(h *Handler, slot string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/reservations/by-event/:timeSlotId/export", h.Export)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations/by-event/"+slot+"/export", nil))
	return w
}

func TestHandler_Export(t *testing.T) {
	slot := uuid.New()
	store := &mockStore{}
	h := NewHandler(&mockLister{list: sampleList()}, store, nil)
	h.now = func() time.Time { return time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC) }

	w := export(h, slot.String())
	require.Equal(t, http.StatusOK, w.Code)
	key := "exports/" + slot.String() + "/20261017T080000Z.csv"
	assert.Contains(t, w.Body.String(), "https://signed.example/exports-bucket/"+key)
	assert.Contains(t, w.Body.String(), `"rows":2`)
	require.Contains(t, store.uploaded, "exports-bucket/"+key)
	assert.True(t, strings.HasPrefix(store.uploaded["exports-bucket/"+key], "reservation_id,status"))
}

func TestHandler_ExportErrors(t *testing.T) {
	slot := uuid.NewString()
	assert.Equal(t, http.StatusServiceUnavailable, export(NewHandler(&mockLister{}, nil, nil), slot).Code)
	assert.Equal(t, http.StatusBadRequest, export(NewHandler(&mockLister{}, &mockStore{}, nil), "x").Code)
	assert.Equal(t, http.StatusInternalServerError, export(NewHandler(&mockLister{err: errors.New("db")}, &mockStore{}, nil), slot).Code)
	assert.Equal(t, http.StatusInternalServerError, export(NewHandler(&mockLister{}, &mockStore{uploadErr: errors.New("s3")}, nil), slot).Code)
}
