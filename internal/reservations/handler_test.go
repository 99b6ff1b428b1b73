package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotbook/backend/internal/middleware"
	"github.com/slotbook/backend/internal/models"
)

type mockService struct {
	BookFunc       func(ctx context.Context, id models.Identity, slotID uuid.UUID) (*models.Reservation, error)
	CancelFunc     func(ctx context.Context, id models.Identity, reservationID uuid.UUID, asAdmin bool) (*models.Reservation, error)
	RescheduleFunc func(ctx context.Context, id models.Identity, reservationID, targetSlotID uuid.UUID) (*models.Reservation, error)
	synced         []models.Identity
}

func (m *mockService) SyncProfile(_ context.Context, id models.Identity) {
	m.synced = append(m.synced, id)
}

func (m *mockService) Book(ctx context.Context, id models.Identity, slotID uuid.UUID) (*models.Reservation, error) {
	return m.BookFunc(ctx, id, slotID)
}

func (m *mockService) Cancel(ctx context.Context, id models.Identity, reservationID uuid.UUID, asAdmin bool) (*models.Reservation, error) {
	return m.CancelFunc(ctx, id, reservationID, asAdmin)
}

func (m *mockService) Reschedule(ctx context.Context, id models.Identity, reservationID, targetSlotID uuid.UUID) (*models.Reservation, error) {
	return m.RescheduleFunc(ctx, id, reservationID, targetSlotID)
}

type mockLister struct {
	ListFunc       func(ctx context.Context, f ListFilter) ([]models.ReservationDetail, error)
	ListBySlotFunc func(ctx context.Context, slotID uuid.UUID) ([]models.ReservationDetail, error)
	ListByUserFunc func(ctx context.Context, userID uuid.UUID) ([]models.ReservationDetail, error)
	GetDetailFunc  func(ctx context.Context, id uuid.UUID) (*models.ReservationDetail, error)
}

func (m *mockLister) List(ctx context.Context, f ListFilter) ([]models.ReservationDetail, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockLister) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]models.ReservationDetail, error) {
	return m.ListBySlotFunc(ctx, slotID)
}

func (m *mockLister) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ReservationDetail, error) {
	return m.ListByUserFunc(ctx, userID)
}

func (m *mockLister) GetDetail(ctx context.Context, id uuid.UUID) (*models.ReservationDetail, error) {
	return m.GetDetailFunc(ctx, id)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(h *Handler, caller models.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, caller.UserID)
		c.Set(middleware.ContextUserEmail, caller.Email)
	})
	r.GET("/reservations", h.List)
	r.GET("/reservations/me", h.Mine)
	r.GET("/reservations/:id", h.Get)
	r.GET("/reservations/by-event/:timeSlotId", h.ListBySlot)
	r.POST("/reservations", h.Book)
	r.PATCH("/reservations/:id/cancel", h.Cancel)
	r.PATCH("/reservations/:id/admin-cancel", h.AdminCancel)
	r.PATCH("/reservations/:id/reschedule", h.Reschedule)
	return r
}

func do(r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func detailOf(res *models.Reservation) *models.ReservationDetail {
	return &models.ReservationDetail{
		Reservation: *res,
		Customer:    &models.ReservationCustomer{UserID: res.UserID},
		TimeSlot:    &models.TimeSlotDetail{TimeSlot: models.TimeSlot{ID: res.TimeSlotID, Title: "Pottery"}},
	}
}

func TestHandler_Book(t *testing.T) {
	caller := models.Identity{UserID: uuid.New(), Email: "ann@example.com"}
	slotID := uuid.New()
	res := &models.Reservation{ID: uuid.New(), UserID: caller.UserID, TimeSlotID: slotID, Status: models.ReservationStatusBooked}

	svc := &mockService{BookFunc: func(_ context.Context, id models.Identity, got uuid.UUID) (*models.Reservation, error) {
		assert.Equal(t, caller, id)
		if got == slotID {
			return res, nil
		}
		return nil, ErrSlotFull
	}}
	list := &mockLister{GetDetailFunc: func(_ context.Context, id uuid.UUID) (*models.ReservationDetail, error) {
		return detailOf(res), nil
	}}
	r := newTestRouter(NewHandler(svc, list, nil), caller)

	w, env := do(r, http.MethodPost, "/reservations", BookRequest{TimeSlotID: slotID.String()})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	var got models.ReservationDetail
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, "Pottery", got.TimeSlot.Title)
	assert.Contains(t, string(env.Data), `"timeSlotId"`)

	w, env = do(r, http.MethodPost, "/reservations", BookRequest{TimeSlotID: uuid.NewString()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, ErrSlotFull.Error(), env.Error)

	w, env = do(r, http.MethodPost, "/reservations", BookRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrMissingSlotID.Error(), env.Error)

	w, _ = do(r, http.MethodPost, "/reservations", BookRequest{TimeSlotID: "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_BookFallsBackWhenDetailFails(t *testing.T) {
	caller := models.Identity{UserID: uuid.New()}
	res := &models.Reservation{ID: uuid.New(), UserID: caller.UserID, TimeSlotID: uuid.New(), Status: models.ReservationStatusBooked}
	svc := &mockService{BookFunc: func(context.Context, models.Identity, uuid.UUID) (*models.Reservation, error) {
		return res, nil
	}}
	list := &mockLister{GetDetailFunc: func(context.Context, uuid.UUID) (*models.ReservationDetail, error) {
		return nil, errors.New("read replica down")
	}}
	r := newTestRouter(NewHandler(svc, list, nil), caller)

	w, env := do(r, http.MethodPost, "/reservations", BookRequest{TimeSlotID: res.TimeSlotID.String()})
	require.Equal(t, http.StatusCreated, w.Code)
	var got models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, res.ID, got.ID)
}

func TestHandler_Cancel(t *testing.T) {
	caller := models.Identity{UserID: uuid.New()}
	resID := uuid.New()
	var adminFlags []bool
	svc := &mockService{CancelFunc: func(_ context.Context, _ models.Identity, id uuid.UUID, asAdmin bool) (*models.Reservation, error) {
		adminFlags = append(adminFlags, asAdmin)
		if id != resID {
			return nil, ErrReservationNotFound
		}
		return &models.Reservation{ID: id, Status: models.ReservationStatusCanceled}, nil
	}}
	list := &mockLister{GetDetailFunc: func(_ context.Context, id uuid.UUID) (*models.ReservationDetail, error) {
		return detailOf(&models.Reservation{ID: id, Status: models.ReservationStatusCanceled}), nil
	}}
	r := newTestRouter(NewHandler(svc, list, nil), caller)

	w, _ := do(r, http.MethodPatch, "/reservations/"+resID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(r, http.MethodPatch, "/reservations/"+resID.String()+"/admin-cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env := do(r, http.MethodPatch, "/reservations/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrReservationNotFound.Error(), env.Error)
	w, env = do(r, http.MethodPatch, "/reservations/bad-id/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrReservationNotFound.Error(), env.Error)

	assert.Equal(t, []bool{false, true, false}, adminFlags)
}

func TestHandler_Reschedule(t *testing.T) {
	caller := models.Identity{UserID: uuid.New()}
	resID, target := uuid.New(), uuid.New()
	svc := &mockService{RescheduleFunc: func(_ context.Context, _ models.Identity, id, to uuid.UUID) (*models.Reservation, error) {
		switch to {
		case target:
			return &models.Reservation{ID: id, TimeSlotID: to, Status: models.ReservationStatusBooked}, nil
		default:
			return nil, fmt.Errorf("update slot: %w", errors.New("deadlock detected"))
		}
	}}
	list := &mockLister{GetDetailFunc: func(_ context.Context, id uuid.UUID) (*models.ReservationDetail, error) {
		return detailOf(&models.Reservation{ID: id, TimeSlotID: target}), nil
	}}
	r := newTestRouter(NewHandler(svc, list, nil), caller)
	path := "/reservations/" + resID.String() + "/reschedule"

	w, _ := do(r, http.MethodPatch, path, RescheduleRequest{ToTimeSlotID: target.String()})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(r, http.MethodPatch, path, RescheduleRequest{ToTimeSlotID: uuid.NewString()})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", env.Error)

	w, _ = do(r, http.MethodPatch, path, RescheduleRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(r, http.MethodPatch, "/reservations/42/reschedule", RescheduleRequest{ToTimeSlotID: target.String()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrReservationNotFound.Error(), env.Error)
	w, _ = do(r, http.MethodGet, "/reservations/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Queries(t *testing.T) {
	caller := models.Identity{UserID: uuid.New(), Email: "lee@example.com"}
	slotID := uuid.New()
	var gotFilter ListFilter
	svc := &mockService{}
	list := &mockLister{
		ListFunc: func(_ context.Context, f ListFilter) ([]models.ReservationDetail, error) {
			gotFilter = f
			return []models.ReservationDetail{}, nil
		},
		ListBySlotFunc: func(_ context.Context, id uuid.UUID) ([]models.ReservationDetail, error) {
			assert.Equal(t, slotID, id)
			return []models.ReservationDetail{}, nil
		},
		ListByUserFunc: func(_ context.Context, id uuid.UUID) ([]models.ReservationDetail, error) {
			assert.Equal(t, caller.UserID, id)
			return []models.ReservationDetail{}, nil
		},
		GetDetailFunc: func(context.Context, uuid.UUID) (*models.ReservationDetail, error) {
			return nil, ErrReservationNotFound
		},
	}
	r := newTestRouter(NewHandler(svc, list, nil), caller)

	w, _ := do(r, http.MethodGet, "/reservations?timeSlotId="+slotID.String()+"&status=booked", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotFilter.TimeSlotID)
	assert.Equal(t, slotID, *gotFilter.TimeSlotID)
	assert.Nil(t, gotFilter.UserID)
	assert.Equal(t, models.ReservationStatusBooked, gotFilter.Status)

	w, _ = do(r, http.MethodGet, "/reservations?status=pending", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(r, http.MethodGet, "/reservations?userId=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := do(r, http.MethodGet, "/reservations/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, []models.Identity{caller}, svc.synced)

	w, _ = do(r, http.MethodGet, "/reservations/by-event/"+slotID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/reservations/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
