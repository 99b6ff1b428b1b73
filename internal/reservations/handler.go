package reservations

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/middleware"
	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/response"
)

// Service is the reservation lifecycle used by the handler.
type Service interface {
	SyncProfile(ctx context.Context, id models.Identity)
	Book(ctx context.Context, id models.Identity, slotID uuid.UUID) (*models.Reservation, error)
	Cancel(ctx context.Context, id models.Identity, reservationID uuid.UUID, asAdmin bool) (*models.Reservation, error)
	Reschedule(ctx context.Context, id models.Identity, reservationID, targetSlotID uuid.UUID) (*models.Reservation, error)
}

// Lister reads reservations with their details.
type Lister interface {
	List(ctx context.Context, f ListFilter) ([]models.ReservationDetail, error)
	ListBySlot(ctx context.Context, slotID uuid.UUID) ([]models.ReservationDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ReservationDetail, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.ReservationDetail, error)
}

// BookRequest is the body for POST /reservations.
type BookRequest struct {
	TimeSlotID string `json:"timeSlotId"`
}

// RescheduleRequest is the body for PATCH /reservations/:id/reschedule.
type RescheduleRequest struct {
	ToTimeSlotID string `json:"toTimeSlotId"`
}

// Handler handles reservation HTTP endpoints.
type Handler struct {
	svc    Service
	list   Lister
	logger *zap.Logger
}

// NewHandler creates a reservations handler.
func NewHandler(svc Service, list Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, list: list, logger: logger}
}

// List handles GET /reservations?timeSlotId=&userId=&status= (staff).
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if v := c.Query("timeSlotId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "invalid timeSlotId")
			return
		}
		f.TimeSlotID = &id
	}
	if v := c.Query("userId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "invalid userId")
			return
		}
		f.UserID = &id
	}
	if v := c.Query("status"); v != "" {
		f.Status = models.ReservationStatus(v)
		if !f.Status.IsValid() {
			response.BadRequest(c, "invalid status")
			return
		}
	}
	list, err := h.list.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "list reservations")
		return
	}
	response.OK(c, list)
}

// ListBySlot handles GET /reservations/by-event/:timeSlotId (staff).
func (h *Handler) ListBySlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("timeSlotId"))
	if err != nil {
		response.BadRequest(c, "invalid timeSlotId")
		return
	}
	list, err := h.list.ListBySlot(c.Request.Context(), slotID)
	if err != nil {
		h.fail(c, err, "list reservations by slot")
		return
	}
	response.OK(c, list)
}

// Mine handles GET /reservations/me.
func (h *Handler) Mine(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	h.svc.SyncProfile(c.Request.Context(), id)
	list, err := h.list.ListByUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.fail(c, err, "list own reservations")
		return
	}
	response.OK(c, list)
}

// Get handles GET /reservations/:id (staff).
func (h *Handler) Get(c *gin.Context) {
	resID, ok := parseID(c)
	if !ok {
		return
	}
	d, err := h.list.GetDetail(c.Request.Context(), resID)
	if err != nil {
		h.fail(c, err, "get reservation")
		return
	}
	response.OK(c, d)
}

// Book handles POST /reservations.
func (h *Handler) Book(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	slotID, ok := parseSlotID(c, req.TimeSlotID, "timeSlotId")
	if !ok {
		return
	}
	res, err := h.svc.Book(c.Request.Context(), id, slotID)
	if err != nil {
		h.fail(c, err, "book")
		return
	}
	response.Created(c, h.detail(c, res))
}

// Cancel handles PATCH /reservations/:id/cancel. Callers may only cancel their own.
func (h *Handler) Cancel(c *gin.Context) {
	h.cancel(c, false)
}

// AdminCancel handles PATCH /reservations/:id/admin-cancel (admin).
func (h *Handler) AdminCancel(c *gin.Context) {
	h.cancel(c, true)
}

func (h *Handler) cancel(c *gin.Context, asAdmin bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	resID, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.Cancel(c.Request.Context(), id, resID, asAdmin)
	if err != nil {
		h.fail(c, err, "cancel")
		return
	}
	response.OK(c, h.detail(c, res))
}

// Reschedule handles PATCH /reservations/:id/reschedule.
func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	resID, ok := parseID(c)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	slotID, ok := parseSlotID(c, req.ToTimeSlotID, "toTimeSlotId")
	if !ok {
		return
	}
	res, err := h.svc.Reschedule(c.Request.Context(), id, resID, slotID)
	if err != nil {
		h.fail(c, err, "reschedule")
		return
	}
	response.OK(c, h.detail(c, res))
}

// detail loads the response shape for res. The change is already committed,
// so a failed read falls back to the bare reservation.
func (h *Handler) detail(c *gin.Context, res *models.Reservation) any {
	d, err := h.list.GetDetail(c.Request.Context(), res.ID)
	if err != nil {
		h.logger.Warn("load reservation detail failed", zap.Error(err), zap.String("reservation_id", res.ID.String()))
		return res
	}
	return d
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	kind := KindOf(err)
	if kind == KindUnexpected {
		h.logger.Error(op+" failed", zap.Error(err))
		response.Internal(c, "internal error")
		return
	}
	response.Error(c, HTTPStatus(kind), err.Error())
}

// parseID reads the :id path parameter. An id that cannot exist is reported
// the same way as a missing reservation.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, ErrReservationNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}

// parseSlotID treats a missing id as ErrMissingSlotID.
func parseSlotID(c *gin.Context, v, field string) (uuid.UUID, bool) {
	if v == "" {
		response.BadRequest(c, ErrMissingSlotID.Error())
		return uuid.Nil, false
	}
	id, err := uuid.Parse(v)
	if err != nil {
		response.BadRequest(c, "invalid "+field)
		return uuid.Nil, false
	}
	return id, true
}
