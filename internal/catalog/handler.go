package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/response"
)

// Store is the catalog persistence used by the handler.
type Store interface {
	List(ctx context.Context, f ListFilter) ([]models.TimeSlotDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*models.TimeSlotDetail, error)
	Create(ctx context.Context, in CreateEventInput) (*models.TimeSlot, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateEventInput) (*models.TimeSlot, error)
}

// AvailabilityNotifier pushes a slot's fresh availability to live subscribers.
type AvailabilityNotifier interface {
	NotifySlot(ctx context.Context, slotID uuid.UUID)
}

// Handler handles event (time slot) endpoints.
type Handler struct {
	store  Store
	notify AvailabilityNotifier
	logger *zap.Logger
}

// NewHandler creates a catalog handler. notify may be nil.
func NewHandler(store Store, notify AvailabilityNotifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, notify: notify, logger: logger}
}

// List handles GET /events?from=&classTypeId=&venueId=.
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid from")
			return
		}
		f.From = &t
	}
	for param, dst := range map[string]**uuid.UUID{"classTypeId": &f.ClassTypeID, "venueId": &f.VenueID} {
		if v := c.Query(param); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				response.BadRequest(c, "invalid "+param)
				return
			}
			*dst = &id
		}
	}
	list, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	d, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get event")
		return
	}
	response.OK(c, d)
}

// Create handles POST /events (admin).
func (h *Handler) Create(c *gin.Context) {
	var in CreateEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "create event")
		return
	}
	h.logger.Info("event created", zap.String("event_id", s.ID.String()))
	response.Created(c, s)
}

// Update handles PATCH /events/:id (admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var in UpdateEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s, err := h.store.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err, "update event")
		return
	}
	if in.Capacity != nil && h.notify != nil {
		h.notify.NotifySlot(c.Request.Context(), id)
	}
	response.OK(c, s)
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrInvalidEvent), errors.Is(err, ErrUnknownReference):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrCapacityBelowBooked):
		response.Conflict(c, err.Error())
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		response.Internal(c, "internal error")
	}
}
