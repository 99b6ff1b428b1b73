package exports

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/response"
	"github.com/slotbook/backend/pkg/storage"
)

// Lister reads a slot's reservations.
type Lister interface {
	ListBySlot(ctx context.Context, slotID uuid.UUID) ([]models.ReservationDetail, error)
}

// ObjectStore uploads exports and signs download links.
type ObjectStore interface {
	ExportsBucket() string
	PresignExpire() time.Duration
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	PresignedDownloadURL(ctx context.Context, bucket, key, filename string, expires time.Duration) (string, error)
}

// Result is the body of a successful export.
type Result struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Handler handles attendee exports.
type Handler struct {
	list   Lister
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates an exports handler. A nil store disables exports.
func NewHandler(list Lister, store ObjectStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{list: list, store: store, logger: logger, now: time.Now}
}

// Export handles GET /reservations/by-event/:timeSlotId/export (staff).
func (h *Handler) Export(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	slotID, err := uuid.Parse(c.Param("timeSlotId"))
	if err != nil {
		response.BadRequest(c, "invalid timeSlotId")
		return
	}
	ctx := c.Request.Context()
	list, err := h.list.ListBySlot(ctx, slotID)
	if err != nil {
		h.logger.Error("list reservations for export failed", zap.Error(err), zap.String("slot_id", slotID.String()))
		response.Internal(c, "failed to load reservations")
		return
	}

	var buf bytes.Buffer
	if err := WriteAttendees(&buf, list); err != nil {
		h.logger.Error("write export failed", zap.Error(err))
		response.Internal(c, "failed to build export")
		return
	}
	now := h.now()
	key := storage.ExportKey(slotID.String(), now)
	bucket := h.store.ExportsBucket()
	if err := h.store.Upload(ctx, bucket, key, storage.ContentTypeCSV, &buf); err != nil {
		h.logger.Error("upload export failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to store export")
		return
	}
	expires := h.store.PresignExpire()
	url, err := h.store.PresignedDownloadURL(ctx, bucket, key, "attendees-"+slotID.String()+".csv", expires)
	if err != nil {
		h.logger.Error("presign export failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to sign export link")
		return
	}
	h.logger.Info("attendee export created", zap.String("slot_id", slotID.String()), zap.Int("rows", len(list)))
	response.OK(c, Result{URL: url, Key: key, Rows: len(list), ExpiresAt: now.Add(expires).UTC()})
}
