package audit

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/response"
)

// Lister reads audit logs.
type Lister interface {
	List(ctx context.Context, reservationID *uuid.UUID, limit int) ([]models.AuditLog, error)
}

// Handler handles audit log endpoints.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates an audit handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /admin/audit-logs?reservationId=&limit= (admin).
func (h *Handler) List(c *gin.Context) {
	var resID *uuid.UUID
	if v := c.Query("reservationId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "invalid reservationId")
			return
		}
		resID = &id
	}
	limit := DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = min(n, MaxLimit)
	}
	logs, err := h.repo.List(c.Request.Context(), resID, limit)
	if err != nil {
		h.logger.Error("list audit logs failed", zap.Error(err))
		response.Internal(c, "failed to list audit logs")
		return
	}
	response.OK(c, logs)
}
