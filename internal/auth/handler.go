package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slotbook/backend/internal/middleware"
	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/response"
)

// MeResponse is the body of GET /me.
type MeResponse struct {
	UserID uuid.UUID   `json:"userId"`
	Role   models.Role `json:"role"`
}

// Handler handles identity HTTP endpoints.
type Handler struct{}

// NewHandler creates an auth handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Me handles GET /me. Requires JWT and LoadRole.
func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	response.OK(c, MeResponse{UserID: id.UserID, Role: middleware.RoleFrom(c)})
}
