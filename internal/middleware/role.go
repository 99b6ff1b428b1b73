package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/response"
)

// RoleResolver looks up a user's role. Users without a role row are USER.
type RoleResolver interface {
	GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error)
}

// LoadRole resolves the caller's role and stores it in context. Must run after JWT.
func LoadRole(roles RoleResolver, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, err := roles.GetRole(c.Request.Context(), id.UserID)
		if err != nil {
			logger.Error("resolve role failed", zap.Error(err), zap.String("user_id", id.UserID.String()))
			response.Internal(c, "failed to resolve role")
			c.Abort()
			return
		}
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

// RoleFrom returns the role set by LoadRole, or USER.
func RoleFrom(c *gin.Context) models.Role {
	if v, ok := c.Get(ContextUserRole); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return models.RoleUser
}

// RequireRole returns a middleware that allows only the given roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		v, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := v.(models.Role)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
