package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/audit"
	"github.com/slotbook/backend/internal/auth"
	"github.com/slotbook/backend/internal/catalog"
	"github.com/slotbook/backend/internal/customers"
	"github.com/slotbook/backend/internal/exports"
	"github.com/slotbook/backend/internal/middleware"
	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/internal/reservations"
)

// healthCheck probes one dependency for /health.
type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

// routeDeps is everything the router needs. limiter may be nil.
type routeDeps struct {
	logger      *zap.Logger
	corsOrigins string
	health      []healthCheck
	verifier    middleware.TokenVerifier
	roles       middleware.RoleResolver
	limiter     *middleware.RateLimiter

	auth         *auth.Handler
	reservations *reservations.Handler
	catalog      *catalog.Handler
	customers    *customers.Handler
	audit        *audit.Handler
	exports      *exports.Handler
	ws           gin.HandlerFunc
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(d.corsOrigins))
	r.Use(middleware.Logger(d.logger))

	r.GET("/health", health(d.health))

	// Public
	r.GET("/events", d.catalog.List)
	r.GET("/events/:id", d.catalog.Get)
	if d.ws != nil {
		r.GET("/ws/availability", d.ws)
	}

	staff := middleware.RequireRole(models.RoleLector, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)
	throttle := func(c *gin.Context) { c.Next() }
	if d.limiter != nil {
		throttle = d.limiter.Middleware()
	}

	protected := r.Group("")
	protected.Use(middleware.JWT(d.verifier), middleware.LoadRole(d.roles, d.logger))
	{
		protected.GET("/me", d.auth.Me)

		res := protected.Group("/reservations")
		res.GET("", staff, d.reservations.List)
		res.GET("/me", d.reservations.Mine)
		res.GET("/by-event/:timeSlotId", staff, d.reservations.ListBySlot)
		res.GET("/by-event/:timeSlotId/export", staff, d.exports.Export)
		res.GET("/:id", staff, d.reservations.Get)
		res.POST("", throttle, d.reservations.Book)
		res.PATCH("/:id/cancel", throttle, d.reservations.Cancel)
		res.PATCH("/:id/admin-cancel", admin, d.reservations.AdminCancel)
		res.PATCH("/:id/reschedule", throttle, d.reservations.Reschedule)

		protected.POST("/events", admin, d.catalog.Create)
		protected.PATCH("/events/:id", admin, d.catalog.Update)

		adm := protected.Group("/admin", admin)
		adm.POST("/customer-profiles/backfill", d.customers.Backfill)
		adm.GET("/audit-logs", d.audit.List)
	}
	return r
}

func health(checks []healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		deps := gin.H{}
		for _, hc := range checks {
			if err := hc.check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				deps[hc.name] = err.Error()
				continue
			}
			deps[hc.name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "dependencies": deps})
	}
}
