package customers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/middleware"
	"github.com/slotbook/backend/pkg/queue"
	"github.com/slotbook/backend/pkg/response"
)

// JobEnqueuer schedules background jobs.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// Handler handles customer profile admin endpoints.
type Handler struct {
	jobs   JobEnqueuer
	logger *zap.Logger
}

// NewHandler creates a customers handler.
func NewHandler(jobs JobEnqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{jobs: jobs, logger: logger}
}

// Backfill handles POST /admin/customer-profiles/backfill. The work runs in the worker.
func (h *Handler) Backfill(c *gin.Context) {
	if h.jobs == nil {
		response.ServiceUnavailable(c, "job queue not configured")
		return
	}
	id, _ := middleware.IdentityFrom(c)
	job, err := queue.NewProfileBackfillJob(id.UserID)
	if err != nil {
		response.Internal(c, "failed to build job")
		return
	}
	if err := h.jobs.Enqueue(c.Request.Context(), job); err != nil {
		h.logger.Error("enqueue profile backfill failed", zap.Error(err))
		response.Internal(c, "failed to enqueue backfill")
		return
	}
	response.Accepted(c, gin.H{"jobId": job.ID, "status": "queued"})
}
