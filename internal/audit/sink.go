package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/queue"
)

// Enqueuer schedules background jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// QueueSink hands reservation events to the worker as audit jobs.
// Enqueue failures are logged; the reservation change has already committed.
type QueueSink struct {
	jobs   Enqueuer
	logger *zap.Logger
}

// NewQueueSink creates an audit event sink.
func NewQueueSink(jobs Enqueuer, logger *zap.Logger) *QueueSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueSink{jobs: jobs, logger: logger}
}

// ReservationChanged enqueues an audit job for ev.
func (s *QueueSink) ReservationChanged(ctx context.Context, ev models.ReservationEvent) {
	job, err := queue.NewAuditJob(ev)
	if err == nil {
		err = s.jobs.Enqueue(context.WithoutCancel(ctx), job)
	}
	if err != nil {
		s.logger.Error("enqueue audit job failed", zap.Error(err),
			zap.String("reservation_id", ev.ReservationID.String()),
			zap.String("action", string(ev.Type)))
	}
}
