package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
	"github.com/slotbook/backend/pkg/queue"
)

// AuditWriter persists reservation events.
type AuditWriter interface {
	Insert(ctx context.Context, ev models.ReservationEvent) error
}

// ProfileBackfiller creates missing customer profiles.
type ProfileBackfiller interface {
	Backfill(ctx context.Context) (int, error)
}

// JobQueue is the queue the processor consumes.
type JobQueue interface {
	Dequeue(ctx context.Context, keys ...string) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Processor executes audit and customer profile backfill jobs.
type Processor struct {
	audit    AuditWriter
	profiles ProfileBackfiller
	queue    JobQueue
	logger   *zap.Logger
	backoff  time.Duration
}

// NewProcessor creates a job processor.
func NewProcessor(audit AuditWriter, profiles ProfileBackfiller, q JobQueue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{audit: audit, profiles: profiles, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeAudit:
		var ev models.ReservationEvent
		if err := json.Unmarshal(job.Payload, &ev); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if err := p.audit.Insert(ctx, ev); err != nil {
			return err
		}
		p.logger.Debug("audit log written", zap.String("reservation_id", ev.ReservationID.String()), zap.String("action", string(ev.Type)))
		return nil
	case queue.JobTypeProfileBackfill:
		var payload queue.ProfileBackfillPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		n, err := p.profiles.Backfill(ctx)
		if err != nil {
			return err
		}
		p.logger.Info("customer profiles backfilled", zap.Int("created", n), zap.String("requested_by", payload.RequestedBy.String()))
		return nil
	}
	return fmt.Errorf("%w: %s", queue.ErrUnknownJobType, job.Type)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx, queue.QueueAudit, queue.QueueMaintenance)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *Processor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
