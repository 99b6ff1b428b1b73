package realtime

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/models"
)

// AvailabilitySource computes a slot's live seat count.
type AvailabilitySource interface {
	Availability(ctx context.Context, slotID uuid.UUID) (models.SlotAvailability, error)
}

// AvailabilityPublisher pushes fresh availability for every slot a
// reservation change touched.
type AvailabilityPublisher struct {
	hub    *Hub
	source AvailabilitySource
	logger *zap.Logger
}

// NewAvailabilityPublisher creates a publisher.
func NewAvailabilityPublisher(hub *Hub, source AvailabilitySource, logger *zap.Logger) *AvailabilityPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityPublisher{hub: hub, source: source, logger: logger}
}

// ReservationChanged publishes availability for the event's slots.
func (p *AvailabilityPublisher) ReservationChanged(ctx context.Context, ev models.ReservationEvent) {
	for _, slotID := range ev.SlotIDs() {
		p.NotifySlot(ctx, slotID)
	}
}

// NotifySlot publishes the slot's current availability.
func (p *AvailabilityPublisher) NotifySlot(ctx context.Context, slotID uuid.UUID) {
	a, err := p.source.Availability(context.WithoutCancel(ctx), slotID)
	if err != nil {
		p.logger.Warn("load availability failed", zap.Error(err), zap.String("slot_id", slotID.String()))
		return
	}
	p.hub.Publish(slotID, EventAvailability, a)
}
