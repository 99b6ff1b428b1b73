package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotbook/backend/internal/models"
)

// DefaultLimit and MaxLimit bound List.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Repository persists reservation audit logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a committed reservation event.
func (r *Repository) Insert(ctx context.Context, ev models.ReservationEvent) error {
	const q = `INSERT INTO audit_logs (id, action, actor_id, reservation_id, user_id, from_slot_id, to_slot_id, occurred_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, q, string(ev.Type), ev.ActorID, ev.ReservationID, ev.UserID, ev.FromSlotID, ev.ToSlotID, ev.At)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns the newest audit logs, optionally for one reservation.
func (r *Repository) List(ctx context.Context, reservationID *uuid.UUID, limit int) ([]models.AuditLog, error) {
	const q = `SELECT id, action, actor_id, reservation_id, user_id, from_slot_id, to_slot_id, occurred_at, created_at
		FROM audit_logs
		WHERE ($1::uuid IS NULL OR reservation_id = $1)
		ORDER BY occurred_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, reservationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	list := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.Action, &l.ActorID, &l.ReservationID, &l.UserID, &l.FromSlotID, &l.ToSlotID, &l.OccurredAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
