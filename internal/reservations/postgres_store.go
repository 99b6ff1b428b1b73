package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/slotbook/backend/internal/models"
)

const (
	pgUniqueViolationCode = "23505"
	activeUserSlotIndex   = "reservations_active_user_slot_uq"
)

const reservationColumns = `id, user_id, time_slot_id, status, created_at, updated_at`

// PostgresStore runs reservation transactions on PostgreSQL.
//
// Transactions use READ COMMITTED. Slot and reservation reads take row locks
// (SELECT ... FOR UPDATE), so all writers of one slot are serialized and the
// booked count read after the lock is current.
type PostgresStore struct {
	db TxBeginner
}

// TxBeginner starts transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// NewPostgresStore creates a Postgres-backed reservation store.
func NewPostgresStore(db TxBeginner) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithinTx implements Store.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetSlot(ctx context.Context, slotID uuid.UUID) (*models.TimeSlot, error) {
	const q = `SELECT id, title, description, class_type_id, venue_id, start_at, end_at, capacity, price_cents, status, created_at, updated_at
		FROM time_slots WHERE id = $1 FOR UPDATE`
	var s models.TimeSlot
	err := t.tx.QueryRow(ctx, q, slotID).Scan(&s.ID, &s.Title, &s.Description, &s.ClassTypeID, &s.VenueID,
		&s.StartAt, &s.EndAt, &s.Capacity, &s.PriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &s, nil
}

func (t *pgTx) CountBooked(ctx context.Context, slotID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE time_slot_id = $1 AND status = 'booked'`
	var n int
	if err := t.tx.QueryRow(ctx, q, slotID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count booked: %w", err)
	}
	return n, nil
}

func (t *pgTx) FindActiveByUserAndSlot(ctx context.Context, userID, slotID uuid.UUID) (*models.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE user_id = $1 AND time_slot_id = $2 AND status = 'booked' LIMIT 1`
	r, err := scanReservation(t.tx.QueryRow(ctx, q, userID, slotID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active reservation: %w", err)
	}
	return r, nil
}

func (t *pgTx) Create(ctx context.Context, userID, slotID uuid.UUID) (*models.Reservation, error) {
	q := `INSERT INTO reservations (id, user_id, time_slot_id, status)
		VALUES (gen_random_uuid(), $1, $2, 'booked')
		RETURNING ` + reservationColumns
	r, err := scanReservation(t.tx.QueryRow(ctx, q, userID, slotID))
	if err != nil {
		if isActiveUserSlotViolation(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	return r, nil
}

func (t *pgTx) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	r, err := scanReservation(t.tx.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return r, nil
}

func (t *pgTx) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) (*models.Reservation, error) {
	q := `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + reservationColumns
	r, err := scanReservation(t.tx.QueryRow(ctx, q, string(status), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	return r, nil
}

func (t *pgTx) UpdateSlot(ctx context.Context, id, slotID uuid.UUID) (*models.Reservation, error) {
	q := `UPDATE reservations SET time_slot_id = $1, status = 'booked', updated_at = NOW() WHERE id = $2 RETURNING ` + reservationColumns
	r, err := scanReservation(t.tx.QueryRow(ctx, q, slotID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		if isActiveUserSlotViolation(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("update reservation slot: %w", err)
	}
	return r, nil
}

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var (
		r      models.Reservation
		status string
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.TimeSlotID, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = models.ReservationStatus(status)
	return &r, nil
}

func isActiveUserSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == activeUserSlotIndex
}
