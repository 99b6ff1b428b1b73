package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotbook/backend/internal/models"
)

const pgForeignKeyViolationCode = "23503"

// ListFilter narrows List. Nil fields are ignored.
type ListFilter struct {
	From        *time.Time
	ClassTypeID *uuid.UUID
	VenueID     *uuid.UUID
}

// Repository reads and writes time slots ("events"). Booked counts are always live.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const slotColumns = `ts.id, ts.title, ts.description, ts.class_type_id, ts.venue_id, ts.start_at, ts.end_at,
	ts.capacity, ts.price_cents, ts.status, ts.created_at, ts.updated_at`

const detailSelect = `SELECT ` + slotColumns + `,
		v.id, v.name, v.address, v.city,
		ct.id, ct.name, ct.category_id,
		c.id, c.name,
		(SELECT COUNT(*) FROM reservations r WHERE r.time_slot_id = ts.id AND r.status = 'booked')
	FROM time_slots ts
	JOIN venues v ON v.id = ts.venue_id
	JOIN class_types ct ON ct.id = ts.class_type_id
	JOIN categories c ON c.id = ct.category_id`

// List returns slots ordered by start time.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.TimeSlotDetail, error) {
	var (
		where []string
		args  []any
	)
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("ts.start_at >= $%d", len(args)))
	}
	if f.ClassTypeID != nil {
		args = append(args, *f.ClassTypeID)
		where = append(where, fmt.Sprintf("ts.class_type_id = $%d", len(args)))
	}
	if f.VenueID != nil {
		args = append(args, *f.VenueID)
		where = append(where, fmt.Sprintf("ts.venue_id = $%d", len(args)))
	}
	q := detailSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY ts.start_at ASC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	list := []models.TimeSlotDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

// Get returns one slot with details, or ErrEventNotFound.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.TimeSlotDetail, error) {
	d, err := scanDetail(r.pool.QueryRow(ctx, detailSelect+" WHERE ts.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return d, nil
}

// Availability returns the slot's live seat count.
func (r *Repository) Availability(ctx context.Context, id uuid.UUID) (models.SlotAvailability, error) {
	const q = `SELECT ts.capacity,
		(SELECT COUNT(*) FROM reservations r WHERE r.time_slot_id = ts.id AND r.status = 'booked')
		FROM time_slots ts WHERE ts.id = $1`
	var capacity, booked int
	err := r.pool.QueryRow(ctx, q, id).Scan(&capacity, &booked)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SlotAvailability{}, ErrEventNotFound
	}
	if err != nil {
		return models.SlotAvailability{}, fmt.Errorf("get availability: %w", err)
	}
	return models.NewSlotAvailability(id, capacity, booked), nil
}

// Create inserts a slot.
func (r *Repository) Create(ctx context.Context, in CreateEventInput) (*models.TimeSlot, error) {
	s := in.Slot()
	if err := Validate(s); err != nil {
		return nil, err
	}
	q := `INSERT INTO time_slots AS ts (id, title, description, class_type_id, venue_id, start_at, end_at, capacity, price_cents, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + slotColumns
	created, err := scanSlot(r.pool.QueryRow(ctx, q, s.Title, s.Description, s.ClassTypeID, s.VenueID,
		s.StartAt, s.EndAt, s.Capacity, s.PriceCents, s.Status))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// Update applies in to the slot. The slot row is locked while the new
// capacity is checked against the live booked count, so it cannot race a booking.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in UpdateEventInput) (*models.TimeSlot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	s, err := scanSlot(tx.QueryRow(ctx, `SELECT `+slotColumns+` FROM time_slots ts WHERE ts.id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock event: %w", err)
	}
	in.Apply(s)
	if err := Validate(*s); err != nil {
		return nil, err
	}
	if in.Capacity != nil {
		var booked int
		const countQ = `SELECT COUNT(*) FROM reservations WHERE time_slot_id = $1 AND status = 'booked'`
		if err := tx.QueryRow(ctx, countQ, id).Scan(&booked); err != nil {
			return nil, fmt.Errorf("count booked: %w", err)
		}
		if err := CheckCapacity(s.Capacity, booked); err != nil {
			return nil, err
		}
	}

	q := `UPDATE time_slots AS ts SET title = $1, description = $2, class_type_id = $3, venue_id = $4,
		start_at = $5, end_at = $6, capacity = $7, price_cents = $8, status = $9, updated_at = NOW()
		WHERE ts.id = $10
		RETURNING ` + slotColumns
	updated, err := scanSlot(tx.QueryRow(ctx, q, s.Title, s.Description, s.ClassTypeID, s.VenueID,
		s.StartAt, s.EndAt, s.Capacity, s.PriceCents, s.Status, id))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

func scanSlot(row pgx.Row) (*models.TimeSlot, error) {
	var s models.TimeSlot
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.ClassTypeID, &s.VenueID, &s.StartAt, &s.EndAt,
		&s.Capacity, &s.PriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanDetail(row pgx.Row) (*models.TimeSlotDetail, error) {
	var (
		d        models.TimeSlotDetail
		venue    models.Venue
		class    models.ClassType
		category models.Category
		booked   int
	)
	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.ClassTypeID, &d.VenueID, &d.StartAt, &d.EndAt,
		&d.Capacity, &d.PriceCents, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&venue.ID, &venue.Name, &venue.Address, &venue.City,
		&class.ID, &class.Name, &class.CategoryID,
		&category.ID, &category.Name,
		&booked)
	if err != nil {
		return nil, err
	}
	class.Category = &category
	d.Venue = &venue
	d.ClassType = &class
	withCounts(&d, booked)
	return &d, nil
}

func withCounts(d *models.TimeSlotDetail, booked int) {
	a := models.NewSlotAvailability(d.ID, d.Capacity, booked)
	d.BookedCount = &a.BookedCount
	d.SpotsLeft = &a.SpotsLeft
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode
}
