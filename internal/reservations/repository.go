package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotbook/backend/internal/models"
)

// ListFilter narrows List. Zero fields are ignored.
type ListFilter struct {
	TimeSlotID *uuid.UUID
	UserID     *uuid.UUID
	Status     models.ReservationStatus
}

// Repository serves read-only reservation queries with customer and slot details.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reservations query repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const detailSelect = `SELECT r.id, r.user_id, r.time_slot_id, r.status, r.created_at, r.updated_at,
		cp.email, cp.full_name,
		ts.id, ts.title, ts.description, ts.class_type_id, ts.venue_id, ts.start_at, ts.end_at,
		ts.capacity, ts.price_cents, ts.status, ts.created_at, ts.updated_at,
		v.id, v.name, v.address, v.city,
		ct.id, ct.name, ct.category_id,
		c.id, c.name
	FROM reservations r
	JOIN time_slots ts ON ts.id = r.time_slot_id
	JOIN venues v ON v.id = ts.venue_id
	JOIN class_types ct ON ct.id = ts.class_type_id
	JOIN categories c ON c.id = ct.category_id
	LEFT JOIN customer_profiles cp ON cp.user_id = r.user_id`

// List returns reservations matching f, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.ReservationDetail, error) {
	var (
		where []string
		args  []any
	)
	if f.TimeSlotID != nil {
		args = append(args, *f.TimeSlotID)
		where = append(where, fmt.Sprintf("r.time_slot_id = $%d", len(args)))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("r.status = $%d", len(args)))
	}
	q := detailSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY r.created_at DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	list := []models.ReservationDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

// ListBySlot returns every reservation of a slot, newest first.
func (r *Repository) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]models.ReservationDetail, error) {
	return r.List(ctx, ListFilter{TimeSlotID: &slotID})
}

// ListByUser returns the user's reservations, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ReservationDetail, error) {
	return r.List(ctx, ListFilter{UserID: &userID})
}

// GetDetail returns one reservation or ErrReservationNotFound.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.ReservationDetail, error) {
	d, err := scanDetail(r.pool.QueryRow(ctx, detailSelect+" WHERE r.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return d, nil
}

func scanDetail(row pgx.Row) (*models.ReservationDetail, error) {
	var (
		d        models.ReservationDetail
		status   string
		cust     models.ReservationCustomer
		slot     models.TimeSlotDetail
		venue    models.Venue
		class    models.ClassType
		category models.Category
	)
	err := row.Scan(
		&d.ID, &d.UserID, &d.TimeSlotID, &status, &d.CreatedAt, &d.UpdatedAt,
		&cust.Email, &cust.FullName,
		&slot.ID, &slot.Title, &slot.Description, &slot.ClassTypeID, &slot.VenueID, &slot.StartAt, &slot.EndAt,
		&slot.Capacity, &slot.PriceCents, &slot.Status, &slot.CreatedAt, &slot.UpdatedAt,
		&venue.ID, &venue.Name, &venue.Address, &venue.City,
		&class.ID, &class.Name, &class.CategoryID,
		&category.ID, &category.Name,
	)
	if err != nil {
		return nil, err
	}
	d.Status = models.ReservationStatus(status)
	cust.UserID = d.UserID
	class.Category = &category
	slot.Venue = &venue
	slot.ClassType = &class
	d.Customer = &cust
	d.TimeSlot = &slot
	return &d, nil
}
