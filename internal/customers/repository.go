package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotbook/backend/internal/models"
)

// ErrProfileNotFound is returned when a user has no customer profile.
var ErrProfileNotFound = errors.New("customer profile not found")

// Repository persists customer profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a customer profile repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert records the user's latest email. The full name is kept.
func (r *Repository) Upsert(ctx context.Context, userID uuid.UUID, email string) error {
	const q = `INSERT INTO customer_profiles (user_id, email) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
		WHERE customer_profiles.email IS DISTINCT FROM EXCLUDED.email`
	if _, err := r.pool.Exec(ctx, q, userID, email); err != nil {
		return fmt.Errorf("upsert customer profile: %w", err)
	}
	return nil
}

// Get returns a user's profile.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error) {
	const q = `SELECT user_id, email, full_name, created_at, updated_at FROM customer_profiles WHERE user_id = $1`
	var p models.CustomerProfile
	err := r.pool.QueryRow(ctx, q, userID).Scan(&p.UserID, &p.Email, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer profile: %w", err)
	}
	return &p, nil
}

// Backfill creates empty profiles for users who have reservations but no
// profile yet. It returns the number of profiles created.
func (r *Repository) Backfill(ctx context.Context) (int, error) {
	const q = `INSERT INTO customer_profiles (user_id)
		SELECT DISTINCT r.user_id FROM reservations r
		LEFT JOIN customer_profiles cp ON cp.user_id = r.user_id
		WHERE cp.user_id IS NULL
		ON CONFLICT (user_id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("backfill customer profiles: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
