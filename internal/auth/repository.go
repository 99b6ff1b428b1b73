package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotbook/backend/internal/models"
)

// Repository reads application roles. Identity itself lives with the auth provider.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetRole returns the user's role, or USER when no role row exists.
func (r *Repository) GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	const q = `SELECT role FROM user_roles WHERE user_id = $1`
	var role string
	err := r.pool.QueryRow(ctx, q, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RoleUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("get role: %w", err)
	}
	return models.Role(role), nil
}

// SetRole grants a role to a user.
func (r *Repository) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	const q = `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := r.pool.Exec(ctx, q, userID, string(role))
	return err
}
