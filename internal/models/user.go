package models

import (
	"github.com/google/uuid"
)

// Role represents a user's role in the platform.
type Role string

const (
	RoleUser   Role = "USER"
	RoleLector Role = "LECTOR"
	RoleAdmin  Role = "ADMIN"
)

// IsStaff reports whether the role may read other users' reservations.
func (r Role) IsStaff() bool {
	return r == RoleLector || r == RoleAdmin
}

// Identity is the already-authenticated caller of an operation.
// Email is empty when the auth provider did not supply one.
type Identity struct {
	UserID uuid.UUID
	Email  string
}
