package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerProfile caches a user's contact info for admin display. Not authoritative identity.
type CustomerProfile struct {
	UserID    uuid.UUID `json:"userId"`
	Email     *string   `json:"email"`
	FullName  *string   `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
