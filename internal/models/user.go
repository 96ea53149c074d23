package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account stored in the users table.
// PasswordHash and RefreshToken never leave the service through JSON.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"is_superuser"`
	RefreshToken *string   `json:"-"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
}
