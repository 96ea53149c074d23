package service

import (
	"context"

	"blog-server/internal/models"
	"blog-server/internal/token"

	"github.com/google/uuid"
)

// AuthService owns the account and token lifecycle: two-phase
// registration, login, refresh rotation, logout revocation and password
// reset.
type AuthService interface {
	// CreateUser starts a registration: the account data is parked in the
	// pending cache and a verification letter is sent. A repeated call
	// within the verification TTL returns a VerificationPendingError.
	CreateUser(ctx context.Context, name, email, password string) error

	// CompleteRegistration turns a pending registration (addressed by the
	// verified verification token) into a real account and issues the
	// first token pair.
	CompleteRegistration(ctx context.Context, claims *token.Claims) (*models.User, *models.TokenPair, error)

	// Login authenticates by email and password and issues a token pair.
	Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error)

	// Refresh rotates the token pair. The presented refresh token must
	// equal the stored one, each refresh token is usable exactly once.
	Refresh(ctx context.Context, rawRefresh string) (*models.TokenPair, error)

	// Logout revokes the presented access token for at least its
	// remaining lifetime and clears the stored refresh token.
	Logout(ctx context.Context, claims *token.Claims, rawAccess string) error

	// RequestPasswordReset sends a reset letter for an existing account.
	RequestPasswordReset(ctx context.Context, email string) error

	// UpdatePassword sets a new password and invalidates the stored
	// refresh token.
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error

	// ListUsers returns all accounts.
	ListUsers(ctx context.Context) ([]models.User, error)
}
