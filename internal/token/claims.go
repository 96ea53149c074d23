package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types issued by the service. Each type unlocks a different set of
// operations, see the authorization middleware.
const (
	TypeAccess       = "access"
	TypeRefresh      = "refresh"
	TypeVerification = "verification"
	TypeReset        = "reset"
)

// Claims is the payload carried by every token the service issues.
// The fields are fixed and decoded individually, a token of one type is
// never usable where another type is required.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// newClaims builds a claims set with a fresh jti.
func newClaims(tokenType string, userID uuid.UUID, email string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
}

// NewAccessClaims builds claims for a general-purpose access token.
func NewAccessClaims(userID uuid.UUID, email string, ttl time.Duration) *Claims {
	return newClaims(TypeAccess, userID, email, ttl)
}

// NewRefreshClaims builds claims for a refresh token.
func NewRefreshClaims(userID uuid.UUID, email string, ttl time.Duration) *Claims {
	return newClaims(TypeRefresh, userID, email, ttl)
}

// NewVerificationClaims builds claims for a registration verification token.
func NewVerificationClaims(userID uuid.UUID, email string, ttl time.Duration) *Claims {
	return newClaims(TypeVerification, userID, email, ttl)
}

// NewResetClaims builds claims for a password reset token.
func NewResetClaims(userID uuid.UUID, email string, ttl time.Duration) *Claims {
	return newClaims(TypeReset, userID, email, ttl)
}

// Remaining returns the time left until the token expires. Zero or
// negative means the token is already expired.
func (c *Claims) Remaining() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return time.Until(c.ExpiresAt.Time)
}
