package repository

import (
	"context"
	"time"

	"blog-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts a pgx pool or transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pending record kinds stored in the cache alongside the blocklist.
const (
	PendingSignup = "signup"
	PendingReset  = "reset"
)

// TokenBlocklist records revoked tokens until their natural expiry.
// Store errors always propagate so callers can fail closed.
type TokenBlocklist interface {
	// Revoke marks the raw token as revoked for ttl. Revoking an
	// already revoked token is a no-op.
	Revoke(ctx context.Context, rawToken string, userID uuid.UUID, ttl time.Duration) error
	// IsRevoked reports whether the raw token has been revoked.
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// PendingStore keeps short-lived registration and reset records keyed
// by email.
type PendingStore interface {
	SetPending(ctx context.Context, kind, email string, payload []byte, ttl time.Duration) error
	// GetPending returns models.ErrPendingNotFound when no record exists.
	GetPending(ctx context.Context, kind, email string) ([]byte, error)
	// PendingTTL returns the remaining lifetime of a pending record and
	// whether it exists at all.
	PendingTTL(ctx context.Context, kind, email string) (time.Duration, bool, error)
	DeletePending(ctx context.Context, kind, email string) error
}

// TokenStore combines the revocation blocklist with the pending cache,
// both live in the same backend.
type TokenStore interface {
	TokenBlocklist
	PendingStore
}

// UserRepository is the persistence surface for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateRefreshToken stores the currently valid refresh token for the
	// user, nil clears it.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, refreshToken *string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// BlogRepository is the persistence surface for topics and posts.
type BlogRepository interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error)
	ListTopics(ctx context.Context) ([]models.Topic, error)
	UpdateTopic(ctx context.Context, topic *models.Topic) error
	DeleteTopic(ctx context.Context, id uuid.UUID) error

	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListPosts(ctx context.Context, topicID *uuid.UUID) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
}
