package repository

import (
	"context"
	"testing"
	"time"

	"blog-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore_Revoke(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()
	userID := uuid.New()

	revoked, err := store.IsRevoked(ctx, "some-token")
	require.NoError(t, err)
	assert.False(t, revoked, "unknown token should not be revoked")

	require.NoError(t, store.Revoke(ctx, "some-token", userID, time.Minute))

	revoked, err = store.IsRevoked(ctx, "some-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Zero TTL means the token is already expired, nothing is stored.
	require.NoError(t, store.Revoke(ctx, "dead-token", userID, 0))
	revoked, err = store.IsRevoked(ctx, "dead-token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryTokenStore_RevocationExpires(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "short-lived", uuid.New(), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, revoked, "a revocation record should expire with its TTL")
}

func TestMemoryTokenStore_Pending(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()
	email := "user@example.com"

	_, err := store.GetPending(ctx, PendingSignup, email)
	assert.ErrorIs(t, err, models.ErrPendingNotFound)

	_, exists, err := store.PendingTTL(ctx, PendingSignup, email)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.SetPending(ctx, PendingSignup, email, []byte("payload"), time.Minute))

	payload, err := store.GetPending(ctx, PendingSignup, email)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), payload)

	remaining, exists, err := store.PendingTTL(ctx, PendingSignup, email)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Greater(t, remaining, time.Duration(0))

	// Kinds are namespaced, the same email can hold a signup and a reset.
	_, err = store.GetPending(ctx, PendingReset, email)
	assert.ErrorIs(t, err, models.ErrPendingNotFound)

	require.NoError(t, store.DeletePending(ctx, PendingSignup, email))
	_, err = store.GetPending(ctx, PendingSignup, email)
	assert.ErrorIs(t, err, models.ErrPendingNotFound)
}
