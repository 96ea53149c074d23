package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"blog-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisTokenStore implements TokenStore
var _ TokenStore = (*redisTokenStore)(nil)

type redisTokenStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenStore creates a Redis-backed TokenStore.
func NewRedisTokenStore(client *redis.Client, logger *zap.Logger) TokenStore {
	return &redisTokenStore{
		client: client,
		logger: logger.Named("RedisTokenStore"),
	}
}

// hashToken derives the blocklist key from the raw token bytes. The raw
// token itself never ends up in Redis.
func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

func revokedKey(rawToken string) string {
	return fmt.Sprintf("revoked:%s", hashToken(rawToken))
}

func pendingKey(kind, email string) string {
	return fmt.Sprintf("pending:%s:%s", kind, email)
}

// Revoke marks the raw token as revoked for ttl.
func (r *redisTokenStore) Revoke(ctx context.Context, rawToken string, userID uuid.UUID, ttl time.Duration) error {
	if ttl <= 0 {
		r.logger.Debug("Skipping revocation of already expired token", zap.String("userID", userID.String()))
		return nil
	}
	key := revokedKey(rawToken)
	r.logger.Debug("Revoking token", zap.String("key", key), zap.String("userID", userID.String()), zap.Duration("ttl", ttl))
	err := r.client.Set(ctx, key, userID.String(), ttl).Err()
	if err != nil {
		r.logger.Error("Failed to revoke token in redis", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to revoke token in redis: %w", err)
	}
	return nil
}

// IsRevoked reports whether the raw token is on the blocklist.
func (r *redisTokenStore) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	key := revokedKey(rawToken)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check token revocation in redis", zap.Error(err))
		return false, fmt.Errorf("failed to check token revocation in redis: %w", err)
	}
	return n > 0, nil
}

// SetPending stores a pending registration or reset record for ttl.
func (r *redisTokenStore) SetPending(ctx context.Context, kind, email string, payload []byte, ttl time.Duration) error {
	key := pendingKey(kind, email)
	r.logger.Debug("Storing pending record", zap.String("key", key), zap.Duration("ttl", ttl))
	err := r.client.Set(ctx, key, payload, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to store pending record in redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to store pending record in redis: %w", err)
	}
	return nil
}

// GetPending fetches a pending record, models.ErrPendingNotFound when absent.
func (r *redisTokenStore) GetPending(ctx context.Context, kind, email string) ([]byte, error) {
	key := pendingKey(kind, email)
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.logger.Debug("Pending record not found", zap.String("key", key))
			return nil, models.ErrPendingNotFound
		}
		r.logger.Error("Failed to get pending record from redis", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get pending record from redis: %w", err)
	}
	return payload, nil
}

// PendingTTL returns the remaining lifetime of a pending record.
func (r *redisTokenStore) PendingTTL(ctx context.Context, kind, email string) (time.Duration, bool, error) {
	key := pendingKey(kind, email)
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to get pending record TTL from redis", zap.Error(err), zap.String("key", key))
		return 0, false, fmt.Errorf("failed to get pending record ttl from redis: %w", err)
	}
	// Redis reports -2 for a missing key and -1 for a key without expiry.
	// Pending records are always written with a TTL, so both count as absent.
	if ttl < 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

// DeletePending removes a pending record. Deleting a missing record is
// not an error.
func (r *redisTokenStore) DeletePending(ctx context.Context, kind, email string) error {
	key := pendingKey(kind, email)
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete pending record from redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete pending record from redis: %w", err)
	}
	return nil
}
