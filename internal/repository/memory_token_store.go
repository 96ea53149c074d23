package repository

import (
	"context"
	"sync"
	"time"

	"blog-server/internal/models"

	"github.com/google/uuid"
)

// Compile-time check to ensure memoryTokenStore implements TokenStore
var _ TokenStore = (*memoryTokenStore)(nil)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// memoryTokenStore is a map-backed TokenStore for tests and local
// development. Expired entries are dropped lazily on read.
type memoryTokenStore struct {
	mu      sync.RWMutex
	revoked map[string]memoryEntry
	pending map[string]memoryEntry
}

// NewMemoryTokenStore creates an in-memory TokenStore.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{
		revoked: make(map[string]memoryEntry),
		pending: make(map[string]memoryEntry),
	}
}

func (m *memoryTokenStore) Revoke(_ context.Context, rawToken string, userID uuid.UUID, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[hashToken(rawToken)] = memoryEntry{
		payload:   []byte(userID.String()),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *memoryTokenStore) IsRevoked(_ context.Context, rawToken string) (bool, error) {
	m.mu.RLock()
	entry, ok := m.revoked[hashToken(rawToken)]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.revoked, hashToken(rawToken))
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (m *memoryTokenStore) SetPending(_ context.Context, kind, email string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[pendingKey(kind, email)] = memoryEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *memoryTokenStore) GetPending(_ context.Context, kind, email string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.pending[pendingKey(kind, email)]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, models.ErrPendingNotFound
	}
	return entry.payload, nil
}

func (m *memoryTokenStore) PendingTTL(_ context.Context, kind, email string) (time.Duration, bool, error) {
	m.mu.RLock()
	entry, ok := m.pending[pendingKey(kind, email)]
	m.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	remaining := time.Until(entry.expiresAt)
	if remaining <= 0 {
		return 0, false, nil
	}
	return remaining, true, nil
}

func (m *memoryTokenStore) DeletePending(_ context.Context, kind, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, pendingKey(kind, email))
	return nil
}
