package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SyncLock enforces at-most-one concurrent sync per site. Two overlapping
// syncs against the same site would race on remote state and double-count
// audit rows, so a caller must hold the lock across the whole
// preview-confirm-execute window.
type SyncLock interface {
	// Acquire claims the lock for a site. Returns false when another sync
	// already holds it.
	Acquire(ctx context.Context, siteID uuid.UUID, ttl time.Duration) (bool, error)
	// Release gives the lock back. Releasing an unheld lock is a no-op.
	Release(ctx context.Context, siteID uuid.UUID) error
}

// lockEntry represents a held lock with expiration
type lockEntry struct {
	expiresAt time.Time
}

// InMemorySyncLock implements SyncLock with a local map. Suitable for
// single-instance deployments and tests; the TTL guards against locks
// leaked by a crashed request.
type InMemorySyncLock struct {
	mu    sync.Mutex
	locks map[uuid.UUID]lockEntry
}

// NewInMemorySyncLock creates an in-memory sync lock
func NewInMemorySyncLock() *InMemorySyncLock {
	return &InMemorySyncLock{locks: make(map[uuid.UUID]lockEntry)}
}

// Acquire claims the lock for a site if it is free or expired
func (l *InMemorySyncLock) Acquire(_ context.Context, siteID uuid.UUID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, held := l.locks[siteID]; held && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	l.locks[siteID] = lockEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release gives the lock back
func (l *InMemorySyncLock) Release(_ context.Context, siteID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, siteID)
	return nil
}

// Ensure InMemorySyncLock implements SyncLock
var _ SyncLock = (*InMemorySyncLock)(nil)
