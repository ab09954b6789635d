package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSyncLock implements SyncLock using Redis SETNX. Suitable for
// distributed deployments where multiple instances must agree on which one
// is syncing a site.
type RedisSyncLock struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSyncLock creates a Redis-backed sync lock
func NewRedisSyncLock(cfg RedisConfig) (*RedisSyncLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSyncLock{
		client:    client,
		keyPrefix: "stocksync:lock:",
	}, nil
}

// NewRedisSyncLockWithClient creates a lock with an existing Redis client
func NewRedisSyncLockWithClient(client *redis.Client, keyPrefix string) *RedisSyncLock {
	if keyPrefix == "" {
		keyPrefix = "stocksync:lock:"
	}
	return &RedisSyncLock{client: client, keyPrefix: keyPrefix}
}

// Acquire claims the lock atomically via SETNX with a TTL
func (l *RedisSyncLock) Acquire(ctx context.Context, siteID uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+siteID.String(), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	return ok, nil
}

// Release deletes the lock key
func (l *RedisSyncLock) Release(ctx context.Context, siteID uuid.UUID) error {
	if err := l.client.Del(ctx, l.keyPrefix+siteID.String()).Err(); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisSyncLock) Close() error {
	return l.client.Close()
}

// Ensure RedisSyncLock implements SyncLock
var _ SyncLock = (*RedisSyncLock)(nil)
