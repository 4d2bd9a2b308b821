package common

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLeaseManager implements LeaseManager with SET NX, for deployments
// running more than one sync node against the same database
type RedisLeaseManager struct {
	client *redis.Client
}

// Ensure RedisLeaseManager implements LeaseManager
var _ LeaseManager = (*RedisLeaseManager)(nil)

// NewRedisLeaseManager creates a Redis-backed lease manager
func NewRedisLeaseManager(client *redis.Client) *RedisLeaseManager {
	return &RedisLeaseManager{client: client}
}

func (m *RedisLeaseManager) Acquire(ctx context.Context, accountID string, syncType string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	key := LeaseKey(accountID, syncType)

	ok, err := m.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	if !ok {
		return "", ErrLeaseHeld
	}

	return token, nil
}

// releaseScript deletes the lease only when the caller still owns it, so a
// pass that outlived its TTL cannot free a lease someone else re-acquired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (m *RedisLeaseManager) Release(ctx context.Context, accountID string, syncType string, token string) error {
	key := LeaseKey(accountID, syncType)

	if err := releaseScript.Run(ctx, m.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lease %s: %w", key, err)
	}

	return nil
}
