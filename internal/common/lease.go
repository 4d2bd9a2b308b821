package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrLeaseHeld is returned when another pass already holds the lease for a
// given (account, sync type) key.
var ErrLeaseHeld = fmt.Errorf("sync lease already held")

// LeaseManager grants the exclusive right to run one sync pass per
// (account_id, sync_type). TTL bounds how long a crashed pass can block the
// key.
type LeaseManager interface {
	// Acquire takes the lease and returns a release token
	Acquire(ctx context.Context, accountID string, syncType string, ttl time.Duration) (string, error)

	// Release frees the lease if the token still owns it
	Release(ctx context.Context, accountID string, syncType string, token string) error
}

// LeaseKey builds the shared lease key for one account and sync type
func LeaseKey(accountID string, syncType string) string {
	return fmt.Sprintf("sync_lease:%s:%s", accountID, syncType)
}

// LocalLeaseManager is the in-process implementation, used for single-node
// deployments and tests
type LocalLeaseManager struct {
	mu     sync.Mutex
	leases map[string]localLease
}

type localLease struct {
	token     string
	expiresAt time.Time
}

// Ensure LocalLeaseManager implements LeaseManager
var _ LeaseManager = (*LocalLeaseManager)(nil)

// NewLocalLeaseManager creates a new in-process lease manager
func NewLocalLeaseManager() *LocalLeaseManager {
	return &LocalLeaseManager{
		leases: make(map[string]localLease),
	}
}

func (m *LocalLeaseManager) Acquire(ctx context.Context, accountID string, syncType string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := LeaseKey(accountID, syncType)
	now := time.Now()

	if lease, exists := m.leases[key]; exists && lease.expiresAt.After(now) {
		return "", ErrLeaseHeld
	}

	token := uuid.NewString()
	m.leases[key] = localLease{
		token:     token,
		expiresAt: now.Add(ttl),
	}

	return token, nil
}

func (m *LocalLeaseManager) Release(ctx context.Context, accountID string, syncType string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := LeaseKey(accountID, syncType)

	lease, exists := m.leases[key]
	if !exists {
		return nil
	}
	if lease.token != token {
		// Someone else acquired after our TTL expired; leave theirs alone
		return nil
	}

	delete(m.leases, key)
	return nil
}
