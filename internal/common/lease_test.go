package common

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalLeaseManager_MutualExclusion(t *testing.T) {
	m := NewLocalLeaseManager()
	ctx := context.Background()

	token, err := m.Acquire(ctx, "acct-1", "menu", time.Minute)
	if err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	if _, err := m.Acquire(ctx, "acct-1", "menu", time.Minute); !errors.Is(err, ErrLeaseHeld) {
		t.Fatalf("Second acquire should fail with ErrLeaseHeld, got %v", err)
	}

	// Different sync type and different account are independent keys
	if _, err := m.Acquire(ctx, "acct-1", "staff", time.Minute); err != nil {
		t.Errorf("Different sync type should not be blocked: %v", err)
	}
	if _, err := m.Acquire(ctx, "acct-2", "menu", time.Minute); err != nil {
		t.Errorf("Different account should not be blocked: %v", err)
	}

	if err := m.Release(ctx, "acct-1", "menu", token); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := m.Acquire(ctx, "acct-1", "menu", time.Minute); err != nil {
		t.Errorf("Acquire after release should succeed: %v", err)
	}
}

func TestLocalLeaseManager_TTLExpiry(t *testing.T) {
	m := NewLocalLeaseManager()
	ctx := context.Background()

	if _, err := m.Acquire(ctx, "acct-1", "menu", 10*time.Millisecond); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	// A crashed holder must not block the key forever
	if _, err := m.Acquire(ctx, "acct-1", "menu", time.Minute); err != nil {
		t.Fatalf("Acquire after TTL expiry should succeed: %v", err)
	}
}

func TestLocalLeaseManager_StaleTokenRelease(t *testing.T) {
	m := NewLocalLeaseManager()
	ctx := context.Background()

	staleToken, err := m.Acquire(ctx, "acct-1", "menu", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	freshToken, err := m.Acquire(ctx, "acct-1", "menu", time.Minute)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// The expired holder releasing late must not free the new holder's lease
	if err := m.Release(ctx, "acct-1", "menu", staleToken); err != nil {
		t.Fatalf("Stale release should be a no-op, got %v", err)
	}
	if _, err := m.Acquire(ctx, "acct-1", "menu", time.Minute); !errors.Is(err, ErrLeaseHeld) {
		t.Fatal("Fresh lease should survive a stale release")
	}

	if err := m.Release(ctx, "acct-1", "menu", freshToken); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}
