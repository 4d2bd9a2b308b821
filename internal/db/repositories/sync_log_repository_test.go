package repositories

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"

	"prepflow/possync/internal/constants"
	gormModels "prepflow/possync/internal/models/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gormlib.DB {
	db, err := gormlib.Open(sqlite.Open(":memory:"), &gormlib.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&gormModels.SyncConfiguration{},
		&gormModels.EntityMapping{},
		&gormModels.SyncLogEntry{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func TestSyncLogRepo_ScheduleRetryCAS(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncLogRepo(db)
	ctx := context.Background()

	entry, err := repo.Create(ctx, "acct-1", constants.SyncTypeMenu)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	nextRetry := time.Now().Add(30 * time.Second)

	swapped, err := repo.ScheduleRetry(ctx, entry.ID, 0, nextRetry, "rate limited")
	if err != nil {
		t.Fatalf("ScheduleRetry failed: %v", err)
	}
	if !swapped {
		t.Fatal("First schedule with matching retry_count should succeed")
	}

	// A concurrent tick still holding the old count must lose the swap
	swapped, err = repo.ScheduleRetry(ctx, entry.ID, 0, nextRetry.Add(time.Minute), "rate limited")
	if err != nil {
		t.Fatalf("ScheduleRetry failed: %v", err)
	}
	if swapped {
		t.Fatal("Stale retry_count guard must not match")
	}

	stored, err := repo.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.RetryCount != 1 {
		t.Errorf("Expected retry_count=1 after one swap, got %d", stored.RetryCount)
	}
	if stored.Status != constants.SyncStatusRetrying {
		t.Errorf("Expected retrying status, got %s", stored.Status)
	}
}

func TestSyncLogRepo_DueRetries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncLogRepo(db)
	ctx := context.Background()

	due, _ := repo.Create(ctx, "acct-1", constants.SyncTypeMenu)
	notDue, _ := repo.Create(ctx, "acct-1", constants.SyncTypeStaff)
	running, _ := repo.Create(ctx, "acct-1", constants.SyncTypeSales)

	if _, err := repo.ScheduleRetry(ctx, due.ID, 0, time.Now().Add(-time.Minute), "x"); err != nil {
		t.Fatalf("ScheduleRetry failed: %v", err)
	}
	if _, err := repo.ScheduleRetry(ctx, notDue.ID, 0, time.Now().Add(time.Hour), "x"); err != nil {
		t.Fatalf("ScheduleRetry failed: %v", err)
	}

	entries, err := repo.DueRetries(ctx, time.Now(), 10)
	if err != nil {
		t.Fatalf("DueRetries failed: %v", err)
	}

	if len(entries) != 1 || entries[0].ID != due.ID {
		t.Fatalf("Expected only the elapsed entry, got %+v", entries)
	}
	_ = running
}

func TestSyncLogRepo_CompleteClearsRetryState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncLogRepo(db)
	ctx := context.Background()

	entry, _ := repo.Create(ctx, "acct-1", constants.SyncTypeMenu)
	if _, err := repo.ScheduleRetry(ctx, entry.ID, 0, time.Now().Add(time.Minute), "x"); err != nil {
		t.Fatalf("ScheduleRetry failed: %v", err)
	}

	if err := repo.Complete(ctx, entry.ID, 5, 1, 2); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	stored, _ := repo.GetByID(ctx, entry.ID)
	if stored.Status != constants.SyncStatusCompleted {
		t.Errorf("Expected completed, got %s", stored.Status)
	}
	if stored.NextRetryAt != nil {
		t.Error("Complete must clear next_retry_at")
	}
	if stored.EntitiesSynced != 5 || stored.EntitiesFailed != 1 || stored.Conflicts != 2 {
		t.Errorf("Counters not persisted: %+v", stored)
	}
	if stored.FinishedAt == nil {
		t.Error("Complete must set finished_at")
	}
}
