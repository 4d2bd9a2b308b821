package repositories

import (
	"context"
	"time"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// SyncLogRepo handles pos_sync_logs operations
type SyncLogRepo struct {
	db *gormlib.DB
}

// NewSyncLogRepo creates a new sync log repository
func NewSyncLogRepo(db *gormlib.DB) *SyncLogRepo {
	return &SyncLogRepo{db: db}
}

// Create opens a log entry in the running state
func (r *SyncLogRepo) Create(ctx context.Context, accountID string, syncType string) (*gorm.SyncLogEntry, error) {
	entry := &gorm.SyncLogEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		SyncType:  syncType,
		Status:    constants.SyncStatusRunning,
		StartedAt: time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

// GetByID returns one log entry, or nil if it does not exist
func (r *SyncLogRepo) GetByID(ctx context.Context, logID string) (*gorm.SyncLogEntry, error) {
	var entry gorm.SyncLogEntry

	err := r.db.WithContext(ctx).Where("id = ?", logID).First(&entry).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}

// Complete finalizes a log entry as completed with its counters
func (r *SyncLogRepo) Complete(ctx context.Context, logID string, synced int, failed int, conflicts int) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&gorm.SyncLogEntry{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":          constants.SyncStatusCompleted,
			"entities_synced": synced,
			"entities_failed": failed,
			"conflicts":       conflicts,
			"next_retry_at":   nil,
			"finished_at":     now,
		}).Error
}

// Fail finalizes a log entry as a permanent error
func (r *SyncLogRepo) Fail(ctx context.Context, logID string, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&gorm.SyncLogEntry{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":        constants.SyncStatusError,
			"error_message": reason,
			"next_retry_at": nil,
			"finished_at":   now,
		}).Error
}

// ScheduleRetry transitions a log entry to retrying with a compare-and-swap
// on retry_count so concurrent scheduler ticks cannot double-increment.
// expectedRetryCount is the count read before the attempt; the stored row
// moves to expectedRetryCount+1. Returns false when the guard did not match.
func (r *SyncLogRepo) ScheduleRetry(ctx context.Context, logID string, expectedRetryCount int, nextRetryAt time.Time, reason string) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE pos_sync_logs
		SET status = ?, retry_count = retry_count + 1, next_retry_at = ?, error_message = ?
		WHERE id = ? AND retry_count = ?`,
		constants.SyncStatusRetrying, nextRetryAt, reason, logID, expectedRetryCount,
	)

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

// MarkRunning flips a retrying entry back to running for a retry attempt
func (r *SyncLogRepo) MarkRunning(ctx context.Context, logID string) error {
	return r.db.WithContext(ctx).
		Model(&gorm.SyncLogEntry{}).
		Where("id = ?", logID).
		Update("status", constants.SyncStatusRunning).Error
}

// DueRetries returns entries in retrying state whose next_retry_at has elapsed
func (r *SyncLogRepo) DueRetries(ctx context.Context, now time.Time, limit int) ([]gorm.SyncLogEntry, error) {
	var entries []gorm.SyncLogEntry

	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", constants.SyncStatusRetrying, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// ListByAccount returns recent log entries for one account
func (r *SyncLogRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]gorm.SyncLogEntry, error) {
	var entries []gorm.SyncLogEntry

	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("started_at DESC").
		Limit(limit).
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}
