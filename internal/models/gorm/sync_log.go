package gorm

import "time"

// SyncLogEntry records one sync attempt. Retry failures mutate retry_count
// and next_retry_at in place so a single attempt keeps one row of history.
type SyncLogEntry struct {
	ID        string `gorm:"column:id;primaryKey;type:uuid"`
	AccountID string `gorm:"column:account_id;type:uuid;not null;index"`
	SyncType  string `gorm:"column:sync_type;type:varchar(20);not null"`
	Status    string `gorm:"column:status;type:varchar(20);not null;default:running;index"`

	RetryCount  int        `gorm:"column:retry_count;not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at;index"`

	EntitiesSynced int     `gorm:"column:entities_synced;not null;default:0"`
	EntitiesFailed int     `gorm:"column:entities_failed;not null;default:0"`
	Conflicts      int     `gorm:"column:conflicts;not null;default:0"`
	ErrorMessage   *string `gorm:"column:error_message;type:text"`

	StartedAt  time.Time  `gorm:"column:started_at;autoCreateTime"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

// TableName specifies the table name for GORM
func (SyncLogEntry) TableName() string {
	return "pos_sync_logs"
}
