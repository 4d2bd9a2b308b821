package gorm

import "time"

// SyncConfiguration holds the Square connection state for one account
type SyncConfiguration struct {
	ID               string `gorm:"column:id;primaryKey;type:uuid"`
	AccountID        string `gorm:"column:account_id;type:uuid;not null;uniqueIndex"`
	ConnectionStatus string `gorm:"column:connection_status;type:varchar(20);not null;default:disconnected"`
	AccessToken      string `gorm:"column:access_token;type:text"`

	InitialSyncStatus      string     `gorm:"column:initial_sync_status;type:varchar(20);not null;default:pending"`
	InitialSyncStartedAt   *time.Time `gorm:"column:initial_sync_started_at"`
	InitialSyncCompletedAt *time.Time `gorm:"column:initial_sync_completed_at"`
	InitialSyncError       *string    `gorm:"column:initial_sync_error;type:text"`

	LastFullSyncAt  *time.Time `gorm:"column:last_full_sync_at"`
	LastMenuSyncAt  *time.Time `gorm:"column:last_menu_sync_at"`
	LastStaffSyncAt *time.Time `gorm:"column:last_staff_sync_at"`
	LastSalesSyncAt *time.Time `gorm:"column:last_sales_sync_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SyncConfiguration) TableName() string {
	return "pos_sync_configurations"
}
