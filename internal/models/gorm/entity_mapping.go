package gorm

import "time"

// EntityMapping links one local catalog entity to its Square counterpart.
// Rows are never deleted by a sync pass; removal requires an explicit unlink.
type EntityMapping struct {
	ID            string `gorm:"column:id;primaryKey;type:uuid"`
	AccountID     string `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_mapping_local,priority:1;uniqueIndex:idx_mapping_remote,priority:1"`
	EntityType    string `gorm:"column:entity_type;type:varchar(20);not null;uniqueIndex:idx_mapping_local,priority:2;uniqueIndex:idx_mapping_remote,priority:2"`
	LocalID       string `gorm:"column:local_id;type:uuid;not null;uniqueIndex:idx_mapping_local,priority:3"`
	RemoteID      string `gorm:"column:remote_id;type:varchar(64);not null;uniqueIndex:idx_mapping_remote,priority:3"`
	SyncDirection string `gorm:"column:sync_direction;type:varchar(30);not null;default:bidirectional"`

	LastSyncedAt         *time.Time `gorm:"column:last_synced_at"`
	LastSyncedFromSquare *time.Time `gorm:"column:last_synced_from_square"`
	LastSyncedToSquare   *time.Time `gorm:"column:last_synced_to_square"`

	SyncMetadata []byte `gorm:"column:sync_metadata;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (EntityMapping) TableName() string {
	return "pos_entity_mappings"
}
