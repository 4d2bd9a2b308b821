package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prepflow/possync/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// SyncMetadata is the parsed form of pos_entity_mappings.sync_metadata
type SyncMetadata struct {
	ConflictResolved  *bool      `json:"conflict_resolved,omitempty"`
	Resolution        string     `json:"resolution,omitempty"` // manual | square | prepflow
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	ConflictFlaggedAt *time.Time `json:"conflict_flagged_at,omitempty"`
	Stale             bool       `json:"stale,omitempty"`
}

// ParseSyncMetadata decodes the raw JSONB metadata column
func ParseSyncMetadata(raw []byte) (*SyncMetadata, error) {
	meta := &SyncMetadata{}
	if len(raw) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("failed to parse sync metadata: %w", err)
	}
	return meta, nil
}

// MarshalSyncMetadata encodes metadata for storage
func MarshalSyncMetadata(meta *SyncMetadata) ([]byte, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sync metadata: %w", err)
	}
	return data, nil
}

// EntityMappingRepo handles pos_entity_mappings operations
type EntityMappingRepo struct {
	db *gormlib.DB
}

// NewEntityMappingRepo creates a new entity mapping repository
func NewEntityMappingRepo(db *gormlib.DB) *EntityMappingRepo {
	return &EntityMappingRepo{db: db}
}

// ListByType returns all mappings for one account and entity type
func (r *EntityMappingRepo) ListByType(ctx context.Context, accountID string, entityType string) ([]gorm.EntityMapping, error) {
	var mappings []gorm.EntityMapping

	err := r.db.WithContext(ctx).
		Where("account_id = ? AND entity_type = ?", accountID, entityType).
		Find(&mappings).Error

	if err != nil {
		return nil, err
	}

	return mappings, nil
}

// GetByID returns one mapping, or nil if it does not exist
func (r *EntityMappingRepo) GetByID(ctx context.Context, mappingID string) (*gorm.EntityMapping, error) {
	var mapping gorm.EntityMapping

	err := r.db.WithContext(ctx).
		Where("id = ?", mappingID).
		First(&mapping).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &mapping, nil
}

// CreateTx inserts a mapping inside an open transaction
func (r *EntityMappingRepo) CreateTx(ctx context.Context, tx *gormlib.DB, mapping *gorm.EntityMapping) error {
	if mapping.ID == "" {
		mapping.ID = uuid.NewString()
	}
	return tx.WithContext(ctx).Create(mapping).Error
}

// UpdateTx persists mapping changes inside an open transaction
func (r *EntityMappingRepo) UpdateTx(ctx context.Context, tx *gormlib.DB, mapping *gorm.EntityMapping) error {
	return tx.WithContext(ctx).Save(mapping).Error
}

// SetDirection rewrites the sync direction of one mapping
func (r *EntityMappingRepo) SetDirection(ctx context.Context, mappingID string, direction string) error {
	return r.db.WithContext(ctx).
		Model(&gorm.EntityMapping{}).
		Where("id = ?", mappingID).
		Update("sync_direction", direction).Error
}

// SetMetadata rewrites the metadata blob of one mapping
func (r *EntityMappingRepo) SetMetadata(ctx context.Context, mappingID string, meta *SyncMetadata) error {
	raw, err := MarshalSyncMetadata(meta)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&gorm.EntityMapping{}).
		Where("id = ?", mappingID).
		Update("sync_metadata", raw).Error
}

// Unlink removes a mapping. This is the only sanctioned delete path; sync
// passes themselves never remove rows.
func (r *EntityMappingRepo) Unlink(ctx context.Context, accountID string, mappingID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", mappingID, accountID).
		Delete(&gorm.EntityMapping{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mapping %s not found", mappingID)
	}
	return nil
}

// ListUnresolvedConflicts returns mappings flagged conflict_resolved=false
func (r *EntityMappingRepo) ListUnresolvedConflicts(ctx context.Context, accountID string) ([]gorm.EntityMapping, error) {
	var mappings []gorm.EntityMapping

	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Find(&mappings).Error

	if err != nil {
		return nil, err
	}

	// JSONB filtering differs between Postgres and the sqlite test driver,
	// so conflicts are filtered after the scan.
	conflicts := make([]gorm.EntityMapping, 0)
	for _, m := range mappings {
		meta, err := ParseSyncMetadata(m.SyncMetadata)
		if err != nil {
			continue
		}
		if meta.ConflictResolved != nil && !*meta.ConflictResolved {
			conflicts = append(conflicts, m)
		}
	}

	return conflicts, nil
}
