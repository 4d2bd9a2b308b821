package repositories

import (
	"context"
	"fmt"
	"time"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// SyncConfigRepo handles pos_sync_configurations operations
type SyncConfigRepo struct {
	db *gormlib.DB
}

// NewSyncConfigRepo creates a new sync configuration repository
func NewSyncConfigRepo(db *gormlib.DB) *SyncConfigRepo {
	return &SyncConfigRepo{db: db}
}

// GetByAccount returns the configuration for an account, or nil if none exists
func (r *SyncConfigRepo) GetByAccount(ctx context.Context, accountID string) (*gorm.SyncConfiguration, error) {
	var cfg gorm.SyncConfiguration

	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&cfg).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &cfg, nil
}

// Connect creates or reactivates the configuration for an account
func (r *SyncConfigRepo) Connect(ctx context.Context, accountID string, accessToken string) (*gorm.SyncConfiguration, error) {
	cfg := gorm.SyncConfiguration{
		ID:                uuid.NewString(),
		AccountID:         accountID,
		ConnectionStatus:  constants.ConnectionStatusConnected,
		AccessToken:       accessToken,
		InitialSyncStatus: constants.InitialSyncPending,
	}

	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Assign(gorm.SyncConfiguration{
			ConnectionStatus: constants.ConnectionStatusConnected,
			AccessToken:      accessToken,
		}).
		FirstOrCreate(&cfg).Error

	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Disconnect deletes the configuration and cascades mapping deletion for the
// account. Mappings must not survive a disconnect or a later reconnect would
// trust stale remote IDs.
func (r *SyncConfigRepo) Disconnect(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&gorm.EntityMapping{}).Error; err != nil {
			return fmt.Errorf("failed to delete mappings: %w", err)
		}
		if err := tx.Where("account_id = ?", accountID).Delete(&gorm.SyncConfiguration{}).Error; err != nil {
			return fmt.Errorf("failed to delete configuration: %w", err)
		}
		return nil
	})
}

// RecordSync updates the last-sync timestamp for one sync type
func (r *SyncConfigRepo) RecordSync(ctx context.Context, accountID string, syncType string, at time.Time) error {
	column, err := lastSyncColumn(syncType)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&gorm.SyncConfiguration{}).
		Where("account_id = ?", accountID).
		Update(column, at).Error
}

// SetConnectionStatus updates the connection status for an account
func (r *SyncConfigRepo) SetConnectionStatus(ctx context.Context, accountID string, status string) error {
	return r.db.WithContext(ctx).
		Model(&gorm.SyncConfiguration{}).
		Where("account_id = ?", accountID).
		Update("connection_status", status).Error
}

// MarkInitialSyncStarted transitions the initial sync to in_progress
func (r *SyncConfigRepo) MarkInitialSyncStarted(ctx context.Context, accountID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&gorm.SyncConfiguration{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"initial_sync_status":     constants.InitialSyncInProgress,
			"initial_sync_started_at": now,
			"initial_sync_error":      nil,
		}).Error
}

// MarkInitialSyncCompleted finalizes a successful initial sync.
// completed implies completed_at set and error null.
func (r *SyncConfigRepo) MarkInitialSyncCompleted(ctx context.Context, accountID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&gorm.SyncConfiguration{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"initial_sync_status":       constants.InitialSyncCompleted,
			"initial_sync_completed_at": now,
			"initial_sync_error":        nil,
		}).Error
}

// MarkInitialSyncFailed records an initial sync failure
func (r *SyncConfigRepo) MarkInitialSyncFailed(ctx context.Context, accountID string, reason string) error {
	return r.db.WithContext(ctx).
		Model(&gorm.SyncConfiguration{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"initial_sync_status": constants.InitialSyncFailed,
			"initial_sync_error":  reason,
		}).Error
}

// ConnectedAccountIDs lists accounts eligible for scheduled syncs
func (r *SyncConfigRepo) ConnectedAccountIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&gorm.SyncConfiguration{}).
		Where("connection_status = ?", constants.ConnectionStatusConnected).
		Pluck("account_id", &ids).Error
	return ids, err
}

func lastSyncColumn(syncType string) (string, error) {
	switch syncType {
	case constants.SyncTypeFull:
		return "last_full_sync_at", nil
	case constants.SyncTypeMenu:
		return "last_menu_sync_at", nil
	case constants.SyncTypeStaff:
		return "last_staff_sync_at", nil
	case constants.SyncTypeSales:
		return "last_sales_sync_at", nil
	}
	return "", fmt.Errorf("unknown sync type: %s", syncType)
}

// ConfigTokenSource resolves Square access tokens from stored configurations
type ConfigTokenSource struct {
	repo *SyncConfigRepo
}

// NewConfigTokenSource creates a token source backed by the config store
func NewConfigTokenSource(repo *SyncConfigRepo) *ConfigTokenSource {
	return &ConfigTokenSource{repo: repo}
}

func (s *ConfigTokenSource) AccessToken(ctx context.Context, accountID string) (string, error) {
	cfg, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	if cfg == nil || cfg.AccessToken == "" {
		return "", fmt.Errorf("no access token stored for account %s", accountID)
	}
	return cfg.AccessToken, nil
}
