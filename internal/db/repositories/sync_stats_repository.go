package repositories

import (
	"context"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/models/dtos"

	"github.com/jmoiron/sqlx"
)

// SyncStatsRepo serves aggregate reporting queries over the sync tables.
// Runs on sqlx because the aggregates are plain SQL, not entity access.
type SyncStatsRepo struct {
	db *sqlx.DB
}

func NewSyncStatsRepo(db *sqlx.DB) *SyncStatsRepo {
	return &SyncStatsRepo{db: db}
}

// GetAccountStats aggregates pos_sync_logs counters for one account
func (r *SyncStatsRepo) GetAccountStats(ctx context.Context, accountID string) (*dtos.SyncStats, error) {
	var stats dtos.SyncStats

	if err := r.db.GetContext(ctx, &stats, constants.GetSyncStats, accountID); err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetStaleMappingCount counts mappings whose remote side has disappeared
func (r *SyncStatsRepo) GetStaleMappingCount(ctx context.Context, accountID string) (int, error) {
	var count int

	if err := r.db.GetContext(ctx, &count, constants.GetStaleMappingCount, accountID); err != nil {
		return 0, err
	}

	return count, nil
}
