package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/db/repositories"
	"prepflow/possync/internal/sync"
)

// maxConcurrentAccounts bounds how many accounts one scheduled run syncs at
// the same time
const maxConcurrentAccounts = 4

// FullSyncJob runs a scheduled full sync for every connected account
type FullSyncJob struct {
	configRepo   *repositories.SyncConfigRepo
	orchestrator *sync.Orchestrator
}

// NewFullSyncJob creates a new full sync job instance
func NewFullSyncJob(configRepo *repositories.SyncConfigRepo, orchestrator *sync.Orchestrator) *FullSyncJob {
	return &FullSyncJob{
		configRepo:   configRepo,
		orchestrator: orchestrator,
	}
}

// Run executes a full sync for all connected accounts
func (j *FullSyncJob) Run(ctx context.Context) error {
	start := time.Now()
	log.Printf("[FullSyncJob] Starting scheduled full sync at %s", start.Format(time.RFC3339))

	accountIDs, err := j.configRepo.ConnectedAccountIDs(ctx)
	if err != nil {
		log.Printf("[FullSyncJob] Error fetching connected accounts: %v", err)
		return fmt.Errorf("failed to fetch connected accounts: %w", err)
	}

	if len(accountIDs) == 0 {
		log.Printf("[FullSyncJob] No connected accounts found")
		return nil
	}

	log.Printf("[FullSyncJob] Found %d connected accounts", len(accountIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAccounts)

	var synced, skipped, failed atomic.Int32

	for _, accountID := range accountIDs {
		accountID := accountID
		g.Go(func() error {
			result, err := j.orchestrator.RunSync(gctx, accountID, constants.SyncTypeFull)
			switch {
			case err == nil:
				log.Printf("[FullSyncJob] Account %s: synced %d entities, %d conflicts",
					accountID, result.EntitiesSynced, result.Conflicts)
				synced.Add(1)
			case errors.Is(err, sync.ErrSyncInProgress):
				// A manual trigger beat us to the lease
				log.Printf("[FullSyncJob] Account %s: sync already in progress, skipping", accountID)
				skipped.Add(1)
			default:
				// One failing account must not abort the other goroutines
				log.Printf("[FullSyncJob] Account %s: sync failed: %v", accountID, err)
				failed.Add(1)
			}
			return nil
		})
	}

	_ = g.Wait()

	log.Printf("[FullSyncJob] Completed in %s. Synced: %d, Skipped: %d, Failed: %d",
		time.Since(start).Truncate(time.Millisecond), synced.Load(), skipped.Load(), failed.Load())

	return nil
}

// RunScheduled runs the full sync job on a schedule
func (j *FullSyncJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[FullSyncJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[FullSyncJob] Shutting down scheduled sync")
			return
		}
	}
}
