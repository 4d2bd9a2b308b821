package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"prepflow/possync/internal/db/repositories"
	"prepflow/possync/internal/sync"
)

const retryBatchSize = 20

// RetryScheduler polls pos_sync_logs for retrying entries whose backoff has
// elapsed and re-runs them through the orchestrator
type RetryScheduler struct {
	logRepo      *repositories.SyncLogRepo
	orchestrator *sync.Orchestrator
}

// NewRetryScheduler creates a new retry scheduler instance
func NewRetryScheduler(logRepo *repositories.SyncLogRepo, orchestrator *sync.Orchestrator) *RetryScheduler {
	return &RetryScheduler{
		logRepo:      logRepo,
		orchestrator: orchestrator,
	}
}

// Run executes one scheduler tick
func (j *RetryScheduler) Run(ctx context.Context) error {
	entries, err := j.logRepo.DueRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Printf("[RetryScheduler] Error fetching due retries: %v", err)
		return fmt.Errorf("failed to fetch due retries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	log.Printf("[RetryScheduler] Found %d due retries", len(entries))

	for i := range entries {
		entry := &entries[i]

		err := j.orchestrator.RetrySync(ctx, entry)
		switch {
		case err == nil:
			log.Printf("[RetryScheduler] Retry %d succeeded for %s sync (log %s)",
				entry.RetryCount, entry.SyncType, entry.ID)
		case errors.Is(err, sync.ErrSyncInProgress):
			// Another pass holds the lease; the entry stays due and the next
			// tick picks it up again
			log.Printf("[RetryScheduler] Skipping log %s, a pass is already running", entry.ID)
		default:
			log.Printf("[RetryScheduler] Retry failed for log %s: %v", entry.ID, err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return nil
}

// RunScheduled runs the retry scheduler on a fixed interval
func (j *RetryScheduler) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[RetryScheduler] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[RetryScheduler] Shutting down")
			return
		}
	}
}
