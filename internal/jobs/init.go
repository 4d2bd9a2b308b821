package jobs

import (
	"context"
	"time"

	"prepflow/possync/internal/db/repositories"
	"prepflow/possync/internal/sync"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	configRepo *repositories.SyncConfigRepo,
	logRepo *repositories.SyncLogRepo,
	orchestrator *sync.Orchestrator,
) (*FullSyncJob, *RetryScheduler) {
	// Scheduled full sync for every connected account, hourly
	fullSyncJob := NewFullSyncJob(configRepo, orchestrator)
	go fullSyncJob.RunScheduled(ctx, 1*time.Hour)

	// Retry scheduler polls for due backoff retries
	retryScheduler := NewRetryScheduler(logRepo, orchestrator)
	go retryScheduler.RunScheduled(ctx, 15*time.Second)

	return fullSyncJob, retryScheduler
}
