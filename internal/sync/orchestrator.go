package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	gormlib "gorm.io/gorm"

	"prepflow/possync/internal/common"
	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/db/repositories"
	"prepflow/possync/internal/logging"
	"prepflow/possync/internal/metrics"
	"prepflow/possync/internal/models/gorm"
	"prepflow/possync/internal/providers"
)

const (
	leaseTTL       = 15 * time.Minute
	remotePageSize = 100
)

// StatusCacheKey names the cache slot holding an account's sync status
// response. The orchestrator invalidates it after every state change.
func StatusCacheKey(accountID string) string {
	return "sync_status:" + accountID
}

// SyncResult summarizes one sync pass
type SyncResult struct {
	SyncType       string
	Status         string // completed | partial
	EntitiesSynced int
	EntitiesFailed int
	Conflicts      int
	Duration       time.Duration
}

// Orchestrator executes sync passes for (account, sync type) pairs. One pass
// per key runs at a time, enforced through the lease manager.
type Orchestrator struct {
	db          *gormlib.DB
	remote      providers.RemoteClient
	configRepo  *repositories.SyncConfigRepo
	mappingRepo *repositories.EntityMappingRepo
	logRepo     *repositories.SyncLogRepo
	catalogRepo *repositories.CatalogRepo
	leases      common.LeaseManager
	cache       common.CacheInterface
	metrics     *metrics.MetricsRegistry

	runningMu sync.Mutex
	running   map[string]context.CancelFunc
}

// NewOrchestrator creates a new sync orchestrator
func NewOrchestrator(
	db *gormlib.DB,
	remote providers.RemoteClient,
	configRepo *repositories.SyncConfigRepo,
	mappingRepo *repositories.EntityMappingRepo,
	logRepo *repositories.SyncLogRepo,
	catalogRepo *repositories.CatalogRepo,
	leases common.LeaseManager,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) *Orchestrator {
	return &Orchestrator{
		db:          db,
		remote:      remote,
		configRepo:  configRepo,
		mappingRepo: mappingRepo,
		logRepo:     logRepo,
		catalogRepo: catalogRepo,
		leases:      leases,
		cache:       cache,
		metrics:     metricsReg,
		running:     make(map[string]context.CancelFunc),
	}
}

// RunSync executes one sync pass for (accountID, syncType)
func (o *Orchestrator) RunSync(ctx context.Context, accountID string, syncType string) (*SyncResult, error) {
	if !constants.IsValidSyncType(syncType) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSyncType, syncType)
	}

	token, err := o.leases.Acquire(ctx, accountID, syncType, leaseTTL)
	if err != nil {
		if errors.Is(err, common.ErrLeaseHeld) {
			return nil, ErrSyncInProgress
		}
		return nil, fmt.Errorf("failed to acquire sync lease: %w", err)
	}
	defer func() {
		if err := o.leases.Release(context.Background(), accountID, syncType, token); err != nil {
			log.Printf("[SyncOrchestrator] Warning: failed to release lease for %s/%s: %v", accountID, syncType, err)
		}
	}()

	cfg, err := o.configRepo.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync configuration: %w", err)
	}
	if cfg == nil || cfg.ConnectionStatus != constants.ConnectionStatusConnected {
		return nil, ErrNotConnected
	}

	initialSync := syncType == constants.SyncTypeFull &&
		(cfg.InitialSyncStatus == constants.InitialSyncPending || cfg.InitialSyncStatus == constants.InitialSyncFailed)
	if initialSync {
		if err := o.configRepo.MarkInitialSyncStarted(ctx, accountID); err != nil {
			return nil, fmt.Errorf("failed to mark initial sync started: %w", err)
		}
	}

	entry, err := o.logRepo.Create(ctx, accountID, syncType)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync log entry: %w", err)
	}

	result, passErr := o.executePass(ctx, accountID, syncType, cfg, entry)

	if passErr != nil {
		o.finalizeFailure(accountID, syncType, entry, passErr, initialSync)
		return nil, passErr
	}

	o.finalizeSuccess(ctx, accountID, syncType, entry, result, initialSync)
	return result, nil
}

// RetrySync re-runs a pass for an existing log entry, mutating its retry
// state in place rather than opening a new row
func (o *Orchestrator) RetrySync(ctx context.Context, entry *gorm.SyncLogEntry) error {
	token, err := o.leases.Acquire(ctx, entry.AccountID, entry.SyncType, leaseTTL)
	if err != nil {
		if errors.Is(err, common.ErrLeaseHeld) {
			return ErrSyncInProgress
		}
		return fmt.Errorf("failed to acquire sync lease: %w", err)
	}
	defer func() {
		if err := o.leases.Release(context.Background(), entry.AccountID, entry.SyncType, token); err != nil {
			log.Printf("[SyncOrchestrator] Warning: failed to release lease for %s/%s: %v", entry.AccountID, entry.SyncType, err)
		}
	}()

	cfg, err := o.configRepo.GetByAccount(ctx, entry.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load sync configuration: %w", err)
	}
	if cfg == nil || cfg.ConnectionStatus != constants.ConnectionStatusConnected {
		// The account disconnected while the entry waited; retrying cannot
		// succeed anymore
		_ = o.logRepo.Fail(context.Background(), entry.ID, ErrNotConnected.Error())
		return ErrNotConnected
	}

	if err := o.logRepo.MarkRunning(ctx, entry.ID); err != nil {
		return fmt.Errorf("failed to mark log entry running: %w", err)
	}

	result, passErr := o.executePass(ctx, entry.AccountID, entry.SyncType, cfg, entry)

	if passErr != nil {
		if entry.RetryCount >= MaxRetryCount {
			reason := fmt.Sprintf("%s after %d retries: %v", ErrMaxRetriesExceeded.Error(), entry.RetryCount, passErr)
			_ = o.logRepo.Fail(context.Background(), entry.ID, reason)
			o.countPass(entry.SyncType, "max_retries")
			return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, passErr)
		}
		o.finalizeFailure(entry.AccountID, entry.SyncType, entry, passErr, false)
		return passErr
	}

	o.finalizeSuccess(ctx, entry.AccountID, entry.SyncType, entry, result, false)
	return nil
}

// CancelSync cancels the running pass for (accountID, syncType), if any.
// Entity writes already committed stay committed.
func (o *Orchestrator) CancelSync(accountID string, syncType string) bool {
	o.runningMu.Lock()
	defer o.runningMu.Unlock()

	cancel, ok := o.running[common.LeaseKey(accountID, syncType)]
	if ok {
		cancel()
	}
	return ok
}

// ResolveConflict applies an operator decision to a flagged mapping.
// square/prepflow permanently rewrite the mapping's direction; manual keeps
// it bidirectional and stamps the metadata so the pair is not re-flagged
// until both sides change again.
func (o *Orchestrator) ResolveConflict(ctx context.Context, mappingID string, resolution string) error {
	mapping, err := o.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}
	if mapping == nil {
		return fmt.Errorf("mapping %s not found", mappingID)
	}

	now := time.Now()
	resolved := true
	meta := &repositories.SyncMetadata{
		ConflictResolved: &resolved,
		Resolution:       resolution,
		ResolvedAt:       &now,
	}

	switch resolution {
	case constants.ResolutionSquare:
		if err := o.mappingRepo.SetDirection(ctx, mappingID, constants.DirectionSquareToPrepflow); err != nil {
			return fmt.Errorf("failed to set direction: %w", err)
		}
	case constants.ResolutionPrepflow:
		if err := o.mappingRepo.SetDirection(ctx, mappingID, constants.DirectionPrepflowToSquare); err != nil {
			return fmt.Errorf("failed to set direction: %w", err)
		}
	case constants.ResolutionManual:
		// Direction stays bidirectional; the operator reconciled both sides
		// out-of-band
	default:
		return fmt.Errorf("invalid resolution: %s", resolution)
	}

	if err := o.mappingRepo.SetMetadata(ctx, mappingID, meta); err != nil {
		return fmt.Errorf("failed to update sync metadata: %w", err)
	}

	o.invalidateStatus(mapping.AccountID)
	log.Printf("[SyncOrchestrator] Conflict on mapping %s resolved as %s", mappingID, resolution)
	return nil
}

// Unlink removes a mapping without touching either entity. Both sides keep
// existing independently afterwards.
func (o *Orchestrator) Unlink(ctx context.Context, accountID string, mappingID string) error {
	if err := o.mappingRepo.Unlink(ctx, accountID, mappingID); err != nil {
		return err
	}
	o.invalidateStatus(accountID)
	return nil
}

// executePass fetches both snapshots, classifies, and applies the plan for
// every entity type covered by syncType
func (o *Orchestrator) executePass(parent context.Context, accountID string, syncType string, cfg *gorm.SyncConfiguration, entry *gorm.SyncLogEntry) (*SyncResult, error) {
	start := time.Now()
	log.Printf("[SyncOrchestrator] Starting %s sync for account %s (log %s)", syncType, accountID, entry.ID)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	key := common.LeaseKey(accountID, syncType)
	o.runningMu.Lock()
	o.running[key] = cancel
	o.runningMu.Unlock()
	defer func() {
		o.runningMu.Lock()
		delete(o.running, key)
		o.runningMu.Unlock()
	}()

	result := &SyncResult{SyncType: syncType, Status: constants.SyncStatusCompleted}

	for _, entityType := range constants.SyncTypeEntities[syncType] {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled: %w", err)
		}

		incremental := entityType == constants.EntityTypeSale && cfg.LastSalesSyncAt != nil

		locals, remotes, mappings, err := o.fetchSnapshots(ctx, accountID, entityType, cfg, incremental)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("failed to fetch %s snapshots: %w", entityType, err)
		}

		plan := BuildPlan(entityType, locals, remotes, mappings, PlanOptions{
			DefaultDirection: constants.DefaultDirections[entityType],
			Incremental:      incremental,
		})

		for i := range plan {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("cancelled: %w", err)
			}

			item := &plan[i]
			if item.Action == ActionNone {
				continue
			}

			if err := o.applyItem(ctx, accountID, item); err != nil {
				// Isolate the failure, keep going with the other entities
				log.Printf("[SyncOrchestrator] Entity failure (%s %s): %v", entityType, item.Action, err)
				result.EntitiesFailed++
				continue
			}

			switch item.Action {
			case ActionConflict:
				result.Conflicts++
				o.countConflict(entityType)
			default:
				result.EntitiesSynced++
				o.countEntity(entityType, item.Action.String())
			}
		}
	}

	result.Duration = time.Since(start)
	if result.EntitiesFailed > 0 {
		result.Status = "partial"
	}

	log.Printf("[SyncOrchestrator] Completed %s sync for account %s in %s. Synced: %d, Failed: %d, Conflicts: %d",
		syncType, accountID, result.Duration.Truncate(time.Millisecond),
		result.EntitiesSynced, result.EntitiesFailed, result.Conflicts)

	return result, nil
}

// fetchSnapshots loads the remote set, the local set, and the mapping rows
// concurrently. Each side is one consistent read; a failure of either
// aborts the pass.
func (o *Orchestrator) fetchSnapshots(ctx context.Context, accountID string, entityType string, cfg *gorm.SyncConfiguration, incremental bool) ([]repositories.LocalRecord, []providers.RemoteEntity, []gorm.EntityMapping, error) {
	var (
		locals   []repositories.LocalRecord
		remotes  []providers.RemoteEntity
		mappings []gorm.EntityMapping
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		locals, err = o.catalogRepo.Snapshot(gctx, accountID, entityType)
		return err
	})

	g.Go(func() error {
		var err error
		mappings, err = o.mappingRepo.ListByType(gctx, accountID, entityType)
		return err
	})

	g.Go(func() error {
		filters := &providers.FetchFilters{Limit: remotePageSize}
		if incremental {
			filters.ModifiedSince = cfg.LastSalesSyncAt
		}

		for {
			set, err := o.remote.FetchEntities(gctx, accountID, entityType, filters)
			if err != nil {
				return err
			}
			remotes = append(remotes, set.Entities...)
			if !set.HasMore {
				return nil
			}
			filters.Cursor = set.Cursor
		}
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	return locals, remotes, mappings, nil
}

// applyItem performs one classified action. The local write and the mapping
// update commit in the same transaction; a transient local failure gets one
// re-try before counting as an entity failure.
func (o *Orchestrator) applyItem(ctx context.Context, accountID string, item *PlanItem) error {
	err := o.applyOnce(ctx, accountID, item)
	if err == nil || ctx.Err() != nil {
		return err
	}

	var provErr *providers.ProviderError
	if errors.As(err, &provErr) {
		// Remote-side failures are not helped by an immediate local retry
		return err
	}

	// Push actions already retried their mapping commit inside applyOnce;
	// running them again would repeat the remote call
	if item.Action == ActionPush || item.Action == ActionCreateRemote {
		return err
	}

	return o.applyOnce(ctx, accountID, item)
}

// commitLocal runs a local transaction with one re-try. The remote side is
// never touched inside fn, so the re-try cannot duplicate a push.
func (o *Orchestrator) commitLocal(ctx context.Context, fn func(tx *gormlib.DB) error) error {
	err := o.db.WithContext(ctx).Transaction(fn)
	if err == nil || ctx.Err() != nil {
		return err
	}
	return o.db.WithContext(ctx).Transaction(fn)
}

func (o *Orchestrator) applyOnce(ctx context.Context, accountID string, item *PlanItem) error {
	now := time.Now()

	switch item.Action {
	case ActionPush:
		return o.applyPush(ctx, accountID, item, now)
	case ActionCreateRemote:
		return o.applyCreateRemote(ctx, accountID, item, now)
	case ActionPull:
		return o.applyPull(ctx, accountID, item, now)
	case ActionLinkExisting:
		return o.applyLink(ctx, accountID, item, now)
	case ActionConflict:
		return o.applyConflict(ctx, item, now)
	case ActionMarkStale:
		return o.applyMarkStale(ctx, item)
	}

	return nil
}

func (o *Orchestrator) applyPush(ctx context.Context, accountID string, item *PlanItem, now time.Time) error {
	payload := &providers.RemoteEntity{
		ID:     item.Mapping.RemoteID,
		Key:    item.Local.Key,
		Fields: item.Local.Fields,
	}

	pushed, err := o.remote.PushEntity(ctx, accountID, item.EntityType, payload)
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	fromSquare := now
	if pushed != nil && pushed.UpdatedAt.After(now) {
		fromSquare = pushed.UpdatedAt
	}

	return o.commitLocal(ctx, func(tx *gormlib.DB) error {
		m := item.Mapping
		m.LastSyncedAt = &now
		m.LastSyncedToSquare = &now
		m.LastSyncedFromSquare = &fromSquare
		return o.mappingRepo.UpdateTx(ctx, tx, m)
	})
}

func (o *Orchestrator) applyCreateRemote(ctx context.Context, accountID string, item *PlanItem, now time.Time) error {
	payload := &providers.RemoteEntity{
		Key:    item.Local.Key,
		Fields: item.Local.Fields,
	}

	pushed, err := o.remote.PushEntity(ctx, accountID, item.EntityType, payload)
	if err != nil {
		return fmt.Errorf("remote create failed: %w", err)
	}

	fromSquare := now
	if pushed.UpdatedAt.After(now) {
		fromSquare = pushed.UpdatedAt
	}

	return o.commitLocal(ctx, func(tx *gormlib.DB) error {
		mapping := &gorm.EntityMapping{
			AccountID:            accountID,
			EntityType:           item.EntityType,
			LocalID:              item.Local.ID,
			RemoteID:             pushed.ID,
			SyncDirection:        constants.DefaultDirections[item.EntityType],
			LastSyncedAt:         &now,
			LastSyncedToSquare:   &now,
			LastSyncedFromSquare: &fromSquare,
		}
		return o.mappingRepo.CreateTx(ctx, tx, mapping)
	})
}

func (o *Orchestrator) applyPull(ctx context.Context, accountID string, item *PlanItem, now time.Time) error {
	return o.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		localID := ""
		if item.Local != nil {
			localID = item.Local.ID
		} else if item.Mapping != nil {
			localID = item.Mapping.LocalID
		}

		localID, err := o.catalogRepo.ApplyRemoteTx(ctx, tx, accountID, item.EntityType, localID, item.Remote.Fields, now)
		if err != nil {
			return fmt.Errorf("local write failed: %w", err)
		}

		if item.Mapping == nil {
			mapping := &gorm.EntityMapping{
				AccountID:            accountID,
				EntityType:           item.EntityType,
				LocalID:              localID,
				RemoteID:             item.Remote.ID,
				SyncDirection:        constants.DefaultDirections[item.EntityType],
				LastSyncedAt:         &now,
				LastSyncedToSquare:   &now,
				LastSyncedFromSquare: &now,
			}
			return o.mappingRepo.CreateTx(ctx, tx, mapping)
		}

		m := item.Mapping
		m.LastSyncedAt = &now
		m.LastSyncedToSquare = &now
		m.LastSyncedFromSquare = &now
		return o.mappingRepo.UpdateTx(ctx, tx, m)
	})
}

// applyLink creates a mapping for a natural-key match without writing either
// side. The baseline timestamps are the current versions, so only future
// edits count as changes.
func (o *Orchestrator) applyLink(ctx context.Context, accountID string, item *PlanItem, now time.Time) error {
	localBaseline := item.Local.UpdatedAt
	remoteBaseline := item.Remote.UpdatedAt

	return o.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		mapping := &gorm.EntityMapping{
			AccountID:            accountID,
			EntityType:           item.EntityType,
			LocalID:              item.Local.ID,
			RemoteID:             item.Remote.ID,
			SyncDirection:        constants.DefaultDirections[item.EntityType],
			LastSyncedAt:         &now,
			LastSyncedToSquare:   &localBaseline,
			LastSyncedFromSquare: &remoteBaseline,
		}
		return o.mappingRepo.CreateTx(ctx, tx, mapping)
	})
}

// applyConflict flags the pair for manual resolution and writes to neither
// side. Re-flagging an already-flagged pair is a no-op so repeated passes
// stay idempotent.
func (o *Orchestrator) applyConflict(ctx context.Context, item *PlanItem, now time.Time) error {
	meta, err := repositories.ParseSyncMetadata(item.Mapping.SyncMetadata)
	if err != nil {
		return err
	}

	if meta.ConflictResolved != nil && !*meta.ConflictResolved {
		return nil
	}

	unresolved := false
	meta.ConflictResolved = &unresolved
	meta.Resolution = ""
	meta.ResolvedAt = nil
	meta.ConflictFlaggedAt = &now

	return o.mappingRepo.SetMetadata(ctx, item.Mapping.ID, meta)
}

// applyMarkStale records that the remote side disappeared. The local entity
// is never deleted automatically.
func (o *Orchestrator) applyMarkStale(ctx context.Context, item *PlanItem) error {
	meta, err := repositories.ParseSyncMetadata(item.Mapping.SyncMetadata)
	if err != nil {
		return err
	}

	meta.Stale = true
	log.Printf("[SyncOrchestrator] Remote %s %s no longer exists, mapping %s marked stale",
		item.EntityType, item.Mapping.RemoteID, item.Mapping.ID)

	return o.mappingRepo.SetMetadata(ctx, item.Mapping.ID, meta)
}

// finalizeSuccess closes out a successful pass: log entry, configuration
// timestamps, initial-sync state, cache invalidation, metrics
func (o *Orchestrator) finalizeSuccess(ctx context.Context, accountID string, syncType string, entry *gorm.SyncLogEntry, result *SyncResult, initialSync bool) {
	now := time.Now()

	if err := o.logRepo.Complete(ctx, entry.ID, result.EntitiesSynced, result.EntitiesFailed, result.Conflicts); err != nil {
		log.Printf("[SyncOrchestrator] Warning: failed to finalize log entry %s: %v", entry.ID, err)
	}

	if result.EntitiesFailed == 0 {
		if err := o.configRepo.RecordSync(ctx, accountID, syncType, now); err != nil {
			log.Printf("[SyncOrchestrator] Warning: failed to record sync timestamp: %v", err)
		}
	} else {
		// A partial pass keeps the watermark where it was; the next
		// snapshot window must still cover the failed entities
		log.Printf("[SyncOrchestrator] Partial %s pass for account %s, last sync timestamp not advanced", syncType, accountID)
	}

	if initialSync {
		if err := o.configRepo.MarkInitialSyncCompleted(ctx, accountID); err != nil {
			log.Printf("[SyncOrchestrator] Warning: failed to mark initial sync completed: %v", err)
		}
	}

	o.invalidateStatus(accountID)
	o.countPass(syncType, result.Status)
	if o.metrics != nil {
		o.metrics.SyncPassDuration.WithLabelValues(syncType).Observe(result.Duration.Seconds())
	}

	logging.WithSync(accountID, syncType, entry.ID).Infow("sync pass finished",
		"status", result.Status,
		"entities_synced", result.EntitiesSynced,
		"entities_failed", result.EntitiesFailed,
		"conflicts", result.Conflicts,
		"duration_ms", result.Duration.Milliseconds(),
	)
}

// finalizeFailure closes out an aborted pass: cancelled and fatal failures
// become terminal errors, retryable ones move to retrying with backoff
func (o *Orchestrator) finalizeFailure(accountID string, syncType string, entry *gorm.SyncLogEntry, passErr error, initialSync bool) {
	// The pass context may be dead; finalization uses a fresh one
	ctx := context.Background()

	if initialSync {
		if err := o.configRepo.MarkInitialSyncFailed(ctx, accountID, passErr.Error()); err != nil {
			log.Printf("[SyncOrchestrator] Warning: failed to mark initial sync failed: %v", err)
		}
	}

	cancelled := errors.Is(passErr, context.Canceled) || errors.Is(passErr, context.DeadlineExceeded)
	if cancelled || !IsRetryable(passErr) {
		if err := o.logRepo.Fail(ctx, entry.ID, passErr.Error()); err != nil {
			log.Printf("[SyncOrchestrator] Warning: failed to finalize log entry %s: %v", entry.ID, err)
		}
		o.countPass(syncType, "error")
		o.invalidateStatus(accountID)
		return
	}

	delay := NextRetryDelay(entry.RetryCount)
	nextRetryAt := time.Now().Add(delay)

	swapped, err := o.logRepo.ScheduleRetry(ctx, entry.ID, entry.RetryCount, nextRetryAt, passErr.Error())
	if err != nil {
		log.Printf("[SyncOrchestrator] Warning: failed to schedule retry for log %s: %v", entry.ID, err)
	} else if !swapped {
		log.Printf("[SyncOrchestrator] Retry for log %s already scheduled by a concurrent tick", entry.ID)
	}

	if o.metrics != nil {
		o.metrics.RetriesTotal.WithLabelValues(syncType).Inc()
	}
	o.countPass(syncType, "retrying")
	o.invalidateStatus(accountID)

	log.Printf("[SyncOrchestrator] %s sync for account %s failed (%v), retry in %s",
		syncType, accountID, passErr, delay)
}

func (o *Orchestrator) invalidateStatus(accountID string) {
	if o.cache != nil {
		o.cache.Delete(StatusCacheKey(accountID))
	}
}

func (o *Orchestrator) countPass(syncType string, outcome string) {
	if o.metrics != nil {
		o.metrics.SyncPassesTotal.WithLabelValues(syncType, outcome).Inc()
	}
}

func (o *Orchestrator) countEntity(entityType string, action string) {
	if o.metrics != nil {
		o.metrics.EntitiesSyncedTotal.WithLabelValues(entityType, action).Inc()
	}
}

func (o *Orchestrator) countConflict(entityType string) {
	if o.metrics != nil {
		o.metrics.ConflictsTotal.WithLabelValues(entityType).Inc()
	}
}
