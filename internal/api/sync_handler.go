package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"prepflow/possync/internal/auth"
	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/db/repositories"
	"prepflow/possync/internal/models/dtos"
	"prepflow/possync/internal/sync"
)

// statusCacheTTL bounds how stale the status endpoint may serve; the
// orchestrator also invalidates the entry on every state change
const statusCacheTTL = 30 * time.Second

// SyncHandler serves the sync admin endpoints for the PrepFlow dashboard
type SyncHandler struct {
	deps *Dependencies
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(deps *Dependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

func accountFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := auth.GetAccountClaims(r.Context())
	if claims == nil || claims.AccountID() == "" {
		respondWithError(w, http.StatusUnauthorized, "Missing account credentials")
		return "", false
	}
	return claims.AccountID(), true
}

// Connect handles POST /api/v1/sync/connect
func (h *SyncHandler) Connect(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		respondWithError(w, http.StatusBadRequest, "access_token is required")
		return
	}

	cfg, err := h.deps.Repo.Config.Connect(r.Context(), accountID, req.AccessToken)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to connect account")
		return
	}

	// Kick off the initial import in the background; the dashboard polls
	// the status endpoint for progress
	go func() {
		if _, err := h.deps.Services.Orchestrator.RunSync(context.Background(), accountID, constants.SyncTypeFull); err != nil {
			log.Printf("[SyncHandler] Initial sync for account %s failed: %v", accountID, err)
		}
	}()

	resp := dtos.SyncStatusResponse{
		AccountID:         cfg.AccountID,
		ConnectionStatus:  cfg.ConnectionStatus,
		InitialSyncStatus: cfg.InitialSyncStatus,
	}
	respondWithSuccess(w, http.StatusOK, &resp)
}

// Disconnect handles POST /api/v1/sync/disconnect
func (h *SyncHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	// Stop anything currently running for the account before tearing the
	// mappings down
	for syncType := range constants.SyncTypeEntities {
		h.deps.Services.Orchestrator.CancelSync(accountID, syncType)
	}

	if err := h.deps.Repo.Config.Disconnect(r.Context(), accountID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to disconnect account")
		return
	}

	h.deps.Services.Cache.Delete(sync.StatusCacheKey(accountID))

	msg := "disconnected"
	respondWithSuccess(w, http.StatusOK, &msg)
}

// TriggerSync handles POST /api/v1/sync/trigger
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.TriggerSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SyncType == "" {
		req.SyncType = constants.SyncTypeFull
	}

	result, err := h.deps.Services.Orchestrator.RunSync(r.Context(), accountID, req.SyncType)
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrUnknownSyncType):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, sync.ErrSyncInProgress):
			respondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, sync.ErrNotConnected):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	resp := dtos.SyncTriggerResponse{
		SyncType:       result.SyncType,
		Status:         result.Status,
		EntitiesSynced: result.EntitiesSynced,
		EntitiesFailed: result.EntitiesFailed,
		Conflicts:      result.Conflicts,
		DurationMs:     result.Duration.Milliseconds(),
	}
	respondWithSuccess(w, http.StatusOK, &resp)
}

// Status handles GET /api/v1/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	cacheKey := sync.StatusCacheKey(accountID)
	if cached, found := h.deps.Services.Cache.Get(cacheKey); found {
		if resp, okType := cached.(*dtos.SyncStatusResponse); okType {
			respondWithSuccess(w, http.StatusOK, resp)
			return
		}
	}

	cfg, err := h.deps.Repo.Config.GetByAccount(r.Context(), accountID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load sync configuration")
		return
	}
	if cfg == nil {
		respondWithError(w, http.StatusNotFound, "Account is not connected to Square")
		return
	}

	conflicts, err := h.deps.Repo.Mapping.ListUnresolvedConflicts(r.Context(), accountID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to count conflicts")
		return
	}

	resp := &dtos.SyncStatusResponse{
		AccountID:         cfg.AccountID,
		ConnectionStatus:  cfg.ConnectionStatus,
		InitialSyncStatus: cfg.InitialSyncStatus,
		InitialSyncError:  cfg.InitialSyncError,
		LastFullSyncAt:    cfg.LastFullSyncAt,
		LastMenuSyncAt:    cfg.LastMenuSyncAt,
		LastStaffSyncAt:   cfg.LastStaffSyncAt,
		LastSalesSyncAt:   cfg.LastSalesSyncAt,
		OpenConflicts:     len(conflicts),
	}

	h.deps.Services.Cache.Set(cacheKey, resp, statusCacheTTL)
	respondWithSuccess(w, http.StatusOK, resp)
}

// Logs handles GET /api/v1/sync/logs
func (h *SyncHandler) Logs(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	entries, err := h.deps.Repo.Log.ListByAccount(r.Context(), accountID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load sync logs")
		return
	}

	logs := make([]dtos.SyncLogResponse, 0, len(entries))
	for _, entry := range entries {
		logs = append(logs, dtos.SyncLogResponse{
			ID:             entry.ID,
			SyncType:       entry.SyncType,
			Status:         entry.Status,
			RetryCount:     entry.RetryCount,
			NextRetryAt:    entry.NextRetryAt,
			EntitiesSynced: entry.EntitiesSynced,
			EntitiesFailed: entry.EntitiesFailed,
			Conflicts:      entry.Conflicts,
			ErrorMessage:   entry.ErrorMessage,
			StartedAt:      entry.StartedAt,
			FinishedAt:     entry.FinishedAt,
		})
	}

	respondWithSuccess(w, http.StatusOK, &logs)
}

// Conflicts handles GET /api/v1/sync/conflicts
func (h *SyncHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	mappings, err := h.deps.Repo.Mapping.ListUnresolvedConflicts(r.Context(), accountID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load conflicts")
		return
	}

	conflicts := make([]dtos.ConflictResponse, 0, len(mappings))
	for _, m := range mappings {
		meta, err := repositories.ParseSyncMetadata(m.SyncMetadata)
		if err != nil {
			continue
		}
		conflicts = append(conflicts, dtos.ConflictResponse{
			MappingID:     m.ID,
			EntityType:    m.EntityType,
			LocalID:       m.LocalID,
			RemoteID:      m.RemoteID,
			SyncDirection: m.SyncDirection,
			FlaggedAt:     meta.ConflictFlaggedAt,
		})
	}

	respondWithSuccess(w, http.StatusOK, &conflicts)
}

// ResolveConflict handles POST /api/v1/sync/conflicts/resolve
func (h *SyncHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MappingID == "" {
		respondWithError(w, http.StatusBadRequest, "mapping_id is required")
		return
	}

	switch req.Resolution {
	case constants.ResolutionSquare, constants.ResolutionPrepflow, constants.ResolutionManual:
	default:
		respondWithError(w, http.StatusBadRequest, "resolution must be square, prepflow, or manual")
		return
	}

	// The mapping must belong to the caller
	mapping, err := h.deps.Repo.Mapping.GetByID(r.Context(), req.MappingID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load mapping")
		return
	}
	if mapping == nil || mapping.AccountID != accountID {
		respondWithError(w, http.StatusNotFound, "Mapping not found")
		return
	}

	if err := h.deps.Services.Orchestrator.ResolveConflict(r.Context(), req.MappingID, req.Resolution); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve conflict")
		return
	}

	msg := "resolved"
	respondWithSuccess(w, http.StatusOK, &msg)
}

// Unlink handles POST /api/v1/sync/unlink
func (h *SyncHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.UnlinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MappingID == "" {
		respondWithError(w, http.StatusBadRequest, "mapping_id is required")
		return
	}

	if err := h.deps.Services.Orchestrator.Unlink(r.Context(), accountID, req.MappingID); err != nil {
		respondWithError(w, http.StatusNotFound, "Mapping not found")
		return
	}

	msg := "unlinked"
	respondWithSuccess(w, http.StatusOK, &msg)
}

// CancelSync handles POST /api/v1/sync/cancel
func (h *SyncHandler) CancelSync(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.CancelSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SyncType == "" {
		respondWithError(w, http.StatusBadRequest, "sync_type is required")
		return
	}

	if !h.deps.Services.Orchestrator.CancelSync(accountID, req.SyncType) {
		respondWithError(w, http.StatusNotFound, "No running sync pass for this type")
		return
	}

	msg := "cancelled"
	respondWithSuccess(w, http.StatusOK, &msg)
}

// Stats handles GET /api/v1/sync/stats
func (h *SyncHandler) Stats(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	stats, err := h.deps.Repo.Stats.GetAccountStats(r.Context(), accountID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load sync stats")
		return
	}

	respondWithSuccess(w, http.StatusOK, stats)
}
