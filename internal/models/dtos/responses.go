package dtos

import "time"

// APIResponse is the envelope for all admin API responses
type APIResponse[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      *T        `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SyncStatusResponse summarizes the sync state of one account
type SyncStatusResponse struct {
	AccountID         string     `json:"account_id"`
	ConnectionStatus  string     `json:"connection_status"`
	InitialSyncStatus string     `json:"initial_sync_status"`
	InitialSyncError  *string    `json:"initial_sync_error,omitempty"`
	LastFullSyncAt    *time.Time `json:"last_full_sync_at,omitempty"`
	LastMenuSyncAt    *time.Time `json:"last_menu_sync_at,omitempty"`
	LastStaffSyncAt   *time.Time `json:"last_staff_sync_at,omitempty"`
	LastSalesSyncAt   *time.Time `json:"last_sales_sync_at,omitempty"`
	OpenConflicts     int        `json:"open_conflicts"`
}

// SyncTriggerResponse reports the outcome of a manually triggered pass
type SyncTriggerResponse struct {
	SyncType       string `json:"sync_type"`
	Status         string `json:"status"`
	EntitiesSynced int    `json:"entities_synced"`
	EntitiesFailed int    `json:"entities_failed"`
	Conflicts      int    `json:"conflicts"`
	DurationMs     int64  `json:"duration_ms"`
}

// SyncLogResponse is one row of sync history
type SyncLogResponse struct {
	ID             string     `json:"id"`
	SyncType       string     `json:"sync_type"`
	Status         string     `json:"status"`
	RetryCount     int        `json:"retry_count"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	EntitiesSynced int        `json:"entities_synced"`
	EntitiesFailed int        `json:"entities_failed"`
	Conflicts      int        `json:"conflicts"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// ConflictResponse is one unresolved mapping conflict
type ConflictResponse struct {
	MappingID     string     `json:"mapping_id"`
	EntityType    string     `json:"entity_type"`
	LocalID       string     `json:"local_id"`
	RemoteID      string     `json:"remote_id"`
	SyncDirection string     `json:"sync_direction"`
	FlaggedAt     *time.Time `json:"flagged_at,omitempty"`
}

// ServiceStatus reports the health of one backing service
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is the GET /healthCheck payload
type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}

// SyncStats aggregates pos_sync_logs for one account
type SyncStats struct {
	Completed      int `db:"completed" json:"completed"`
	Errored        int `db:"errored" json:"errored"`
	Retrying       int `db:"retrying" json:"retrying"`
	EntitiesSynced int `db:"entities_synced" json:"entities_synced"`
	EntitiesFailed int `db:"entities_failed" json:"entities_failed"`
	Conflicts      int `db:"conflicts" json:"conflicts"`
}
