package dtos

// TriggerSyncRequest triggers a sync pass for the authenticated account
type TriggerSyncRequest struct {
	SyncType string `json:"sync_type"`
}

// ResolveConflictRequest resolves a flagged mapping conflict
type ResolveConflictRequest struct {
	MappingID  string `json:"mapping_id"`
	Resolution string `json:"resolution"` // square | prepflow | manual
}

// UnlinkRequest removes a mapping explicitly
type UnlinkRequest struct {
	MappingID string `json:"mapping_id"`
}

// CancelSyncRequest cancels a running sync pass
type CancelSyncRequest struct {
	SyncType string `json:"sync_type"`
}

// ConnectRequest connects an account to Square
type ConnectRequest struct {
	AccessToken string `json:"access_token"`
}
