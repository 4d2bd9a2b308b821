package constants

// Sync types for pos_sync_logs and last_*_sync_at bookkeeping
const (
	SyncTypeFull  = "full"
	SyncTypeMenu  = "menu"
	SyncTypeStaff = "staff"
	SyncTypeSales = "sales"
)

// Entity types known to the mapping table
const (
	EntityTypeRecipe = "recipe"
	EntityTypeDish   = "dish"
	EntityTypeStaff  = "staff"
	EntityTypeSale   = "sale"
)

// Sync directions for pos_entity_mappings
const (
	DirectionSquareToPrepflow = "square_to_prepflow"
	DirectionPrepflowToSquare = "prepflow_to_square"
	DirectionBidirectional    = "bidirectional"
)

// Sync log statuses
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusError     = "error"
	SyncStatusRetrying  = "retrying"
)

// Connection statuses for pos_sync_configurations
const (
	ConnectionStatusConnected    = "connected"
	ConnectionStatusDisconnected = "disconnected"
	ConnectionStatusError        = "error"
)

// Initial sync statuses
const (
	InitialSyncPending    = "pending"
	InitialSyncInProgress = "in_progress"
	InitialSyncCompleted  = "completed"
	InitialSyncFailed     = "failed"
)

// Conflict resolutions accepted by the resolve endpoint
const (
	ResolutionSquare   = "square"
	ResolutionPrepflow = "prepflow"
	ResolutionManual   = "manual"
)

// SyncTypeEntities maps a sync type to the entity types it covers
var SyncTypeEntities = map[string][]string{
	SyncTypeFull:  {EntityTypeRecipe, EntityTypeDish, EntityTypeStaff, EntityTypeSale},
	SyncTypeMenu:  {EntityTypeRecipe, EntityTypeDish},
	SyncTypeStaff: {EntityTypeStaff},
	SyncTypeSales: {EntityTypeSale},
}

// DefaultDirections holds the direction assigned to a mapping created during
// a sync pass. Sales only ever flow from the POS into PrepFlow.
var DefaultDirections = map[string]string{
	EntityTypeRecipe: DirectionBidirectional,
	EntityTypeDish:   DirectionBidirectional,
	EntityTypeStaff:  DirectionBidirectional,
	EntityTypeSale:   DirectionSquareToPrepflow,
}

// IsValidSyncType reports whether t is a known sync type
func IsValidSyncType(t string) bool {
	_, ok := SyncTypeEntities[t]
	return ok
}
