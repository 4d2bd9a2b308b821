package sync

import (
	"time"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/db/repositories"
	"prepflow/possync/internal/models/gorm"
	"prepflow/possync/internal/providers"
)

// Action is the closed set of outcomes classification can assign to one
// entity pair. The apply step is a total match over these cases.
type Action int

const (
	ActionNone Action = iota
	ActionPush
	ActionPull
	ActionCreateRemote
	ActionLinkExisting
	ActionConflict
	ActionMarkStale
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionPush:
		return "push"
	case ActionPull:
		return "pull"
	case ActionCreateRemote:
		return "create_remote"
	case ActionLinkExisting:
		return "link_existing"
	case ActionConflict:
		return "conflict"
	case ActionMarkStale:
		return "mark_stale"
	}
	return "unknown"
}

// PlanItem is one classified entity pair awaiting application
type PlanItem struct {
	Action     Action
	EntityType string
	Local      *repositories.LocalRecord
	Remote     *providers.RemoteEntity
	Mapping    *gorm.EntityMapping
}

// PlanOptions tunes classification for one entity type
type PlanOptions struct {
	// DefaultDirection is assigned to mappings created during this pass
	DefaultDirection string

	// Incremental means the remote snapshot is filtered by modified time,
	// so a mapping whose remote is absent must not be marked stale
	Incremental bool
}

// BuildPlan diffs the local and remote snapshots against the mapping table
// and classifies every pair. Neither snapshot is mutated.
func BuildPlan(entityType string, locals []repositories.LocalRecord, remotes []providers.RemoteEntity, mappings []gorm.EntityMapping, opts PlanOptions) []PlanItem {
	localsByID := make(map[string]*repositories.LocalRecord, len(locals))
	for i := range locals {
		localsByID[locals[i].ID] = &locals[i]
	}

	remotesByID := make(map[string]*providers.RemoteEntity, len(remotes))
	remotesByKey := make(map[string]*providers.RemoteEntity, len(remotes))
	for i := range remotes {
		remotesByID[remotes[i].ID] = &remotes[i]
		if remotes[i].Key != "" {
			remotesByKey[remotes[i].Key] = &remotes[i]
		}
	}

	mappedLocal := make(map[string]bool, len(mappings))
	mappedRemote := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		mappedLocal[m.LocalID] = true
		mappedRemote[m.RemoteID] = true
	}

	plan := make([]PlanItem, 0, len(locals)+len(remotes))

	// Mapped pairs first
	for i := range mappings {
		m := &mappings[i]
		local := localsByID[m.LocalID]
		remote := remotesByID[m.RemoteID]

		item := PlanItem{EntityType: entityType, Local: local, Remote: remote, Mapping: m}
		item.Action = classifyMapped(m, local, remote, opts)
		plan = append(plan, item)
	}

	// Locals with no mapping: link by natural key or create remotely
	claimedRemotes := make(map[string]bool)
	for i := range locals {
		local := &locals[i]
		if mappedLocal[local.ID] {
			continue
		}

		item := PlanItem{EntityType: entityType, Local: local}

		if remote, ok := remotesByKey[local.Key]; ok && !mappedRemote[remote.ID] && !claimedRemotes[remote.ID] {
			claimedRemotes[remote.ID] = true
			item.Remote = remote
			item.Action = ActionLinkExisting
		} else if opts.DefaultDirection != constants.DirectionSquareToPrepflow {
			item.Action = ActionCreateRemote
		} else {
			// Direction forbids pushing; the entity stays local-only
			item.Action = ActionNone
		}

		plan = append(plan, item)
	}

	// Remotes with no mapping and no natural-key match: pull into a new
	// local entity
	for i := range remotes {
		remote := &remotes[i]
		if mappedRemote[remote.ID] || claimedRemotes[remote.ID] {
			continue
		}

		plan = append(plan, PlanItem{
			EntityType: entityType,
			Remote:     remote,
			Action:     ActionPull,
		})
	}

	return plan
}

func classifyMapped(m *gorm.EntityMapping, local *repositories.LocalRecord, remote *providers.RemoteEntity, opts PlanOptions) Action {
	if local == nil {
		// Local entity removed outside the sync engine. Fail safe: touch
		// nothing, an explicit unlink is the sanctioned path.
		return ActionNone
	}

	if remote == nil {
		if opts.Incremental {
			return ActionNone
		}
		meta, err := repositories.ParseSyncMetadata(m.SyncMetadata)
		if err == nil && meta.Stale {
			return ActionNone
		}
		return ActionMarkStale
	}

	localChanged := changedSince(local.UpdatedAt, m.LastSyncedToSquare)
	remoteChanged := changedSince(remote.UpdatedAt, m.LastSyncedFromSquare)

	if !localChanged && !remoteChanged {
		return ActionNone
	}

	switch m.SyncDirection {
	case constants.DirectionSquareToPrepflow:
		// Square is authoritative: even a local-only change is overwritten
		// by the remote version on the next pass
		return ActionPull

	case constants.DirectionPrepflowToSquare:
		return ActionPush
	}

	// Bidirectional
	if localChanged && remoteChanged {
		return classifyBidirectionalConflict(m, local, remote)
	}
	if localChanged {
		return ActionPush
	}
	return ActionPull
}

// classifyBidirectionalConflict decides whether a both-changed pair is a
// fresh conflict or is covered by a prior manual resolution
func classifyBidirectionalConflict(m *gorm.EntityMapping, local *repositories.LocalRecord, remote *providers.RemoteEntity) Action {
	meta, err := repositories.ParseSyncMetadata(m.SyncMetadata)
	if err != nil {
		return ActionConflict
	}

	if meta.ConflictResolved != nil && *meta.ConflictResolved &&
		meta.Resolution == constants.ResolutionManual && meta.ResolvedAt != nil {
		localAfter := local.UpdatedAt.After(*meta.ResolvedAt)
		remoteAfter := remote.UpdatedAt.After(*meta.ResolvedAt)

		switch {
		case localAfter && remoteAfter:
			// Both sides moved again after the operator reconciled them
			return ActionConflict
		case localAfter:
			return ActionPush
		case remoteAfter:
			return ActionPull
		default:
			return ActionNone
		}
	}

	return ActionConflict
}

// changedSince treats a never-synced side as changed
func changedSince(updatedAt time.Time, lastSynced *time.Time) bool {
	if lastSynced == nil {
		return true
	}
	return updatedAt.After(*lastSynced)
}
