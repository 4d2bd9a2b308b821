package sync

import (
	"testing"
	"time"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/db/repositories"
	gormModels "prepflow/possync/internal/models/gorm"
	"prepflow/possync/internal/providers"
)

func ts(offset time.Duration) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset)
}

func mappingWith(direction string, baseline time.Time) *gormModels.EntityMapping {
	return &gormModels.EntityMapping{
		ID:                   "m1",
		AccountID:            "a1",
		EntityType:           constants.EntityTypeRecipe,
		LocalID:              "l1",
		RemoteID:             "r1",
		SyncDirection:        direction,
		LastSyncedToSquare:   &baseline,
		LastSyncedFromSquare: &baseline,
	}
}

func TestClassifyMapped(t *testing.T) {
	baseline := ts(0)

	tests := []struct {
		name      string
		direction string
		localAt   time.Time
		remoteAt  time.Time
		want      Action
	}{
		{
			name:      "neither changed",
			direction: constants.DirectionBidirectional,
			localAt:   baseline,
			remoteAt:  baseline,
			want:      ActionNone,
		},
		{
			name:      "local changed bidirectional",
			direction: constants.DirectionBidirectional,
			localAt:   ts(time.Minute),
			remoteAt:  baseline,
			want:      ActionPush,
		},
		{
			name:      "remote changed bidirectional",
			direction: constants.DirectionBidirectional,
			localAt:   baseline,
			remoteAt:  ts(time.Minute),
			want:      ActionPull,
		},
		{
			name:      "both changed bidirectional",
			direction: constants.DirectionBidirectional,
			localAt:   ts(time.Minute),
			remoteAt:  ts(2 * time.Minute),
			want:      ActionConflict,
		},
		{
			name:      "local changed under square authority",
			direction: constants.DirectionSquareToPrepflow,
			localAt:   ts(time.Minute),
			remoteAt:  baseline,
			want:      ActionPull,
		},
		{
			name:      "both changed under square authority",
			direction: constants.DirectionSquareToPrepflow,
			localAt:   ts(time.Minute),
			remoteAt:  ts(2 * time.Minute),
			want:      ActionPull,
		},
		{
			name:      "remote changed under prepflow authority",
			direction: constants.DirectionPrepflowToSquare,
			localAt:   baseline,
			remoteAt:  ts(time.Minute),
			want:      ActionPush,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mappingWith(tt.direction, baseline)
			local := &repositories.LocalRecord{ID: "l1", UpdatedAt: tt.localAt}
			remote := &providers.RemoteEntity{ID: "r1", UpdatedAt: tt.remoteAt}

			got := classifyMapped(m, local, remote, PlanOptions{})
			if got != tt.want {
				t.Errorf("classifyMapped() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyMapped_NeverSyncedSideCountsAsChanged(t *testing.T) {
	m := mappingWith(constants.DirectionBidirectional, ts(0))
	m.LastSyncedToSquare = nil

	local := &repositories.LocalRecord{ID: "l1", UpdatedAt: ts(-time.Hour)}
	remote := &providers.RemoteEntity{ID: "r1", UpdatedAt: ts(0)}

	if got := classifyMapped(m, local, remote, PlanOptions{}); got != ActionPush {
		t.Errorf("Nil baseline should count as changed, got %s", got)
	}
}

func TestClassifyMapped_MissingLocalIsNoOp(t *testing.T) {
	m := mappingWith(constants.DirectionBidirectional, ts(0))
	remote := &providers.RemoteEntity{ID: "r1", UpdatedAt: ts(time.Minute)}

	if got := classifyMapped(m, nil, remote, PlanOptions{}); got != ActionNone {
		t.Errorf("Missing local entity must not trigger writes, got %s", got)
	}
}

func TestClassifyMapped_MissingRemote(t *testing.T) {
	m := mappingWith(constants.DirectionBidirectional, ts(0))
	local := &repositories.LocalRecord{ID: "l1", UpdatedAt: ts(0)}

	if got := classifyMapped(m, local, nil, PlanOptions{}); got != ActionMarkStale {
		t.Errorf("Missing remote should mark stale, got %s", got)
	}

	if got := classifyMapped(m, local, nil, PlanOptions{Incremental: true}); got != ActionNone {
		t.Errorf("Incremental snapshots must not mark stale, got %s", got)
	}

	stale, _ := repositories.MarshalSyncMetadata(&repositories.SyncMetadata{Stale: true})
	m.SyncMetadata = stale
	if got := classifyMapped(m, local, nil, PlanOptions{}); got != ActionNone {
		t.Errorf("Already-stale mapping should be skipped, got %s", got)
	}
}

func TestBuildPlan_UnmappedEntities(t *testing.T) {
	locals := []repositories.LocalRecord{
		{ID: "l1", Key: "shared name", UpdatedAt: ts(0)},
		{ID: "l2", Key: "local only", UpdatedAt: ts(0)},
	}
	remotes := []providers.RemoteEntity{
		{ID: "r1", Key: "shared name", UpdatedAt: ts(0)},
		{ID: "r2", Key: "remote only", UpdatedAt: ts(0)},
	}

	plan := BuildPlan(constants.EntityTypeRecipe, locals, remotes, nil, PlanOptions{
		DefaultDirection: constants.DirectionBidirectional,
	})

	actions := map[string]Action{}
	for _, item := range plan {
		switch {
		case item.Local != nil && item.Remote != nil:
			actions["pair"] = item.Action
		case item.Local != nil:
			actions[item.Local.ID] = item.Action
		case item.Remote != nil:
			actions[item.Remote.ID] = item.Action
		}
	}

	if actions["pair"] != ActionLinkExisting {
		t.Errorf("Natural key match should link, got %s", actions["pair"])
	}
	if actions["l2"] != ActionCreateRemote {
		t.Errorf("Unmatched local should create remotely, got %s", actions["l2"])
	}
	if actions["r2"] != ActionPull {
		t.Errorf("Unmatched remote should pull, got %s", actions["r2"])
	}
}

func TestBuildPlan_PullOnlyDirectionNeverCreatesRemote(t *testing.T) {
	locals := []repositories.LocalRecord{
		{ID: "l1", Key: "local sale", UpdatedAt: ts(0)},
	}

	plan := BuildPlan(constants.EntityTypeSale, locals, nil, nil, PlanOptions{
		DefaultDirection: constants.DirectionSquareToPrepflow,
	})

	if len(plan) != 1 || plan[0].Action != ActionNone {
		t.Errorf("square_to_prepflow forbids remote creation, got %+v", plan)
	}
}

func TestBuildPlan_NaturalKeyClaimedOnce(t *testing.T) {
	// Two unmapped locals sharing a natural key must not both link to the
	// same remote object
	locals := []repositories.LocalRecord{
		{ID: "l1", Key: "dup", UpdatedAt: ts(0)},
		{ID: "l2", Key: "dup", UpdatedAt: ts(0)},
	}
	remotes := []providers.RemoteEntity{
		{ID: "r1", Key: "dup", UpdatedAt: ts(0)},
	}

	plan := BuildPlan(constants.EntityTypeRecipe, locals, remotes, nil, PlanOptions{
		DefaultDirection: constants.DirectionBidirectional,
	})

	links := 0
	for _, item := range plan {
		if item.Action == ActionLinkExisting {
			links++
		}
	}
	if links != 1 {
		t.Errorf("Expected exactly 1 link for a duplicated key, got %d", links)
	}
}
