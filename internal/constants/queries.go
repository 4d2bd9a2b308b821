package constants

const (
	GetSyncStats = `
	SELECT
		COUNT(*) FILTER (WHERE status = 'completed')                  AS completed,
		COUNT(*) FILTER (WHERE status = 'error')                      AS errored,
		COUNT(*) FILTER (WHERE status = 'retrying')                   AS retrying,
		COALESCE(SUM(entities_synced), 0)                             AS entities_synced,
		COALESCE(SUM(entities_failed), 0)                             AS entities_failed,
		COALESCE(SUM(conflicts), 0)                                   AS conflicts
	FROM pos_sync_logs WHERE account_id = $1
	`

	GetStaleMappingCount = `
	SELECT COUNT(*) FROM pos_entity_mappings
	WHERE account_id = $1 AND sync_metadata::jsonb ->> 'stale' = 'true'
	`
)
