package backend

// Schema version for migration management
const SchemaVersion = 1

// SQL statements for database schema creation

// TasksTableSQL creates the main tasks table. Timestamps are stored as Unix
// seconds; completed_at and deleted_at double as the completion and
// soft-delete markers.
const TasksTableSQL = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    notes TEXT,
    importance INTEGER DEFAULT 0,
    due_date INTEGER,
    reminder_seconds INTEGER DEFAULT 0,
    created_at INTEGER,
    modified_at INTEGER,
    completed_at INTEGER,
    deleted_at INTEGER
);
`

// TagsTableSQL creates the tags table. Names are unique as stored; sync-time
// comparison additionally lowercases them.
const TagsTableSQL = `
CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);
`

// TaskTagsTableSQL creates the task/tag join table.
const TaskTagsTableSQL = `
CREATE TABLE IF NOT EXISTS task_tags (
    task_id INTEGER NOT NULL,
    tag_id INTEGER NOT NULL,

    UNIQUE(task_id, tag_id),
    FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE,
    FOREIGN KEY(tag_id) REFERENCES tags(id) ON DELETE CASCADE
);
`

// SyncMappingsTableSQL creates the mapping table between local task ids and
// per-provider remote ids. Both (provider_id, task_id) and
// (provider_id, remote_id) are unique; the updated flag marks local changes
// not yet pushed.
const SyncMappingsTableSQL = `
CREATE TABLE IF NOT EXISTS sync_mappings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    provider_id INTEGER NOT NULL,
    task_id INTEGER NOT NULL,
    remote_id TEXT NOT NULL,
    updated INTEGER DEFAULT 0,

    UNIQUE(provider_id, task_id),
    UNIQUE(provider_id, remote_id)
);
`

// SchemaVersionTableSQL creates the schema version table for migration tracking
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// TasksIndexesSQL creates indexes on tasks for the sync work-set queries
const TasksIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_tasks_name ON tasks(name);
CREATE INDEX IF NOT EXISTS idx_tasks_deleted_at ON tasks(deleted_at);
CREATE INDEX IF NOT EXISTS idx_tasks_completed_at ON tasks(completed_at);
`

// SyncMappingsIndexesSQL creates indexes on sync_mappings
const SyncMappingsIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_sync_mappings_provider ON sync_mappings(provider_id);
CREATE INDEX IF NOT EXISTS idx_sync_mappings_updated ON sync_mappings(updated);
`

// TaskTagsIndexesSQL creates indexes on task_tags
const TaskTagsIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_task_tags_task ON task_tags(task_id);
CREATE INDEX IF NOT EXISTS idx_task_tags_tag ON task_tags(tag_id);
`

// AllTableSchemas returns all table creation statements in order
func AllTableSchemas() []string {
	return []string{
		SchemaVersionTableSQL,
		TasksTableSQL,
		TagsTableSQL,
		TaskTagsTableSQL,
		SyncMappingsTableSQL,
	}
}

// AllIndexes returns all index creation statements
func AllIndexes() []string {
	return []string{
		TasksIndexesSQL,
		TaskTagsIndexesSQL,
		SyncMappingsIndexesSQL,
	}
}

// PragmaStatements returns pragma statements to execute on database connection
func PragmaStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous = NORMAL", // Balance between safety and performance
	}
}
