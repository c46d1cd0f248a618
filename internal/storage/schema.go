package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the vault layout written by CreateSchema.
const SchemaVersion = "1"

// CreateSchema creates all vault tables and indexes.
// Uses a transaction so schema creation succeeds or fails as a whole.
// Every statement is idempotent, so an existing vault is left intact.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"vault_metadata", createMetadataTable},
		{"runs", createRunsTable},
		{"files", createFilesTable},
		{"records", createRecordsTable},
		{"line_records", createLineRecordsTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`INSERT OR IGNORE INTO vault_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to bootstrap vault_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from vault_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='vault_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check vault_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM vault_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in vault_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS vault_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,                         -- UUID
    root_dir TEXT NOT NULL,
    started_at TEXT NOT NULL,                    -- ISO 8601
    finished_at TEXT NOT NULL DEFAULT '',
    files_seen INTEGER NOT NULL DEFAULT 0,
    files_mined INTEGER NOT NULL DEFAULT 0,
    files_skipped INTEGER NOT NULL DEFAULT 0,    -- unchanged since the last run
    parse_errors INTEGER NOT NULL DEFAULT 0,
    records INTEGER NOT NULL DEFAULT 0,
    line_records INTEGER NOT NULL DEFAULT 0,
    skips_json TEXT NOT NULL DEFAULT '{}'        -- per-reason element skip counters
)
`

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
    file_path TEXT PRIMARY KEY,                  -- relative path from the mined root
    language TEXT NOT NULL,
    file_hash TEXT NOT NULL,                     -- SHA-256 for change detection
    size_bytes INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,                        -- mined, parse_error, read_error
    error TEXT NOT NULL DEFAULT '',
    record_count INTEGER NOT NULL DEFAULT 0,
    mined_at TEXT NOT NULL,
    run_id TEXT NOT NULL DEFAULT ''
)
`

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT NOT NULL,
    kind TEXT NOT NULL,                          -- function or class
    language TEXT NOT NULL,
    identifier TEXT NOT NULL,
    docstring TEXT NOT NULL,
    start_row INTEGER NOT NULL,
    start_col INTEGER NOT NULL,
    end_row INTEGER NOT NULL,
    end_col INTEGER NOT NULL,
    payload TEXT NOT NULL,                       -- full JSON record
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createLineRecordsTable = `
CREATE TABLE IF NOT EXISTS line_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT NOT NULL,
    language TEXT NOT NULL,
    identifier TEXT NOT NULL,
    comment TEXT NOT NULL,
    start_row INTEGER NOT NULL,
    end_row INTEGER NOT NULL,
    payload TEXT NOT NULL,
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_records_file ON records(file_path)",
	"CREATE INDEX IF NOT EXISTS idx_records_kind_language ON records(kind, language)",
	"CREATE INDEX IF NOT EXISTS idx_records_identifier ON records(identifier)",
	"CREATE INDEX IF NOT EXISTS idx_line_records_file ON line_records(file_path)",
	"CREATE INDEX IF NOT EXISTS idx_files_language ON files(language)",
}
