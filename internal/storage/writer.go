package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// insertBatch bounds rows per INSERT to stay under SQLite's variable limit.
const insertBatch = 500

// RecordWriter writes runs, files and their records to the vault.
type RecordWriter struct {
	db *sql.DB
}

// NewRecordWriter creates a RecordWriter instance.
// DB must have schema already created via CreateSchema().
func NewRecordWriter(db *sql.DB) *RecordWriter {
	return &RecordWriter{db: db}
}

// WriteRun inserts or updates a run row.
func (w *RecordWriter) WriteRun(run *Run) error {
	skips, err := json.Marshal(nonNilSkips(run.Skips))
	if err != nil {
		return fmt.Errorf("failed to marshal run skips: %w", err)
	}

	_, err = sq.Insert("runs").
		Columns(
			"id", "root_dir", "started_at", "finished_at",
			"files_seen", "files_mined", "files_skipped", "parse_errors",
			"records", "line_records", "skips_json",
		).
		Values(
			run.ID,
			run.RootDir,
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			run.FilesSeen,
			run.FilesMined,
			run.FilesSkipped,
			run.ParseErrors,
			run.Records,
			run.LineRecords,
			string(skips),
		).
		Options("OR REPLACE").
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write run %s: %w", run.ID, err)
	}
	return nil
}

// ReplaceFile replaces everything stored for one file in a single
// transaction: the old file row and its records go, the new ones come in.
func (w *RecordWriter) ReplaceFile(file *FileEntry, records []StoredRecord, lines []StoredLineRecord) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Cascades to records and line_records.
	if _, err := sq.Delete("files").Where(sq.Eq{"file_path": file.FilePath}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to delete old file %s: %w", file.FilePath, err)
	}

	_, err = sq.Insert("files").
		Columns("file_path", "language", "file_hash", "size_bytes", "status", "error", "record_count", "mined_at", "run_id").
		Values(
			file.FilePath,
			file.Language,
			file.FileHash,
			file.SizeBytes,
			file.Status,
			file.Error,
			file.RecordCount,
			formatTime(file.MinedAt),
			file.RunID,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", file.FilePath, err)
	}

	for start := 0; start < len(records); start += insertBatch {
		insert := sq.Insert("records").
			Columns("file_path", "kind", "language", "identifier", "docstring", "start_row", "start_col", "end_row", "end_col", "payload")
		for _, r := range records[start:min(start+insertBatch, len(records))] {
			insert = insert.Values(file.FilePath, r.Kind, r.Language, r.Identifier, r.Docstring, r.StartRow, r.StartCol, r.EndRow, r.EndCol, string(r.Payload))
		}
		if _, err := insert.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to write records for %s: %w", file.FilePath, err)
		}
	}

	for start := 0; start < len(lines); start += insertBatch {
		insert := sq.Insert("line_records").
			Columns("file_path", "language", "identifier", "comment", "start_row", "end_row", "payload")
		for _, l := range lines[start:min(start+insertBatch, len(lines))] {
			insert = insert.Values(file.FilePath, l.Language, l.Identifier, l.Comment, l.StartRow, l.EndRow, string(l.Payload))
		}
		if _, err := insert.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to write line records for %s: %w", file.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file %s: %w", file.FilePath, err)
	}
	return nil
}

// DeleteFile removes a file and, by cascade, its records.
func (w *RecordWriter) DeleteFile(filePath string) error {
	if _, err := sq.Delete("files").Where(sq.Eq{"file_path": filePath}).RunWith(w.db).Exec(); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nonNilSkips(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
