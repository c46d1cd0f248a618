package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// RecordReader reads runs, files and records from the vault.
type RecordReader struct {
	db *sql.DB
}

// NewRecordReader creates a RecordReader instance.
// DB should have schema already created.
func NewRecordReader(db *sql.DB) *RecordReader {
	return &RecordReader{db: db}
}

// FileHash returns the stored hash of a file. ok is false when the file
// was never mined.
func (r *RecordReader) FileHash(filePath string) (hash string, ok bool, err error) {
	err = sq.Select("file_hash").
		From("files").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(r.db).
		QueryRow().
		Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get file hash for %s: %w", filePath, err)
	}
	return hash, true, nil
}

// FileHashes returns the stored hash of every mined file.
func (r *RecordReader) FileHashes() (map[string]string, error) {
	rows, err := sq.Select("file_path", "file_hash").
		From("files").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query file hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan file hash: %w", err)
		}
		hashes[path] = hash
	}
	return hashes, rows.Err()
}

// ListFiles returns every file entry ordered by path.
func (r *RecordReader) ListFiles() ([]FileEntry, error) {
	rows, err := sq.Select("file_path", "language", "file_hash", "size_bytes", "status", "error", "record_count", "mined_at", "run_id").
		From("files").
		OrderBy("file_path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []FileEntry
	for rows.Next() {
		var f FileEntry
		var minedAt string
		if err := rows.Scan(&f.FilePath, &f.Language, &f.FileHash, &f.SizeBytes, &f.Status, &f.Error, &f.RecordCount, &minedAt, &f.RunID); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.MinedAt = parseTime(minedAt)
		files = append(files, f)
	}
	return files, rows.Err()
}

// ListRecords returns function and class records in file and source order.
func (r *RecordReader) ListRecords(filter RecordFilter) ([]StoredRecord, error) {
	query := sq.Select("id", "file_path", "kind", "language", "identifier", "docstring", "start_row", "start_col", "end_row", "end_col", "payload").
		From("records").
		OrderBy("file_path", "id")
	query = applyFilter(query, filter)

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []StoredRecord
	for rows.Next() {
		var rec StoredRecord
		var payload string
		if err := rows.Scan(&rec.ID, &rec.FilePath, &rec.Kind, &rec.Language, &rec.Identifier, &rec.Docstring,
			&rec.StartRow, &rec.StartCol, &rec.EndRow, &rec.EndCol, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Payload = []byte(payload)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListLineRecords returns line-level comment records. Kind in filter is ignored.
func (r *RecordReader) ListLineRecords(filter RecordFilter) ([]StoredLineRecord, error) {
	filter.Kind = ""
	query := sq.Select("id", "file_path", "language", "identifier", "comment", "start_row", "end_row", "payload").
		From("line_records").
		OrderBy("file_path", "id")
	query = applyFilter(query, filter)

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query line records: %w", err)
	}
	defer rows.Close()

	var lines []StoredLineRecord
	for rows.Next() {
		var l StoredLineRecord
		var payload string
		if err := rows.Scan(&l.ID, &l.FilePath, &l.Language, &l.Identifier, &l.Comment, &l.StartRow, &l.EndRow, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan line record: %w", err)
		}
		l.Payload = []byte(payload)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetRun returns a run by id, or (nil, nil) when it does not exist.
func (r *RecordReader) GetRun(id string) (*Run, error) {
	return r.scanRun(runQuery().Where(sq.Eq{"id": id}))
}

// LatestRun returns the most recently started run, or (nil, nil).
func (r *RecordReader) LatestRun() (*Run, error) {
	return r.scanRun(runQuery().OrderBy("started_at DESC").Limit(1))
}

func runQuery() sq.SelectBuilder {
	return sq.Select("id", "root_dir", "started_at", "finished_at", "files_seen", "files_mined",
		"files_skipped", "parse_errors", "records", "line_records", "skips_json").
		From("runs")
}

func (r *RecordReader) scanRun(query sq.SelectBuilder) (*Run, error) {
	var run Run
	var startedAt, finishedAt, skips string
	err := query.RunWith(r.db).QueryRow().Scan(
		&run.ID, &run.RootDir, &startedAt, &finishedAt,
		&run.FilesSeen, &run.FilesMined, &run.FilesSkipped, &run.ParseErrors,
		&run.Records, &run.LineRecords, &skips,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	if err := json.Unmarshal([]byte(skips), &run.Skips); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run skips: %w", err)
	}
	return &run, nil
}

func applyFilter(query sq.SelectBuilder, filter RecordFilter) sq.SelectBuilder {
	if filter.Kind != "" {
		query = query.Where(sq.Eq{"kind": filter.Kind})
	}
	if filter.Language != "" {
		query = query.Where(sq.Eq{"language": filter.Language})
	}
	if filter.FilePath != "" {
		query = query.Where(sq.Eq{"file_path": filter.FilePath})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	return query
}
