package query

import (
	"sort"
	"strings"
)

// tables lists the queryable vault columns. Record payloads are left out:
// they hold whole JSON documents and cannot be compared or aggregated.
var tables = map[string][]string{
	"files": {
		"file_path", "language", "file_hash", "size_bytes", "status",
		"error", "record_count", "mined_at", "run_id",
	},
	"records": {
		"id", "file_path", "kind", "language", "identifier", "docstring",
		"start_row", "start_col", "end_row", "end_col",
	},
	"line_records": {
		"id", "file_path", "language", "identifier", "comment", "start_row", "end_row",
	},
	"runs": {
		"id", "root_dir", "started_at", "finished_at", "files_seen", "files_mined",
		"files_skipped", "parse_errors", "records", "line_records",
	},
}

// Tables returns the queryable table names, sorted.
func Tables() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Columns returns the queryable columns of table, or nil when unknown.
func Columns(table string) []string {
	return tables[table]
}

func hasColumn(table, column string) bool {
	for _, c := range tables[table] {
		if c == column {
			return true
		}
	}
	return false
}

func tableHint() string {
	return "Valid tables: " + strings.Join(Tables(), ", ")
}

func columnHint(table string) string {
	return "Columns of " + table + ": " + strings.Join(tables[table], ", ")
}
