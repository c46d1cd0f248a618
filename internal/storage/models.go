package storage

import "time"

// Domain models that mirror SQL tables in schema.go.
// These are lightweight data transfer structs, NOT ORM models.

// File statuses.
const (
	FileStatusMined      = "mined"
	FileStatusParseError = "parse_error"
	FileStatusReadError  = "read_error"
)

// Run is one invocation of the miner. Maps to the runs table.
type Run struct {
	ID           string
	RootDir      string
	StartedAt    time.Time
	FinishedAt   time.Time
	FilesSeen    int
	FilesMined   int
	FilesSkipped int
	ParseErrors  int
	Records      int
	LineRecords  int
	Skips        map[string]int // skips_json
}

// FileEntry is the mining state of one source file. Maps to the files table.
type FileEntry struct {
	FilePath    string
	Language    string
	FileHash    string
	SizeBytes   int64
	Status      string
	Error       string
	RecordCount int
	MinedAt     time.Time
	RunID       string
}

// StoredRecord is a function or class record. Payload holds the full JSON
// record; the other columns exist for filtering.
type StoredRecord struct {
	ID         int64
	FilePath   string
	Kind       string
	Language   string
	Identifier string
	Docstring  string
	StartRow   int
	StartCol   int
	EndRow     int
	EndCol     int
	Payload    []byte
}

// StoredLineRecord is a line-level comment record.
type StoredLineRecord struct {
	ID         int64
	FilePath   string
	Language   string
	Identifier string
	Comment    string
	StartRow   int
	EndRow     int
	Payload    []byte
}

// RecordFilter narrows ListRecords. Empty fields match everything.
type RecordFilter struct {
	Kind     string
	Language string
	FilePath string
	Limit    int
}
