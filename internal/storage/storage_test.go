package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the vault:
// - CreateSchema is idempotent and records the schema version
// - Open creates a vault file and reopens it with data intact
// - ReplaceFile writes a file with its records and line records
// - ReplaceFile on the same path drops the previous records
// - DeleteFile cascades to records
// - ListRecords filters by kind, language, path and limit
// - FileHash/FileHashes report stored hashes; unknown files are not found
// - WriteRun/GetRun/LatestRun round-trip counters and skips
// - Large record sets are written in batches

func sampleFile(path, hash string) *FileEntry {
	return &FileEntry{
		FilePath: path,
		Language: "python",
		FileHash: hash,
		Status:   FileStatusMined,
		MinedAt:  time.Now(),
		RunID:    "run-1",
	}
}

func sampleRecord(kind, lang, ident string) StoredRecord {
	return StoredRecord{
		Kind:       kind,
		Language:   lang,
		Identifier: ident,
		Docstring:  "Does " + ident + ".",
		StartRow:   1,
		EndRow:     4,
		EndCol:     2,
		Payload:    []byte(`{"identifier":"` + ident + `"}`),
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	require.NoError(t, CreateSchema(db))

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "vault.db")
	db, err := Open(path)
	require.NoError(t, err)

	writer := NewRecordWriter(db)
	require.NoError(t, writer.ReplaceFile(sampleFile("a.py", "h1"), []StoredRecord{sampleRecord("function", "python", "load")}, nil))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	records, err := NewRecordReader(db).ListRecords(RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "load", records[0].Identifier)
}

func TestReplaceFile(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	writer := NewRecordWriter(db)
	reader := NewRecordReader(db)

	file := sampleFile("pkg/a.py", "h1")
	file.RecordCount = 2
	lines := []StoredLineRecord{{Language: "python", Identifier: "load", Comment: "Reads the header.", StartRow: 2, EndRow: 2, Payload: []byte(`{}`)}}
	require.NoError(t, writer.ReplaceFile(file, []StoredRecord{
		sampleRecord("function", "python", "load"),
		sampleRecord("class", "python", "Loader"),
	}, lines))

	records, err := reader.ListRecords(RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "pkg/a.py", records[0].FilePath)
	assert.Equal(t, "load", records[0].Identifier)
	assert.JSONEq(t, `{"identifier":"load"}`, string(records[0].Payload))

	gotLines, err := reader.ListLineRecords(RecordFilter{})
	require.NoError(t, err)
	require.Len(t, gotLines, 1)
	assert.Equal(t, "Reads the header.", gotLines[0].Comment)

	// Replacing drops the previous records.
	require.NoError(t, writer.ReplaceFile(sampleFile("pkg/a.py", "h2"), []StoredRecord{sampleRecord("function", "python", "save")}, nil))

	records, err = reader.ListRecords(RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "save", records[0].Identifier)

	gotLines, err = reader.ListLineRecords(RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotLines)

	hash, ok, err := reader.FileHash("pkg/a.py")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "h2", hash)
}

func TestDeleteFile_Cascades(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	writer := NewRecordWriter(db)
	require.NoError(t, writer.ReplaceFile(sampleFile("a.py", "h"), []StoredRecord{sampleRecord("function", "python", "f")}, nil))

	require.NoError(t, writer.DeleteFile("a.py"))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count))
	assert.Zero(t, count)

	_, ok, err := NewRecordReader(db).FileHash("a.py")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListRecords_Filters(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	writer := NewRecordWriter(db)
	require.NoError(t, writer.ReplaceFile(sampleFile("a.py", "h1"), []StoredRecord{
		sampleRecord("function", "python", "f1"),
		sampleRecord("class", "python", "C1"),
	}, nil))
	goFile := sampleFile("b.go", "h2")
	goFile.Language = "go"
	require.NoError(t, writer.ReplaceFile(goFile, []StoredRecord{sampleRecord("function", "go", "F2")}, nil))

	reader := NewRecordReader(db)

	classes, err := reader.ListRecords(RecordFilter{Kind: "class"})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "C1", classes[0].Identifier)

	goRecords, err := reader.ListRecords(RecordFilter{Language: "go"})
	require.NoError(t, err)
	require.Len(t, goRecords, 1)
	assert.Equal(t, "b.go", goRecords[0].FilePath)

	byPath, err := reader.ListRecords(RecordFilter{FilePath: "a.py"})
	require.NoError(t, err)
	assert.Len(t, byPath, 2)

	limited, err := reader.ListRecords(RecordFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	hashes, err := reader.FileHashes()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.py": "h1", "b.go": "h2"}, hashes)

	files, err := reader.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.py", files[0].FilePath)
	assert.Equal(t, FileStatusMined, files[0].Status)
	assert.False(t, files[0].MinedAt.IsZero())
}

func TestRuns(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	writer := NewRecordWriter(db)
	reader := NewRecordReader(db)

	missing, err := reader.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, missing)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := &Run{ID: "r1", RootDir: "/repo", StartedAt: start}
	require.NoError(t, writer.WriteRun(first))

	second := &Run{
		ID:          "r2",
		RootDir:     "/repo",
		StartedAt:   start.Add(time.Hour),
		FinishedAt:  start.Add(time.Hour + time.Minute),
		FilesSeen:   10,
		FilesMined:  8,
		ParseErrors: 1,
		Records:     42,
		Skips:       map[string]int{"attachment_miss": 7},
	}
	require.NoError(t, writer.WriteRun(second))

	got, err := reader.GetRun("r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, start, got.StartedAt)
	assert.True(t, got.FinishedAt.IsZero())
	assert.Empty(t, got.Skips)

	latest, err := reader.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "r2", latest.ID)
	assert.Equal(t, 42, latest.Records)
	assert.Equal(t, map[string]int{"attachment_miss": 7}, latest.Skips)

	// Updating a run replaces its row.
	second.Records = 43
	require.NoError(t, writer.WriteRun(second))
	latest, err = reader.GetRun("r2")
	require.NoError(t, err)
	assert.Equal(t, 43, latest.Records)
}

func TestReplaceFile_Batches(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	records := make([]StoredRecord, insertBatch*2+7)
	for i := range records {
		records[i] = sampleRecord("function", "python", "f")
	}
	require.NoError(t, NewRecordWriter(db).ReplaceFile(sampleFile("big.py", "h"), records, nil))

	got, err := NewRecordReader(db).ListRecords(RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, got, len(records))
}
