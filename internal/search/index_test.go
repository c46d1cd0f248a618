package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docvault/internal/storage"
)

// Test Plan for search:
// - Query-string search finds records by docstring words
// - Language and kind filters narrow results exactly
// - Highlights, when present, carry markup
// - Code from the payload is searchable by field
// - FromVault indexes what the vault holds
// - A corrupt payload fails indexing instead of dropping the code

func sampleRecords() []storage.StoredRecord {
	return []storage.StoredRecord{
		{ID: 1, FilePath: "db/conn.py", Kind: "function", Language: "python", Identifier: "connect",
			Docstring: "Opens a database connection with retries.", Payload: []byte(`{"code":"def connect(url): pass"}`)},
		{ID: 2, FilePath: "db/Pool.java", Kind: "class", Language: "java", Identifier: "Pool",
			Docstring: "Keeps a pool of database connections.", Payload: []byte(`{"code":"class Pool {}"}`)},
		{ID: 3, FilePath: "util/text.rb", Kind: "function", Language: "ruby", Identifier: "titleize",
			Docstring: "Capitalizes every word in a sentence.", Payload: []byte(`{"code":"def titleize(s) end"}`)},
	}
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	idx, err := New(ctx, sampleRecords())
	require.NoError(t, err)
	defer idx.Close()

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	hits, err := idx.Search(ctx, "database", nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	ids := []string{hits[0].ID, hits[1].ID}
	assert.ElementsMatch(t, []string{"1", "2"}, ids)

	hits, err = idx.Search(ctx, "database", &Options{Language: "java"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Pool", hits[0].Identifier)
	assert.Equal(t, "class", hits[0].Kind)
	assert.Equal(t, "db/Pool.java", hits[0].Path)

	hits, err = idx.Search(ctx, "database", &Options{Kind: "function"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "connect", hits[0].Identifier)
	// Highlights depend on term vectors of the matched field; check markup when present.
	for _, h := range hits[0].Highlights {
		assert.Contains(t, h, "<mark>")
	}

	hits, err = idx.Search(ctx, "code:titleize", nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ruby", hits[0].Language)

	hits, err = idx.Search(ctx, "nonexistentword", nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFromVault(t *testing.T) {
	t.Parallel()

	db := storage.NewTestDB(t)
	writer := storage.NewRecordWriter(db)
	recs := sampleRecords()[:1]
	require.NoError(t, writer.ReplaceFile(&storage.FileEntry{
		FilePath: "db/conn.py", Language: "python", FileHash: "h", Status: storage.FileStatusMined,
	}, recs, nil))

	idx, err := FromVault(context.Background(), storage.NewRecordReader(db))
	require.NoError(t, err)
	defer idx.Close()

	hits, err := idx.Search(context.Background(), "retries", nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "connect", hits[0].Identifier)
	assert.Equal(t, "db/conn.py", hits[0].Path)
}

func TestNew_CorruptPayload(t *testing.T) {
	t.Parallel()

	recs := sampleRecords()
	recs[1].Payload = []byte(`{"code":`)

	idx, err := New(context.Background(), recs)
	require.Error(t, err)
	assert.Nil(t, idx)
	assert.Contains(t, err.Error(), "Pool")

	recs[1].Payload = nil
	idx, err = New(context.Background(), recs)
	require.NoError(t, err)
	defer idx.Close()
	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}
