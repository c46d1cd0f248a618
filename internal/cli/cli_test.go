package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/graph"
	"github.com/mvp-joe/docvault/internal/miner"
	"github.com/mvp-joe/docvault/internal/search"
	"github.com/mvp-joe/docvault/internal/storage"
)

// Test Plan for CLI commands:
// - mine writes the vault and JSONL files and prints a quiet summary
// - mine --lines and --workers override the configuration
// - a second mine run reports unchanged files
// - inspect prints one file's records as JSON and rejects unknown extensions
// - search prints ranked hits, JSON hits and a no-match message
// - search and hierarchy fail clearly without a vault
// - hierarchy lists classes in order and walks ancestors and descendants
// - stats summarizes the vault and runs JSON queries
// - resolveRoot validates directory arguments
// - formatNumber inserts thousand separators
// - printSummary lists skip reasons in order
// - version prints build information

const addSource = `def add(a, b):
    """Adds two numbers together.

    Args:
        a: The first operand value.
        b: The second operand value.
    """
    return a + b
`

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Mining.Workers = 1
	return cfg
}

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seedVault writes a small zoo of records to the vault under root.
func seedVault(t *testing.T, root string, cfg *config.Config) {
	t.Helper()
	db, err := storage.Open(cfg.DatabasePath(root))
	require.NoError(t, err)
	defer db.Close()

	writer := storage.NewRecordWriter(db)
	require.NoError(t, writer.ReplaceFile(&storage.FileEntry{
		FilePath: "zoo.py", Language: "python", FileHash: "h1", Status: storage.FileStatusMined,
	}, []storage.StoredRecord{
		{Kind: "class", Language: "python", Identifier: "Animal", Docstring: "Any living creature in the zoo.", Payload: []byte(`{"superclasses":[]}`)},
		{Kind: "class", Language: "python", Identifier: "Dog", Docstring: "A loyal animal that barks.", Payload: []byte(`{"superclasses":["Animal"]}`)},
		{Kind: "class", Language: "python", Identifier: "Puppy", Docstring: "A young dog still in training.", Payload: []byte(`{"superclasses":["Dog"]}`)},
		{Kind: "function", Language: "python", Identifier: "Dog.bark", Docstring: "Makes a loud noise.\n\nScares the cat.", Payload: []byte(`{"code":"def bark(self): pass"}`)},
	}, nil))
	require.NoError(t, writer.WriteRun(&storage.Run{ID: "run-1", RootDir: root, StartedAt: time.Now()}))
}

func TestMine_Quiet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, root, "pkg/math.py", addSource)
	cfg := testConfig()

	var out bytes.Buffer
	err := mine(context.Background(), &out, root, cfg, mineOptions{Quiet: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Mining complete: 1 records")

	functions, err := miner.ReadLines(filepath.Join(cfg.OutputPath(root), miner.FunctionsFile))
	require.NoError(t, err)
	require.Len(t, functions, 1)

	var rec struct {
		Identifier string `json:"identifier"`
		Path       string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(functions[0], &rec))
	assert.Equal(t, "add", rec.Identifier)
	assert.Equal(t, "pkg/math.py", rec.Path)

	assert.FileExists(t, cfg.DatabasePath(root))
	assert.NoFileExists(t, filepath.Join(cfg.OutputPath(root), miner.LinesFile))
}

func TestMine_Overrides(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, root, "walk.py", addSource)
	cfg := testConfig()

	var out bytes.Buffer
	err := mine(context.Background(), &out, root, cfg, mineOptions{Quiet: true, Lines: true, Workers: 3})
	require.NoError(t, err)

	assert.True(t, cfg.Mining.LineComments)
	assert.Equal(t, 3, cfg.Mining.Workers)
	assert.FileExists(t, filepath.Join(cfg.OutputPath(root), miner.LinesFile))
}

func TestMine_SecondRunSkipsUnchanged(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, root, "math.py", addSource)

	var first bytes.Buffer
	require.NoError(t, mine(context.Background(), &first, root, testConfig(), mineOptions{}))
	assert.Contains(t, first.String(), "Functions:    1")
	assert.Contains(t, first.String(), "1 mined, 0 unchanged")

	var second bytes.Buffer
	require.NoError(t, mine(context.Background(), &second, root, testConfig(), mineOptions{}))
	assert.Contains(t, second.String(), "0 mined, 1 unchanged")
	assert.Contains(t, second.String(), "Mining complete: 0 records")

	functions, err := miner.ReadLines(filepath.Join(testConfig().OutputPath(root), miner.FunctionsFile))
	require.NoError(t, err)
	assert.Len(t, functions, 1, "unchanged files keep their exported records")
}

func TestMine_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, root, "math.py", addSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := mine(ctx, &out, root, testConfig(), mineOptions{Quiet: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestInspect(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeSource(t, root, "math.py", addSource)

	var out bytes.Buffer
	require.NoError(t, inspect(&out, path, testConfig(), false))

	var doc inspectOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	require.Len(t, doc.Functions, 1)
	assert.Equal(t, "add", doc.Functions[0].Identifier)
	assert.Equal(t, "Adds two numbers together.", doc.Functions[0].Docstring)
	assert.NotNil(t, doc.Classes)
	assert.Empty(t, doc.Lines)

	err := inspect(&out, writeSource(t, root, "notes.txt", "hello"), testConfig(), false)
	require.Error(t, err)
}

func TestSearchVault(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := testConfig()
	seedVault(t, root, cfg)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, searchVault(ctx, &out, root, cfg, "noise", &search.Options{}, false))
	assert.Contains(t, out.String(), " 1. Dog.bark  [python function]  zoo.py")
	assert.Contains(t, out.String(), "    Makes a loud noise.\n")
	assert.NotContains(t, out.String(), "Scares the cat.")

	out.Reset()
	require.NoError(t, searchVault(ctx, &out, root, cfg, "zoo OR loyal", &search.Options{Kind: "class"}, true))
	var hits []search.Hit
	require.NoError(t, json.Unmarshal(out.Bytes(), &hits))
	assert.Len(t, hits, 2)

	out.Reset()
	require.NoError(t, searchVault(ctx, &out, root, cfg, "giraffe", &search.Options{}, false))
	assert.Equal(t, "No matches.\n", out.String())
}

func TestSearchVault_NoVault(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var out bytes.Buffer
	err := searchVault(context.Background(), &out, root, testConfig(), "noise", &search.Options{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docvault mine")
	assert.NoFileExists(t, testConfig().DatabasePath(root))
}

func TestShowHierarchy(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := testConfig()
	seedVault(t, root, cfg)

	var out bytes.Buffer
	require.NoError(t, showHierarchy(&out, root, cfg, "", false))
	assert.Equal(t, "Animal (python)\nDog (python) : Animal\nPuppy (python) : Dog\n", out.String())

	out.Reset()
	require.NoError(t, showHierarchy(&out, root, cfg, "Puppy", false))
	assert.Equal(t, "Puppy (python)\n  ↑ Dog\n    ↑ Animal\n", out.String())

	out.Reset()
	require.NoError(t, showHierarchy(&out, root, cfg, "Animal", true))
	assert.Equal(t, "Animal (python)\n  ↓ Dog\n    ↓ Puppy\n", out.String())

	err := showHierarchy(&out, root, cfg, "Giraffe", false)
	require.ErrorIs(t, err, graph.ErrClassNotFound)
}

func TestShowStats(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := testConfig()
	seedVault(t, root, cfg)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, showStats(ctx, &out, root, cfg, ""))
	assert.Contains(t, out.String(), "Records\n")
	assert.Contains(t, out.String(), "\nFiles\n")
	assert.Contains(t, out.String(), "\nLatest runs\n")
	assert.Regexp(t, `python\s+class\s+3`, out.String())
	assert.Regexp(t, `python\s+function\s+1`, out.String())
	assert.Regexp(t, `mined\s+1\s+0`, out.String())

	out.Reset()
	raw := `{"from":"records","fields":["identifier"],"where":{"field":"kind","operator":"=","value":"class"},"orderBy":[{"field":"identifier"}]}`
	require.NoError(t, showStats(ctx, &out, root, cfg, raw))
	assert.Equal(t, "  identifier\n  Animal\n  Dog\n  Puppy\n", out.String())

	out.Reset()
	raw = `{"from":"records","where":{"field":"kind","operator":"=","value":"module"}}`
	require.NoError(t, showStats(ctx, &out, root, cfg, raw))
	assert.Equal(t, "  (no rows)\n", out.String())

	err := showStats(ctx, &out, root, cfg, `{"from":"chunks"}`)
	require.Error(t, err)

	err = showStats(ctx, &out, t.TempDir(), cfg, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docvault mine")
}

func TestResolveRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root, err := resolveRoot([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	file := writeSource(t, dir, "a.py", "x = 1\n")
	_, err = resolveRoot([]string{file})
	require.Error(t, err)

	_, err = resolveRoot([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	root, err = resolveRoot(nil)
	require.NoError(t, err)
	assert.Equal(t, wd, root)
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
	assert.Equal(t, "-12,345", formatNumber(-12345))
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printSummary(&out, &miner.Stats{
		FilesMined:  2,
		Functions:   1200,
		Classes:     3,
		ParseErrors: 1,
		Skips:       map[string]int{"too_short": 4, "no_docstring": 9},
		Duration:    1500 * time.Millisecond,
	})

	text := out.String()
	assert.Contains(t, text, "✓ Mining complete: 1,203 records in 1.5s")
	assert.Contains(t, text, "Errors:       1 parse, 0 read")
	assert.NotContains(t, text, "Line records")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("no_docstring")), bytes.Index(out.Bytes(), []byte("too_short")))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "docvault "+Version)
	assert.Contains(t, out.String(), "Git commit: ")
}
