package miner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/miner/extraction"
	"github.com/mvp-joe/docvault/internal/storage"
)

// Test Plan for Miner:
// - A full run mines good files, counts parse errors and ignores excluded dirs
// - Identical contents are mined once and hit the result cache
// - functions.jsonl is in path order with one record per line
// - A second run skips unchanged files and keeps their records
// - Changed files are re-mined, vanished files pruned, --force re-mines all
// - MineFiles handles edits and deletions
// - Progress callbacks fire in order
// - A cancelled context aborts the run

const addSource = `def add(a, b):
    """Adds two numbers together.

    Args:
        a: The first operand value.
        b: The second operand value.
    """
    return a + b
`

const undocumentedSource = "def add(a, b):\n    return a + b\n"

type recordingReporter struct {
	mu     sync.Mutex
	events []string
	files  int
	stats  *Stats
}

func (r *recordingReporter) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingReporter) OnDiscoveryStart()                    { r.add("discovery") }
func (r *recordingReporter) OnDiscoveryComplete(files int)        { r.add("discovered") }
func (r *recordingReporter) OnFileProcessingStart(totalFiles int) { r.add("processing") }
func (r *recordingReporter) OnFileProcessed(fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files++
}
func (r *recordingReporter) OnWritingRecords() { r.add("writing") }
func (r *recordingReporter) OnComplete(stats *Stats) {
	r.add("complete")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = stats
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Mining.Workers = 1
	return cfg
}

func newTestMiner(t *testing.T, root string, opts Options) (*Miner, *storage.RecordReader) {
	t.Helper()
	db := storage.NewTestDB(t)
	m, err := New(root, testConfig(), db, opts)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, storage.NewRecordReader(db)
}

func readFunctions(t *testing.T, root string) []extraction.OutputRecord {
	t.Helper()
	lines, err := ReadLines(filepath.Join(root, config.DefaultOutputDir, FunctionsFile))
	require.NoError(t, err)

	var out []extraction.OutputRecord
	for _, line := range lines {
		var rec extraction.OutputRecord
		require.NoError(t, json.Unmarshal(line, &rec))
		out = append(out, rec)
	}
	return out
}

func TestMiner_Mine(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "good.py", addSource)
	writeFile(t, root, "copy/good.py", addSource)
	writeFile(t, root, "broken.py", "def broken(:\n    pass\n")
	writeFile(t, root, "node_modules/dep/index.py", addSource)

	reporter := &recordingReporter{}
	m, reader := newTestMiner(t, root, Options{Progress: reporter})

	stats, err := m.Mine(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 3, stats.FilesSeen)
	assert.Equal(t, 2, stats.FilesMined)
	assert.Equal(t, 1, stats.ParseErrors)
	assert.Equal(t, 2, stats.Functions)
	assert.Equal(t, 1, stats.CacheHits, "copy/good.py has the same content as good.py")

	assert.Equal(t, []string{"discovery", "discovered", "processing", "writing", "complete"}, reporter.events)
	assert.Equal(t, 3, reporter.files)
	assert.Same(t, stats, reporter.stats)

	recs := readFunctions(t, root)
	require.Len(t, recs, 2)
	assert.Equal(t, "copy/good.py", recs[0].Path)
	assert.Equal(t, "good.py", recs[1].Path)
	assert.Equal(t, "add", recs[1].Identifier)
	assert.Equal(t, "Adds two numbers together.", recs[1].Docstring)

	classes, err := ReadLines(filepath.Join(root, config.DefaultOutputDir, ClassesFile))
	require.NoError(t, err)
	assert.Empty(t, classes)

	files, err := reader.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 3)
	statuses := map[string]string{}
	for _, f := range files {
		statuses[f.FilePath] = f.Status
	}
	assert.Equal(t, storage.FileStatusParseError, statuses["broken.py"])
	assert.Equal(t, storage.FileStatusMined, statuses["good.py"])

	run, err := reader.GetRun(stats.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 2, run.Records)
	assert.Equal(t, 1, run.ParseErrors)
}

func TestMiner_Incremental(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	good := writeFile(t, root, "good.py", addSource)
	other := writeFile(t, root, "other.py", addSource)

	m, reader := newTestMiner(t, root, Options{})
	ctx := context.Background()

	_, err := m.Mine(ctx)
	require.NoError(t, err)

	// Unchanged files are skipped and keep their records.
	stats, err := m.Mine(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesUnchanged)
	assert.Equal(t, 0, stats.FilesMined)
	assert.Len(t, readFunctions(t, root), 2)

	// A changed file is re-mined and a deleted one pruned.
	require.NoError(t, os.WriteFile(good, []byte(undocumentedSource), 0644))
	require.NoError(t, os.Remove(other))
	stats, err = m.Mine(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesMined)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, 1, stats.Skips[extraction.ReasonAttachmentMiss])
	assert.Empty(t, readFunctions(t, root))

	files, err := reader.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "good.py", files[0].FilePath)

	latest, err := reader.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
}

func TestMiner_Force(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "good.py", addSource)

	db := storage.NewTestDB(t)
	first, err := New(root, testConfig(), db, Options{})
	require.NoError(t, err)
	defer first.Close()
	_, err = first.Mine(context.Background())
	require.NoError(t, err)

	forced, err := New(root, testConfig(), db, Options{Force: true})
	require.NoError(t, err)
	defer forced.Close()
	stats, err := forced.Mine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesMined)
	assert.Equal(t, 0, stats.FilesUnchanged)
	assert.Len(t, readFunctions(t, root), 1)
}

func TestMiner_MineFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	good := writeFile(t, root, "good.py", addSource)
	writeFile(t, root, "other.py", addSource)

	m, _ := newTestMiner(t, root, Options{})
	ctx := context.Background()
	_, err := m.Mine(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(good, []byte(undocumentedSource), 0644))
	require.NoError(t, os.Remove(filepath.Join(root, "other.py")))

	stats, err := m.MineFiles(ctx, []string{good, "other.py", "README.md"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesSeen)
	assert.Equal(t, 1, stats.FilesMined)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Empty(t, readFunctions(t, root))
}

func TestMiner_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "good.py", addSource)

	m, _ := newTestMiner(t, root, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Mine(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_ExtractFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, root, "good.py", addSource)

	p, err := NewPipeline(testConfig())
	require.NoError(t, err)
	defer p.Close()

	res, err := p.ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, res.Functions, 1)
	assert.Equal(t, path, res.Functions[0].Path)

	_, err = p.ExtractFile(filepath.Join(root, "notes.txt"))
	assert.Error(t, err)
}
