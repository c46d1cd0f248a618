package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher returns error with invalid directory
// - A single change fires the callback after debounce
// - Rapid changes are coalesced, deduplicated and sorted
// - Extension filtering and the keep filter drop events
// - Files in new directories are picked up
// - Skipped directories are not watched
// - Stop() is idempotent and safe before Start()

const testDebounce = 50 * time.Millisecond

type collector struct {
	mu      sync.Mutex
	batches [][]string
	called  chan struct{}
}

func newCollector() *collector {
	return &collector{called: make(chan struct{}, 16)}
}

func (c *collector) callback(files []string) {
	c.mu.Lock()
	c.batches = append(c.batches, files)
	c.mu.Unlock()
	c.called <- struct{}{}
}

func (c *collector) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-c.called:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called after timeout")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[len(c.batches)-1]
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func startWatcher(t *testing.T, dir string, opts ...Option) *collector {
	t.Helper()
	opts = append([]Option{WithDebounce(testDebounce)}, opts...)
	w, err := NewFileWatcher([]string{dir}, []string{".py", ".go"}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(100 * time.Millisecond) // let the watcher settle
	return c
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nonexistent")}, []string{".py"})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := startWatcher(t, dir)

	path := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	files := c.wait(t)
	assert.Equal(t, []string{path}, files)
}

func TestFileWatcher_Coalesces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := startWatcher(t, dir)

	b := filepath.Join(dir, "b.py")
	a := filepath.Join(dir, "a.go")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(b, []byte(strings.Repeat("x", i+1)), 0644))
		require.NoError(t, os.WriteFile(a, []byte("package a"), 0644))
	}

	files := c.wait(t)
	assert.Equal(t, []string{a, b}, files)
}

func TestFileWatcher_Filters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keep := func(path string) bool { return !strings.HasSuffix(path, "_gen.py") }
	c := startWatcher(t, dir, WithFilter(keep))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api_gen.py"), []byte("x"), 0644))
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, c.count())

	path := filepath.Join(dir, "real.py")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.Equal(t, []string{path}, c.wait(t))
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := startWatcher(t, dir)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond) // the new directory must be watched first

	path := filepath.Join(sub, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.Contains(t, c.wait(t), path)
}

func TestFileWatcher_SkipDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	skipped := filepath.Join(dir, "node_modules")
	require.NoError(t, os.Mkdir(skipped, 0755))

	c := startWatcher(t, dir, WithSkipDir(func(path string) bool {
		return filepath.Base(path) == "node_modules"
	}))

	require.NoError(t, os.WriteFile(filepath.Join(skipped, "dep.py"), []byte("x"), 0644))
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, c.count())
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	assert.NotPanics(t, func() { _ = w.Stop() })
}
