package watcher

import (
	"context"
	"log"
)

// WatchCoordinator routes debounced file changes to the miner.
type WatchCoordinator struct {
	files FileWatcher
	miner Miner
	quiet bool
}

// NewWatchCoordinator creates a new watch coordinator. When quiet is set,
// per-batch log lines are suppressed; warnings are always logged.
func NewWatchCoordinator(files FileWatcher, miner Miner, quiet bool) *WatchCoordinator {
	return &WatchCoordinator{
		files: files,
		miner: miner,
		quiet: quiet,
	}
}

// Start begins routing file changes to the miner.
// Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	if err := c.files.Start(ctx, func(files []string) { c.handleFileChange(ctx, files) }); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// cleanup stops the file watcher.
func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

// handleFileChange re-mines one batch of changed files.
func (c *WatchCoordinator) handleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}

	if !c.quiet {
		log.Printf("Processing %d file change(s)...", len(files))
	}

	stats, err := c.miner.MineFiles(ctx, files)
	if err != nil {
		log.Printf("Warning: mining failed: %v", err)
		return
	}

	if !c.quiet {
		log.Printf("✓ Mined %d file(s) (%d records, %d removed, %d parse errors)",
			stats.FilesMined, stats.Records(), stats.FilesRemoved, stats.ParseErrors)
	}
}
