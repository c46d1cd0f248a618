package watcher

import (
	"context"

	"github.com/mvp-joe/docvault/internal/miner"
)

// FileWatcher monitors source files for changes with debouncing.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}

// Miner is the part of miner.Miner the coordinator drives.
type Miner interface {
	// MineFiles re-mines changed files and removes deleted ones.
	MineFiles(ctx context.Context, paths []string) (*miner.Stats, error)
}
