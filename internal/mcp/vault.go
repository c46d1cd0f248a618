package mcp

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mvp-joe/docvault/internal/graph"
	"github.com/mvp-joe/docvault/internal/search"
	"github.com/mvp-joe/docvault/internal/storage"
)

// Vault serves search and hierarchy queries from the SQLite vault. The
// in-memory views are rebuilt when a newer mining run shows up, so a
// concurrent `docvault mine --watch` is picked up without restarting.
type Vault struct {
	reader *storage.RecordReader

	mu        sync.Mutex
	runID     string
	loaded    bool
	index     *search.Index
	hierarchy *graph.Hierarchy
}

// NewVault creates a Vault over db.
func NewVault(db *sql.DB) *Vault {
	return &Vault{reader: storage.NewRecordReader(db)}
}

// Search runs a query against the current records.
func (v *Vault) Search(ctx context.Context, query string, opts *search.Options) ([]*search.Hit, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}
	return v.index.Search(ctx, query, opts)
}

// Hierarchy returns the current class hierarchy.
func (v *Vault) Hierarchy(ctx context.Context) (*graph.Hierarchy, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}
	return v.hierarchy, nil
}

// refresh rebuilds the views when the latest run differs from the loaded
// one. Callers hold v.mu.
func (v *Vault) refresh(ctx context.Context) error {
	run, err := v.reader.LatestRun()
	if err != nil {
		return err
	}
	runID := ""
	if run != nil {
		runID = run.ID
	}
	if v.loaded && runID == v.runID {
		return nil
	}

	index, err := search.FromVault(ctx, v.reader)
	if err != nil {
		return err
	}
	hierarchy, err := graph.FromVault(v.reader)
	if err != nil {
		index.Close()
		return err
	}

	if v.index != nil {
		v.index.Close()
	}
	v.index, v.hierarchy = index, hierarchy
	v.runID, v.loaded = runID, true
	return nil
}

// Close releases the search index.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.index != nil {
		return v.index.Close()
	}
	return nil
}
