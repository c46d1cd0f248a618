// Package cache memoizes mining results for identical file contents.
package cache

import (
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/docvault/internal/miner/extraction"
)

// DefaultMaxEntries bounds the result cache when no size is configured.
const DefaultMaxEntries = 10000

// ResultCache maps ContentKey to the extraction result of that content.
// Cached results are shared and must not be modified; use Get, which
// returns a copy bound to the requesting path.
type ResultCache struct {
	results otter.Cache[string, *extraction.Result]
}

// NewResultCache creates a cache holding at most maxEntries results.
func NewResultCache(maxEntries int) (*ResultCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	results, err := otter.MustBuilder[string, *extraction.Result](maxEntries).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build result cache: %w", err)
	}
	return &ResultCache{results: results}, nil
}

// Get returns a copy of the cached result for key with every record's path
// set to path.
func (c *ResultCache) Get(key, path string) (*extraction.Result, bool) {
	res, ok := c.results.Get(key)
	if !ok {
		return nil, false
	}
	return withPath(res, path), true
}

// Set stores res under key. The cache keeps its own copy.
func (c *ResultCache) Set(key string, res *extraction.Result) {
	c.results.Set(key, withPath(res, ""))
}

// Close releases the cache.
func (c *ResultCache) Close() {
	c.results.Close()
}

func withPath(res *extraction.Result, path string) *extraction.Result {
	out := &extraction.Result{
		Functions: make([]extraction.OutputRecord, len(res.Functions)),
		Classes:   make([]extraction.OutputRecord, len(res.Classes)),
		Lines:     make([]extraction.CommentContextRecord, len(res.Lines)),
		Skips:     make(map[string]int, len(res.Skips)),
	}
	copy(out.Functions, res.Functions)
	copy(out.Classes, res.Classes)
	copy(out.Lines, res.Lines)
	for k, v := range res.Skips {
		out.Skips[k] = v
	}
	for i := range out.Functions {
		out.Functions[i].Path = path
	}
	for i := range out.Classes {
		out.Classes[i].Path = path
	}
	for i := range out.Lines {
		out.Lines[i].Path = path
	}
	return out
}
