// Package search provides keyword search over mined records.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/docvault/internal/storage"
)

const (
	defaultLimit = 15
	maxLimit     = 100
	batchSize    = 1000
	maxHighlight = 3
)

// Options narrows a search. Empty fields match everything.
type Options struct {
	Language string
	Kind     string
	Limit    int
}

// Hit is one matching record.
type Hit struct {
	ID         string   `json:"id"`
	Identifier string   `json:"identifier"`
	Path       string   `json:"path"`
	Language   string   `json:"language"`
	Kind       string   `json:"kind"`
	Docstring  string   `json:"docstring"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"` // matching snippets with <mark> tags
}

// Index is an in-memory bleve index over vault records.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
}

// New indexes records into a fresh in-memory index.
func New(ctx context.Context, records []storage.StoredRecord) (*Index, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	if err := indexRecords(ctx, index, records); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index records: %w", err)
	}
	return &Index{index: index}, nil
}

// FromVault indexes every function and class record in the vault.
func FromVault(ctx context.Context, reader *storage.RecordReader) (*Index, error) {
	records, err := reader.ListRecords(storage.RecordFilter{})
	if err != nil {
		return nil, err
	}
	return New(ctx, records)
}

// buildMapping indexes prose and code with the standard analyzer and the
// filter fields as keywords.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	text := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.Index = true
		m.IncludeTermVectors = true // phrase search and highlighting
		return m
	}
	keyword := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = true
		m.Index = true
		return m
	}

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("identifier", text())
	docMapping.AddFieldMappingsAt("docstring", text())
	docMapping.AddFieldMappingsAt("code", text())
	docMapping.AddFieldMappingsAt("path", text())
	docMapping.AddFieldMappingsAt("language", keyword())
	docMapping.AddFieldMappingsAt("kind", keyword())

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func indexRecords(ctx context.Context, index bleve.Index, records []storage.StoredRecord) error {
	batch := index.NewBatch()
	for i := range records {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rec := &records[i]
		id := strconv.FormatInt(rec.ID, 10)
		doc, err := toDocument(rec)
		if err != nil {
			return fmt.Errorf("failed to decode record %s: %w", id, err)
		}
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("failed to add record %s to batch: %w", id, err)
		}

		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

// toDocument flattens a record for indexing. An empty payload indexes no code.
func toDocument(rec *storage.StoredRecord) (map[string]interface{}, error) {
	var payload struct {
		Code string `json:"code"`
	}
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload of %s: %w", rec.Identifier, err)
		}
	}

	return map[string]interface{}{
		"identifier": rec.Identifier,
		"docstring":  rec.Docstring,
		"code":       payload.Code,
		"path":       rec.FilePath,
		"language":   rec.Language,
		"kind":       rec.Kind,
	}, nil
}

// Search runs a bleve query-string search. Field scoping, boolean
// operators, phrases, wildcards and fuzzy terms are supported.
func (x *Index) Search(ctx context.Context, queryStr string, opts *Options) ([]*Hit, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	queries := []query.Query{bleve.NewQueryStringQuery(queryStr)}
	if opts.Language != "" {
		q := bleve.NewTermQuery(opts.Language)
		q.SetField("language")
		queries = append(queries, q)
	}
	if opts.Kind != "" {
		q := bleve.NewTermQuery(opts.Kind)
		q.SetField("kind")
		queries = append(queries, q)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.Fields = []string{"docstring", "identifier"}
	req.Fields = []string{"identifier", "docstring", "path", "language", "kind"}

	x.mu.RLock()
	result, err := x.index.SearchInContext(ctx, req)
	x.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]*Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := &Hit{ID: h.ID, Score: h.Score, Highlights: highlights(h.Fragments)}
		hit.Identifier, _ = h.Fields["identifier"].(string)
		hit.Docstring, _ = h.Fields["docstring"].(string)
		hit.Path, _ = h.Fields["path"].(string)
		hit.Language, _ = h.Fields["language"].(string)
		hit.Kind, _ = h.Fields["kind"].(string)
		hits = append(hits, hit)
	}
	return hits, nil
}

// highlights flattens fragments in field order, keeping at most three.
func highlights(fragments map[string][]string) []string {
	fields := make([]string, 0, len(fragments))
	for f := range fragments {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := []string{}
	for _, f := range fields {
		out = append(out, fragments[f]...)
	}
	if len(out) > maxHighlight {
		out = out[:maxHighlight]
	}
	return out
}

// Count returns the number of indexed records.
func (x *Index) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.DocCount()
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}
