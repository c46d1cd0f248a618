// Package miner discovers source files, mines them in parallel and stores
// the records in the vault and JSONL files.
package miner

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/docvault/internal/cache"
	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/miner/extraction"
	"github.com/mvp-joe/docvault/internal/miner/parsers"
	"github.com/mvp-joe/docvault/internal/storage"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// Options tunes a Miner.
type Options struct {
	// Force re-mines files whose content hash is unchanged.
	Force bool
	// Progress receives callbacks; nil means no reporting.
	Progress ProgressReporter
}

// Miner runs discovery, extraction and storage for one root directory.
type Miner struct {
	rootDir   string
	workers   int
	force     bool
	pipeline  *Pipeline
	discovery *FileDiscovery
	results   *cache.ResultCache
	reader    *storage.RecordReader
	writer    *storage.RecordWriter
	jsonl     *JSONLWriter
	progress  ProgressReporter
}

// New creates a Miner over rootDir that stores records in db and writes
// JSONL files to the configured output directory.
func New(rootDir string, cfg *config.Config, db *sql.DB, opts Options) (*Miner, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	outputDir := cfg.OutputPath(absRoot)

	discovery, err := NewFileDiscovery(absRoot, outputDir, cfg.Paths.Include, cfg.Paths.Ignore, cfg.EnabledLanguages())
	if err != nil {
		return nil, fmt.Errorf("failed to compile path patterns: %w", err)
	}

	jsonl, err := NewJSONLWriter(outputDir)
	if err != nil {
		return nil, err
	}

	pipeline, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}

	results, err := cache.NewResultCache(cfg.Cache.MaxEntries)
	if err != nil {
		pipeline.Close()
		return nil, err
	}

	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	return &Miner{
		rootDir:   absRoot,
		workers:   cfg.WorkerCount(),
		force:     opts.Force,
		pipeline:  pipeline,
		discovery: discovery,
		results:   results,
		reader:    storage.NewRecordReader(db),
		writer:    storage.NewRecordWriter(db),
		jsonl:     jsonl,
		progress:  progress,
	}, nil
}

// Close releases the in-process caches. The database stays open.
func (m *Miner) Close() {
	m.results.Close()
	m.pipeline.Close()
}

// RootDir returns the absolute root being mined.
func (m *Miner) RootDir() string {
	return m.rootDir
}

// Discovery returns the file matcher, e.g. for filtering watch events.
func (m *Miner) Discovery() *FileDiscovery {
	return m.discovery
}

// Mine discovers every file under the root, mines new and changed files,
// drops vanished files from the vault and re-exports the JSONL files.
func (m *Miner) Mine(ctx context.Context) (*Stats, error) {
	started := time.Now()
	stats := newStats(uuid.New().String())

	m.progress.OnDiscoveryStart()
	files, err := m.discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	m.progress.OnDiscoveryComplete(len(files))

	if err := m.mineFiles(ctx, files, stats); err != nil {
		return nil, err
	}
	if err := m.prune(files, stats); err != nil {
		return nil, err
	}
	return m.finish(stats, started)
}

// MineFiles re-mines the given files, e.g. after a watch event. Paths that
// no longer exist are removed from the vault; paths that would not be
// discovered are ignored.
func (m *Miner) MineFiles(ctx context.Context, paths []string) (*Stats, error) {
	started := time.Now()
	stats := newStats(uuid.New().String())

	var files []string
	for _, path := range paths {
		abs := path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(m.rootDir, path)
		}
		rel := m.relPath(abs)
		if !m.discovery.Matches(rel) {
			continue
		}
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			if err := m.writer.DeleteFile(rel); err != nil {
				return nil, err
			}
			stats.FilesRemoved++
			continue
		}
		files = append(files, abs)
	}

	if err := m.mineFiles(ctx, files, stats); err != nil {
		return nil, err
	}
	return m.finish(stats, started)
}

// fileResult is the outcome of one file, filled by exactly one worker.
type fileResult struct {
	entry     storage.FileEntry
	unchanged bool
	cached    bool
	result    *extraction.Result
}

func (m *Miner) mineFiles(ctx context.Context, files []string, stats *Stats) error {
	hashes := map[string]string{}
	if !m.force {
		var err error
		if hashes, err = m.reader.FileHashes(); err != nil {
			return err
		}
	}

	m.progress.OnFileProcessingStart(len(files))

	// One slot per file keeps output in discovery order.
	results := make([]*fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := m.processFile(path, hashes)
			if err != nil {
				return err
			}
			results[i] = res
			m.progress.OnFileProcessed(res.entry.FilePath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.FilesSeen += len(files)
	m.progress.OnWritingRecords()

	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.store(res, stats); err != nil {
			return err
		}
	}
	return nil
}

// processFile reads and mines one file. Read and parse failures are
// recorded on the entry; only unexpected failures are returned.
func (m *Miner) processFile(path string, hashes map[string]string) (*fileResult, error) {
	rel := m.relPath(path)
	lang, _ := m.discovery.Language(path)
	res := &fileResult{entry: storage.FileEntry{
		FilePath: rel,
		Language: string(lang),
		Status:   storage.FileStatusMined,
		MinedAt:  time.Now(),
	}}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: failed to read %s: %v\n", rel, err)
		res.entry.Status = storage.FileStatusReadError
		res.entry.Error = err.Error()
		return res, nil
	}
	res.entry.FileHash = cache.HashContent(content)
	res.entry.SizeBytes = int64(len(content))

	if stored, ok := hashes[rel]; ok && stored == res.entry.FileHash {
		res.unchanged = true
		return res, nil
	}

	key := cache.ContentKey(lang, res.entry.FileHash)
	if cached, ok := m.results.Get(key, rel); ok {
		res.result = cached
		res.cached = true
		return res, nil
	}

	extracted, err := m.pipeline.Extract(lang, rel, content)
	if err != nil {
		if syntax.IsParseError(err) {
			log.Printf("Warning: skipping %s: %v\n", rel, err)
			res.entry.Status = storage.FileStatusParseError
			res.entry.Error = err.Error()
			return res, nil
		}
		return nil, fmt.Errorf("failed to mine %s: %w", rel, err)
	}

	m.results.Set(key, extracted)
	res.result = extracted
	return res, nil
}

// store replaces the file's rows in the vault and updates stats.
func (m *Miner) store(res *fileResult, stats *Stats) error {
	if res.unchanged {
		stats.FilesUnchanged++
		return nil
	}

	var records []storage.StoredRecord
	var lines []storage.StoredLineRecord

	switch res.entry.Status {
	case storage.FileStatusReadError:
		stats.ReadErrors++
	case storage.FileStatusParseError:
		stats.ParseErrors++
	default:
		stats.FilesMined++
		if res.cached {
			stats.CacheHits++
		}
		stats.Functions += len(res.result.Functions)
		stats.Classes += len(res.result.Classes)
		stats.Lines += len(res.result.Lines)
		stats.addSkips(res.result.Skips)

		var err error
		if records, err = toStoredRecords(res.result.Records()); err != nil {
			return err
		}
		if lines, err = toStoredLines(res.result.Lines); err != nil {
			return err
		}
	}

	res.entry.RecordCount = len(records)
	res.entry.RunID = stats.RunID
	return m.writer.ReplaceFile(&res.entry, records, lines)
}

// prune removes vault entries for files that were not discovered.
func (m *Miner) prune(files []string, stats *Stats) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[m.relPath(f)] = true
	}

	stored, err := m.reader.ListFiles()
	if err != nil {
		return err
	}
	for _, f := range stored {
		if seen[f.FilePath] {
			continue
		}
		if err := m.writer.DeleteFile(f.FilePath); err != nil {
			return err
		}
		stats.FilesRemoved++
	}
	return nil
}

// finish exports the JSONL files from the vault and records the run.
func (m *Miner) finish(stats *Stats, started time.Time) (*Stats, error) {
	if err := m.Export(); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(started)
	if err := m.writer.WriteRun(stats.toRun(m.rootDir, started)); err != nil {
		return nil, err
	}

	m.progress.OnComplete(stats)
	return stats, nil
}

// Export rewrites the JSONL files from everything in the vault, so
// unchanged files keep their records across incremental runs.
func (m *Miner) Export() error {
	functions, err := m.reader.ListRecords(storage.RecordFilter{Kind: string(parsers.FunctionKind)})
	if err != nil {
		return err
	}
	if err := m.jsonl.WriteLines(FunctionsFile, recordPayloads(functions)); err != nil {
		return err
	}

	if m.pipeline.Options.Classes {
		classes, err := m.reader.ListRecords(storage.RecordFilter{Kind: string(parsers.ClassKind)})
		if err != nil {
			return err
		}
		if err := m.jsonl.WriteLines(ClassesFile, recordPayloads(classes)); err != nil {
			return err
		}
	}

	if m.pipeline.Options.LineComments {
		lines, err := m.reader.ListLineRecords(storage.RecordFilter{})
		if err != nil {
			return err
		}
		payloads := make([][]byte, len(lines))
		for i := range lines {
			payloads[i] = lines[i].Payload
		}
		if err := m.jsonl.WriteLines(LinesFile, payloads); err != nil {
			return err
		}
	}
	return nil
}

func (m *Miner) relPath(path string) string {
	rel, err := filepath.Rel(m.rootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func recordPayloads(records []storage.StoredRecord) [][]byte {
	out := make([][]byte, len(records))
	for i := range records {
		out[i] = records[i].Payload
	}
	return out
}

func toStoredRecords(records []extraction.OutputRecord) ([]storage.StoredRecord, error) {
	out := make([]storage.StoredRecord, 0, len(records))
	for i := range records {
		rec := &records[i]
		payload, err := MarshalRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, storage.StoredRecord{
			FilePath:   rec.Path,
			Kind:       string(rec.Kind),
			Language:   string(rec.Language),
			Identifier: rec.Identifier,
			Docstring:  rec.Docstring,
			StartRow:   rec.StartPoint.Row,
			StartCol:   rec.StartPoint.Column,
			EndRow:     rec.EndPoint.Row,
			EndCol:     rec.EndPoint.Column,
			Payload:    payload,
		})
	}
	return out, nil
}

func toStoredLines(lines []extraction.CommentContextRecord) ([]storage.StoredLineRecord, error) {
	out := make([]storage.StoredLineRecord, 0, len(lines))
	for i := range lines {
		l := &lines[i]
		payload, err := MarshalRecord(l)
		if err != nil {
			return nil, err
		}
		out = append(out, storage.StoredLineRecord{
			FilePath:   l.Path,
			Language:   string(l.Language),
			Identifier: l.Identifier,
			Comment:    l.Comment,
			StartRow:   l.StartPoint.Row,
			EndRow:     l.EndPoint.Row,
			Payload:    payload,
		})
	}
	return out, nil
}
