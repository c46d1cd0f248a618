package miner

import (
	"fmt"
	"os"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/docstring"
	"github.com/mvp-joe/docvault/internal/miner/extraction"
	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// Pipeline bundles the parse and extract stages shared by the miner, the
// inspect command and the MCP server. It is safe for concurrent use.
type Pipeline struct {
	Registry   *syntax.Registry
	Normalizer *docstring.Normalizer
	Extractor  *extraction.Extractor
	Options    extraction.Options
}

// NewPipeline wires the grammars, quality filter, normalizer and extractor
// from cfg.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	filter := quality.NewFilter()

	normalizer, err := docstring.NewNormalizer(filter, cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}

	extractor := extraction.NewExtractor(
		extraction.NewAssembler(filter, normalizer),
		extraction.NewCorpusFilter(filter, cfg.Mining.MinDocstringTokens, cfg.Mining.MaxDocstringTokens),
		extraction.NewLineExtractor(filter),
	)

	return &Pipeline{
		Registry:   syntax.NewRegistry(),
		Normalizer: normalizer,
		Extractor:  extractor,
		Options: extraction.Options{
			Classes:      cfg.Mining.Classes,
			LineComments: cfg.Mining.LineComments,
		},
	}, nil
}

// Extract mines src with the configured options.
func (p *Pipeline) Extract(lang syntax.Language, path string, src []byte) (*extraction.Result, error) {
	return p.ExtractWith(lang, path, src, p.Options)
}

// ExtractWith mines src with explicit options.
func (p *Pipeline) ExtractWith(lang syntax.Language, path string, src []byte, opts extraction.Options) (*extraction.Result, error) {
	return p.Extractor.ExtractSource(p.Registry, lang, path, src, opts)
}

// ExtractFile reads and mines one file, detecting its language from the extension.
func (p *Pipeline) ExtractFile(path string) (*extraction.Result, error) {
	lang, ok := syntax.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", syntax.ErrUnsupportedLanguage, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Extract(lang, path, src)
}

// Close releases the normalizer cache.
func (p *Pipeline) Close() {
	p.Normalizer.Close()
}
