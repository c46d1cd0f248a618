package extraction

import (
	"fmt"

	"github.com/mvp-joe/docvault/internal/miner/parsers"
	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// Options selects what Extract produces.
type Options struct {
	Classes      bool
	LineComments bool
}

// Result holds everything mined from one syntax tree.
type Result struct {
	Functions []OutputRecord
	Classes   []OutputRecord
	Lines     []CommentContextRecord
	// Skips counts elements that produced no record, by reason.
	Skips map[string]int
}

// Records returns functions followed by classes.
func (r *Result) Records() []OutputRecord {
	out := make([]OutputRecord, 0, len(r.Functions)+len(r.Classes))
	out = append(out, r.Functions...)
	return append(out, r.Classes...)
}

// Extractor runs the assembler, corpus filter and line extractor over a tree.
// It holds no per-tree state and is safe for concurrent use.
type Extractor struct {
	assembler *Assembler
	corpus    *CorpusFilter
	lines     *LineExtractor
}

// NewExtractor creates an Extractor.
func NewExtractor(assembler *Assembler, corpus *CorpusFilter, lines *LineExtractor) *Extractor {
	return &Extractor{assembler: assembler, corpus: corpus, lines: lines}
}

// NewDefaultExtractor wires an Extractor from a filter and normalizer with
// the default token band.
func NewDefaultExtractor(filter quality.Filter, normalizer Normalizer) *Extractor {
	return NewExtractor(
		NewAssembler(filter, normalizer),
		NewCorpusFilter(filter, DefaultMinTokens, DefaultMaxTokens),
		NewLineExtractor(filter),
	)
}

// ExtractSource parses src and extracts it. A malformed file returns the
// registry's *syntax.ParseError and no records.
func (x *Extractor) ExtractSource(reg *syntax.Registry, lang syntax.Language, path string, src []byte, opts Options) (*Result, error) {
	tree, err := reg.ParseFile(lang, path, src)
	if err != nil {
		return nil, err
	}
	return x.Extract(tree, path, opts)
}

// Extract mines one tree. A failure inside one element is counted as a
// skip and never affects its siblings.
func (x *Extractor) Extract(tree *syntax.Tree, path string, opts Options) (*Result, error) {
	p, err := parsers.For(tree.Language)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Functions: []OutputRecord{},
		Classes:   []OutputRecord{},
		Lines:     []CommentContextRecord{},
		Skips:     map[string]int{},
	}

	res.Functions = x.records(p, parsers.Functions(p, tree), tree, path, res.Skips)
	if opts.Classes {
		res.Classes = x.records(p, parsers.Classes(p, tree), tree, path, res.Skips)
	}
	if opts.LineComments {
		for rec := range x.lines.ExtractLineComments(p, tree) {
			rec.Path = path
			res.Lines = append(res.Lines, rec)
		}
	}
	return res, nil
}

func (x *Extractor) records(p parsers.LanguageParser, elems []parsers.Element, tree *syntax.Tree, path string, skips map[string]int) []OutputRecord {
	out := []OutputRecord{}
	for _, el := range elems {
		rec, err := x.element(p, el, tree)
		if err != nil {
			reason := SkipReason(err)
			if reason == "" {
				reason = ReasonPanic
			}
			skips[reason]++
			continue
		}
		rec.Path = path
		out = append(out, *rec)
	}
	return out
}

// element assembles and filters one element, converting a panic into an error.
func (x *Extractor) element(p parsers.LanguageParser, el parsers.Element, tree *syntax.Tree) (rec *OutputRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("failed to extract %s: %v", el.Path(), r)
		}
	}()

	rec, err = x.assembler.Assemble(p, el, tree)
	if err != nil {
		return nil, err
	}
	if err := x.corpus.Accept(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
