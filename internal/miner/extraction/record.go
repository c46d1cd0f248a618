// Package extraction turns located code elements into training records.
package extraction

import (
	"strings"

	"github.com/mvp-joe/docvault/internal/docstring"
	"github.com/mvp-joe/docvault/internal/miner/parsers"
	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/syntax"
	"github.com/mvp-joe/docvault/internal/tokenize"
)

// OutputRecord pairs one documented function or class with its docstring.
type OutputRecord struct {
	Language syntax.Language     `json:"language"`
	Path     string              `json:"path"`
	Kind     parsers.ElementKind `json:"kind"`

	// Identifier is the dot-joined scope and name.
	Identifier   string   `json:"identifier"`
	Parameters   []string `json:"parameters"`
	Superclasses []string `json:"superclasses,omitempty"`

	Code       string   `json:"code"`
	CodeTokens []string `json:"code_tokens"`

	OriginalDocstring string            `json:"original_docstring"`
	Docstring         string            `json:"docstring"`
	DocstringTokens   []string          `json:"docstring_tokens"`
	DocstringParam    *docstring.Record `json:"docstring_param"`

	// Comment holds the cleaned inline comments of the element.
	Comment []string `json:"comment"`

	StartPoint syntax.Point `json:"start_point"`
	EndPoint   syntax.Point `json:"end_point"`
}

// Normalizer is the part of docstring.Normalizer the assembler needs.
type Normalizer interface {
	Normalize(raw string, declared []string, lang syntax.Language) *docstring.Record
}

// Assembler builds OutputRecords from located elements.
type Assembler struct {
	filter     quality.Filter
	normalizer Normalizer
}

// NewAssembler creates an Assembler.
func NewAssembler(filter quality.Filter, normalizer Normalizer) *Assembler {
	return &Assembler{filter: filter, normalizer: normalizer}
}

// Assemble checks the skip conditions in order (missing identifier,
// blacklisted name, no attached documentation, uninformative text) and
// returns the matching sentinel, or the assembled record.
func (a *Assembler) Assemble(p parsers.LanguageParser, el parsers.Element, tree *syntax.Tree) (*OutputRecord, error) {
	if el.Identifier == "" {
		return nil, ErrMissingIdentifier
	}
	if p.Blacklisted(el.Identifier) {
		return nil, ErrBlacklisted
	}

	block := p.FindDocstringBlock(el.Node)
	raw := block.RawText(tree.Source)
	if raw == "" {
		return nil, ErrAttachmentMiss
	}
	if !a.filter.IsInformative(el.Identifier, raw) {
		return nil, ErrQualityRejection
	}

	src := tree.Source
	inline := p.FindInlineComments(el.Node)
	exclude := append(append([]*syntax.Node{}, inline...), block.Nodes...)

	rec := a.normalizer.Normalize(raw, el.Parameters, tree.Language)

	out := &OutputRecord{
		Language:          tree.Language,
		Kind:              el.Kind,
		Identifier:        el.Path(),
		Parameters:        nonNil(el.Parameters),
		Superclasses:      el.Superclasses,
		Code:              el.Node.Text(src),
		CodeTokens:        nonNil(tokenize.Code(el.Node, src, exclude)),
		OriginalDocstring: raw,
		Docstring:         narrative(rec, raw),
		DocstringParam:    rec,
		Comment:           a.cleanComments(inline, src),
		StartPoint:        el.Node.Start,
		EndPoint:          el.Node.End,
	}
	out.DocstringTokens = nonNil(tokenize.Text(out.Docstring))
	return out, nil
}

// narrative is the prose of a docstring without its tags. Text that is all
// tags falls back to the raw comment.
func narrative(rec *docstring.Record, raw string) string {
	if rec == nil {
		return raw
	}
	if text := strings.TrimSpace(rec.Text()); text != "" {
		return text
	}
	return raw
}

func (a *Assembler) cleanComments(nodes []*syntax.Node, src []byte) []string {
	comments := []string{}
	for _, n := range nodes {
		if text, ok := a.filter.Clean(quality.StripDelimiters(n.Text(src))); ok {
			comments = append(comments, text)
		}
	}
	return comments
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
