package extraction

import (
	"iter"
	"strings"

	"github.com/mvp-joe/docvault/internal/miner/parsers"
	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/syntax"
	"github.com/mvp-joe/docvault/internal/tokenize"
)

// Context is a code neighbour of a comment run.
type Context struct {
	Code       string       `json:"code"`
	StartPoint syntax.Point `json:"start_point"`
	EndPoint   syntax.Point `json:"end_point"`
}

// CommentContextRecord is one comment run inside a function with the code
// around it. Points are relative to the function's first row.
type CommentContextRecord struct {
	Language   syntax.Language `json:"language"`
	Path       string          `json:"path"`
	Identifier string          `json:"identifier"`
	Code       string          `json:"code"`
	CodeTokens []string        `json:"code_tokens"`

	PrevContext *Context `json:"prev_context"`
	NextContext *Context `json:"next_context"`

	StartPoint syntax.Point `json:"start_point"`
	EndPoint   syntax.Point `json:"end_point"`

	OriginalComment string   `json:"original_comment"`
	Comment         string   `json:"comment"`
	CommentTokens   []string `json:"comment_tokens"`
}

// LineExtractor pairs comments inside functions with their surrounding code.
type LineExtractor struct {
	filter quality.Filter
}

// NewLineExtractor creates a LineExtractor.
func NewLineExtractor(filter quality.Filter) *LineExtractor {
	return &LineExtractor{filter: filter}
}

// ExtractLineComments lazily yields one record per contiguous comment run
// inside every function of tree, in encounter order. A run of several
// adjacent comment nodes is reported once with a span covering the run, not
// once per node. Runs rejected by the quality filter yield nothing.
func (e *LineExtractor) ExtractLineComments(p parsers.LanguageParser, tree *syntax.Tree) iter.Seq[CommentContextRecord] {
	return func(yield func(CommentContextRecord) bool) {
		src := tree.Source
		for _, fn := range p.LocateFunctions(tree.Root) {
			comments := p.FindInlineComments(fn)
			if len(comments) == 0 {
				continue
			}

			base := CommentContextRecord{
				Language:   tree.Language,
				Identifier: p.FunctionMetadata(fn, src).Identifier,
				Code:       fn.Text(src),
				CodeTokens: nonNil(tokenize.Code(fn, src, comments)),
			}
			origin := fn.Start.Row

			for _, run := range parsers.CommentRuns(p, fn) {
				rec, ok := e.record(base, run, p, src, origin)
				if !ok {
					continue
				}
				if !yield(rec) {
					return
				}
			}
		}
	}
}

func (e *LineExtractor) record(base CommentContextRecord, run []*syntax.Node, p parsers.LanguageParser, src []byte, origin int) (CommentContextRecord, bool) {
	texts := make([]string, len(run))
	for i, n := range run {
		texts[i] = n.Text(src)
	}
	original := strings.Join(texts, "\n")

	comment, ok := e.filter.Clean(parsers.CommentBlock{Nodes: run}.RawText(src))
	if !ok {
		return CommentContextRecord{}, false
	}

	rec := base
	rec.OriginalComment = original
	rec.Comment = comment
	rec.CommentTokens = nonNil(tokenize.Text(comment))
	rec.StartPoint = relative(run[0].Start, origin)
	rec.EndPoint = relative(run[len(run)-1].End, origin)

	if prev := neighbour(run[0], p, (*syntax.Node).PrevSibling); prev != nil && prev.Named {
		rec.PrevContext = contextOf(prev, src, origin)
	}
	if next := neighbour(run[len(run)-1], p, (*syntax.Node).NextSibling); next != nil {
		if next.Kind == "block" {
			next = next.Child(0)
		}
		if next != nil {
			rec.NextContext = contextOf(next, src, origin)
		}
	}
	return rec, true
}

// neighbour steps from n in one direction to the first non-comment sibling.
func neighbour(n *syntax.Node, p parsers.LanguageParser, step func(*syntax.Node) *syntax.Node) *syntax.Node {
	for s := step(n); s != nil; s = step(s) {
		if !p.IsComment(s) {
			return s
		}
	}
	return nil
}

func contextOf(n *syntax.Node, src []byte, origin int) *Context {
	return &Context{
		Code:       n.Text(src),
		StartPoint: relative(n.Start, origin),
		EndPoint:   relative(n.End, origin),
	}
}

func relative(p syntax.Point, origin int) syntax.Point {
	return syntax.Point{Row: p.Row - origin, Column: p.Column}
}
