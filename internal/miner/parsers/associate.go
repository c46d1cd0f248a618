package parsers

import (
	"strings"

	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// maxGap is the largest row distance between a comment and the node that
// follows it for the two to count as contiguous. A gap of 2 means a blank line.
const maxGap = 1

// CommentBlock is a run of contiguous comment nodes documenting one element.
type CommentBlock struct {
	Nodes []*syntax.Node
}

func (b CommentBlock) Empty() bool { return len(b.Nodes) == 0 }

// Span covers the first to the last node of the block.
func (b CommentBlock) Span() (start, end syntax.Point) {
	if b.Empty() {
		return syntax.Point{}, syntax.Point{}
	}
	return b.Nodes[0].Start, b.Nodes[len(b.Nodes)-1].End
}

// RawText joins the block's nodes with newlines after removing comment
// delimiters. String-literal docstrings lose their quotes instead. Lines
// holding =begin/=end markers are dropped whole.
func (b CommentBlock) RawText(src []byte) string {
	var lines []string
	for _, n := range b.Nodes {
		text := strings.TrimRight(n.Text(src), "\r\n")
		if n.Kind == "string" {
			text = unquote(text)
		} else {
			text = quality.StripDelimiters(text)
		}
		for _, line := range strings.Split(text, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "=begin") || strings.HasPrefix(trimmed, "=end") {
				continue
			}
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// unquote strips string prefixes and matching quotes from a literal.
func unquote(lit string) string {
	lit = strings.TrimLeft(lit, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(lit) >= 2*len(q) && strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}

// accumulator is the comment run directly before the sibling being visited.
// Each step returns a new value; a non-comment resets it to empty.
type accumulator struct {
	run []*syntax.Node
}

func (a accumulator) step(n *syntax.Node, isComment func(*syntax.Node) bool) accumulator {
	if !isComment(n) {
		return accumulator{}
	}
	if len(a.run) > 0 && gap(a.run[len(a.run)-1], n) > maxGap {
		return accumulator{run: []*syntax.Node{n}}
	}
	run := make([]*syntax.Node, len(a.run), len(a.run)+1)
	copy(run, a.run)
	return accumulator{run: append(run, n)}
}

// before returns the run if its last comment is dense with the anchor.
func (a accumulator) before(anchor *syntax.Node) []*syntax.Node {
	if len(a.run) == 0 || gap(a.run[len(a.run)-1], anchor) > maxGap {
		return nil
	}
	return a.run
}

// gap is the row distance from the end of first to the start of next.
func gap(first, next *syntax.Node) int {
	return next.Start.Row - lastRow(first)
}

// lastRow is the last row holding text of n. Line comments whose span
// includes the trailing newline end at column 0 of the following row.
func lastRow(n *syntax.Node) int {
	if n.End.Column == 0 && n.End.Row > n.Start.Row {
		return n.End.Row - 1
	}
	return n.End.Row
}

// precedingComments finds the documentation run for node. It starts from the
// node's previous sibling, retargeting to the parent's previous sibling when
// the node leads a wrapper (decorators, export statements, template
// declarations), and folds the siblings before the anchor left to right.
// Later members of a grouped declaration never inherit the group's comment.
func precedingComments(node *syntax.Node, isComment func(*syntax.Node) bool, transparent map[string]bool) []*syntax.Node {
	anchor := skipTransparent(node, transparent)
	if !isComment(anchor.PrevSibling()) && leadsParent(anchor, transparent) {
		if parent := anchor.Parent(); isComment(parent.PrevSibling()) {
			anchor = skipTransparent(parent, transparent)
		}
	}
	if anchor.Parent() == nil {
		return nil
	}

	var acc accumulator
	for _, sib := range anchor.Parent().Children() {
		if sib == anchor {
			break
		}
		acc = acc.step(sib, isComment)
	}
	return acc.before(anchor)
}

// leadsParent reports whether only anonymous tokens and transparent siblings
// precede node inside its parent.
func leadsParent(node *syntax.Node, transparent map[string]bool) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	for _, sib := range parent.Children() {
		if sib == node {
			return true
		}
		if sib.Named && !transparent[sib.Kind] {
			return false
		}
	}
	return false
}

// skipTransparent moves the anchor over attribute-like siblings that sit
// between documentation and the element.
func skipTransparent(node *syntax.Node, transparent map[string]bool) *syntax.Node {
	anchor := node
	for prev := anchor.PrevSibling(); prev != nil && transparent[prev.Kind]; prev = anchor.PrevSibling() {
		anchor = prev
	}
	return anchor
}

// runAround returns the contiguous comment run containing c, scanning both
// directions with the density rule.
func runAround(c *syntax.Node, isComment func(*syntax.Node) bool) []*syntax.Node {
	run := []*syntax.Node{c}
	for prev, cur := c.PrevSibling(), c; isComment(prev) && gap(prev, cur) <= maxGap; prev, cur = prev.PrevSibling(), prev {
		run = append([]*syntax.Node{prev}, run...)
	}
	for next, cur := c.NextSibling(), c; isComment(next) && gap(cur, next) <= maxGap; next, cur = next.NextSibling(), next {
		run = append(run, next)
	}
	return run
}

// CommentRuns groups the comments nested in node into contiguous runs in
// encounter order. Each comment belongs to exactly one run.
func CommentRuns(p LanguageParser, node *syntax.Node) [][]*syntax.Node {
	seen := make(map[*syntax.Node]bool)
	var runs [][]*syntax.Node
	for _, c := range p.FindInlineComments(node) {
		if seen[c] {
			continue
		}
		run := runAround(c, p.IsComment)
		for _, n := range run {
			seen[n] = true
		}
		runs = append(runs, run)
	}
	return runs
}
