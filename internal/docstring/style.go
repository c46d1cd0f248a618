// Package docstring detects documentation styles and normalizes doc comments
// into structured records.
package docstring

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// ErrStructure is returned by a Style when text is malformed for that style.
var ErrStructure = errors.New("malformed docstring")

// MetaKind classifies a parsed metadata entry.
type MetaKind string

const (
	MetaParam   MetaKind = "param"
	MetaReturns MetaKind = "returns"
	MetaRaises  MetaKind = "raises"
	MetaOther   MetaKind = "other"
)

// Meta is one tagged entry of a parsed docstring.
type Meta struct {
	Kind MetaKind
	// Tag is the tag or section name as written, lowercased (param, returns, since, example).
	Tag         string
	ArgName     string
	TypeName    string
	Default     string
	IsOptional  *bool
	Description string
}

// Parsed is the style-independent result of parsing one docstring.
type Parsed struct {
	ShortDescription string
	LongDescription  string
	Meta             []Meta
}

// Style parses text written in one documentation convention.
type Style interface {
	Name() string
	// Parse returns ErrStructure (wrapped) when text violates the style.
	Parse(text string) (*Parsed, error)
}

// StylesFor returns the candidate styles for lang in preference order.
// Languages without a documentation convention get none.
func StylesFor(lang syntax.Language) []Style {
	switch lang {
	case syntax.Python:
		return []Style{ReST{}, Google{}, NumPy{}, Epydoc{}}
	case syntax.Java, syntax.C, syntax.CPP:
		return []Style{Javadoc}
	case syntax.JavaScript, syntax.TypeScript, syntax.TSX:
		return []Style{JSDoc}
	case syntax.Ruby:
		return []Style{YARD}
	case syntax.PHP:
		return []Style{PHPDoc}
	case syntax.CSharp:
		return []Style{XMLDoc{}}
	case syntax.Rust:
		return []Style{Rustdoc{}}
	default:
		return nil
	}
}

// BestStyle parses text with every candidate and returns the successful parse
// with the most metadata entries. Ties go to the earlier candidate. ok is
// false when no candidate parses, which callers treat as a degraded result.
func BestStyle(candidates []Style, text string) (best Style, parsed *Parsed, ok bool) {
	for _, style := range candidates {
		p, err := style.Parse(text)
		if err != nil {
			continue
		}
		if !ok || len(p.Meta) > len(parsed.Meta) {
			best, parsed, ok = style, p, true
		}
	}
	return best, parsed, ok
}

func structureError(style, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrStructure, style, fmt.Sprintf(format, args...))
}

// splitDescription splits the narrative part into the first line and the rest.
func splitDescription(desc string) (short, long string) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", ""
	}
	parts := strings.SplitN(desc, "\n", 2)
	short = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		long = strings.TrimSpace(parts[1])
	}
	return short, long
}

// joinDescription folds continuation lines into one description. Indented
// lines are dedented relative to each other; blank lines are kept.
func joinDescription(first string, rest []string) string {
	lines := append([]string{strings.TrimSpace(first)}, dedentLines(rest)...)
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func dedentLines(lines []string) []string {
	margin := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := len(l) - len(strings.TrimLeft(l, " \t"))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		l = strings.TrimRight(l, " \t")
		if len(l) >= margin && margin > 0 {
			l = l[margin:]
		}
		out[i] = l
	}
	return out
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func boolPtr(b bool) *bool { return &b }

// optionalType strips an optional marker from a type expression:
// "int, optional", "int?", "Optional[int]" stay informative as types.
func optionalType(typ string) (string, *bool) {
	t := strings.TrimSpace(typ)
	switch {
	case strings.HasSuffix(t, ", optional"):
		return strings.TrimSpace(strings.TrimSuffix(t, ", optional")), boolPtr(true)
	case t == "optional":
		return "", boolPtr(true)
	case strings.HasSuffix(t, "?"):
		return strings.TrimSuffix(t, "?"), boolPtr(true)
	}
	return t, nil
}

var defaultPhrase = regexp.MustCompile(`(?i)\bdefaults?(?: value)?(?: is| to|:)\s+("[^"]*"|'[^']*'|` + "`[^`]*`" + `|[^\s,;]+?)\.?(?:\s|$)`)

// defaultFrom extracts a default value from phrases like "Defaults to 3."
func defaultFrom(desc string) string {
	m := defaultPhrase.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], "`")
}
