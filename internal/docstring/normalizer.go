package docstring

import (
	"fmt"
	"strings"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// DefaultCacheSize bounds the memo of normalized docstrings.
const DefaultCacheSize = 10000

// Normalizer turns raw doc comments into Records. Results are memoized per
// (language, declared parameters, text); returned records are shared and
// must not be modified.
type Normalizer struct {
	filter quality.Filter
	memo   otter.Cache[string, *Record]
}

// NewNormalizer creates a Normalizer with a memo of at most cacheSize records.
func NewNormalizer(filter quality.Filter, cacheSize int) (*Normalizer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	memo, err := otter.MustBuilder[string, *Record](cacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build docstring cache: %w", err)
	}
	return &Normalizer{filter: filter, memo: memo}, nil
}

// Close releases the memo.
func (n *Normalizer) Close() {
	n.memo.Close()
}

// Normalize returns nil for empty text. Otherwise it picks the best style
// for lang and reconciles the parse against the declared parameters. When
// no style parses, the record is Degraded with the dedented text as summary.
func (n *Normalizer) Normalize(raw string, declared []string, lang syntax.Language) *Record {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	key := memoKey(raw, declared, lang)
	if r, ok := n.memo.Get(key); ok {
		return r
	}

	r := Normalize(raw, declared, lang, n.filter)
	n.memo.Set(key, r)
	return r
}

// Normalize is the uncached form of Normalizer.Normalize.
func Normalize(raw string, declared []string, lang syntax.Language, filter quality.Filter) *Record {
	text := quality.Dedent(raw)
	if text == "" {
		return nil
	}

	r := newRecord(declared)
	style, parsed, ok := BestStyle(StylesFor(lang), text)
	if !ok {
		r.Summary = text
		r.Degraded = true
		return r
	}

	r.Style = style.Name()
	reconcile(r, parsed, filter)
	return r
}

func memoKey(raw string, declared []string, lang syntax.Language) string {
	var b strings.Builder
	b.WriteString(string(lang))
	for _, d := range declared {
		b.WriteByte(0)
		b.WriteString(d)
	}
	b.WriteString("\x00\x00")
	b.WriteString(raw)
	return b.String()
}
