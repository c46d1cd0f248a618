package extraction

import (
	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/tokenize"
)

// Default docstring token band, inclusive.
const (
	DefaultMinTokens = 4
	DefaultMaxTokens = 255
)

// CorpusFilter is the final pass over assembled records. It bounds the
// token count of the original docstring and replaces the docstring with
// its cleaned form.
type CorpusFilter struct {
	MinTokens int
	MaxTokens int
	filter    quality.Filter
}

// NewCorpusFilter creates a CorpusFilter. Non-positive bounds take the defaults.
func NewCorpusFilter(filter quality.Filter, minTokens, maxTokens int) *CorpusFilter {
	if minTokens <= 0 {
		minTokens = DefaultMinTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &CorpusFilter{MinTokens: minTokens, MaxTokens: maxTokens, filter: filter}
}

// Accept returns ErrTokenBand or ErrQualityRejection for records that
// leave the corpus. Accepted records get Docstring and DocstringTokens
// recomputed from the cleaned text.
func (c *CorpusFilter) Accept(r *OutputRecord) error {
	n := len(tokenize.Text(r.OriginalDocstring))
	if n < c.MinTokens || n > c.MaxTokens {
		return ErrTokenBand
	}

	cleaned, ok := c.filter.Clean(r.Docstring)
	if !ok {
		return ErrQualityRejection
	}
	r.Docstring = cleaned
	r.DocstringTokens = nonNil(tokenize.Text(cleaned))
	return nil
}
