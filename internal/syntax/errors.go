package syntax

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLanguage indicates a language with no registered grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrGrammarUnavailable indicates the parser could not be configured for a grammar.
	ErrGrammarUnavailable = errors.New("grammar unavailable")
)

// ParseError reports source text that could not be parsed into a clean tree.
// Callers skip the whole file when they see it.
type ParseError struct {
	Language Language
	Path     string
	Point    Point
	Reason   string
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<source>"
	}
	return fmt.Sprintf("failed to parse %s source %s at %d:%d: %s",
		e.Language, where, e.Point.Row+1, e.Point.Column+1, e.Reason)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
