package quality

import (
	"regexp"
	"strings"
	"unicode"
)

// Filter judges whether documentation text is worth keeping.
type Filter interface {
	// IsInformative rejects boilerplate or auto-generated text for an identifier.
	IsInformative(identifier, text string) bool

	// Clean normalizes text and reports false when it should be dropped
	// (placeholder, non-literal, interrogative or generated content).
	Clean(text string) (string, bool)
}

// DefaultFilter is the heuristic Filter used by the miner.
type DefaultFilter struct{}

// NewFilter returns the default heuristic filter.
func NewFilter() *DefaultFilter {
	return &DefaultFilter{}
}

var (
	decorationLine   = regexp.MustCompile(`^[\s\-=*#~_+/<>|.]+$`)
	underDevelopment = regexp.MustCompile(`(?i)^\s*(todo|fixme|xxx|hack|tbd)\b`)
	generatedMarker  = regexp.MustCompile(`(?i)(auto-?generated|do not (edit|modify)|@generated|<editor-fold|method stub|insert the method's description here|(file|code|method) (was|is) generated)`)
	codeLine         = regexp.MustCompile(`(;\s*$|\{\s*$|^\s*\}\s*$|^\s*(return|if|for|while|import|#include|var|let|const|def|func|public|private)\b.*[;({=]\s*$)`)
	sentenceEnd      = regexp.MustCompile(`[.!?]+`)

	boilerplateSummary = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(the )?(default |empty |copy )?constructor\.?$`),
		regexp.MustCompile(`(?i)^(getter|setter|accessor|mutator)( method)?( for .*)?\.?$`),
		regexp.MustCompile(`(?i)^(method|function) description\.?$`),
		regexp.MustCompile(`(?i)^(description of the method|no description|undocumented)\.?$`),
		regexp.MustCompile(`(?i)^(\{@inheritdoc\}|@inheritdoc|inheritdoc|inherited doc)\.?$`),
		regexp.MustCompile(`(?i)^(see|overrides?) (also )?(super|parent)(class)?\b`),
	}
)

// Clean dedents text, drops decoration lines and blank runs, and rejects
// placeholder, generated, interrogative, non-literal or commented-out code
// content. It is idempotent: Clean(Clean(x)) == Clean(x).
func (f *DefaultFilter) Clean(text string) (string, bool) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	prevText := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) != "" && decorationLine.MatchString(line) {
			// Underlines directly below a heading carry section structure.
			if prevText && isUnderline(line) {
				lines = append(lines, line)
				prevText = false
			}
			continue
		}
		lines = append(lines, line)
		prevText = strings.TrimSpace(line) != ""
	}

	cleaned := strings.TrimSpace(Dedent(collapseBlankLines(strings.Join(lines, "\n"))))
	if cleaned == "" {
		return "", false
	}

	switch {
	case underDevelopment.MatchString(cleaned):
		return "", false
	case generatedMarker.MatchString(cleaned):
		return "", false
	case !isLiteral(cleaned):
		return "", false
	case isInterrogative(cleaned):
		return "", false
	case looksLikeCode(cleaned):
		return "", false
	}

	return cleaned, true
}

// IsInformative reports false for boilerplate text: stock accessor or
// constructor phrases, and summaries that only restate the identifier.
func (f *DefaultFilter) IsInformative(identifier, text string) bool {
	summary := firstLine(text)
	if summary == "" {
		return false
	}

	for _, re := range boilerplateSummary {
		if re.MatchString(summary) {
			return false
		}
	}
	if generatedMarker.MatchString(text) {
		return false
	}

	idWords := SplitIdentifier(identifier)
	if len(idWords) == 0 {
		return true
	}

	known := make(map[string]bool, len(idWords)+len(fillerWords))
	for _, w := range idWords {
		known[stem(w)] = true
	}
	for w := range fillerWords {
		known[stem(w)] = true
	}

	words := summaryWords(summary)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !known[stem(w)] {
			return true
		}
	}
	return false
}

var fillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "this": true, "that": true,
	"for": true, "to": true, "is": true, "get": true, "set": true, "return": true,
	"value": true, "method": true, "function": true, "new": true, "given": true,
	"instance": true, "object": true, "field": true, "property": true, "it": true,
	"its": true, "current": true, "specified": true,
}

// stem drops a plural or third-person "s" so "gets" matches "get".
func stem(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}

// SplitIdentifier splits camelCase, PascalCase and snake_case names into
// lowercase words.
func SplitIdentifier(identifier string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(identifier)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			// Break before an upper-case letter that starts a new word:
			// fooBar -> foo|Bar, HTTPServer -> HTTP|Server.
			if len(cur) > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || nextLower {
					flush()
				}
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

func summaryWords(summary string) []string {
	var words []string
	for _, w := range strings.FieldsFunc(summary, func(r rune) bool { return !unicode.IsLetter(r) }) {
		words = append(words, strings.ToLower(w))
	}
	return words
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// isUnderline matches a run of one repeated '-', '=' or '~' character.
func isUnderline(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) < 3 || !strings.ContainsAny(line[:1], "-=~") {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}

func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// isLiteral requires at least one real word and a reasonable share of letters.
func isLiteral(text string) bool {
	letters, visible := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if visible == 0 || letters*10 < visible*3 {
		return false
	}
	for _, w := range summaryWords(text) {
		if len(w) >= 2 {
			return true
		}
	}
	return false
}

// isInterrogative reports text whose every sentence is a question.
func isInterrogative(text string) bool {
	terminators := sentenceEnd.FindAllString(text, -1)
	if len(terminators) == 0 {
		return false
	}
	for _, t := range terminators {
		if !strings.Contains(t, "?") {
			return false
		}
	}
	// Trailing words after the last "?" form an unterminated statement.
	last := strings.LastIndex(text, "?")
	return strings.TrimSpace(text[last+1:]) == ""
}

func looksLikeCode(text string) bool {
	total, code := 0, 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if codeLine.MatchString(line) {
			code++
		}
	}
	return total > 0 && code*2 > total
}
