package docstring

import (
	"regexp"
	"strings"
)

// TagStyle parses block-tag conventions ("@param", "@return", "@throws").
// The dialect controls where types and names sit on a tag line.
type TagStyle struct {
	name    string
	dialect dialect
}

type dialect int

const (
	dialectJavadoc dialect = iota
	dialectJSDoc
	dialectPHPDoc
	dialectYARD
)

var (
	// Javadoc: "@param name text", "@return text", "@throws Type text".
	Javadoc = TagStyle{name: "javadoc", dialect: dialectJavadoc}
	// JSDoc: "@param {Type} [name=default] - text", "@returns {Type} text".
	JSDoc = TagStyle{name: "jsdoc", dialect: dialectJSDoc}
	// PHPDoc: "@param Type $name text", "@return Type text".
	PHPDoc = TagStyle{name: "phpdoc", dialect: dialectPHPDoc}
	// YARD: "@param name [Type] text", "@return [Type] text", "@raise [Type] text".
	YARD = TagStyle{name: "rdoc", dialect: dialectYARD}
)

func (s TagStyle) Name() string { return s.name }

func (s TagStyle) Parse(text string) (*Parsed, error) {
	lines := strings.Split(splitInlineTags(text), "\n")

	first := -1
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "@") {
			first = i
			break
		}
	}

	out := &Parsed{}
	if first < 0 {
		out.ShortDescription, out.LongDescription = splitDescription(text)
		return out, nil
	}
	out.ShortDescription, out.LongDescription = splitDescription(strings.Join(lines[:first], "\n"))

	for _, chunk := range tagChunks(lines[first:]) {
		tag, rest := cutWord(chunk[0][1:])
		tag = strings.ToLower(tag)
		if tag == "" {
			return nil, structureError(s.name, "empty tag in %q", chunk[0])
		}
		body := joinDescription(rest, chunk[1:])

		var (
			meta Meta
			err  error
		)
		switch {
		case paramKeywords[tag] && tag != "attribute":
			meta, err = s.param(body)
		case returnsKeywords[tag]:
			meta = s.typed(MetaReturns, body)
		case raisesKeywords[tag]:
			meta = s.typed(MetaRaises, body)
			if meta.TypeName == "" && s.dialect != dialectJSDoc && s.dialect != dialectYARD {
				meta.TypeName, meta.Description = cutWord(body)
			}
		default:
			meta = s.other(tag, body)
		}
		if err != nil {
			return nil, structureError(s.name, "%v in %q", err, chunk[0])
		}
		meta.Tag = tag
		out.Meta = append(out.Meta, meta)
	}

	return out, nil
}

func (s TagStyle) param(body string) (Meta, error) {
	m := Meta{Kind: MetaParam}

	switch s.dialect {
	case dialectJSDoc:
		if typ, rest, ok := braced(body, '{', '}'); ok {
			m.TypeName, body = typ, rest
		}
		if strings.HasPrefix(body, "[") {
			inner, rest, ok := braced(body, '[', ']')
			if !ok {
				return m, errBadParam
			}
			name, def, hasDefault := strings.Cut(inner, "=")
			m.ArgName, body, m.IsOptional = strings.TrimSpace(name), rest, boolPtr(true)
			if hasDefault {
				m.Default = strings.TrimSpace(def)
			}
		} else {
			m.ArgName, body = cutWord(body)
		}
		body = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), "-"))
		if strings.HasSuffix(m.TypeName, "=") {
			m.TypeName, m.IsOptional = strings.TrimSuffix(m.TypeName, "="), boolPtr(true)
		}

	case dialectPHPDoc:
		word, rest := cutWord(body)
		if !strings.HasPrefix(word, "$") && !strings.HasPrefix(word, "...$") && !strings.HasPrefix(word, "&$") {
			m.TypeName = word
			word, rest = cutWord(rest)
		}
		m.ArgName, body = strings.TrimLeft(word, ".&$"), rest
		if m.ArgName == "" || word == m.ArgName {
			return m, errBadParam
		}

	case dialectYARD:
		if typ, rest, ok := braced(body, '[', ']'); ok {
			m.TypeName, body = typ, rest
			m.ArgName, body = cutWord(body)
		} else {
			m.ArgName, body = cutWord(body)
			if typ, rest, ok := braced(body, '[', ']'); ok {
				m.TypeName, body = typ, rest
			}
		}

	default:
		m.ArgName, body = cutWord(body)
	}

	if m.ArgName == "" {
		return m, errBadParam
	}
	m.Description = strings.TrimSpace(body)
	if m.Default == "" {
		m.Default = defaultFrom(m.Description)
	}
	return m, nil
}

// typed handles return and raise tags, whose leading type is braced in
// JSDoc and YARD and a bare word in PHPDoc.
func (s TagStyle) typed(kind MetaKind, body string) Meta {
	m := Meta{Kind: kind}
	switch s.dialect {
	case dialectJSDoc:
		if typ, rest, ok := braced(body, '{', '}'); ok {
			m.TypeName, body = typ, rest
		}
	case dialectYARD:
		if typ, rest, ok := braced(body, '[', ']'); ok {
			m.TypeName, body = typ, rest
		}
	case dialectPHPDoc:
		m.TypeName, body = cutWord(body)
	}
	m.Description = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), "-"))
	return m
}

// other keeps unknown tags best-effort. YARD options name their hash.
func (s TagStyle) other(tag, body string) Meta {
	m := Meta{Kind: MetaOther, Description: body}
	if s.dialect == dialectYARD && tag == "option" {
		m.ArgName, m.Description = cutWord(body)
	}
	return m
}

// inlineTag finds a block tag that follows text on the same line, as in a
// one-line comment "Adds x. @param x the value".
var inlineTag = regexp.MustCompile(`\s@(?:param|parameter|arg|argument|key|keyword|type|rtype|returns?|raises?|except|exception|throws?)\b`)

// splitInlineTags moves every block tag that follows text onto its own line.
// Inline tags such as {@link X} are left alone.
func splitInlineTags(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		for {
			loc := inlineTag.FindStringIndex(l)
			if loc == nil {
				break
			}
			if head := strings.TrimRight(l[:loc[0]], " \t"); strings.TrimSpace(head) != "" {
				out = append(out, head)
			}
			l = strings.TrimLeft(l[loc[0]:], " \t")
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

var errBadParam = structureError("tag", "param tag without a name")

// cutWord splits s at the first run of whitespace.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// braced reads a balanced open...close group at the start of s.
func braced(s string, open, close byte) (inner, rest string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != open {
		return "", s, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[1:i]), strings.TrimSpace(s[i+1:]), true
			}
		}
	}
	return "", s, false
}
