package docstring

import (
	"strings"

	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/tokenize"
)

// Record is the structured form of one docstring.
type Record struct {
	Summary         string `json:"summary"`
	LongDescription string `json:"long_description"`
	// Style names the convention that parsed the text; empty when Degraded.
	Style    string `json:"style"`
	Degraded bool   `json:"degraded"`

	// Parameters has exactly one entry per declared parameter name.
	Parameters map[string]*ParamEntry `json:"parameters"`
	Returns    []Entry                `json:"returns"`
	Raises     []Entry                `json:"raises"`
	// OtherParams holds documented names that are not declared.
	OtherParams map[string]*ParamEntry `json:"other_params"`
	OtherTags   []Tag                  `json:"other_tags"`
}

// ParamEntry documents one parameter. Docstring is nil when the parameter
// is undocumented or its text was rejected by the quality filter.
type ParamEntry struct {
	Docstring       *string  `json:"docstring"`
	DocstringTokens []string `json:"docstring_tokens"`
	Type            string   `json:"type,omitempty"`
	Default         string   `json:"default,omitempty"`
	IsOptional      *bool    `json:"is_optional,omitempty"`
}

// Entry documents one return value or raised error.
type Entry struct {
	Docstring       *string  `json:"docstring"`
	DocstringTokens []string `json:"docstring_tokens"`
	Type            string   `json:"type,omitempty"`
}

// Tag is any other documented tag, kept best-effort.
type Tag struct {
	Tag             string   `json:"tag"`
	Arg             string   `json:"arg,omitempty"`
	Docstring       string   `json:"docstring"`
	DocstringTokens []string `json:"docstring_tokens"`
}

// Text joins the summary and long description.
func (r *Record) Text() string {
	return joinNonEmpty(r.Summary, r.LongDescription)
}

// newRecord pre-fills a slot for every declared parameter.
func newRecord(declared []string) *Record {
	r := &Record{
		Parameters:  make(map[string]*ParamEntry, len(declared)),
		Returns:     []Entry{},
		Raises:      []Entry{},
		OtherParams: map[string]*ParamEntry{},
		OtherTags:   []Tag{},
	}
	for _, name := range declared {
		r.Parameters[name] = &ParamEntry{DocstringTokens: []string{}}
	}
	return r
}

// reconcile fills r from a parsed docstring. Documented names match declared
// ones exactly or after dropping sigils (*args, $x, &ref); anything else
// goes to OtherParams.
func reconcile(r *Record, parsed *Parsed, filter quality.Filter) {
	r.Summary = parsed.ShortDescription
	r.LongDescription = parsed.LongDescription

	for _, m := range parsed.Meta {
		switch m.Kind {
		case MetaParam:
			entry := &ParamEntry{Type: m.TypeName, Default: m.Default, IsOptional: m.IsOptional}
			entry.Docstring, entry.DocstringTokens = cleanDescription(m.Description, filter)

			if name, ok := declaredName(r.Parameters, m.ArgName); ok {
				r.Parameters[name] = entry
			} else {
				r.OtherParams[m.ArgName] = entry
			}
		case MetaReturns:
			e := Entry{Type: m.TypeName}
			e.Docstring, e.DocstringTokens = cleanDescription(m.Description, filter)
			r.Returns = append(r.Returns, e)
		case MetaRaises:
			e := Entry{Type: m.TypeName}
			e.Docstring, e.DocstringTokens = cleanDescription(m.Description, filter)
			r.Raises = append(r.Raises, e)
		default:
			// Best-effort: a tag whose text does not survive cleaning is dropped.
			if text, ok := filter.Clean(m.Description); ok {
				r.OtherTags = append(r.OtherTags, Tag{Tag: m.Tag, Arg: m.ArgName, Docstring: text, DocstringTokens: tokenize.Text(text)})
			}
		}
	}
}

func declaredName(params map[string]*ParamEntry, documented string) (string, bool) {
	if _, ok := params[documented]; ok {
		return documented, true
	}
	bare := strings.TrimLeft(documented, "*$&.")
	if _, ok := params[bare]; ok && bare != "" {
		return bare, true
	}
	return "", false
}

func cleanDescription(desc string, filter quality.Filter) (*string, []string) {
	text, ok := filter.Clean(desc)
	if !ok {
		return nil, []string{}
	}
	return &text, tokenize.Text(text)
}
