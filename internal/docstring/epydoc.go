package docstring

import (
	"regexp"
	"strings"
)

// Epydoc parses "@param x: ...", "@type x: ...", "@return: ...",
// "@rtype: ..." and "@raise E: ..." fields. Every field needs its colon.
type Epydoc struct{}

func (Epydoc) Name() string { return "epydoc" }

var epydocField = regexp.MustCompile(`^@(\w+)(?:\s+([^:]+?))?\s*:\s*(.*)$`)

func (s Epydoc) Parse(text string) (*Parsed, error) {
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

	types := map[string]string{}
	var rtype string
	hasRType := false

	for _, chunk := range tagChunks(lines[first:]) {
		m := epydocField.FindStringSubmatch(chunk[0])
		if m == nil {
			return nil, structureError(s.Name(), "field %q is missing its colon", chunk[0])
		}
		key, arg := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		desc := joinDescription(m[3], chunk[1:])

		switch {
		case paramKeywords[key]:
			if arg == "" {
				return nil, structureError(s.Name(), "param field without a name: %q", chunk[0])
			}
			out.Meta = append(out.Meta, Meta{Kind: MetaParam, Tag: key, ArgName: arg, Description: desc, Default: defaultFrom(desc)})
		case key == "type":
			types[arg] = desc
		case key == "rtype" || key == "returntype":
			rtype, hasRType = desc, true
		case returnsKeywords[key]:
			out.Meta = append(out.Meta, Meta{Kind: MetaReturns, Tag: key, Description: desc})
		case raisesKeywords[key]:
			out.Meta = append(out.Meta, Meta{Kind: MetaRaises, Tag: key, TypeName: arg, Description: desc})
		default:
			out.Meta = append(out.Meta, Meta{Kind: MetaOther, Tag: key, ArgName: arg, Description: desc})
		}
	}

	for i := range out.Meta {
		m := &out.Meta[i]
		if m.Kind == MetaParam {
			if typ, ok := types[m.ArgName]; ok {
				m.TypeName, m.IsOptional = optionalType(typ)
			}
		}
		if m.Kind == MetaReturns && hasRType {
			m.TypeName = rtype
		}
	}

	return out, nil
}

// tagChunks groups lines into chunks that each start with an @tag line.
func tagChunks(lines []string) [][]string {
	var chunks [][]string
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "@") || len(chunks) == 0 {
			chunks = append(chunks, []string{strings.TrimSpace(l)})
			continue
		}
		chunks[len(chunks)-1] = append(chunks[len(chunks)-1], l)
	}
	return chunks
}
