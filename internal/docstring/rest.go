package docstring

import (
	"strings"
)

// ReST parses Sphinx field lists: ":param int x: ...", ":returns: ...",
// ":raises ValueError: ...", with ":type x:" and ":rtype:" supplying types.
type ReST struct{}

func (ReST) Name() string { return "rest" }

var (
	paramKeywords   = keywordSet("param", "parameter", "arg", "argument", "attribute", "key", "keyword")
	returnsKeywords = keywordSet("return", "returns")
	raisesKeywords  = keywordSet("raises", "raise", "except", "exception", "throws", "throw")
)

func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func (s ReST) Parse(text string) (*Parsed, error) {
	lines := strings.Split(text, "\n")

	first := -1
	for i, l := range lines {
		if strings.HasPrefix(l, ":") {
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

	var chunks [][]string
	for _, l := range lines[first:] {
		if strings.HasPrefix(l, ":") || len(chunks) == 0 {
			chunks = append(chunks, []string{l})
			continue
		}
		chunks[len(chunks)-1] = append(chunks[len(chunks)-1], l)
	}

	types := map[string]string{}
	var rtype string
	hasRType := false

	for _, chunk := range chunks {
		head := chunk[0][1:]
		end := strings.Index(head, ":")
		if end < 0 {
			return nil, structureError(s.Name(), "field %q has no closing colon", chunk[0])
		}
		args := strings.Fields(head[:end])
		if len(args) == 0 {
			return nil, structureError(s.Name(), "empty field %q", chunk[0])
		}
		desc := joinDescription(head[end+1:], chunk[1:])
		key := strings.ToLower(args[0])

		switch {
		case paramKeywords[key]:
			if len(args) < 2 {
				return nil, structureError(s.Name(), "param field without a name: %q", chunk[0])
			}
			m := Meta{Kind: MetaParam, Tag: key, ArgName: args[len(args)-1], Description: desc, Default: defaultFrom(desc)}
			if len(args) > 2 {
				m.TypeName, m.IsOptional = optionalType(strings.Join(args[1:len(args)-1], " "))
			}
			out.Meta = append(out.Meta, m)
		case key == "type":
			if len(args) >= 2 {
				types[args[len(args)-1]] = desc
			}
		case key == "rtype":
			rtype, hasRType = desc, true
		case returnsKeywords[key]:
			out.Meta = append(out.Meta, Meta{Kind: MetaReturns, Tag: key, Description: desc})
		case raisesKeywords[key]:
			m := Meta{Kind: MetaRaises, Tag: key, Description: desc}
			if len(args) > 1 {
				m.TypeName = strings.Join(args[1:], " ")
			}
			out.Meta = append(out.Meta, m)
		default:
			out.Meta = append(out.Meta, Meta{Kind: MetaOther, Tag: key, ArgName: strings.Join(args[1:], " "), Description: desc})
		}
	}

	returned := false
	for i := range out.Meta {
		m := &out.Meta[i]
		switch m.Kind {
		case MetaParam:
			if typ, ok := types[m.ArgName]; ok && m.TypeName == "" {
				m.TypeName, m.IsOptional = optionalType(typ)
			}
		case MetaReturns:
			returned = true
			if hasRType && m.TypeName == "" {
				m.TypeName = rtype
			}
		}
	}
	if hasRType && !returned {
		out.Meta = append(out.Meta, Meta{Kind: MetaReturns, Tag: "rtype", TypeName: rtype})
	}

	return out, nil
}
