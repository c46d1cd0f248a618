package docstring

import (
	"regexp"
	"strings"
)

// NumPy parses numpydoc sections: a title line underlined with dashes,
// followed by "name : type" items whose descriptions are indented.
type NumPy struct{}

func (NumPy) Name() string { return "numpydoc" }

var numpySections = map[string]sectionKind{
	"parameters":       sectionParams,
	"other parameters": sectionParams,
	"receives":         sectionParams,
	"attributes":       sectionOther,
	"returns":          sectionReturns,
	"yields":           sectionYields,
	"raises":           sectionRaises,
	"warns":            sectionRaises,
	"see also":         sectionOther,
	"notes":            sectionOther,
	"references":       sectionOther,
	"examples":         sectionOther,
	"warnings":         sectionOther,
	"methods":          sectionOther,
}

var numpyUnderline = regexp.MustCompile(`^\s*-{3,}\s*$`)

func (s NumPy) Parse(text string) (*Parsed, error) {
	lines := strings.Split(text, "\n")

	type section struct {
		title string
		kind  sectionKind
		body  []string
	}
	var sections []section
	descEnd := len(lines)

	for i := 0; i < len(lines); i++ {
		l := lines[i]
		title := strings.ToLower(strings.TrimSpace(l))
		kind, known := numpySections[title]
		if known && i+1 < len(lines) && numpyUnderline.MatchString(lines[i+1]) {
			if len(sections) == 0 {
				descEnd = i
			}
			sections = append(sections, section{title: title, kind: kind})
			i++
			continue
		}
		if len(sections) > 0 {
			sections[len(sections)-1].body = append(sections[len(sections)-1].body, l)
		}
	}

	out := &Parsed{}
	out.ShortDescription, out.LongDescription = splitDescription(strings.Join(lines[:descEnd], "\n"))

	for _, sec := range sections {
		if sec.kind == sectionOther {
			body := strings.TrimSpace(strings.Join(dedentLines(sec.body), "\n"))
			out.Meta = append(out.Meta, Meta{Kind: MetaOther, Tag: sec.title, Description: body})
			continue
		}

		for _, item := range googleItems(sec.body) {
			desc := joinDescription("", item.rest)
			name, typ, hasColon := strings.Cut(item.head, " : ")
			if !hasColon {
				name, typ, hasColon = strings.Cut(item.head, ":")
			}
			name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)

			switch sec.kind {
			case sectionParams:
				meta := Meta{Kind: MetaParam, Tag: "param", ArgName: name, Description: desc, Default: defaultFrom(desc)}
				if hasColon {
					meta.TypeName, meta.IsOptional = optionalType(typ)
					if d := numpyDefault(typ); d != "" {
						meta.Default = d
						meta.TypeName = strings.TrimSpace(numpyDefaultClause.ReplaceAllString(meta.TypeName, ""))
					}
				}
				out.Meta = append(out.Meta, meta)
			case sectionReturns, sectionYields:
				kind, tag := MetaReturns, "returns"
				if sec.kind == sectionYields {
					kind, tag = MetaOther, "yields"
				}
				meta := Meta{Kind: kind, Tag: tag, Description: desc}
				if hasColon {
					meta.ArgName, meta.TypeName = name, typ
				} else {
					meta.TypeName = name
				}
				out.Meta = append(out.Meta, meta)
			case sectionRaises:
				out.Meta = append(out.Meta, Meta{Kind: MetaRaises, Tag: sec.title, TypeName: item.head, Description: desc})
			}
		}
	}

	return out, nil
}

var numpyDefaultClause = regexp.MustCompile(`,?\s*default(?:\s*[=:]\s*|\s+)(\S+)\s*$`)

// numpyDefault reads "int, default 3" or "str, default='a'" type suffixes.
func numpyDefault(typ string) string {
	m := numpyDefaultClause.FindStringSubmatch(typ)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], `'"`)
}
