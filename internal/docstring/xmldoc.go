package docstring

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// XMLDoc parses C# XML documentation: <summary>, <remarks>, <param name>,
// <returns>, <exception cref>, with any other element kept as a tag.
type XMLDoc struct{}

func (XMLDoc) Name() string { return "xmldoc" }

func (s XMLDoc) Parse(text string) (*Parsed, error) {
	if !strings.Contains(text, "<") {
		out := &Parsed{}
		out.ShortDescription, out.LongDescription = splitDescription(text)
		return out, nil
	}

	dec := xml.NewDecoder(strings.NewReader("<doc>" + text + "</doc>"))

	var (
		out     = &Parsed{}
		summary string
		remarks string
		depth   int
		current *Meta
		buf     strings.Builder
		element string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, structureError(s.Name(), "%v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				element = strings.ToLower(t.Name.Local)
				buf.Reset()
				current = s.startMeta(element, t.Attr)
				continue
			}
			// Inline references render as their target name.
			for _, a := range t.Attr {
				if a.Name.Local == "cref" || a.Name.Local == "name" || a.Name.Local == "langword" || a.Name.Local == "href" {
					buf.WriteString(crefName(a.Value))
				}
			}
		case xml.EndElement:
			depth--
			if depth != 1 {
				continue
			}
			body := normalizeSpace(buf.String())
			switch element {
			case "summary":
				summary = joinNonEmpty(summary, body)
			case "remarks":
				remarks = joinNonEmpty(remarks, body)
			default:
				if current != nil {
					current.Description = body
					out.Meta = append(out.Meta, *current)
				}
			}
			current, element = nil, ""
		case xml.CharData:
			if depth >= 2 {
				buf.Write(t)
			} else if strings.TrimSpace(string(t)) != "" {
				summary = joinNonEmpty(summary, normalizeSpace(string(t)))
			}
		}
	}

	out.ShortDescription, out.LongDescription = splitDescription(summary)
	out.LongDescription = joinNonEmpty(out.LongDescription, remarks)
	return out, nil
}

func (XMLDoc) startMeta(element string, attrs []xml.Attr) *Meta {
	attr := func(name string) string {
		for _, a := range attrs {
			if a.Name.Local == name {
				return a.Value
			}
		}
		return ""
	}

	switch element {
	case "summary", "remarks":
		return nil
	case "param":
		return &Meta{Kind: MetaParam, Tag: "param", ArgName: attr("name")}
	case "returns", "return":
		return &Meta{Kind: MetaReturns, Tag: "returns"}
	case "exception":
		return &Meta{Kind: MetaRaises, Tag: "exception", TypeName: crefName(attr("cref"))}
	default:
		return &Meta{Kind: MetaOther, Tag: element, ArgName: attr("name")}
	}
}

// crefName drops the member-kind prefix of a cref ("T:System.String").
func crefName(cref string) string {
	if len(cref) > 2 && cref[1] == ':' {
		return cref[2:]
	}
	return cref
}

// normalizeSpace trims each line and drops blank lines.
func normalizeSpace(s string) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}
