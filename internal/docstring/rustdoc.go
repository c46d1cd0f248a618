package docstring

import (
	"regexp"
	"strings"
)

// Rustdoc parses Markdown doc comments. "# Arguments" lists parameters as
// "* `name` - text"; "# Returns", "# Errors" and "# Panics" map to returns
// and raises; other headings are kept as tags.
type Rustdoc struct{}

func (Rustdoc) Name() string { return "rustdoc" }

var (
	markdownHeading = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)
	rustArgument    = regexp.MustCompile("^[*-]\\s+`?([\\w]+)`?\\s*(?:\\(([^)]*)\\))?\\s*(?:[-:–]\\s*)?(.*)$")
)

func (s Rustdoc) Parse(text string) (*Parsed, error) {
	lines := strings.Split(text, "\n")

	type section struct {
		title string
		body  []string
	}
	var sections []section
	descEnd := len(lines)
	inFence := false

	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			inFence = !inFence
		}
		if m := markdownHeading.FindStringSubmatch(l); m != nil && !inFence {
			if len(sections) == 0 {
				descEnd = i
			}
			sections = append(sections, section{title: strings.ToLower(m[1])})
			continue
		}
		if len(sections) > 0 {
			sections[len(sections)-1].body = append(sections[len(sections)-1].body, l)
		}
	}

	out := &Parsed{}
	out.ShortDescription, out.LongDescription = splitDescription(strings.Join(lines[:descEnd], "\n"))

	for _, sec := range sections {
		body := strings.TrimSpace(strings.Join(dedentLines(sec.body), "\n"))
		switch sec.title {
		case "arguments", "parameters", "params", "args":
			for _, item := range googleItems(sec.body) {
				m := rustArgument.FindStringSubmatch(item.head)
				if m == nil {
					continue
				}
				desc := joinDescription(m[3], item.rest)
				out.Meta = append(out.Meta, Meta{Kind: MetaParam, Tag: "param", ArgName: m[1], TypeName: m[2], Description: desc, Default: defaultFrom(desc)})
			}
		case "returns", "return value":
			out.Meta = append(out.Meta, Meta{Kind: MetaReturns, Tag: "returns", Description: body})
		case "errors", "panics":
			out.Meta = append(out.Meta, Meta{Kind: MetaRaises, Tag: sec.title, Description: body})
		default:
			out.Meta = append(out.Meta, Meta{Kind: MetaOther, Tag: sec.title, Description: body})
		}
	}

	return out, nil
}
