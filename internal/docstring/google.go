package docstring

import (
	"regexp"
	"strings"
)

// Google parses "Args:" / "Returns:" / "Raises:" sections with indented items.
type Google struct{}

func (Google) Name() string { return "google" }

type sectionKind int

const (
	sectionParams sectionKind = iota
	sectionReturns
	sectionRaises
	sectionYields
	sectionOther
)

var googleSections = map[string]sectionKind{
	"args":              sectionParams,
	"arguments":         sectionParams,
	"parameters":        sectionParams,
	"params":            sectionParams,
	"keyword args":      sectionParams,
	"keyword arguments": sectionParams,
	"kwargs":            sectionParams,
	"other parameters":  sectionParams,
	"attributes":        sectionOther,
	"returns":           sectionReturns,
	"return":            sectionReturns,
	"yields":            sectionYields,
	"yield":             sectionYields,
	"raises":            sectionRaises,
	"exceptions":        sectionRaises,
	"except":            sectionRaises,
	"example":           sectionOther,
	"examples":          sectionOther,
	"note":              sectionOther,
	"notes":             sectionOther,
	"warning":           sectionOther,
	"warnings":          sectionOther,
	"see also":          sectionOther,
	"todo":              sectionOther,
	"references":        sectionOther,
}

var (
	googleTitle = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s*$`)
	// name (type, optional): description
	googleItem = regexp.MustCompile(`^(\*{0,2}[\w.]+)\s*(?:\(([^)]*)\))?\s*:\s*(.*)$`)
	// type: description
	googleTyped = regexp.MustCompile(`^([\w.\[\]]+(?:(?:,\s*|\s*\|\s*)[\w.\[\]]+)*)\s*:\s*(.*)$`)
)

func (s Google) Parse(text string) (*Parsed, error) {
	lines := strings.Split(text, "\n")

	type section struct {
		title string
		kind  sectionKind
		body  []string
	}
	var sections []section
	descEnd := len(lines)
	for i, l := range lines {
		m := googleTitle.FindStringSubmatch(l)
		if m == nil {
			if len(sections) > 0 {
				sections[len(sections)-1].body = append(sections[len(sections)-1].body, l)
			}
			continue
		}
		title := strings.ToLower(m[1])
		kind, known := googleSections[title]
		if !known {
			if len(sections) > 0 {
				sections[len(sections)-1].body = append(sections[len(sections)-1].body, l)
			}
			continue
		}
		if len(sections) == 0 {
			descEnd = i
		}
		sections = append(sections, section{title: title, kind: kind})
	}

	out := &Parsed{}
	out.ShortDescription, out.LongDescription = splitDescription(strings.Join(lines[:descEnd], "\n"))

	for _, sec := range sections {
		items := googleItems(sec.body)
		switch sec.kind {
		case sectionParams:
			for _, item := range items {
				m := googleItem.FindStringSubmatch(item.head)
				if m == nil {
					return nil, structureError(s.Name(), "cannot parse %s item %q", sec.title, item.head)
				}
				desc := joinDescription(m[3], item.rest)
				meta := Meta{Kind: MetaParam, Tag: "param", ArgName: m[1], Description: desc, Default: defaultFrom(desc)}
				if m[2] != "" {
					meta.TypeName, meta.IsOptional = optionalType(m[2])
				}
				out.Meta = append(out.Meta, meta)
			}
		case sectionReturns, sectionYields, sectionRaises:
			kind, tag := MetaReturns, "returns"
			if sec.kind == sectionYields {
				kind, tag = MetaOther, "yields"
			}
			if sec.kind == sectionRaises {
				kind, tag = MetaRaises, "raises"
			}
			// A returns section is one entry unless every line is an item.
			if sec.kind != sectionRaises && len(items) > 0 {
				items = []googleEntry{{head: items[0].head, rest: joinItems(items)}}
			}
			for _, item := range items {
				meta := Meta{Kind: kind, Tag: tag, Description: joinDescription(item.head, item.rest)}
				if m := googleTyped.FindStringSubmatch(item.head); m != nil {
					meta.TypeName = strings.TrimSpace(m[1])
					meta.Description = joinDescription(m[2], item.rest)
				}
				out.Meta = append(out.Meta, meta)
			}
		default:
			body := strings.TrimSpace(strings.Join(dedentLines(sec.body), "\n"))
			out.Meta = append(out.Meta, Meta{Kind: MetaOther, Tag: sec.title, Description: body})
		}
	}

	return out, nil
}

type googleEntry struct {
	head string
	rest []string
}

// googleItems splits a section body into entries. The first non-blank line
// sets the item indentation; deeper lines continue the current item.
func googleItems(body []string) []googleEntry {
	var items []googleEntry
	indent := -1
	for _, l := range body {
		if strings.TrimSpace(l) == "" {
			if len(items) > 0 {
				items[len(items)-1].rest = append(items[len(items)-1].rest, "")
			}
			continue
		}
		if indent < 0 {
			indent = indentOf(l)
		}
		if indentOf(l) <= indent || len(items) == 0 {
			items = append(items, googleEntry{head: strings.TrimSpace(l)})
			continue
		}
		items[len(items)-1].rest = append(items[len(items)-1].rest, l)
	}
	return items
}

// joinItems flattens every line after the first item head into continuation lines.
func joinItems(items []googleEntry) []string {
	rest := append([]string{}, items[0].rest...)
	for _, it := range items[1:] {
		rest = append(rest, it.head)
		rest = append(rest, it.rest...)
	}
	return rest
}
