package parsers

import (
	"strings"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// cParser covers C and C++. Names live at the bottom of declarator chains
// (pointer, reference, function declarators), so both the function name and
// the parameter names are found by descending those chains.
type cParser struct {
	*treeParser
}

var cNames = kindSet("identifier", "field_identifier", "qualified_identifier",
	"destructor_name", "operator_name", "template_function", "type_identifier")

func newCParser(lang syntax.Language) *cParser {
	p := &cParser{
		treeParser: &treeParser{
			lang:          lang,
			functionKinds: []string{"function_definition"},
			classKinds:    []string{"struct_specifier", "union_specifier"},
			commentKinds:  kindSet("comment"),
			blacklist:     kindSet("main"),
			bodyField:     "body",
		},
	}
	if lang == syntax.CPP {
		p.classKinds = []string{"class_specifier", "struct_specifier"}
		p.transparent = kindSet("template_parameter_list")
		p.scopeFields = map[string]string{
			"class_specifier":      "name",
			"struct_specifier":     "name",
			"namespace_definition": "name",
		}
	}
	return p
}

// Blacklisted also rejects C++ operators and destructors.
func (p *cParser) Blacklisted(identifier string) bool {
	if p.lang == syntax.CPP && (strings.HasPrefix(identifier, "operator") || strings.HasPrefix(identifier, "~")) {
		return true
	}
	return p.treeParser.Blacklisted(identifier)
}

func (p *cParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	fn := functionDeclarator(node.ChildByField("declarator"))
	if fn == nil {
		return Metadata{Scope: p.scope(node, src)}
	}

	scope := p.scope(node, src)
	name := nodeText(fn.ChildByField("declarator"), src)
	// Out-of-line definitions carry their class: Foo::bar.
	if parts := strings.Split(name, "::"); len(parts) > 1 {
		name = parts[len(parts)-1]
		scope = append(scope, parts[:len(parts)-1]...)
	}

	var params []string
	if list := fn.ChildByField("parameters"); list != nil {
		for _, decl := range namedChildren(list) {
			if n := declaratorName(decl.ChildByField("declarator")); n != nil {
				params = append(params, nodeText(n, src))
			}
		}
	}

	return Metadata{Identifier: name, Parameters: params, Scope: scope}
}

func (p *cParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	var supers []string
	if base := node.ChildByKind("base_class_clause"); base != nil {
		supers = namesOf(base, src, kindSet("access_specifier", "virtual", "comment"))
	}
	return Metadata{
		Identifier:   identifierOf(node, src, kindSet("type_identifier")),
		Superclasses: supers,
		Scope:        p.scope(node, src),
	}
}

// functionDeclarator follows declarator links until it reaches the
// function_declarator holding the name and parameter list.
func functionDeclarator(d *syntax.Node) *syntax.Node {
	for d != nil {
		if d.Kind == "function_declarator" {
			return d
		}
		next := d.ChildByField("declarator")
		if next == nil {
			next = lastNamed(d)
		}
		d = next
	}
	return nil
}

// declaratorName descends a parameter declarator to the declared name.
func declaratorName(d *syntax.Node) *syntax.Node {
	for d != nil {
		if cNames[d.Kind] {
			return d
		}
		next := d.ChildByField("declarator")
		if next == nil {
			next = lastNamed(d)
		}
		d = next
	}
	return nil
}

func lastNamed(n *syntax.Node) *syntax.Node {
	named := namedChildren(n)
	if len(named) == 0 {
		return nil
	}
	return named[len(named)-1]
}
