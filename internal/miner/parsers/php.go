package parsers

import (
	"strings"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// phpParser reads PHP functions, methods, classes, interfaces and traits.
// Parameter names are reported without their $ sigil.
type phpParser struct {
	*treeParser
}

var phpNames = kindSet("name")

func newPHPParser() *phpParser {
	return &phpParser{
		treeParser: &treeParser{
			lang:          syntax.PHP,
			functionKinds: []string{"function_definition", "method_declaration"},
			classKinds:    []string{"class_declaration", "interface_declaration", "trait_declaration"},
			commentKinds:  kindSet("comment"),
			blacklist:     kindSet("__construct", "__destruct", "__toString", "__get", "__set", "__call"),
			scopeFields: map[string]string{
				"class_declaration":     "name",
				"interface_declaration": "name",
				"trait_declaration":     "name",
			},
			transparent: kindSet("attribute_list"),
		},
	}
}

func (p *phpParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	names := paramNames(node.ChildByField("parameters"), src, kindSet("variable_name"), kindSet("comment"))
	for i, n := range names {
		names[i] = strings.TrimPrefix(n, "$")
	}
	return Metadata{
		Identifier: identifierOf(node, src, phpNames),
		Parameters: names,
		Scope:      p.scope(node, src),
	}
}

func (p *phpParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	var supers []string
	for _, kind := range []string{"base_clause", "class_interface_clause"} {
		supers = append(supers, namesOf(node.ChildByKind(kind), src, kindSet("comment"))...)
	}
	return Metadata{
		Identifier:   identifierOf(node, src, phpNames),
		Superclasses: supers,
		Scope:        p.scope(node, src),
	}
}
