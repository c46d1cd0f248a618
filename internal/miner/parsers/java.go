package parsers

import (
	"github.com/mvp-joe/docvault/internal/syntax"
)

// javaParser reads Java methods, classes, interfaces and enums.
type javaParser struct {
	*treeParser
}

var javaIdents = kindSet("identifier")

func newJavaParser() *javaParser {
	return &javaParser{
		treeParser: &treeParser{
			lang:          syntax.Java,
			functionKinds: []string{"method_declaration"},
			classKinds:    []string{"class_declaration", "interface_declaration", "enum_declaration"},
			commentKinds:  kindSet("line_comment", "block_comment"),
			blacklist:     kindSet("toString", "equals", "hashCode", "compareTo", "clone", "finalize"),
			scopeFields: map[string]string{
				"class_declaration":     "name",
				"interface_declaration": "name",
				"enum_declaration":      "name",
			},
		},
	}
}

func (p *javaParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier: identifierOf(node, src, javaIdents),
		Parameters: paramNames(node.ChildByField("parameters"), src, javaIdents,
			kindSet("receiver_parameter", "line_comment", "block_comment")),
		Scope: p.scope(node, src),
	}
}

func (p *javaParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	var supers []string
	if sc := node.ChildByField("superclass"); sc != nil {
		supers = append(supers, namesOf(sc, src, nil)...)
	}
	// class ... implements, enum ... implements, interface ... extends
	for _, kind := range []string{"super_interfaces", "extends_interfaces"} {
		if clause := node.ChildByKind(kind); clause != nil {
			supers = append(supers, namesOf(clause.ChildByKind("type_list"), src, nil)...)
		}
	}
	return Metadata{
		Identifier:   identifierOf(node, src, javaIdents),
		Superclasses: supers,
		Scope:        p.scope(node, src),
	}
}
