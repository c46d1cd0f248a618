package parsers

import (
	"github.com/mvp-joe/docvault/internal/syntax"
)

// javaScriptParser covers JavaScript, TypeScript and TSX. The TypeScript
// grammars add signatures, abstract classes and interfaces.
type javaScriptParser struct {
	*treeParser
}

var jsIdents = kindSet("identifier", "property_identifier", "private_property_identifier", "type_identifier")

func newJavaScriptParser(lang syntax.Language) *javaScriptParser {
	functions := []string{"function_declaration", "generator_function_declaration", "method_definition"}
	classes := []string{"class_declaration"}
	if lang != syntax.JavaScript {
		functions = append(functions, "function_signature", "method_signature", "abstract_method_signature")
		classes = append(classes, "abstract_class_declaration", "interface_declaration")
	}

	return &javaScriptParser{
		treeParser: &treeParser{
			lang:          lang,
			functionKinds: functions,
			classKinds:    classes,
			commentKinds:  kindSet("comment"),
			blacklist:     kindSet("constructor", "toString", "valueOf"),
			scopeFields: map[string]string{
				"class_declaration":          "name",
				"abstract_class_declaration": "name",
				"interface_declaration":      "name",
				"class":                      "name",
			},
			transparent: kindSet("decorator"),
		},
	}
}

func (p *javaScriptParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier: identifierOf(node, src, jsIdents),
		Parameters: paramNames(node.ChildByField("parameters"), src, kindSet("identifier"),
			kindSet("object_pattern", "array_pattern", "this", "comment")),
		Scope: p.scope(node, src),
	}
}

func (p *javaScriptParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	var supers []string
	if heritage := node.ChildByKind("class_heritage"); heritage != nil {
		for _, c := range namedChildren(heritage) {
			switch c.Kind {
			case "extends_clause", "implements_clause":
				supers = append(supers, namesOf(c, src, kindSet("type_arguments"))...)
			default:
				supers = append(supers, typeName(c, src))
			}
		}
	}
	if ext := node.ChildByKind("extends_type_clause"); ext != nil {
		supers = append(supers, namesOf(ext, src, nil)...)
	}
	return Metadata{
		Identifier:   identifierOf(node, src, jsIdents),
		Superclasses: supers,
		Scope:        p.scope(node, src),
	}
}
