package parsers

import (
	"github.com/mvp-joe/docvault/internal/syntax"
)

// pythonParser reads Python definitions. The docstring is the leading string
// literal of the body; preceding # comments are the fallback.
type pythonParser struct {
	*treeParser
}

var pythonIdents = kindSet("identifier")

func newPythonParser() *pythonParser {
	return &pythonParser{
		treeParser: &treeParser{
			lang:          syntax.Python,
			functionKinds: []string{"function_definition"},
			classKinds:    []string{"class_definition"},
			commentKinds:  kindSet("comment"),
			blacklist: kindSet("__init__", "__str__", "__repr__", "__eq__", "__ne__",
				"__lt__", "__le__", "__gt__", "__ge__", "__hash__"),
			scopeFields: map[string]string{"class_definition": "name"},
			transparent: kindSet("decorator"),
		},
	}
}

func (p *pythonParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	params := paramNames(node.ChildByField("parameters"), src, pythonIdents,
		kindSet("keyword_separator", "positional_separator", "tuple_pattern", "comment"))

	// The receiver of a method is not a parameter.
	if len(params) > 0 && (params[0] == "self" || params[0] == "cls") {
		params = params[1:]
	}

	return Metadata{
		Identifier: identifierOf(node, src, pythonIdents),
		Parameters: params,
		Scope:      p.scope(node, src),
	}
}

func (p *pythonParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier:   identifierOf(node, src, pythonIdents),
		Superclasses: namesOf(node.ChildByField("superclasses"), src, kindSet("keyword_argument", "comment")),
		Scope:        p.scope(node, src),
	}
}

func (p *pythonParser) FindDocstringBlock(node *syntax.Node) CommentBlock {
	if lit := leadingString(node.ChildByField("body")); lit != nil {
		return CommentBlock{Nodes: []*syntax.Node{lit}}
	}
	return p.treeParser.FindDocstringBlock(node)
}

// leadingString returns the string literal forming the first statement of body.
func leadingString(body *syntax.Node) *syntax.Node {
	if body == nil {
		return nil
	}
	for _, stmt := range body.Children() {
		if stmt.Kind == "comment" {
			continue
		}
		if stmt.Kind != "expression_statement" {
			return nil
		}
		if first := stmt.Child(0); first != nil && first.Kind == "string" {
			return first
		}
		return nil
	}
	return nil
}
