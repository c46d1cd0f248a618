package parsers

import (
	"github.com/mvp-joe/docvault/internal/syntax"
)

// rustParser reads Rust functions, structs, enums, traits and unions.
// Attributes between doc comments and the item do not break attachment.
type rustParser struct {
	*treeParser
}

func newRustParser() *rustParser {
	return &rustParser{
		treeParser: &treeParser{
			lang:          syntax.Rust,
			functionKinds: []string{"function_item", "function_signature_item"},
			classKinds:    []string{"struct_item", "enum_item", "trait_item", "union_item"},
			commentKinds:  kindSet("line_comment", "block_comment"),
			blacklist: kindSet("new", "default", "fmt", "eq", "ne", "cmp", "partial_cmp",
				"hash", "clone", "drop"),
			scopeFields: map[string]string{
				"impl_item":  "type",
				"trait_item": "name",
				"mod_item":   "name",
			},
			transparent: kindSet("attribute_item"),
		},
	}
}

func (p *rustParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier: identifierOf(node, src, kindSet("identifier")),
		Parameters: paramNames(node.ChildByField("parameters"), src, kindSet("identifier"),
			kindSet("self_parameter", "variadic_parameter", "line_comment", "block_comment", "attribute_item")),
		Scope: p.scope(node, src),
	}
}

func (p *rustParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier:   identifierOf(node, src, kindSet("type_identifier")),
		Superclasses: namesOf(node.ChildByField("bounds"), src, kindSet("lifetime")),
		Scope:        p.scope(node, src),
	}
}
