package parsers

import (
	"github.com/mvp-joe/docvault/internal/syntax"
)

// cSharpParser reads C# methods and type declarations. Each /// line is its
// own comment node, so XML doc blocks arrive as dense runs.
type cSharpParser struct {
	*treeParser
}

var cSharpIdents = kindSet("identifier")

func newCSharpParser() *cSharpParser {
	types := []string{"class_declaration", "interface_declaration", "struct_declaration", "record_declaration"}

	scopes := map[string]string{
		"namespace_declaration":             "name",
		"file_scoped_namespace_declaration": "name",
	}
	for _, k := range types {
		scopes[k] = "name"
	}

	return &cSharpParser{
		treeParser: &treeParser{
			lang:          syntax.CSharp,
			functionKinds: []string{"method_declaration"},
			classKinds:    types,
			commentKinds:  kindSet("comment"),
			blacklist:     kindSet("ToString", "Equals", "GetHashCode", "CompareTo", "Dispose"),
			scopeFields:   scopes,
		},
	}
}

func (p *cSharpParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier: identifierOf(node, src, cSharpIdents),
		Parameters: paramNames(node.ChildByField("parameters"), src, cSharpIdents, kindSet("comment")),
		Scope:      p.scope(node, src),
	}
}

func (p *cSharpParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier:   identifierOf(node, src, cSharpIdents),
		Superclasses: namesOf(node.ChildByKind("base_list"), src, kindSet("argument_list", "comment")),
		Scope:        p.scope(node, src),
	}
}
