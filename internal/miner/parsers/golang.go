package parsers

import (
	"github.com/mvp-joe/docvault/internal/syntax"
)

// goParser reads Go functions, methods and type specs. A method's receiver
// type is its scope; embedded fields and interfaces are its superclasses.
type goParser struct {
	*treeParser
}

func newGoParser() *goParser {
	return &goParser{
		treeParser: &treeParser{
			lang:          syntax.Go,
			functionKinds: []string{"function_declaration", "method_declaration"},
			classKinds:    []string{"type_spec"},
			commentKinds:  kindSet("comment"),
			blacklist:     kindSet("init", "main", "String", "Error"),
		},
	}
}

func (p *goParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	var params []string
	if list := node.ChildByField("parameters"); list != nil {
		for _, decl := range list.Children() {
			// a, b int declares two names in one parameter_declaration.
			for _, name := range childrenByField(decl, "name") {
				params = append(params, nodeText(name, src))
			}
		}
	}

	var scope []string
	if recv := node.ChildByField("receiver"); recv != nil {
		if decl := recv.ChildByKind("parameter_declaration"); decl != nil {
			if name := typeName(decl.ChildByField("type"), src); name != "" {
				scope = []string{name}
			}
		}
	}

	return Metadata{
		Identifier: identifierOf(node, src, kindSet("identifier", "field_identifier")),
		Parameters: params,
		Scope:      scope,
	}
}

func (p *goParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	var supers []string
	switch typ := node.ChildByField("type"); {
	case typ == nil:
	case typ.Kind == "struct_type":
		if fields := typ.ChildByKind("field_declaration_list"); fields != nil {
			for _, f := range fields.ChildrenByKind("field_declaration") {
				if f.ChildByField("name") == nil {
					supers = append(supers, typeName(f.ChildByField("type"), src))
				}
			}
		}
	case typ.Kind == "interface_type":
		supers = namesOf(typ, src, kindSet("method_elem", "method_spec", "comment"))
	}

	return Metadata{
		Identifier:   identifierOf(node, src, kindSet("type_identifier")),
		Superclasses: supers,
	}
}
