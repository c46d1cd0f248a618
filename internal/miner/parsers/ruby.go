package parsers

import (
	"github.com/mvp-joe/docvault/internal/syntax"
)

// rubyParser reads Ruby methods, classes and modules. Mixins pulled in with
// include, extend or prepend count as superclasses.
type rubyParser struct {
	*treeParser
}

var (
	rubyIdents = kindSet("identifier")
	rubyNames  = kindSet("identifier", "constant", "setter", "operator")
	rubyMixins = kindSet("include", "extend", "prepend")
)

func newRubyParser() *rubyParser {
	return &rubyParser{
		treeParser: &treeParser{
			lang:          syntax.Ruby,
			functionKinds: []string{"method", "singleton_method"},
			classKinds:    []string{"class", "module"},
			commentKinds:  kindSet("comment"),
			blacklist: kindSet("initialize", "to_text", "display", "dup", "clone", "equal?",
				"==", "<=>", "===", "<=", "<", ">", ">=", "between?", "eql?", "hash"),
			scopeFields: map[string]string{"class": "name", "module": "name"},
		},
	}
}

func (p *rubyParser) FunctionMetadata(node *syntax.Node, src []byte) Metadata {
	return Metadata{
		Identifier: identifierOf(node, src, rubyNames),
		Parameters: paramNames(node.ChildByField("parameters"), src, rubyIdents,
			kindSet("forward_parameter", "destructured_parameter", "comment")),
		Scope: p.scope(node, src),
	}
}

func (p *rubyParser) ClassMetadata(node *syntax.Node, src []byte) Metadata {
	var supers []string
	if sc := node.ChildByField("superclass"); sc != nil {
		supers = append(supers, namesOf(sc, src, nil)...)
	}

	// Mixins are calls at the top of the class body, which older grammars
	// inline into the class node and newer ones wrap in body_statement.
	stmts := append([]*syntax.Node{}, node.Children()...)
	if body := node.ChildByKind("body_statement"); body != nil {
		stmts = append(stmts, body.Children()...)
	}
	for _, stmt := range stmts {
		if stmt.Kind != "call" && stmt.Kind != "method_call" {
			continue
		}
		method := stmt.ChildByField("method")
		if method == nil {
			method = stmt.ChildByKind("identifier")
		}
		if !rubyMixins[nodeText(method, src)] {
			continue
		}
		args := stmt.ChildByField("arguments")
		if args == nil {
			args = stmt.ChildByKind("argument_list")
		}
		supers = append(supers, namesOf(args, src, nil)...)
	}

	return Metadata{
		Identifier:   identifierOf(node, src, kindSet("constant", "scope_resolution")),
		Superclasses: supers,
		Scope:        p.scope(node, src),
	}
}
