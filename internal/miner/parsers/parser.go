// Package parsers locates documented code elements in syntax trees.
//
// Every supported language gets one LanguageParser. The shared treeParser
// carries the kind tables and the comment association rule; each language
// supplies its own metadata extraction on top of it.
package parsers

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// LanguageParser is the capability set the extraction engine needs from a language.
type LanguageParser interface {
	Language() syntax.Language

	// LocateFunctions returns function-like nodes in source order.
	LocateFunctions(root *syntax.Node) []*syntax.Node

	// LocateClasses returns class/module-like nodes in source order.
	LocateClasses(root *syntax.Node) []*syntax.Node

	// FunctionMetadata extracts identifier, parameter names and scope.
	// An empty Identifier means the element must be skipped.
	FunctionMetadata(node *syntax.Node, src []byte) Metadata

	// ClassMetadata extracts identifier, superclasses and scope.
	ClassMetadata(node *syntax.Node, src []byte) Metadata

	// FindDocstringBlock returns the documentation attached to an element.
	FindDocstringBlock(node *syntax.Node) CommentBlock

	// FindInlineComments returns every comment nested inside an element.
	FindInlineComments(node *syntax.Node) []*syntax.Node

	IsComment(node *syntax.Node) bool

	// Blacklisted reports structural names that never produce records.
	Blacklisted(identifier string) bool
}

// For returns the parser for lang.
func For(lang syntax.Language) (LanguageParser, error) {
	switch lang {
	case syntax.Python:
		return newPythonParser(), nil
	case syntax.Java:
		return newJavaParser(), nil
	case syntax.JavaScript:
		return newJavaScriptParser(syntax.JavaScript), nil
	case syntax.TypeScript:
		return newJavaScriptParser(syntax.TypeScript), nil
	case syntax.TSX:
		return newJavaScriptParser(syntax.TSX), nil
	case syntax.Ruby:
		return newRubyParser(), nil
	case syntax.Go:
		return newGoParser(), nil
	case syntax.C:
		return newCParser(syntax.C), nil
	case syntax.CPP:
		return newCParser(syntax.CPP), nil
	case syntax.CSharp:
		return newCSharpParser(), nil
	case syntax.PHP:
		return newPHPParser(), nil
	case syntax.Rust:
		return newRustParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", syntax.ErrUnsupportedLanguage, lang)
	}
}

// Metadata is what the extractor learns about one element.
type Metadata struct {
	Identifier   string
	Parameters   []string
	Superclasses []string
	// Scope lists enclosing type or module names, outermost first.
	Scope []string
}

// ElementKind distinguishes functions from classes.
type ElementKind string

const (
	FunctionKind ElementKind = "function"
	ClassKind    ElementKind = "class"
)

// Element is a located function or class with its metadata.
type Element struct {
	Node *syntax.Node
	Kind ElementKind
	Metadata
}

// Path is the dot-joined scope and identifier, e.g. "Repo.Users.find".
func (e Element) Path() string {
	if e.Identifier == "" {
		return ""
	}
	parts := append(append([]string{}, e.Scope...), e.Identifier)
	return strings.Join(parts, ".")
}

// Functions locates every function in tree and extracts its metadata.
func Functions(p LanguageParser, tree *syntax.Tree) []Element {
	nodes := p.LocateFunctions(tree.Root)
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Element{Node: n, Kind: FunctionKind, Metadata: p.FunctionMetadata(n, tree.Source)})
	}
	return out
}

// Classes locates every class in tree and extracts its metadata.
func Classes(p LanguageParser, tree *syntax.Tree) []Element {
	nodes := p.LocateClasses(tree.Root)
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Element{Node: n, Kind: ClassKind, Metadata: p.ClassMetadata(n, tree.Source)})
	}
	return out
}

// treeParser holds the per-language tables shared by every capability.
type treeParser struct {
	lang          syntax.Language
	functionKinds []string
	classKinds    []string
	commentKinds  map[string]bool
	blacklist     map[string]bool

	// scopeFields maps enclosing node kinds to the field holding their name.
	scopeFields map[string]string

	// bodyField, when set, drops class nodes lacking that field (forward declarations).
	bodyField string

	// transparent kinds may sit between an element and its documentation.
	transparent map[string]bool
}

func (p *treeParser) Language() syntax.Language { return p.lang }

func (p *treeParser) LocateFunctions(root *syntax.Node) []*syntax.Node {
	return definitions(syntax.CollectKinds(root, p.functionKinds...))
}

func (p *treeParser) LocateClasses(root *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, n := range definitions(syntax.CollectKinds(root, p.classKinds...)) {
		if p.bodyField != "" && n.ChildByField(p.bodyField) == nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// definitions drops keyword tokens that share a kind name with a definition.
func definitions(nodes []*syntax.Node) []*syntax.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Named && n.ChildCount() > 0 {
			out = append(out, n)
		}
	}
	return out
}

func (p *treeParser) IsComment(n *syntax.Node) bool {
	return n != nil && p.commentKinds[n.Kind]
}

func (p *treeParser) Blacklisted(identifier string) bool {
	return p.blacklist[identifier]
}

func (p *treeParser) FindInlineComments(node *syntax.Node) []*syntax.Node {
	return syntax.Collect(node, func(n *syntax.Node) bool {
		return n != node && p.commentKinds[n.Kind]
	})
}

func (p *treeParser) FindDocstringBlock(node *syntax.Node) CommentBlock {
	return CommentBlock{Nodes: precedingComments(node, p.IsComment, p.transparent)}
}

// scope walks the ancestors of node and collects the names of enclosing
// scope-forming nodes, outermost first.
func (p *treeParser) scope(node *syntax.Node, src []byte) []string {
	var names []string
	for a := node.Parent(); a != nil; a = a.Parent() {
		field, ok := p.scopeFields[a.Kind]
		if !ok {
			continue
		}
		if name := typeName(a.ChildByField(field), src); name != "" {
			names = append(names, name)
		}
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

func kindSet(kinds ...string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
