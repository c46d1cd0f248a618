package syntax

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Registry holds the loaded grammars. It is built once with NewRegistry and
// only read afterwards, so one instance can be shared by every worker.
type Registry struct {
	grammars map[Language]*sitter.Language
}

// NewRegistry loads the grammar for every supported language.
func NewRegistry() *Registry {
	return &Registry{
		grammars: map[Language]*sitter.Language{
			Python:     sitter.NewLanguage(tree_sitter_python.Language()),
			Java:       sitter.NewLanguage(tree_sitter_java.Language()),
			JavaScript: sitter.NewLanguage(tree_sitter_javascript.Language()),
			TypeScript: sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			TSX:        sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			Ruby:       sitter.NewLanguage(tree_sitter_ruby.Language()),
			Go:         sitter.NewLanguage(tree_sitter_go.Language()),
			C:          sitter.NewLanguage(tree_sitter_c.Language()),
			CPP:        sitter.NewLanguage(tree_sitter_cpp.Language()),
			CSharp:     sitter.NewLanguage(tree_sitter_c_sharp.Language()),
			PHP:        sitter.NewLanguage(tree_sitter_php.LanguagePHP()),
			Rust:       sitter.NewLanguage(tree_sitter_rust.Language()),
		},
	}
}

// Has reports whether a grammar is loaded for lang.
func (r *Registry) Has(lang Language) bool {
	_, ok := r.grammars[lang]
	return ok
}

// Parse parses source with the grammar for lang and returns an owned tree.
// Malformed input yields a *ParseError; an unknown language yields
// ErrUnsupportedLanguage and a grammar the runtime rejects yields
// ErrGrammarUnavailable. Both of the latter are fatal for the caller.
func (r *Registry) Parse(lang Language, source []byte) (*Tree, error) {
	return r.ParseFile(lang, "", source)
}

// ParseFile is Parse with a path recorded in any ParseError.
func (r *Registry) ParseFile(lang Language, path string, source []byte) (*Tree, error) {
	grammar, ok := r.grammars[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(grammar); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGrammarUnavailable, lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Language: lang, Path: path, Reason: "parser returned no tree"}
	}
	defer tree.Close()

	root := convert(tree.RootNode())

	if tree.RootNode().HasError() {
		bad := Collect(root, func(n *Node) bool { return n.Kind == "ERROR" || n.Missing })
		perr := &ParseError{Language: lang, Path: path, Reason: "syntax error"}
		if len(bad) > 0 {
			perr.Point = bad[0].Start
			if bad[0].Missing {
				perr.Reason = fmt.Sprintf("missing %s", bad[0].Kind)
			}
		}
		return nil, perr
	}

	return &Tree{Root: root, Source: source, Language: lang}, nil
}

// convert copies a tree-sitter tree into owned nodes. It walks with an
// explicit stack so deeply nested source cannot exhaust the goroutine stack.
func convert(root *sitter.Node) *Node {
	type frame struct {
		src *sitter.Node
		dst *Node
	}

	out := fromSitter(root)
	stack := []frame{{src: root, dst: out}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count := f.src.ChildCount()
		if count == 0 {
			continue
		}

		children := make([]*Node, 0, count)
		for i := uint(0); i < count; i++ {
			child := f.src.Child(i)
			if child == nil {
				continue
			}
			dst := fromSitter(child)
			dst.Field = f.src.FieldNameForChild(uint32(i))
			children = append(children, dst)
			stack = append(stack, frame{src: child, dst: dst})
		}
		f.dst.adopt(children)
	}

	return out
}

func fromSitter(n *sitter.Node) *Node {
	start := n.StartPosition()
	end := n.EndPosition()
	return &Node{
		Kind:      n.Kind(),
		Named:     n.IsNamed(),
		Missing:   n.IsMissing(),
		Start:     Point{Row: int(start.Row), Column: int(start.Column)},
		End:       Point{Row: int(end.Row), Column: int(end.Column)},
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}
