package syntax

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for syntax:
// - ParseLanguage accepts canonical names and aliases, rejects unknown names
// - ForPath maps extensions to languages
// - Hand-built nodes link parent and siblings
// - Collect walks in pre-order without recursion
// - Point encodes as [row, col]
// - Registry.Parse builds an owned tree with spans and text
// - Malformed source yields *ParseError
// - Unknown language yields ErrUnsupportedLanguage

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Language
	}{
		{"python", Python},
		{"Python", Python},
		{"c#", CSharp},
		{"C++", CPP},
		{"c_sharp", CSharp},
		{"golang", Go},
		{"ts", TypeScript},
		{"tsx", TSX},
	}

	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}

	_, err := ParseLanguage("cobol")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
}

func TestForPath(t *testing.T) {
	t.Parallel()

	lang, ok := ForPath("src/app/Main.java")
	require.True(t, ok)
	assert.Equal(t, Java, lang)

	lang, ok = ForPath("lib/thing.RB")
	require.True(t, ok)
	assert.Equal(t, Ruby, lang)

	_, ok = ForPath("README.md")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{".rb"}, Extensions(Ruby))
}

func TestNode_Links(t *testing.T) {
	t.Parallel()

	a := NewNode("comment", Point{0, 0}, Point{0, 5})
	b := NewNode("comment", Point{1, 0}, Point{1, 5})
	c := NewNode("method", Point{2, 0}, Point{4, 3})
	root := NewNode("program", Point{0, 0}, Point{4, 3}, a, b, c)

	assert.Equal(t, 3, root.ChildCount())
	assert.Same(t, root, c.Parent())
	assert.Same(t, b, c.PrevSibling())
	assert.Same(t, a, b.PrevSibling())
	assert.Nil(t, a.PrevSibling())
	assert.Nil(t, c.NextSibling())
	assert.Nil(t, root.PrevSibling())
	assert.Same(t, c, root.ChildByKind("method"))
	assert.Len(t, root.ChildrenByKind("comment"), 2)
}

func TestCollect_PreOrder(t *testing.T) {
	t.Parallel()

	leaf1 := NewNode("x", Point{0, 0}, Point{0, 1})
	leaf2 := NewNode("y", Point{0, 2}, Point{0, 3})
	inner := NewNode("inner", Point{0, 0}, Point{0, 3}, leaf1, leaf2)
	leaf3 := NewNode("x", Point{1, 0}, Point{1, 1})
	root := NewNode("root", Point{0, 0}, Point{1, 1}, inner, leaf3)

	var kinds []string
	for _, n := range Collect(root, func(*Node) bool { return true }) {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []string{"root", "inner", "x", "y", "x"}, kinds)

	xs := CollectKinds(root, "x")
	require.Len(t, xs, 2)
	assert.Same(t, leaf1, xs[0])
	assert.Same(t, leaf3, xs[1])

	assert.Len(t, Leaves(root), 3)
}

func TestCollect_DeepTree(t *testing.T) {
	t.Parallel()

	// A chain far deeper than any sane recursion budget.
	const depth = 100000
	node := NewNode("leaf", Point{}, Point{})
	for i := 0; i < depth; i++ {
		node = NewNode("wrap", Point{}, Point{}, node)
	}

	leaves := CollectKinds(node, "leaf")
	assert.Len(t, leaves, 1)
}

func TestPoint_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Point{Row: 3, Column: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `[3,7]`, string(data))

	var p Point
	require.NoError(t, json.Unmarshal([]byte(`[5,1]`), &p))
	assert.Equal(t, Point{Row: 5, Column: 1}, p)
}

func TestRegistry_Parse(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, lang := range Supported() {
		assert.True(t, reg.Has(lang), "missing grammar for %s", lang)
	}

	src := []byte("def greet(name):\n    return name\n")
	tree, err := reg.Parse(Python, src)
	require.NoError(t, err)
	require.NotNil(t, tree)

	fns := CollectKinds(tree.Root, "function_definition")
	require.Len(t, fns, 1)
	fn := fns[0]
	assert.Equal(t, Point{Row: 0, Column: 0}, fn.Start)
	assert.Equal(t, 1, fn.End.Row)
	assert.Equal(t, "def greet(name):\n    return name", fn.Text(src))
	assert.Same(t, tree.Root, fn.Parent())

	ident := fn.ChildByKind("identifier")
	require.NotNil(t, ident)
	assert.Equal(t, "greet", ident.Text(src))
	assert.Same(t, ident, fn.ChildByField("name"))
	require.NotNil(t, fn.ChildByField("parameters"))
	assert.Equal(t, "(name)", fn.ChildByField("parameters").Text(src))
}

func TestRegistry_ParseError(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	_, err := reg.ParseFile(Python, "broken.py", []byte("def broken(:\n    pass\n"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
	assert.Equal(t, Python, perr.Language)
	assert.Equal(t, "broken.py", perr.Path)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "broken.py")
}

func TestRegistry_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	_, err := reg.Parse(Language("cobol"), []byte("IDENTIFICATION DIVISION."))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
	assert.False(t, IsParseError(err))
}
