package parsers

import (
	"strings"

	"github.com/mvp-joe/docvault/internal/syntax"
)

// nodeText returns the trimmed source text of n, or "" for nil.
func nodeText(n *syntax.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text(src))
}

// typeName reduces a type reference to its bare name: pointer markers and
// generic arguments are removed.
func typeName(n *syntax.Node, src []byte) string {
	name := strings.TrimLeft(nodeText(n, src), "*&")
	if i := strings.IndexAny(name, "<["); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// childrenByField returns every direct child labelled with field.
func childrenByField(n *syntax.Node, field string) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range n.Children() {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// namedChildren returns the named direct children of n.
func namedChildren(n *syntax.Node) []*syntax.Node {
	if n == nil {
		return nil
	}
	var out []*syntax.Node
	for _, c := range n.Children() {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// firstIdentifier finds the first node of one of kinds under n, searching
// the pattern side only: type and default-value fields are never entered.
func firstIdentifier(n *syntax.Node, kinds map[string]bool) *syntax.Node {
	stack := []*syntax.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil {
			continue
		}
		if kinds[cur.Kind] {
			return cur
		}
		children := cur.Children()
		for i := len(children) - 1; i >= 0; i-- {
			switch children[i].Field {
			case "type", "value", "default_value", "right":
				continue
			}
			stack = append(stack, children[i])
		}
	}
	return nil
}

// identifierOf returns the name field of n, falling back to the first
// direct child whose kind is in kinds.
func identifierOf(n *syntax.Node, src []byte, kinds map[string]bool) string {
	if name := n.ChildByField("name"); name != nil {
		return nodeText(name, src)
	}
	for _, c := range n.Children() {
		if kinds[c.Kind] {
			return nodeText(c, src)
		}
	}
	return ""
}

// paramNames walks a parameter list. Identifier children are names as-is;
// any other named child is a wrapper whose name is its name field or, failing
// that, the first identifier outside its type and default value.
// Kinds listed in skip never contribute a name.
func paramNames(list *syntax.Node, src []byte, idents, skip map[string]bool) []string {
	if list == nil {
		return nil
	}
	var names []string
	for _, c := range list.Children() {
		if !c.Named || skip[c.Kind] {
			continue
		}
		if idents[c.Kind] {
			names = append(names, nodeText(c, src))
			continue
		}
		if name := c.ChildByField("name"); name != nil && idents[name.Kind] {
			names = append(names, nodeText(name, src))
			continue
		}
		if id := firstIdentifier(c, idents); id != nil {
			names = append(names, nodeText(id, src))
		}
	}
	return names
}

// namesOf returns the type names of the named children of n.
func namesOf(n *syntax.Node, src []byte, skip map[string]bool) []string {
	var out []string
	for _, c := range namedChildren(n) {
		if skip[c.Kind] {
			continue
		}
		if name := typeName(c, src); name != "" {
			out = append(out, name)
		}
	}
	return out
}
