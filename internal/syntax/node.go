package syntax

import (
	"encoding/json"
	"fmt"
)

// Point is a zero-based row/column position. It encodes as [row, col].
type Point struct {
	Row    int
	Column int
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Row, p.Column})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to decode point: %w", err)
	}
	p.Row, p.Column = pair[0], pair[1]
	return nil
}

// Node is an immutable syntax node owned by a Tree.
// Sibling and parent links are derived from the parent's child list.
type Node struct {
	Kind      string
	Field     string
	Named     bool
	Missing   bool
	Start     Point
	End       Point
	StartByte int
	EndByte   int

	children []*Node
	parent   *Node
	index    int
}

// NewNode builds a node and links the given children to it.
// The tree-sitter conversion uses it, and tests use it to build trees by hand.
func NewNode(kind string, start, end Point, children ...*Node) *Node {
	n := &Node{
		Kind:  kind,
		Named: true,
		Start: start,
		End:   end,
	}
	n.adopt(children)
	return n
}

func (n *Node) adopt(children []*Node) {
	n.children = make([]*Node, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		c.index = len(n.children)
		n.children = append(n.children, c)
	}
}

// WithBytes sets the byte span and returns the node.
func (n *Node) WithBytes(start, end int) *Node {
	n.StartByte, n.EndByte = start, end
	return n
}

// Anonymous marks the node as an unnamed token and returns it.
func (n *Node) Anonymous() *Node {
	n.Named = false
	return n
}

func (n *Node) Children() []*Node { return n.children }

func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index - 1)
}

func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index + 1)
}

// Text returns the source slice covered by the node.
func (n *Node) Text(src []byte) string {
	if n == nil || n.StartByte < 0 || n.EndByte > len(src) || n.StartByte > n.EndByte {
		return ""
	}
	return string(src[n.StartByte:n.EndByte])
}

// WithField sets the grammar field label the node occupies in its parent.
func (n *Node) WithField(field string) *Node {
	n.Field = field
	return n
}

// ChildByField returns the first direct child labelled with field, or nil.
func (n *Node) ChildByField(field string) *Node {
	if field == "" {
		return nil
	}
	for _, c := range n.children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildByKind returns the first direct child whose kind is one of kinds.
func (n *Node) ChildByKind(kinds ...string) *Node {
	for _, c := range n.children {
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

// ChildrenByKind returns all direct children whose kind is one of kinds.
func (n *Node) ChildrenByKind(kinds ...string) []*Node {
	var out []*Node
	for _, c := range n.children {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Contains reports whether other lies within n's byte span.
func (n *Node) Contains(other *Node) bool {
	return other.StartByte >= n.StartByte && other.EndByte <= n.EndByte
}

func (n *Node) String() string {
	return fmt.Sprintf("%s [%d:%d - %d:%d]", n.Kind, n.Start.Row, n.Start.Column, n.End.Row, n.End.Column)
}

// Collect returns every node under root (root included) accepted by match,
// in pre-order. It uses an explicit stack so depth is bounded by the heap.
func Collect(root *Node, match func(*Node) bool) []*Node {
	if root == nil {
		return nil
	}

	var out []*Node
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if match(n) {
			out = append(out, n)
		}

		// Push in reverse so the leftmost child is visited first.
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}

// CollectKinds returns every node under root whose kind is in kinds.
func CollectKinds(root *Node, kinds ...string) []*Node {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return Collect(root, func(n *Node) bool { return set[n.Kind] })
}

// Leaves returns the leaf nodes under root in source order.
func Leaves(root *Node) []*Node {
	return Collect(root, func(n *Node) bool { return len(n.children) == 0 })
}

// Tree is a parsed source unit.
type Tree struct {
	Root     *Node
	Source   []byte
	Language Language
}
