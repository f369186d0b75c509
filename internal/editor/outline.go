package editor

import (
	"strings"

	"github.com/Faultbox/worldedit/internal/region"
)

// Outline is a headless tree view of the loaded world. Regions keep it in
// sync through their tree hooks.
type Outline struct {
	root *OutlineNode
}

// OutlineNode is one row of an Outline.
type OutlineNode struct {
	label    string
	node     region.Node
	parent   *OutlineNode
	children []*OutlineNode
}

// NewOutline creates an empty outline.
func NewOutline() *Outline {
	return &Outline{root: &OutlineNode{}}
}

// Root returns the invisible root that top-level regions attach to.
func (o *Outline) Root() *OutlineNode { return o.root }

// Len returns the number of rows.
func (o *Outline) Len() int {
	n := 0
	o.root.walk(func(*OutlineNode, int) { n++ })
	return n - 1
}

// String renders the rows indented two spaces per level.
func (o *Outline) String() string {
	var sb strings.Builder
	o.root.walk(func(n *OutlineNode, depth int) {
		if n == o.root {
			return
		}
		sb.WriteString(strings.Repeat("  ", depth-1))
		sb.WriteString(n.label)
		sb.WriteByte('\n')
	})
	return sb.String()
}

// Label returns the row text.
func (n *OutlineNode) Label() string { return n.label }

// Node returns the scene node shown by this row.
func (n *OutlineNode) Node() region.Node { return n.node }

// Children returns the child rows.
func (n *OutlineNode) Children() []*OutlineNode { return n.children }

// SetLabel implements region.TreeNode.
func (n *OutlineNode) SetLabel(label string) { n.label = label }

// AddChild implements region.TreeNode.
func (n *OutlineNode) AddChild(label string, node region.Node) region.TreeNode {
	c := &OutlineNode{label: label, node: node, parent: n}
	n.children = append(n.children, c)
	return c
}

// Remove implements region.TreeNode.
func (n *OutlineNode) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *OutlineNode) walk(fn func(*OutlineNode, int)) {
	var visit func(*OutlineNode, int)
	visit = func(cur *OutlineNode, depth int) {
		fn(cur, depth)
		for _, c := range cur.children {
			visit(c, depth+1)
		}
	}
	visit(n, 0)
}
