package vfile

import (
	"vuecore/internal/mapping"
)

// Node is one virtual code in a file's embedding tree. The root node is
// the component file itself; its children are the codes plugins embed.
// Nodes are patched in place when the file updates.
type Node struct {
	ID         string
	LanguageID string
	// Plugin names the contributor; empty for the root.
	Plugin   string
	Artifact *mapping.Artifact
	Embedded []*Node

	parent *Node
}

// Parent returns the embedding node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Embedded {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the descendant with id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// IDs lists every node id in walk order.
func (n *Node) IDs() []string {
	var out []string
	n.Walk(func(c *Node) bool {
		out = append(out, c.ID)
		return true
	})
	return out
}
