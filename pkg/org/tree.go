package org

import (
	"github.com/matzehuels/orgtower/pkg/contact"
)

// Resolution records how a member's parent reference was decided.
type Resolution int

const (
	// ResolvedManager means the contact's own manager reference was kept.
	ResolvedManager Resolution = iota
	// ResolvedNoManager means the contact had no manager and hangs off the root.
	ResolvedNoManager
	// ResolvedSelfLoop means the contact named itself as manager.
	ResolvedSelfLoop
	// ResolvedDangling means the manager id matched no contact in the working set.
	ResolvedDangling
	// ResolvedCycle means the manager chain looped and was cut at this contact.
	ResolvedCycle
)

// String returns a short label for logs and serialized output.
func (r Resolution) String() string {
	switch r {
	case ResolvedManager:
		return "manager"
	case ResolvedNoManager:
		return "no_manager"
	case ResolvedSelfLoop:
		return "self_loop"
	case ResolvedDangling:
		return "dangling"
	case ResolvedCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// Rerouted reports whether the contact's own reference was overridden.
func (r Resolution) Rerouted() bool {
	return r == ResolvedSelfLoop || r == ResolvedDangling || r == ResolvedCycle
}

// Member is a contact paired with its resolved parent id.
type Member struct {
	Contact    contact.Contact
	ParentID   string
	Resolution Resolution
}

// Node is a vertex of the built tree.
type Node struct {
	Contact    contact.Contact
	ParentID   string   // Empty for the root
	Depth      int      // 0 for the root
	Children   []string // Ordered by seniority, then input order
	Resolution Resolution
	Synthetic  bool // True only for the root
}

// ID returns the node's contact id.
func (n *Node) ID() string { return n.Contact.ID }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Edge is a parent-child link in the tree.
type Edge struct {
	From string // Parent ID
	To   string // Child ID
}

// Tree is a rooted, ordered tree keyed by contact id.
//
// The zero value is not usable; create trees with Build.
type Tree struct {
	root  string
	nodes map[string]*Node
	order []string // pre-order
}

// RootID returns the synthetic root's id.
func (t *Tree) RootID() string { return t.root }

// Root returns the synthetic root node.
func (t *Tree) Root() *Node { return t.nodes[t.root] }

// Node returns the node with the given id and true, or nil and false.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Has reports whether id is a node of the tree.
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Children returns the ordered child ids of id. The slice is a read-only view.
func (t *Tree) Children(id string) []string {
	if n, ok := t.nodes[id]; ok {
		return n.Children
	}
	return nil
}

// Parent returns the parent id of id, or "" and false for the root and
// unknown ids.
func (t *Tree) Parent(id string) (string, bool) {
	n, ok := t.nodes[id]
	if !ok || n.Synthetic {
		return "", false
	}
	return n.ParentID, true
}

// Depth returns the depth of id (root = 0), or -1 for unknown ids.
func (t *Tree) Depth(id string) int {
	if n, ok := t.nodes[id]; ok {
		return n.Depth
	}
	return -1
}

// Len returns the number of nodes including the synthetic root.
func (t *Tree) Len() int { return len(t.nodes) }

// ContactCount returns the number of real contacts in the tree.
func (t *Tree) ContactCount() int { return len(t.nodes) - 1 }

// MaxDepth returns the depth of the deepest node.
func (t *Tree) MaxDepth() int {
	depth := 0
	for _, n := range t.nodes {
		depth = max(depth, n.Depth)
	}
	return depth
}

// LeafCount returns the number of childless nodes. A tree holding only the
// root counts the root as its single leaf.
func (t *Tree) LeafCount() int {
	count := 0
	for _, n := range t.nodes {
		if n.IsLeaf() {
			count++
		}
	}
	return count
}

// Walk visits nodes in pre-order (parents before children, siblings in
// order) until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	for _, id := range t.order {
		if !fn(t.nodes[id]) {
			return
		}
	}
}

// Nodes returns all nodes in pre-order, root first.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.order))
	for i, id := range t.order {
		out[i] = t.nodes[id]
	}
	return out
}

// Contacts returns the real contacts in pre-order, excluding the root.
func (t *Tree) Contacts() []contact.Contact {
	out := make([]contact.Contact, 0, len(t.order))
	for _, id := range t.order {
		if n := t.nodes[id]; !n.Synthetic {
			out = append(out, n.Contact)
		}
	}
	return out
}

// Edges returns every parent-child link in pre-order of the child,
// including links from the root.
func (t *Tree) Edges() []Edge {
	out := make([]Edge, 0, len(t.order))
	for _, id := range t.order {
		if n := t.nodes[id]; !n.Synthetic {
			out = append(out, Edge{From: n.ParentID, To: id})
		}
	}
	return out
}

// Ancestors returns the parent chain of id, nearest first, ending with the
// root. It returns nil for the root and unknown ids.
func (t *Tree) Ancestors(id string) []string {
	var out []string
	for {
		p, ok := t.Parent(id)
		if !ok {
			return out
		}
		out = append(out, p)
		id = p
	}
}
