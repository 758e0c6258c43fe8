package org

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
)

// RootPrefix namespaces synthetic root ids.
const RootPrefix = "__root__:"

// RootName is the display name given to the synthetic root.
const RootName = "Organization"

// NewRootID returns a fresh synthetic root id for which taken reports false.
// A nil taken accepts the first candidate.
func NewRootID(taken func(string) bool) string {
	for {
		id := RootPrefix + uuid.NewString()
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// NewRoot returns the synthetic root contact for id.
func NewRoot(id string) contact.Contact {
	return contact.Contact{
		ID:            id,
		Name:          RootName,
		SeniorityRank: contact.RootRank,
	}
}

// IsRootID reports whether id is in the synthetic root namespace. Real
// contacts may use the prefix too; compare against [Tree.RootID] to identify
// a tree's root.
func IsRootID(id string) bool {
	return len(id) > len(RootPrefix) && id[:len(RootPrefix)] == RootPrefix
}

// Build assembles members into a single tree under root.
//
// Members are grouped by ParentID with input order preserved, then attached
// recursively from the root. Siblings are stably sorted by ascending
// SeniorityRank. Build fails with STRUCTURAL_VIOLATION when the members do
// not form one tree under the root.
func Build(members []Member, root contact.Contact) (*Tree, error) {
	if root.ID == "" {
		return nil, errors.New(errors.ErrCodeStructural, "synthetic root has no id")
	}

	t := &Tree{
		root:  root.ID,
		nodes: make(map[string]*Node, len(members)+1),
		order: make([]string, 0, len(members)+1),
	}
	t.nodes[root.ID] = &Node{Contact: root, Synthetic: true}

	children := make(map[string][]*Node, len(members))
	for _, m := range members {
		id := m.Contact.ID
		if id == "" {
			return nil, errors.New(errors.ErrCodeStructural, "member without id")
		}
		if _, dup := t.nodes[id]; dup {
			return nil, errors.New(errors.ErrCodeStructural, "duplicate id %q in working set", id)
		}
		if m.ParentID == id {
			return nil, errors.New(errors.ErrCodeStructural, "%q is its own parent", id)
		}
		n := &Node{Contact: m.Contact, ParentID: m.ParentID, Resolution: m.Resolution}
		t.nodes[id] = n
		children[m.ParentID] = append(children[m.ParentID], n)
	}

	for parent := range children {
		if _, ok := t.nodes[parent]; !ok {
			return nil, errors.New(errors.ErrCodeStructural, "parent %q is not in the working set", parent)
		}
	}

	var attach func(n *Node, depth int)
	attach = func(n *Node, depth int) {
		n.Depth = depth
		t.order = append(t.order, n.ID())
		kids := children[n.ID()]
		slices.SortStableFunc(kids, func(a, b *Node) int {
			return cmp.Compare(a.Contact.SeniorityRank, b.Contact.SeniorityRank)
		})
		n.Children = make([]string, len(kids))
		for i, k := range kids {
			n.Children[i] = k.ID()
		}
		for _, k := range kids {
			attach(k, depth+1)
		}
	}
	attach(t.nodes[root.ID], 0)

	if len(t.order) != len(t.nodes) {
		return nil, errors.New(errors.ErrCodeStructural,
			"%d of %d contacts are unreachable from the root", len(t.nodes)-len(t.order), len(members))
	}
	return t, nil
}
