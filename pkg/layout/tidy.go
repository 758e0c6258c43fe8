package layout

import (
	"math"

	"github.com/matzehuels/orgtower/pkg/org"
)

// contour holds the leftmost and rightmost node centers of a subtree per
// relative depth, as offsets from the subtree root's center.
type contour struct {
	left, right []float64
}

// Compute lays out t. The result contains every node of t, the synthetic
// root included, in pre-order.
func Compute(t *org.Tree, opts Options) Layout {
	opts = opts.WithDefaults()
	if t == nil {
		return Layout{Options: opts, index: map[string]int{}}
	}

	offset := make(map[string]float64, t.Len())
	place(t, t.RootID(), opts.Slot(), offset)

	center := make(map[string]float64, t.Len())
	minCenter := math.Inf(1)
	t.Walk(func(n *org.Node) bool {
		x := 0.0
		if !n.Synthetic {
			x = center[n.ParentID] + offset[n.ID()]
		}
		center[n.ID()] = x
		minCenter = min(minCenter, x)
		return true
	})

	l := Layout{
		Options: opts,
		RootID:  t.RootID(),
		Nodes:   make([]PositionedNode, 0, t.Len()),
	}
	level := opts.Level()
	t.Walk(func(n *org.Node) bool {
		l.Nodes = append(l.Nodes, PositionedNode{
			ID:       n.ID(),
			ParentID: n.ParentID,
			Depth:    n.Depth,
			X:        center[n.ID()] - minCenter,
			Y:        float64(n.Depth) * level,
		})
		return true
	})
	l.Reindex()
	return l
}

// place lays out the subtree rooted at id, records each child's center
// relative to its parent in offset, and returns the subtree's contour.
func place(t *org.Tree, id string, slot float64, offset map[string]float64) contour {
	kids := t.Children(id)
	if len(kids) == 0 {
		return contour{left: []float64{0}, right: []float64{0}}
	}

	var acc contour
	pos := make([]float64, len(kids))
	for i, kid := range kids {
		c := place(t, kid, slot, offset)

		shift := 0.0
		if i > 0 {
			shift = math.Inf(-1)
			for d := 0; d < len(acc.right) && d < len(c.left); d++ {
				shift = max(shift, acc.right[d]-c.left[d]+slot)
			}
		}
		pos[i] = shift

		for d, v := range c.left {
			if d < len(acc.left) {
				acc.left[d] = min(acc.left[d], v+shift)
			} else {
				acc.left = append(acc.left, v+shift)
			}
		}
		for d, v := range c.right {
			if d < len(acc.right) {
				acc.right[d] = max(acc.right[d], v+shift)
			} else {
				acc.right = append(acc.right, v+shift)
			}
		}
	}

	mid := (pos[0] + pos[len(pos)-1]) / 2
	for i, kid := range kids {
		offset[kid] = pos[i] - mid
	}

	out := contour{
		left:  make([]float64, 1, len(acc.left)+1),
		right: make([]float64, 1, len(acc.right)+1),
	}
	for _, v := range acc.left {
		out.left = append(out.left, v-mid)
	}
	for _, v := range acc.right {
		out.right = append(out.right, v-mid)
	}
	return out
}
