package mutate

import (
	"maps"

	"github.com/matzehuels/orgtower/pkg/layout"
)

// Overrides holds manually dragged node positions. The zero value is an
// empty, usable map. Overrides is not safe for concurrent use.
type Overrides struct {
	pos map[string]layout.Point
}

// Move drags id by (dx, dy) screen units at the given zoom, starting from
// its current effective position in base. The delta is divided by zoom so
// the node follows the pointer at any zoom level; zoom <= 0 counts as 1.
//
// Move reports false, and records nothing, when id is not in base. Such
// events target a node that a rebuild has since removed.
func (o *Overrides) Move(id string, dx, dy, zoom float64, base layout.Layout) bool {
	n, ok := base.Position(id)
	if !ok {
		return false
	}
	if zoom <= 0 {
		zoom = 1
	}
	cur, moved := o.pos[id]
	if !moved {
		cur = n.Point()
	}
	if o.pos == nil {
		o.pos = make(map[string]layout.Point)
	}
	o.pos[id] = cur.Add(dx/zoom, dy/zoom)
	return true
}

// Set places id at p, replacing any earlier override.
func (o *Overrides) Set(id string, p layout.Point) {
	if o.pos == nil {
		o.pos = make(map[string]layout.Point)
	}
	o.pos[id] = p
}

// Get returns the override for id, if any.
func (o *Overrides) Get(id string) (layout.Point, bool) {
	p, ok := o.pos[id]
	return p, ok
}

// Len returns the number of overridden nodes.
func (o *Overrides) Len() int { return len(o.pos) }

// Clear drops every override.
func (o *Overrides) Clear() { clear(o.pos) }

// Prune drops overrides for ids missing from base and returns how many were
// dropped.
func (o *Overrides) Prune(base layout.Layout) int {
	dropped := 0
	for id := range o.pos {
		if !base.Has(id) {
			delete(o.pos, id)
			dropped++
		}
	}
	return dropped
}

// Snapshot returns a copy of the overrides.
func (o *Overrides) Snapshot() map[string]layout.Point {
	return maps.Clone(o.pos)
}

// Merge returns base with overridden positions applied. base itself is
// left untouched. Overrides for ids missing from base are ignored.
func Merge(base layout.Layout, o *Overrides) layout.Layout {
	out := base
	out.Nodes = make([]layout.PositionedNode, len(base.Nodes))
	copy(out.Nodes, base.Nodes)
	if o != nil {
		for i, n := range out.Nodes {
			if p, ok := o.pos[n.ID]; ok {
				out.Nodes[i].X, out.Nodes[i].Y = p.X, p.Y
			}
		}
	}
	out.Reindex()
	return out
}
