package mutate

import (
	"github.com/matzehuels/orgtower/pkg/layout"
)

// State is the lifecycle state of a [View].
type State int

const (
	// Unbuilt means no layout is installed; a rebuild is required.
	Unbuilt State = iota
	// Built means a layout is installed and may carry manual positions.
	Built
)

// String returns "unbuilt" or "built".
func (s State) String() string {
	if s == Built {
		return "built"
	}
	return "unbuilt"
}

// View is one working view: a computed layout plus the manual positions
// applied on top of it. The zero value is an Unbuilt view.
type View struct {
	state     State
	base      layout.Layout
	overrides Overrides
	builds    uint64
}

// State returns the current state.
func (v *View) State() State { return v.state }

// Dirty reports whether manual positions are applied.
func (v *View) Dirty() bool { return v.state == Built && v.overrides.Len() > 0 }

// Builds returns how many layouts have been installed.
func (v *View) Builds() uint64 { return v.builds }

// Install makes l the view's layout and discards every manual position.
func (v *View) Install(l layout.Layout) {
	v.base = l
	v.overrides.Clear()
	v.state = Built
	v.builds++
}

// Invalidate returns the view to Unbuilt, e.g. after a filter change, a
// delete or a new analysis.
func (v *View) Invalidate() {
	v.base = layout.Layout{}
	v.overrides.Clear()
	v.state = Unbuilt
}

// Reposition drags id by (dx, dy) at the given zoom. It reports false when
// the view is Unbuilt or id is not part of the installed layout.
func (v *View) Reposition(id string, dx, dy, zoom float64) bool {
	if v.state != Built {
		return false
	}
	return v.overrides.Move(id, dx, dy, zoom, v.base)
}

// Place pins id at an absolute position, e.g. when restoring a saved
// session. It reports false when the view is Unbuilt or id is unknown.
func (v *View) Place(id string, p layout.Point) bool {
	if v.state != Built || !v.base.Has(id) {
		return false
	}
	v.overrides.Set(id, p)
	return true
}

// Base returns the computed layout without manual positions.
func (v *View) Base() (layout.Layout, bool) {
	return v.base, v.state == Built
}

// Effective returns the layout with manual positions applied.
func (v *View) Effective() (layout.Layout, bool) {
	if v.state != Built {
		return layout.Layout{}, false
	}
	return Merge(v.base, &v.overrides), true
}

// Overrides returns a copy of the manual positions.
func (v *View) Overrides() map[string]layout.Point {
	return v.overrides.Snapshot()
}
