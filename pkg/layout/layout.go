package layout

import "math"

// Default layout dimensions, in user units (pixels in SVG output).
const (
	DefaultNodeWidth         = 220.0
	DefaultNodeHeight        = 90.0
	DefaultVerticalSpacing   = 60.0
	DefaultHorizontalSpacing = 40.0
)

// Options controls node size and spacing. Zero or negative fields fall back
// to the package defaults.
type Options struct {
	NodeWidth         float64 `json:"node_width,omitempty"`
	NodeHeight        float64 `json:"node_height,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
}

// DefaultOptions returns Options populated with the package defaults.
func DefaultOptions() Options {
	return Options{
		NodeWidth:         DefaultNodeWidth,
		NodeHeight:        DefaultNodeHeight,
		VerticalSpacing:   DefaultVerticalSpacing,
		HorizontalSpacing: DefaultHorizontalSpacing,
	}
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	def := DefaultOptions()
	if !positive(o.NodeWidth) {
		o.NodeWidth = def.NodeWidth
	}
	if !positive(o.NodeHeight) {
		o.NodeHeight = def.NodeHeight
	}
	if !positive(o.VerticalSpacing) {
		o.VerticalSpacing = def.VerticalSpacing
	}
	if !positive(o.HorizontalSpacing) {
		o.HorizontalSpacing = def.HorizontalSpacing
	}
	return o
}

// Slot is the minimum center-to-center distance between two nodes at the
// same depth.
func (o Options) Slot() float64 { return o.NodeWidth + o.HorizontalSpacing }

// Level is the distance between two consecutive depths.
func (o Options) Level() float64 { return o.NodeHeight + o.VerticalSpacing }

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// PositionedNode is a tree node with its computed position.
type PositionedNode struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parent_id,omitempty"` // Empty for the root
	Depth    int     `json:"depth"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Point returns the node's top-left corner.
func (n PositionedNode) Point() Point { return Point{X: n.X, Y: n.Y} }

// Rect is an axis-aligned rectangle. Y grows downwards.
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// RectAt returns the box of a node whose top-left corner is p.
func RectAt(p Point, opts Options) Rect {
	return Rect{Left: p.X, Top: p.Y, Right: p.X + opts.NodeWidth, Bottom: p.Y + opts.NodeHeight}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Layout is the output of [Compute]. It is immutable once returned.
type Layout struct {
	Options Options          `json:"options"`
	Nodes   []PositionedNode `json:"nodes"` // Pre-order, root first
	RootID  string           `json:"root_id"`

	index map[string]int
}

// Position returns the node with the given id and true, or the zero value
// and false.
func (l Layout) Position(id string) (PositionedNode, bool) {
	if l.index == nil {
		for _, n := range l.Nodes {
			if n.ID == id {
				return n, true
			}
		}
		return PositionedNode{}, false
	}
	i, ok := l.index[id]
	if !ok {
		return PositionedNode{}, false
	}
	return l.Nodes[i], true
}

// Has reports whether id was laid out.
func (l Layout) Has(id string) bool {
	_, ok := l.Position(id)
	return ok
}

// Len returns the number of positioned nodes including the root.
func (l Layout) Len() int { return len(l.Nodes) }

// Bounds returns the rectangle covering every node box. When includeRoot is
// false the synthetic root is left out, which is what renderers draw.
func (l Layout) Bounds(includeRoot bool) Rect {
	var (
		r     Rect
		found bool
	)
	for _, n := range l.Nodes {
		if !includeRoot && n.ID == l.RootID {
			continue
		}
		box := RectAt(n.Point(), l.Options)
		if !found {
			r, found = box, true
			continue
		}
		r = r.Union(box)
	}
	return r
}

// Reindex rebuilds the id lookup. Call it after decoding a Layout.
func (l *Layout) Reindex() {
	l.index = make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		l.index[n.ID] = i
	}
}
