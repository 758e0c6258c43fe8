package render

import (
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/org"
)

// Box is a contact drawn at its effective position.
type Box struct {
	ID         string
	ParentID   string // Empty for top-level contacts and the root
	Depth      int
	Contact    contact.Contact
	Rect       layout.Rect
	Resolution org.Resolution
	Synthetic  bool // The synthetic root, only present WithRoot
	Moved      bool // Position comes from a manual drag
}

// Connector is an orthogonal reporting line from a manager's bottom edge to
// a report's top edge.
type Connector struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Points []layout.Point `json:"points"`
}

// Scene is everything a renderer draws.
type Scene struct {
	Boxes      []Box
	Connectors []Connector
	Bounds     layout.Rect
	Options    layout.Options
}

// Option configures [Project].
type Option func(*projector)

type projector struct {
	showRoot bool
	moved    map[string]bool
}

// WithRoot includes the synthetic root and its links.
func WithRoot() Option { return func(p *projector) { p.showRoot = true } }

// WithMoved marks the given ids as manually positioned.
func WithMoved[T any](ids map[string]T) Option {
	return func(p *projector) {
		p.moved = make(map[string]bool, len(ids))
		for id := range ids {
			p.moved[id] = true
		}
	}
}

// Project maps t and l to a scene. Boxes follow l's pre-order; nodes of t
// missing from l are skipped.
func Project(t *org.Tree, l layout.Layout, opts ...Option) Scene {
	var p projector
	for _, opt := range opts {
		opt(&p)
	}

	s := Scene{Options: l.Options}
	if t == nil {
		return s
	}

	boxes := make(map[string]layout.Rect, l.Len())
	first := true
	for _, pn := range l.Nodes {
		n, ok := t.Node(pn.ID)
		if !ok || (n.Synthetic && !p.showRoot) {
			continue
		}
		rect := layout.RectAt(pn.Point(), l.Options)
		boxes[pn.ID] = rect

		parent := n.ParentID
		if !p.showRoot && parent == t.RootID() {
			parent = ""
		}
		s.Boxes = append(s.Boxes, Box{
			ID:         pn.ID,
			ParentID:   parent,
			Depth:      n.Depth,
			Contact:    n.Contact,
			Rect:       rect,
			Resolution: n.Resolution,
			Synthetic:  n.Synthetic,
			Moved:      p.moved[pn.ID],
		})

		if first {
			s.Bounds, first = rect, false
		} else {
			s.Bounds = s.Bounds.Union(rect)
		}
	}

	for _, e := range t.Edges() {
		from, okFrom := boxes[e.From]
		to, okTo := boxes[e.To]
		if !okFrom || !okTo {
			continue
		}
		s.Connectors = append(s.Connectors, Connector{
			From:   e.From,
			To:     e.To,
			Points: elbow(from, to),
		})
	}
	return s
}

// elbow routes a connector down from the parent, across at the midpoint,
// and down into the child.
func elbow(parent, child layout.Rect) []layout.Point {
	start := layout.Point{X: parent.CenterX(), Y: parent.Bottom}
	end := layout.Point{X: child.CenterX(), Y: child.Top}
	midY := (start.Y + end.Y) / 2
	if start.X == end.X {
		return []layout.Point{start, end}
	}
	return []layout.Point{
		start,
		{X: start.X, Y: midY},
		{X: end.X, Y: midY},
		end,
	}
}

// Box returns the box with the given id.
func (s Scene) Box(id string) (Box, bool) {
	for _, b := range s.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}
