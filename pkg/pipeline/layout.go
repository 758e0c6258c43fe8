package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/org"
)

// GenerateLayout computes the layout of t.
func GenerateLayout(t *org.Tree, opts Options) layout.Layout {
	return layout.Compute(t, opts.LayoutOptions())
}

// marshalLayout encodes l with its root id blanked, so the cached value can
// be reused by a build with a different synthetic root.
func marshalLayout(l layout.Layout) ([]byte, error) {
	return json.Marshal(relabelRoot(l, ""))
}

// unmarshalLayout decodes a cached layout and gives it rootID.
func unmarshalLayout(data []byte, rootID string) (layout.Layout, error) {
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return layout.Layout{}, err
	}
	return relabelRoot(l, rootID), nil
}

// relabelRoot returns a copy of l whose root is named id.
func relabelRoot(l layout.Layout, id string) layout.Layout {
	from := l.RootID
	out := layout.Layout{
		Options: l.Options,
		Nodes:   make([]layout.PositionedNode, len(l.Nodes)),
		RootID:  id,
	}
	for i, n := range l.Nodes {
		if n.ID == from {
			n.ID = id
		}
		if n.ParentID == from && n.Depth == 1 {
			n.ParentID = id
		}
		out.Nodes[i] = n
	}
	out.Reindex()
	return out
}
