package render

import (
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/org/transform"
)

// Document is the stable, serializable form of a scene. External renderers
// can draw it without recomputing the layout.
type Document struct {
	AccountName string            `json:"account_name,omitempty"`
	Department  string            `json:"department,omitempty"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
	NodeWidth   float64           `json:"node_width"`
	NodeHeight  float64           `json:"node_height"`
	Nodes       []DocumentNode    `json:"nodes"`
	Connectors  []Connector       `json:"connectors"`
	Report      *transform.Report `json:"report,omitempty"`
}

// DocumentNode is one positioned contact.
type DocumentNode struct {
	ID              string             `json:"id"`
	X               float64            `json:"x"`
	Y               float64            `json:"y"`
	ParentID        string             `json:"parent_id,omitempty"`
	Depth           int                `json:"depth"`
	Name            string             `json:"name"`
	Title           string             `json:"title,omitempty"`
	Department      string             `json:"department,omitempty"`
	BuyingRole      contact.BuyingRole `json:"buying_role,omitempty"`
	PowerLevel      contact.PowerLevel `json:"power_level,omitempty"`
	Stance          contact.Stance     `json:"stance,omitempty"`
	SeniorityRank   int                `json:"seniority_rank"`
	StrategicAction string             `json:"strategic_action,omitempty"`
	Resolution      string             `json:"resolution"`
	Moved           bool               `json:"moved,omitempty"`
	Synthetic       bool               `json:"synthetic,omitempty"`
}

// Meta carries the account-level fields of a document.
type Meta struct {
	AccountName string
	Department  string
	Report      *transform.Report
}

// NewDocument serializes s.
func NewDocument(s Scene, meta Meta) Document {
	doc := Document{
		AccountName: meta.AccountName,
		Department:  meta.Department,
		Width:       s.Bounds.Width(),
		Height:      s.Bounds.Height(),
		NodeWidth:   s.Options.NodeWidth,
		NodeHeight:  s.Options.NodeHeight,
		Nodes:       make([]DocumentNode, 0, len(s.Boxes)),
		Connectors:  s.Connectors,
		Report:      meta.Report,
	}
	if doc.Connectors == nil {
		doc.Connectors = []Connector{}
	}
	for _, b := range s.Boxes {
		c := b.Contact
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:              b.ID,
			X:               b.Rect.Left,
			Y:               b.Rect.Top,
			ParentID:        b.ParentID,
			Depth:           b.Depth,
			Name:            c.Name,
			Title:           c.Title,
			Department:      c.Department,
			BuyingRole:      c.BuyingRole,
			PowerLevel:      c.PowerLevel,
			Stance:          c.Stance,
			SeniorityRank:   c.SeniorityRank,
			StrategicAction: c.StrategicAction,
			Resolution:      b.Resolution.String(),
			Moved:           b.Moved,
			Synthetic:       b.Synthetic,
		})
	}
	return doc
}
