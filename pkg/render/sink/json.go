package sink

import (
	"encoding/json"

	"github.com/matzehuels/orgtower/pkg/render"
)

// RenderJSON encodes doc as indented JSON.
func RenderJSON(doc render.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
