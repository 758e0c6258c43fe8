package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/matzehuels/orgtower/pkg/contact"
	orgio "github.com/matzehuels/orgtower/pkg/io"
)

// Extractor turns one document into an analysis.
type Extractor interface {
	Extract(ctx context.Context, text string) (*contact.Analysis, error)
}

// FuncExtractor adapts a function to the Extractor interface.
type FuncExtractor func(ctx context.Context, text string) (*contact.Analysis, error)

// Extract calls f.
func (f FuncExtractor) Extract(ctx context.Context, text string) (*contact.Analysis, error) {
	return f(ctx, text)
}

// StaticExtractor reads documents that already contain an analysis. A
// document starting with '{' is decoded as JSON, anything else as TOML.
type StaticExtractor struct{}

// Extract implements Extractor.
func (StaticExtractor) Extract(ctx context.Context, text string) (*contact.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format := orgio.FormatTOML
	if bytes.HasPrefix(bytes.TrimSpace([]byte(text)), []byte("{")) {
		format = orgio.FormatJSON
	}
	a, err := orgio.ReadAnalysis(strings.NewReader(text), format)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

var (
	_ Extractor = StaticExtractor{}
	_ Extractor = FuncExtractor(nil)
)
