package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/render/sink"
)

// Render generates output artifacts for s in the requested formats.
func Render(ctx context.Context, s render.Scene, meta render.Meta, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(s, svgOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(render.NewDocument(s, meta))
		case FormatDOT:
			data = []byte(sink.ToDOT(s))
		case FormatGraphviz:
			data, err = sink.RenderGraphviz(ctx, sink.ToDOT(s))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Title != "" {
		out = append(out, sink.WithTitle(opts.Title))
	}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	if opts.Details {
		out = append(out, sink.WithDetails())
	}
	return out
}
