package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orgtower/pkg/render"
)

// ToDOT converts s to Graphviz DOT source. Boxes are filled by stance and
// outlined by power level; manually moved boxes are dashed. ordering=out
// keeps reports in the same left-to-right order as the layout.
func ToDOT(s render.Scene) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#9a9a9a\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, b := range s.Boxes {
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(b.ID), strings.Join(dotAttrs(b), ", "))
	}

	buf.WriteString("\n")
	for _, c := range s.Connectors {
		fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(c.From), dotQuote(c.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotQuote quotes s as a DOT string. DOT only understands \" and \\ plus the
// \n line break, so everything else is passed through as UTF-8.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func dotAttrs(b render.Box) []string {
	label := b.Contact.Name
	if label == "" {
		label = b.ID
	}
	if b.Contact.Title != "" {
		label += "\n" + b.Contact.Title
	}

	pal := render.StancePalette(b.Contact.Stance)
	width := render.StrokeWidth(b.Contact.PowerLevel)
	if b.Synthetic {
		pal, width = render.RootPalette, 1
	}

	attrs := []string{
		"label=" + dotQuote(label),
		"fillcolor=" + dotQuote(pal.Fill),
		"color=" + dotQuote(pal.Stroke),
		"fontcolor=" + dotQuote(pal.Text),
		fmt.Sprintf("penwidth=%g", width),
	}
	if b.Moved {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderGraphviz lays out and draws DOT source with the embedded Graphviz
// engine and returns SVG.
func RenderGraphviz(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and its width and height match the view box.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
