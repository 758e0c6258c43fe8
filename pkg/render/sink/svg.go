package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/orgtower/pkg/render"
)

const (
	svgMargin   = 24.0
	titleHeight = 40.0
	boxRadius   = 8.0
)

const chainInteractionCSS = `
    .box rect { transition: stroke-width 0.2s ease; }
    .box.highlight rect { stroke-width: 5; }
    .connector { transition: stroke 0.2s ease; }
    .connector.highlight { stroke: #222; stroke-width: 2.5; }`

const chainInteractionJS = `
    function chain(id) {
      const ids = [id];
      let el = document.getElementById('box-' + id);
      while (el && el.dataset.parent) {
        ids.push(el.dataset.parent);
        el = document.getElementById('box-' + el.dataset.parent);
      }
      return ids;
    }
    function highlight(ids) {
      document.querySelectorAll('.box').forEach(b => b.classList.toggle('highlight', ids.includes(b.dataset.id)));
      document.querySelectorAll('.connector').forEach(c => c.classList.toggle('highlight', ids.includes(c.dataset.to) && ids.includes(c.dataset.from)));
    }
    function clearHighlight() {
      document.querySelectorAll('.box, .connector').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.box').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(chain(el.dataset.id)));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	interactive bool
	details     bool
}

// WithTitle draws title above the chart.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithInteraction embeds a script that highlights a contact's reporting
// chain on hover.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithDetails adds department and strategic action lines to each box.
func WithDetails() SVGOption { return func(r *svgRenderer) { r.details = true } }

// RenderSVG draws s as a standalone SVG document. The view box covers the
// scene bounds plus a margin, so manually moved boxes with negative
// coordinates stay visible.
func RenderSVG(s render.Scene, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY := s.Bounds.Left-svgMargin, s.Bounds.Top-svgMargin
	width, height := s.Bounds.Width()+2*svgMargin, s.Bounds.Height()+2*svgMargin
	if r.title != "" {
		minY -= titleHeight
		height += titleHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f" font-family="Helvetica, Arial, sans-serif">`+"\n",
		minX, minY, width, height, width, height)
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", minX, minY, width, height)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="20" font-weight="bold" fill="#222">%s</text>`+"\n",
			s.Bounds.Left, s.Bounds.Top-titleHeight/2, escape(r.title))
	}

	for _, c := range s.Connectors {
		renderConnector(&buf, c)
	}
	for _, b := range s.Boxes {
		renderBox(&buf, b, r.details)
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chainInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", chainInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderConnector(buf *bytes.Buffer, c render.Connector) {
	pts := make([]string, len(c.Points))
	for i, p := range c.Points {
		pts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	fmt.Fprintf(buf, `  <polyline class="connector" data-from="%s" data-to="%s" points="%s" fill="none" stroke="#9a9a9a" stroke-width="1.5"/>`+"\n",
		escape(c.From), escape(c.To), strings.Join(pts, " "))
}

func renderBox(buf *bytes.Buffer, b render.Box, details bool) {
	pal := render.StancePalette(b.Contact.Stance)
	stroke := render.StrokeWidth(b.Contact.PowerLevel)
	if b.Synthetic {
		pal, stroke = render.RootPalette, 1
	}
	rect := b.Rect

	fmt.Fprintf(buf, `  <g class="box" id="box-%s" data-id="%s" data-parent="%s">`+"\n",
		escape(b.ID), escape(b.ID), escape(b.ParentID))

	dash := ""
	if b.Moved {
		dash = ` stroke-dasharray="6 3"`
	}
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="%.0f"%s/>`+"\n",
		rect.Left, rect.Top, rect.Width(), rect.Height(), boxRadius, pal.Fill, pal.Stroke, stroke, dash)

	lines := boxLines(b, details)
	lineHeight := rect.Height() / float64(len(lines)+1)
	for i, line := range lines {
		size := render.FontSize(rect.Width()*0.9, len(line.text))
		if line.small {
			size = min(size, 11)
		}
		text := render.Truncate(line.text, rect.Width()*0.9, size)
		weight := ""
		if i == 0 {
			weight = ` font-weight="bold"`
		}
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" fill="%s"%s>%s</text>`+"\n",
			rect.CenterX(), rect.Top+lineHeight*float64(i+1), size, pal.Text, weight, escape(text))
	}

	if b.Resolution.Rerouted() {
		fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="4" fill="%s"><title>%s</title></circle>`+"\n",
			rect.Right-10, rect.Top+10, pal.Stroke, escape("reporting line repaired: "+b.Resolution.String()))
	}
	buf.WriteString("  </g>\n")
}

type boxLine struct {
	text  string
	small bool
}

func boxLines(b render.Box, details bool) []boxLine {
	c := b.Contact
	name := c.Name
	if name == "" {
		name = c.ID
	}
	lines := []boxLine{{text: name}}
	if c.Title != "" {
		lines = append(lines, boxLine{text: c.Title, small: true})
	}
	if details {
		if c.Department != "" {
			lines = append(lines, boxLine{text: c.Department, small: true})
		}
		if c.StrategicAction != "" {
			lines = append(lines, boxLine{text: c.StrategicAction, small: true})
		}
	}
	return lines
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
