// Package sink writes a [render.Scene] in a concrete output format.
//
// # Overview
//
//   - SVG: [RenderSVG], self-contained vector output with hover highlighting
//     of a contact's reporting chain
//   - JSON: [RenderJSON], the [render.Document] for external renderers
//   - DOT: [ToDOT], Graphviz source with reports in layout order
//   - Graphviz SVG: [RenderGraphviz], DOT laid out and drawn in-process
//
// # SVG Options
//
//   - [WithTitle]: Heading drawn above the chart
//   - [WithInteraction]: Hover highlighting script
//   - [WithDetails]: Department and strategic action lines inside each box
//
// # Dependencies
//
// [RenderGraphviz] uses [github.com/goccy/go-graphviz], which embeds
// Graphviz as WebAssembly and needs no system install.
//
// [render.Scene]: github.com/matzehuels/orgtower/pkg/render.Scene
// [render.Document]: github.com/matzehuels/orgtower/pkg/render.Document
package sink
