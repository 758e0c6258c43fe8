// Package pipeline turns a contact analysis into rendered org charts.
//
// Every entry point (CLI, HTTP server, interactive session) goes through
// here, so reconciliation and caching cannot drift between them.
//
// A run has three stages, each usable on its own:
//
//  1. [Build] normalizes the analysis, applies the department filter,
//     repairs identities and reporting lines and assembles an [org.Tree].
//  2. [Runner.GenerateLayout] positions the boxes.
//  3. [Runner.Render] projects a scene and encodes svg, json, dot or
//     graphviz output.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, analysis, pipeline.Options{
//	    Department: "Engineering",
//	    Formats:    []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("org.svg", res.Artifacts["svg"], 0o644)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/org"
	"github.com/matzehuels/orgtower/pkg/org/transform"
	"github.com/matzehuels/orgtower/pkg/render"
)

// Output formats.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
)

// ValidFormats lists the formats Render accepts.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatGraphviz: true,
}

// Extensions maps output formats to file extensions.
var Extensions = map[string]string{
	FormatSVG:      ".svg",
	FormatJSON:     ".json",
	FormatDOT:      ".dot",
	FormatGraphviz: ".graphviz.svg",
}

// Options configures a run. The zero value renders every department as SVG
// with default box dimensions.
type Options struct {
	Department string `json:"department,omitempty"` // Exact, case-sensitive match; empty keeps everyone

	NodeWidth         float64 `json:"node_width,omitempty"`
	NodeHeight        float64 `json:"node_height,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	Refresh           bool    `json:"refresh,omitempty"` // Bypass cache reads

	Formats     []string `json:"formats,omitempty"`
	ShowRoot    bool     `json:"show_root,omitempty"`
	Title       string   `json:"title,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Details     bool     `json:"details,omitempty"`

	Logger *log.Logger `json:"-"`
	RootID string      `json:"-"` // Fixed synthetic root id; a fresh one is drawn when empty

	validated bool
}

// Result is everything a full run produces.
type Result struct {
	// Analysis is the normalized input, before the department filter.
	Analysis contact.Analysis

	// Tree is the reconciled hierarchy.
	Tree *org.Tree

	// TreeHash identifies the tree shape, independent of the root id.
	TreeHash string

	// Report counts the repairs made while building.
	Report transform.Report

	// Layout holds box positions before any manual moves.
	Layout layout.Layout

	// Scene is what the renderers drew.
	Scene render.Scene

	// Document is the serializable form of Scene.
	Document render.Document

	// Artifacts maps each requested format to its encoded bytes.
	Artifacts map[string][]byte

	// Stats summarizes the run for progress output.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats holds counts and per-stage durations.
type Stats struct {
	Contacts   int // Contacts in the working set, after the filter
	Nodes      int // Contacts placed in the tree
	Rerouted   int
	Depth      int
	Leaves     int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // every requested format was cached
}

// ValidateFormat rejects unknown formats with INVALID_FORMAT.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, dot, graphviz)", format)
	}
	return nil
}

// ValidateFormats applies ValidateFormat to each entry.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults prepares o for Execute. Repeated calls are no-ops.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the department filter.
func (o *Options) ValidateForBuild() error {
	o.ensureLogger()
	return errors.ValidateDepartment(o.Department)
}

// SetLayoutDefaults replaces unset or invalid dimensions with the defaults.
func (o *Options) SetLayoutDefaults() {
	lo := o.LayoutOptions()
	o.NodeWidth = lo.NodeWidth
	o.NodeHeight = lo.NodeHeight
	o.VerticalSpacing = lo.VerticalSpacing
	o.HorizontalSpacing = lo.HorizontalSpacing
	o.ensureLogger()
}

// SetRenderDefaults selects SVG when no format was requested.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.ensureLogger()
}

func (o *Options) ensureLogger() {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForRender applies layout and render defaults, then checks formats.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		NodeWidth:         o.NodeWidth,
		NodeHeight:        o.NodeHeight,
		VerticalSpacing:   o.VerticalSpacing,
		HorizontalSpacing: o.HorizontalSpacing,
	}.WithDefaults()
}

// LayoutKeyOpts returns the options that distinguish cached layouts.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	lo := o.LayoutOptions()
	return cache.LayoutKeyOpts{
		NodeWidth:         lo.NodeWidth,
		NodeHeight:        lo.NodeHeight,
		VerticalSpacing:   lo.VerticalSpacing,
		HorizontalSpacing: lo.HorizontalSpacing,
	}
}

// ArtifactKeyOpts returns the options that distinguish cached artifacts.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Department:  o.Department,
		ShowRoot:    o.ShowRoot,
		Title:       o.Title,
		Interactive: o.Interactive,
		Details:     o.Details,
	}
}

// ProjectOptions returns the scene projection options.
func (o *Options) ProjectOptions() []render.Option {
	if o.ShowRoot {
		return []render.Option{render.WithRoot()}
	}
	return nil
}

func (o *Options) describe() string {
	if o.Department == "" {
		return "all departments"
	}
	return fmt.Sprintf("department %q", o.Department)
}
