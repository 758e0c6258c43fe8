package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/org"
	"github.com/matzehuels/orgtower/pkg/render"
)

// Cache key types reported to [observability.CacheHooks].
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner runs the stages against a layout and artifact cache. The CLI, the
// HTTP server and sessions all share one.
//
// A Runner holds no per-run state and is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a Runner. Nil arguments select a NullCache, the
// DefaultKeyer and log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, a contact.Analysis, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	buildStart := time.Now()
	built, err := Build(ctx, a, opts)
	if err != nil {
		return nil, err
	}
	result.Analysis = built.Analysis
	result.Tree = built.Tree
	result.Report = built.Report
	result.TreeHash = TreeHash(built.Tree)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Contacts = built.Report.Input
	result.Stats.Nodes = built.Tree.ContactCount()
	result.Stats.Rerouted = built.Report.Rerouted()
	result.Stats.Depth = built.Tree.MaxDepth()
	result.Stats.Leaves = built.Tree.LeafCount()

	r.Logger.Info("built hierarchy",
		"contacts", result.Stats.Nodes,
		"rerouted", result.Stats.Rerouted,
		"depth", result.Stats.Depth,
		"duration", result.Stats.BuildTime)

	layoutStart := time.Now()
	l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, built.Tree, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", l.Len(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Projection runs outside the cache; only encoding is cached.
	renderStart := time.Now()
	result.Scene = render.Project(built.Tree, l, opts.ProjectOptions()...)
	meta := render.Meta{AccountName: built.Analysis.AccountName, Department: opts.Department, Report: &result.Report}
	result.Document = render.NewDocument(result.Scene, meta)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Scene, meta, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateLayoutWithCacheInfo computes the layout of t with caching and
// returns cache hit info. Cached layouts are keyed by the tree's shape, so a
// hit is relabelled with t's synthetic root id.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, t *org.Tree, opts Options) (layout.Layout, bool, error) {
	if t == nil {
		return layout.Layout{}, false, fmt.Errorf("no tree to lay out")
	}
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, t.Len())

	cacheKey := r.Keyer.LayoutKey(TreeHash(t), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); hit && err == nil {
			cached, err := unmarshalLayout(data, t.RootID())
			if err == nil && cached.Len() == t.Len() {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				hooks.OnLayoutComplete(ctx, t.Len(), time.Since(start), nil)
				return cached, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	l := GenerateLayout(t, opts)

	if data, err := marshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}

	hooks.OnLayoutComplete(ctx, t.Len(), time.Since(start), nil)
	return l, false, nil
}

// GenerateLayout is GenerateLayoutWithCacheInfo without the hit flag.
func (r *Runner) GenerateLayout(ctx context.Context, t *org.Tree, opts Options) (layout.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, t, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts for s with caching and returns
// cache hit info. Artifacts are keyed by the scene's document form, so
// manual positions produce fresh artifacts.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s render.Scene, meta render.Meta, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)

	sceneData, err := json.Marshal(render.NewDocument(s, meta))
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}
	sceneHash := cache.Hash(sceneData)

	// Serve from cache only when every requested format is present.
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, s, meta, opts)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, s render.Scene, meta render.Meta, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, meta, opts)
	return artifacts, err
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

// applyLogger defaults opts.Logger to the runner's logger.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
