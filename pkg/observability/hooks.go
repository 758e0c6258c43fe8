// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in orgtower emit events through these hooks instead of depending
// on a specific backend. main registers implementations at startup; until
// then every hook is a no-op.
//
// # Event Categories
//
//   - [PipelineHooks]: build, layout and render stages
//   - [CacheHooks]: layout and artifact cache lookups
//   - [MutationHooks]: deletes and manual repositioning
//   - [ExtractionHooks]: the extraction boundary, including superseded requests
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetMutationHooks(&myMutationHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, len(contacts))
//	// ... reconcile and build ...
//	observability.Pipeline().OnBuildComplete(ctx, tree.ContactCount(), report.Rerouted(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the build → layout → render pipeline.
type PipelineHooks interface {
	// Build events (validation, sanitization, tree construction)
	OnBuildStart(ctx context.Context, contacts int)
	OnBuildComplete(ctx context.Context, nodes, rerouted int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, nodeCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// MutationHooks receives events from user edits.
type MutationHooks interface {
	// OnDelete records a delete. found is false for the no-op case; bridged
	// counts the reports moved to the deleted contact's manager.
	OnDelete(ctx context.Context, id string, found bool, bridged int)

	// OnReposition records a drag. accepted is false when the id was stale.
	OnReposition(ctx context.Context, id string, accepted bool)
}

// ExtractionHooks receives events from the extraction boundary.
type ExtractionHooks interface {
	// OnExtractStart records a new request and its sequence number.
	OnExtractStart(ctx context.Context, seq uint64, documents int)

	// OnExtractComplete records a finished request.
	OnExtractComplete(ctx context.Context, seq uint64, contacts int, duration time.Duration, err error)

	// OnSuperseded records a response discarded because a newer request exists.
	OnSuperseded(ctx context.Context, seq, latest uint64)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopMutationHooks is a no-op implementation of MutationHooks.
type NoopMutationHooks struct{}

func (NoopMutationHooks) OnDelete(context.Context, string, bool, int) {}
func (NoopMutationHooks) OnReposition(context.Context, string, bool)  {}

// NoopExtractionHooks is a no-op implementation of ExtractionHooks.
type NoopExtractionHooks struct{}

func (NoopExtractionHooks) OnExtractStart(context.Context, uint64, int)                           {}
func (NoopExtractionHooks) OnExtractComplete(context.Context, uint64, int, time.Duration, error) {}
func (NoopExtractionHooks) OnSuperseded(context.Context, uint64, uint64)                          {}

// slot holds one registered hook set. Stores happen at startup and in tests.
type slot[T any] struct {
	mu  sync.RWMutex
	val T
	def T
}

func newSlot[T any](def T) *slot[T] { return &slot[T]{val: def, def: def} }

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val
}

// store ignores nil.
func (s *slot[T]) store(v T) {
	if any(v) == nil {
		return
	}
	s.mu.Lock()
	s.val = v
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.val = s.def
	s.mu.Unlock()
}

var (
	pipelineSlot   = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot      = newSlot[CacheHooks](NoopCacheHooks{})
	mutationSlot   = newSlot[MutationHooks](NoopMutationHooks{})
	extractionSlot = newSlot[ExtractionHooks](NoopExtractionHooks{})
)

// SetPipelineHooks registers h for build, layout and render events. Call it
// once at startup.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.store(h) }

// SetCacheHooks registers h for cache events.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

// SetMutationHooks registers h for delete and reposition events.
func SetMutationHooks(h MutationHooks) { mutationSlot.store(h) }

// SetExtractionHooks registers h for extraction events.
func SetExtractionHooks(h ExtractionHooks) { extractionSlot.store(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.load() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.load() }

// Mutation returns the registered mutation hooks.
func Mutation() MutationHooks { return mutationSlot.load() }

// Extraction returns the registered extraction hooks.
func Extraction() ExtractionHooks { return extractionSlot.load() }

// Reset puts every slot back to its no-op default.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	mutationSlot.reset()
	extractionSlot.reset()
}
