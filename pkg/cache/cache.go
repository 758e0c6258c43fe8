// Package cache stores computed layouts and rendered artifacts.
//
// # Overview
//
// The pipeline caches the two stages whose output depends only on their
// input: the layout of a tree (keyed by the tree's shape and the layout
// options) and rendered artifacts (keyed by the layout and the format).
// Reconciliation is never cached; it is cheap and its input is the
// untrusted analysis itself.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI)
//   - [RedisCache]: a shared Redis instance (server)
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys; [NewScopedKeyer] prefixes them, e.g. with the
// build version so layouts from older releases are never reused.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default time-to-live values per entry type.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
