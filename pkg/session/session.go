// Package session holds interactive editing sessions over one account
// analysis.
//
// A [Session] owns the canonical analysis, the current department filter,
// the computed view and the manual positions layered on top of it. All
// mutations are serialized, so the terminal explorer and the HTTP server
// can drive the same session.
//
// # Lifecycle
//
// The view moves between two states (see [mutate.View]):
//
//   - Unbuilt: after creation, a filter change, a delete or a new analysis
//   - Built: after a rebuild; manual repositioning keeps it Built but dirty
//
// Reading the document of an Unbuilt session rebuilds it first. Rebuilding
// discards manual positions.
//
// # Persistence
//
// Sessions are saved as a [Record] through a [Store]:
//   - [MemoryStore]: in-process, for tests and single-user servers
//   - [FileStore]: JSON files in the user's config directory, for the CLI
//   - [RedisStore]: shared storage for multi-instance deployments
//
// [mutate.View]: github.com/matzehuels/orgtower/pkg/mutate.View
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/layout"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Record is the persisted form of a session.
type Record struct {
	ID         string                  `json:"id"`
	Analysis   contact.Analysis        `json:"analysis"`
	Department string                  `json:"department,omitempty"`
	Positions  map[string]layout.Point `json:"positions,omitempty"`
	Revision   uint64                  `json:"revision"` // bumped by every Manager.Save
	CreatedAt  time.Time               `json:"created_at"`
	ExpiresAt  time.Time               `json:"expires_at"`
}

// IsExpired returns true if the record has expired.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a record by ID.
	// Returns nil, nil if the record doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Record, error)

	// Set stores a record.
	Set(ctx context.Context, rec *Record) error

	// Delete removes a record.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired records (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateID returns a new random session id.
func GenerateID() string {
	return uuid.NewString()
}
