package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key for the layout of the tree with treeHash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for an artifact rendered from the scene
	// with sceneHash.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a layout.
type LayoutKeyOpts struct {
	NodeWidth         float64 `json:"node_width"`
	NodeHeight        float64 `json:"node_height"`
	VerticalSpacing   float64 `json:"vertical_spacing"`
	HorizontalSpacing float64 `json:"horizontal_spacing"`
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Department  string `json:"department,omitempty"`
	ShowRoot    bool   `json:"show_root,omitempty"`
	Title       string `json:"title,omitempty"`
	Interactive bool   `json:"interactive,omitempty"`
	Details     bool   `json:"details,omitempty"`
}

// DefaultKeyer produces "layout:<hash>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
