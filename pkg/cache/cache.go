// Package cache stores settled layouts so repeated renders of the same
// graph skip the pre-settle run. Backends cover the three deployment
// shapes: files for the CLI, Redis for shared services, and a null cache
// for tests and --no-cache runs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte-oriented key-value store with TTL support.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present;
	// expired or corrupt entries read as misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backing resources.
	Close() error
}

// LayoutKeyOpts captures everything besides the graph itself that changes
// a settled layout.
type LayoutKeyOpts struct {
	Mode       string `json:"mode"`
	SimVersion string `json:"sim_version"` // bump when force math changes
	TuningHash string `json:"tuning_hash"`
}

// Keyer generates cache keys. The default implementation hashes its inputs;
// wrap it with NewScopedKeyer for namespace isolation.
type Keyer interface {
	// LayoutKey keys a settled layout by graph content hash and layout
	// options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// SnapshotKey keys a rendered frame by layout hash and canvas size.
	SnapshotKey(layoutHash string, width, height int) string
}

// DefaultKeyer is the stateless standard keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// SnapshotKey generates a key for rendered frame caching.
func (k *DefaultKeyer) SnapshotKey(layoutHash string, width, height int) string {
	return hashKey("snapshot", layoutHash, width, height)
}

// ScopedKeyer prefixes every key, isolating cache namespaces when several
// graphs share one store.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix prepended to all keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(layoutHash string, width, height int) string {
	return k.prefix + k.inner.SnapshotKey(layoutHash, width, height)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data as a 64-character hex
// string. Used to content-address graphs and layouts.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
