// Package cache stores computed designs and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multiple API server instances
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// A [Keyer] derives deterministic keys from calculation inputs so that
// identical requests hit the same entry. Keys carry a schema version; bump
// [KeyVersion] when the cached payload format changes.
//
//	k := cache.NewDefaultKeyer()
//	key := k.CalcKey("sealed", 40, 0.4, 50)
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind.
const (
	// CalcTTL covers calculation results and layouts, which are pure
	// functions of their inputs.
	CalcTTL = 30 * 24 * time.Hour

	// ArtifactTTL covers rendered DXF, SVG, PDF, PNG and DOT output.
	ArtifactTTL = 7 * 24 * time.Hour

	// ExtractTTL covers parameter extraction replies from the language model.
	ExtractTTL = 24 * time.Hour
)
