// Package cache stores expensive results (loaded graph documents, rendered
// artifacts) between runs. A [Cache] is a byte-oriented key-value store with
// per-entry TTL; backends exist for the local filesystem, Redis, and a
// disabled no-op. Keys are content-addressed via [SourceKey] and
// [ArtifactKey], so a re-run over unchanged input with unchanged options
// hits the cache.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend is returned when a cache backend fails in a way that is not a
// plain miss (I/O errors, Redis connectivity). Misses are reported through
// the bool return, never as an error.
var ErrBackend = errors.New("cache backend error")

// Cache is a byte-oriented key-value store with TTL. Implementations must
// treat a missing key as (nil, false, nil), not an error.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
