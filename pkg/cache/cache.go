// Package cache stores build results and rendered artifacts by content key.
//
// Backends implement [Cache]: [FileCache] for CLI use, [RedisCache] for
// shared deployments and [NullCache] to disable caching. A [Keyer] turns
// a catalog content hash plus the options that influence a build into a
// stable key, so an unchanged catalog never has to be rebuilt.
//
// Wrap a backend with [Instrument] to report hits, misses and writes to
// the observability cache hooks.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries.
const (
	// TTLBuild is the lifetime of a cached move graph.
	TTLBuild = 7 * 24 * time.Hour

	// TTLRender is the lifetime of a rendered artifact.
	TTLRender = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
