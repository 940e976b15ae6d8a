// Package cache provides the storage abstraction behind charmscan's local
// caching: HTTP responses and the consolidated charm catalog.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] when
// several processes (for example a long-running server) share one cache, and
// [NullCache] to disable caching.
//
// Keys are derived by a [Keyer]. Catalog keys embed an explicit cache token
// (a date or a version string) so that invalidation is an explicit
// operation: either a new token is used or [Cache.Delete] is called on the
// old key. The presence of an entry never implies freshness on its own.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	TTLHTTP    = 24 * time.Hour
	TTLCatalog = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or an expired
	// entry; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey generates a key for a cached upstream response.
	HTTPKey(namespace, key string) string

	// CatalogKey generates the key of the consolidated catalog for a cache
	// token and catalog query.
	CatalogKey(token string, opts CatalogKeyOpts) string
}

// CatalogKeyOpts lists the query parameters that change catalog contents.
type CatalogKeyOpts struct {
	BaseURL  string `json:"base_url"`
	Type     string `json:"type"`
	MaxPages int    `json:"max_pages"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// CatalogKey returns "catalog:<token>:<hash(opts)>".
func (DefaultKeyer) CatalogKey(token string, opts CatalogKeyOpts) string {
	return hashKey("catalog:"+token, opts)
}
