// Package cache stores built element sequences between runs.
//
// Building a large stack configuration is the only expensive step of a
// frame, and its output is a pure function of the configuration. The cache
// keeps serialized element slices keyed by a hash of that configuration so
// repeated CLI invocations, and every replica of the HTTP feed, can skip the
// build.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a local directory (CLI default)
//   - [RedisCache]: shared cache for several serve processes
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys come from a [Keyer] so that the algorithm version and every config
// field take part in the hash:
//
//	key := cache.NewDefaultKeyer().ElementsKey(cache.ElementsKeyOpts{
//	    Version: stack.AlgorithmVersion,
//	    Config:  cfg,
//	})
package cache

import (
	"context"
	"time"
)

// TTLElements is how long a built element sequence stays cached.
const TTLElements = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiration.
//
// Get reports a miss as (nil, false, nil); an error means the backend failed.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
