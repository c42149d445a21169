package cache

import (
	"context"
	"time"
)

// NullCache disables element caching: every lookup misses and writes are
// dropped. Layouts fall back to it when no cache is configured or the cache
// directory cannot be opened.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
