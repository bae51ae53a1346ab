// Package cache fronts the row and column stores with a best-effort key/value
// cache. Store failures never reach callers: a broken or disabled store simply
// behaves as a permanent miss.
package cache

import (
	"context"
	"time"
)

// Store is the cache store adapter. Implementations swallow their own errors.
type Store interface {
	// Get returns the stored payload and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set persists value under key for ttl. Failures are not reported.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// DeleteByPattern removes every key matching a glob pattern and returns how many were removed.
	DeleteByPattern(ctx context.Context, pattern string) int64
}

// NoopStore is used when caching is disabled.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NoopStore) Set(context.Context, string, []byte, time.Duration) {}
func (NoopStore) DeleteByPattern(context.Context, string) int64 { return 0 }
