package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/cachekey"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/metrics"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

const fallbackTTL = 15 * time.Minute

// Options configure the cache-or-compute orchestrator.
type Options struct {
	Store      Store
	DefaultTTL time.Duration
	// Coalesce runs at most one producer per key at a time; concurrent misses
	// wait for it and share its value or its error.
	Coalesce bool
	Logger   *logger.Logger
	Metrics  *metrics.CacheMetrics
}

// Cache wraps expensive aggregations in a compute-once/serve-many cache.
type Cache struct {
	store      Store
	defaultTTL time.Duration
	coalesce   bool
	group      singleflight.Group
	logg       *logger.Logger
	metrics    *metrics.CacheMetrics
}

func New(opts Options) *Cache {
	store := opts.Store
	if store == nil {
		store = NoopStore{}
	}
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = fallbackTTL
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Cache{
		store:      store,
		defaultTTL: ttl,
		coalesce:   opts.Coalesce,
		logg:       logg,
		metrics:    opts.Metrics,
	}
}

// Enabled reports whether a real store is attached.
func (c *Cache) Enabled() bool {
	if c == nil {
		return false
	}
	_, noop := c.store.(NoopStore)
	return !noop
}

// GetOrCompute returns the cached value for key or runs producer, stores its
// result for ttl (the default TTL when ttl <= 0) and returns it. Producer
// errors propagate and are never cached; store failures are never returned.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return producer(ctx)
	}
	namespace := cachekey.Namespace(key)

	if value, ok := lookup[T](ctx, c, key, namespace); ok {
		return value, nil
	}
	c.metrics.ObserveLookup(namespace, metrics.CacheResultMiss)

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if !c.coalesce {
		return compute(ctx, c, key, namespace, ttl, producer)
	}

	// detached: the flight is shared by every waiter
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(key, func() (any, error) {
		return compute(flightCtx, c, key, namespace, ttl, producer)
	})
	if shared {
		c.metrics.ObserveLookup(namespace, metrics.CacheResultShared)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate removes every entry of a namespace.
func (c *Cache) Invalidate(ctx context.Context, namespace string) int64 {
	return c.InvalidatePattern(ctx, cachekey.Pattern(namespace), namespace)
}

// InvalidatePattern removes every key matching pattern; label is only used for metrics.
func (c *Cache) InvalidatePattern(ctx context.Context, pattern, label string) int64 {
	if c == nil {
		return 0
	}
	deleted := c.store.DeleteByPattern(ctx, pattern)
	c.metrics.AddInvalidated(label, deleted)
	c.logg.Info(c.logg.WithFields(ctx, map[string]any{"pattern": pattern, "deleted": deleted}), "cache invalidated")
	return deleted
}

func lookup[T any](ctx context.Context, c *Cache, key, namespace string) (T, bool) {
	var value T
	data, ok := c.store.Get(ctx, key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		c.metrics.ObserveLookup(namespace, metrics.CacheResultError)
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), fmt.Sprintf("discarding undecodable cache entry: %v", err))
		var zero T
		return zero, false
	}
	c.metrics.ObserveLookup(namespace, metrics.CacheResultHit)
	return value, true
}

func compute[T any](ctx context.Context, c *Cache, key, namespace string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	value, err := producer(ctx)
	c.metrics.ObserveCompute(namespace, time.Since(start), err)
	if err != nil {
		var zero T
		return zero, err
	}

	data, encErr := json.Marshal(value)
	if encErr != nil {
		c.metrics.ObserveLookup(namespace, metrics.CacheResultSkipped)
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), fmt.Sprintf("value not cacheable: %v", encErr))
		return value, nil
	}
	c.store.Set(ctx, key, data, ttl)
	return value, nil
}
