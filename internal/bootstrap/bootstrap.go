// Package bootstrap assembles the clients and metric services shared by the
// api, cron-worker and invalidation-worker binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/cache"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/locations"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/predicate"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/sales"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/warehouse"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/watchtower"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/bigquery"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/db"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/duckdb"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/metrics"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/redis"
)

// Pinger is a dependency that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stack holds the wired dependencies of one process.
type Stack struct {
	DB         *db.Client
	Warehouse  warehouse.Querier
	Cache      *cache.Cache
	Locations  *locations.Lookup
	Sales      sales.Service
	Watchtower watchtower.Service
	// CachePinger is nil unless the cache store is networked.
	CachePinger Pinger

	closers []func() error
}

// New connects the row store, the column store and the cache store, then
// builds the metric services on top of them. A cache store that cannot be
// reached is logged and left degraded; the other two are fatal.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*Stack, error) {
	s := &Stack{}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	s.DB = dbClient
	s.closers = append(s.closers, dbClient.Close)

	if err := s.openWarehouse(ctx, cfg, logg); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Cache = s.openCache(ctx, cfg, logg, metrics.NewCacheMetrics(reg))
	s.Locations = locations.NewLookup(dbClient.DB(), cfg.Locations.RefreshInterval, logg)

	repo, err := sales.NewRepository(dbClient.DB(), cfg.DB.QueryTimeout)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Sales, err = sales.NewService(sales.ServiceParams{
		Repo:    repo,
		Regions: s.Locations,
		Cache:   s.Cache,
		TTLs: sales.TTLs{
			Overview:  cfg.Cache.OverviewTTL,
			Breakdown: cfg.Cache.BreakdownTTL,
			Trend:     cfg.Cache.TrendTTL,
		},
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Watchtower, err = watchtower.NewService(watchtower.ServiceParams{
		Warehouse: s.Warehouse,
		Regions:   s.Locations,
		Cache:     s.Cache,
		TTL:       cfg.Cache.WatchtowerTTL,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// NewCacheOnly wires just the cache store, for processes that evict entries
// but never query either data store.
func NewCacheOnly(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) *Stack {
	s := &Stack{}
	s.Cache = s.openCache(ctx, cfg, logg, metrics.NewCacheMetrics(reg))
	return s
}

func (s *Stack) openWarehouse(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	switch cfg.Warehouse.DriverName() {
	case config.WarehouseDriverDuckDB:
		client, err := duckdb.Open(ctx, cfg.Warehouse, logg)
		if err != nil {
			return fmt.Errorf("bootstrap duckdb: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		s.Warehouse = warehouse.NewDuckDB(client, predicate.PlatformColumns, cfg.Warehouse.Timeout)
	default:
		client, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			return fmt.Errorf("bootstrap bigquery: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		s.Warehouse = warehouse.NewBigQuery(client, predicate.PlatformColumns, cfg.Warehouse.Timeout)
	}
	return nil
}

func (s *Stack) openCache(ctx context.Context, cfg *config.Config, logg *logger.Logger, cacheMetrics *metrics.CacheMetrics) *cache.Cache {
	opts := cache.Options{
		DefaultTTL: cfg.Cache.DefaultTTL,
		Coalesce:   cfg.Cache.Coalesce,
		Logger:     logg,
		Metrics:    cacheMetrics,
	}
	switch cfg.Cache.DriverName() {
	case config.CacheDriverRedis:
		store := cache.NewRedisStore(cache.RedisStoreParams{
			Dial: cache.NewRedisDialer(func(ctx context.Context) (*redis.Client, error) {
				return redis.New(ctx, cfg.Redis, logg)
			}),
			Logger:          logg,
			Metrics:         cacheMetrics,
			BreakerFailures: cfg.Cache.BreakerFailures,
			BreakerTimeout:  cfg.Cache.BreakerTimeout,
			OpTimeout:       cfg.Cache.OpTimeout,
			RedialInterval:  cfg.Cache.RedialInterval,
		})
		// Connect logs its own failure; the store then serves misses and
		// re-dials on later calls.
		_ = store.Connect(ctx)
		s.closers = append(s.closers, store.Disconnect)
		s.CachePinger = store
		opts.Store = store
	case config.CacheDriverMemory:
		opts.Store = cache.NewMemoryStore()
	}
	return cache.New(opts)
}

// Close releases every client in reverse order of creation.
func (s *Stack) Close() error {
	var errs error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, s.closers[i]())
	}
	s.closers = nil
	return errs
}
