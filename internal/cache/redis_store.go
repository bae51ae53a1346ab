package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/metrics"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/redis"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	defaultOpTimeout       = 500 * time.Millisecond
	defaultRedialInterval  = 5 * time.Second
	defaultDialTimeout     = 2 * time.Second
	scanBatch              = 500
)

var errDisconnected = errors.New("cache store not connected")

// Backend is the subset of pkg/redis.Client the store needs.
type Backend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	ScanKeys(ctx context.Context, match string, count int64, fn func([]string) error) error
	Ping(ctx context.Context) error
	Close() error
	CacheKey(key string) string
}

// Dialer opens a Backend connection.
type Dialer func(ctx context.Context) (Backend, error)

// RedisStoreParams configure a RedisStore. RedialInterval spaces reconnect
// attempts after a failed dial.
type RedisStoreParams struct {
	Dial            Dialer
	Logger          *logger.Logger
	Metrics         *metrics.CacheMetrics
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	OpTimeout       time.Duration
	RedialInterval  time.Duration
}

// RedisStore is the network cache store. It has an explicit Connect/Disconnect
// lifecycle; until connected it reports misses. After Connect a missing
// backend is re-dialed from the request path at most once per RedialInterval,
// so a redis that was down at boot is picked up once it comes back.
// Every round-trip goes through a circuit breaker so an outage costs one fast
// miss per call instead of one timeout per call.
type RedisStore struct {
	mu       sync.RWMutex
	backend  Backend
	active   bool
	nextDial time.Time
	dialing  sync.Mutex

	dial           Dialer
	breaker        *gobreaker.CircuitBreaker[[]byte]
	logg           *logger.Logger
	metrics        *metrics.CacheMetrics
	opTimeout      time.Duration
	redialInterval time.Duration
	now            func() time.Time
}

// NewRedisStore builds a disconnected store.
func NewRedisStore(params RedisStoreParams) *RedisStore {
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	failures := params.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	timeout := params.BreakerTimeout
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}
	opTimeout := params.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	redial := params.RedialInterval
	if redial <= 0 {
		redial = defaultRedialInterval
	}

	s := &RedisStore{
		dial:           params.Dial,
		logg:           logg,
		metrics:        params.Metrics,
		opTimeout:      opTimeout,
		redialInterval: redial,
		now:            time.Now,
	}
	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "cache-store",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a store failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := s.logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			if to == gobreaker.StateOpen {
				s.logg.Warn(ctx, "cache store unavailable; serving misses")
				return
			}
			s.logg.Info(ctx, "cache store breaker state changed")
		},
	})
	return s
}

// NewRedisDialer adapts a pkg/redis constructor into a Dialer.
func NewRedisDialer(open func(ctx context.Context) (*redis.Client, error)) Dialer {
	return func(ctx context.Context) (Backend, error) {
		client, err := open(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Connect dials the backend. On failure the store stays usable in degraded
// mode and keeps retrying in the background of later calls.
func (s *RedisStore) Connect(ctx context.Context) error {
	if s.dial == nil {
		return errors.New("cache store dialer not configured")
	}
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	backend, err := s.dial(ctx)
	if err != nil {
		s.scheduleRedial()
		s.logg.Warn(ctx, fmt.Sprintf("cache store connect failed; continuing without cache: %v", err))
		return fmt.Errorf("connect cache store: %w", err)
	}
	s.attach(backend)
	return nil
}

func (s *RedisStore) attach(backend Backend) {
	s.mu.Lock()
	old := s.backend
	if !s.active {
		s.mu.Unlock()
		_ = backend.Close()
		return
	}
	s.backend = backend
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
}

func (s *RedisStore) scheduleRedial() {
	s.mu.Lock()
	s.nextDial = s.now().Add(s.redialInterval)
	s.mu.Unlock()
}

// redial tries one dial when the store is active, has no backend and the
// interval has passed. Concurrent callers do not wait for it.
func (s *RedisStore) redial(ctx context.Context) Backend {
	s.mu.RLock()
	due := s.active && s.backend == nil && !s.now().Before(s.nextDial)
	s.mu.RUnlock()
	if !due || !s.dialing.TryLock() {
		return nil
	}
	defer s.dialing.Unlock()
	if backend := s.current(); backend != nil {
		return backend
	}

	dialCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	backend, err := s.dial(dialCtx)
	if err != nil {
		s.scheduleRedial()
		s.logg.Debug(ctx, fmt.Sprintf("cache store redial failed: %v", err))
		return nil
	}
	s.attach(backend)
	s.logg.Info(ctx, "cache store reconnected")
	return s.current()
}

// Disconnect closes the backend; later calls degrade to misses and no
// redial is attempted until the next Connect.
func (s *RedisStore) Disconnect() error {
	s.mu.Lock()
	backend := s.backend
	s.backend = nil
	s.active = false
	s.mu.Unlock()
	if backend == nil {
		return nil
	}
	return backend.Close()
}

// Connected reports whether a backend is attached.
func (s *RedisStore) Connected() bool {
	return s.current() != nil
}

// Ping checks the backend for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	backend := s.backendFor(ctx)
	if backend == nil {
		return errDisconnected
	}
	_, err := s.execute(ctx, func(ctx context.Context) ([]byte, error) {
		return nil, backend.Ping(ctx)
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	backend := s.backendFor(ctx)
	if backend == nil {
		return nil, false
	}
	var hit bool
	value, err := s.execute(ctx, func(ctx context.Context) ([]byte, error) {
		data, err := backend.GetBytes(ctx, backend.CacheKey(key))
		if redis.IsNil(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		hit = true
		return data, nil
	})
	if err != nil {
		s.storeError(ctx, "get", err)
		return nil, false
	}
	return value, hit
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	backend := s.backendFor(ctx)
	if backend == nil {
		return
	}
	_, err := s.execute(ctx, func(ctx context.Context) ([]byte, error) {
		return nil, backend.Set(ctx, backend.CacheKey(key), value, ttl)
	})
	if err != nil {
		s.storeError(ctx, "set", err)
	}
}

// DeleteByPattern scans in batches (never KEYS) and deletes each batch with
// one multi-key UNLINK, which needs a standalone (non-cluster) redis.
func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) int64 {
	backend := s.backendFor(ctx)
	if backend == nil {
		return 0
	}
	var deleted int64
	_, err := s.breaker.Execute(func() ([]byte, error) {
		return nil, backend.ScanKeys(ctx, backend.CacheKey(pattern), scanBatch, func(keys []string) error {
			n, err := backend.Del(ctx, keys...)
			deleted += n
			return err
		})
	})
	if err != nil {
		s.storeError(ctx, "delete_pattern", err)
	}
	return deleted
}

func (s *RedisStore) backendFor(ctx context.Context) Backend {
	if backend := s.current(); backend != nil {
		return backend
	}
	if s.dial == nil {
		return nil
	}
	return s.redial(ctx)
}

func (s *RedisStore) current() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

func (s *RedisStore) execute(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	return s.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
		return fn(opCtx)
	})
}

func (s *RedisStore) storeError(ctx context.Context, op string, err error) {
	s.metrics.IncStoreError(op)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	s.logg.Debug(s.logg.WithField(ctx, "op", op), fmt.Sprintf("cache store error: %v", err))
}
