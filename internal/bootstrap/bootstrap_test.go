package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
)

func TestOpenCacheByDriver(t *testing.T) {
	ctx := context.Background()
	logg := logger.Nop()

	memory := &Stack{}
	c := memory.openCache(ctx, &config.Config{Cache: config.CacheConfig{Driver: "memory", Enabled: true, DefaultTTL: time.Minute}}, logg, nil)
	assert.True(t, c.Enabled())
	assert.Nil(t, memory.CachePinger)
	assert.Empty(t, memory.closers)

	disabled := &Stack{}
	c = disabled.openCache(ctx, &config.Config{Cache: config.CacheConfig{Driver: "redis", Enabled: false}}, logg, nil)
	assert.False(t, c.Enabled())
	assert.Nil(t, disabled.CachePinger)
}

func TestOpenCacheRedisUnreachableDegrades(t *testing.T) {
	s := &Stack{}
	cfg := &config.Config{
		Cache: config.CacheConfig{Driver: "redis", Enabled: true, OpTimeout: 50 * time.Millisecond},
		Redis: config.RedisConfig{Address: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond},
	}

	c := s.openCache(context.Background(), cfg, logger.Nop(), nil)
	assert.True(t, c.Enabled())
	require.NotNil(t, s.CachePinger)
	assert.Error(t, s.CachePinger.Ping(context.Background()))
	assert.Len(t, s.closers, 1)
	assert.NoError(t, s.Close())
}

func TestCloseRunsInReverseAndJoinsErrors(t *testing.T) {
	var order []string
	s := &Stack{closers: []func() error{
		func() error { order = append(order, "db"); return nil },
		func() error { order = append(order, "warehouse"); return errors.New("warehouse close failed") },
		func() error { order = append(order, "cache"); return nil },
	}}

	err := s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse close failed")
	assert.Equal(t, []string{"cache", "warehouse", "db"}, order)

	assert.NoError(t, s.Close())
}
