package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 6, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	store.Set(ctx, "sales.overview:a=1", []byte("v"), time.Minute)
	got, ok := store.Get(ctx, "sales.overview:a=1")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	now = now.Add(time.Minute)
	_, ok = store.Get(ctx, "sales.overview:a=1")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	payload := []byte("abc")
	store.Set(ctx, "k", payload, 0)
	payload[0] = 'z'

	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
	got[1] = 'z'

	again, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStoreDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, "sales.overview:a=1", []byte("1"), 0)
	store.Set(ctx, "sales.breakdown:a=1", []byte("1"), 0)
	store.Set(ctx, "watchtower.overview:a=1", []byte("1"), 0)

	assert.Equal(t, int64(1), store.DeleteByPattern(ctx, "sales.overview:*"))
	assert.Equal(t, int64(1), store.DeleteByPattern(ctx, "sales.*"))
	assert.Equal(t, 1, store.Len())
	assert.Zero(t, store.DeleteByPattern(ctx, "[bad"))
}
