package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	server := miniredis.RunT(t)
	client := redisLib.NewClient(&redisLib.Options{Addr: server.Addr()})
	return NewCache(client)
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		ID   uint64 `json:"id"`
		Body string `json:"body"`
	}

	assert.NoError(t, cache.Set(ctx, "annotations:d:7:v:0", payload{ID: 11, Body: "define this"}, time.Hour))

	var got payload
	found, err := cache.Get(ctx, "annotations:d:7:v:0", &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(11), got.ID)
}

func TestCache_GetMiss(t *testing.T) {
	cache := newTestCache(t)

	var got string
	found, err := cache.Get(context.Background(), "missing", &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCache_VersionCounter(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "doc:7:annotations:version"
	assert.Equal(t, int64(0), cache.GetVersion(ctx, key))

	cache.IncrementVersion(ctx, key)
	cache.IncrementVersion(ctx, key)
	assert.Equal(t, int64(2), cache.GetVersion(ctx, key))
}

func TestCache_NilDegradesToMiss(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	var got string
	found, err := cache.Get(ctx, "anything", &got)
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "anything", "value", time.Hour))
	assert.Equal(t, int64(0), cache.GetVersion(ctx, "anything"))
	cache.IncrementVersion(ctx, "anything")
}
