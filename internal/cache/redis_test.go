package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheWithClient(client, time.Minute), mr
}

func TestRedisCache_Flights(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetFlights(ctx, "all")
	require.NoError(t, err)
	assert.Nil(t, got)

	flights := []domain.Flight{{ID: 1, Carrier: "Emirates", Origin: "DXB", Destination: "LHR", Capacity: 5000, Remaining: 4600, Category: domain.CategoryGeneral}}
	require.NoError(t, c.SetFlights(ctx, "all", flights))
	require.NoError(t, c.SetFlights(ctx, "large:6000", nil))

	got, err = c.GetFlights(ctx, "all")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4600, got[0].Remaining)

	require.NoError(t, c.InvalidateFlights(ctx))
	got, err = c.GetFlights(ctx, "all")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.SetFlights(ctx, "all", flights))
	mr.FastForward(2 * time.Minute)
	got, err = c.GetFlights(ctx, "all")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_Lock(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseLock(ctx, "sweep"))
	ok, err = c.AcquireLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	ok, err = c.AcquireLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_ReleaseKeepsOtherHolder(t *testing.T) {
	first, mr := newTestCache(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	second := NewRedisCacheWithClient(client, time.Minute)
	ctx := context.Background()

	ok, err := first.AcquireLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	ok, err = second.AcquireLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, first.ReleaseLock(ctx, "sweep"))
	assert.True(t, mr.Exists("lock:sweep"))

	ok, err = first.AcquireLock(ctx, "sweep", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.ReleaseLock(ctx, "sweep"))
	assert.False(t, mr.Exists("lock:sweep"))
}

func TestRedisCache_Ping(t *testing.T) {
	c, _ := newTestCache(t)
	require.NoError(t, c.Ping(context.Background()))
}
