package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/busalert/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl, wait time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	c := &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: m.Addr()}),
		lockTTL:     ttl,
		lockTimeout: wait,
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, m
}

func TestNewRedisCache(t *testing.T) {
	cfg := config.Default()
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, cfg.Lock)
	assert.NotNil(t, c)
	assert.Equal(t, cfg.Lock.TTL(), c.lockTTL)
	assert.Equal(t, cfg.Lock.WaitTimeout(), c.lockTimeout)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "lock:bus:BUS001", busLockKey("BUS001"))
	assert.Equal(t, "cache:eta:dr5regw:dr5ruj4", etaKey("dr5regw:dr5ruj4"))
}

func TestRedisCache_ETA(t *testing.T) {
	c, m := newTestCache(t, time.Second, time.Second)
	ctx := context.Background()

	_, ok, err := c.GetETA(ctx, "a:b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetETA(ctx, "a:b", 7, time.Minute))
	minutes, ok, err := c.GetETA(ctx, "a:b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), minutes)

	m.FastForward(2 * time.Minute)
	_, ok, err = c.GetETA(ctx, "a:b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ETACorruptEntry(t *testing.T) {
	c, m := newTestCache(t, time.Second, time.Second)
	require.NoError(t, m.Set(etaKey("a:b"), "soon"))

	_, _, err := c.GetETA(context.Background(), "a:b")
	assert.Error(t, err)
}

func TestRedisCache_LockIsExclusiveUntilReleased(t *testing.T) {
	c, m := newTestCache(t, 30*time.Second, 100*time.Millisecond)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "BUS001")
	require.NoError(t, err)
	assert.True(t, m.Exists(busLockKey("BUS001")))

	_, err = c.Lock(ctx, "BUS001")
	assert.ErrorIs(t, err, ErrLockTimeout)

	other, err := c.Lock(ctx, "BUS002")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	assert.False(t, m.Exists(busLockKey("BUS001")))

	again, err := c.Lock(ctx, "BUS001")
	require.NoError(t, err)
	again()
}

func TestRedisCache_LockHonoursCallerContext(t *testing.T) {
	c, _ := newTestCache(t, 30*time.Second, 5*time.Second)

	unlock, err := c.Lock(context.Background(), "BUS001")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.Lock(ctx, "BUS001")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisCache_LockIsRenewedWhileHeld(t *testing.T) {
	c, m := newTestCache(t, 300*time.Millisecond, 100*time.Millisecond)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "BUS001")
	require.NoError(t, err)
	defer unlock()

	// 50ms of TTL left unless the holder renews it
	m.FastForward(250 * time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Greater(t, m.TTL(busLockKey("BUS001")), 50*time.Millisecond)

	m.FastForward(100 * time.Millisecond)
	_, err = c.Lock(ctx, "BUS001")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedisCache_ReleaseLeavesForeignLock(t *testing.T) {
	c, m := newTestCache(t, 30*time.Second, time.Second)
	ctx := context.Background()

	token, ok, err := c.AcquireBusLock(ctx, "BUS001", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// the lock expired and another holder took it
	require.NoError(t, m.Set(busLockKey("BUS001"), "someone-else"))

	require.NoError(t, c.ReleaseBusLock(ctx, "BUS001", token))
	value, err := m.Get(busLockKey("BUS001"))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)

	renewed, err := c.RenewBusLock(ctx, "BUS001", token, time.Second)
	require.NoError(t, err)
	assert.False(t, renewed)
}
