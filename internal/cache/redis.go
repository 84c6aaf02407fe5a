package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/busalert/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a bus lock could not be taken before the wait deadline.
var ErrLockTimeout = errors.New("timed out waiting for bus lock")

const lockRetryInterval = 50 * time.Millisecond

// releaseScript deletes the lock only if it still carries our token, so an
// expired holder cannot release a lock that has since passed to someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// renewScript extends the lock TTL only while it still carries our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

type RedisCache struct {
	client      *redis.Client
	lockTTL     time.Duration
	lockTimeout time.Duration
}

func NewRedisCache(cfg config.RedisConfig, lock config.LockConfig) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		lockTTL:     lock.TTL(),
		lockTimeout: lock.WaitTimeout(),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetETA(ctx context.Context, key string) (int64, bool, error) {
	data, err := c.client.Get(ctx, etaKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}

	minutes, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt eta cache entry %q: %w", key, err)
	}
	return minutes, true, nil
}

func (c *RedisCache) SetETA(ctx context.Context, key string, minutes int64, ttl time.Duration) error {
	return c.client.Set(ctx, etaKey(key), minutes, ttl).Err()
}

// AcquireBusLock tries once to take the lock for busID. On success it returns
// the token needed to release it.
func (c *RedisCache) AcquireBusLock(ctx context.Context, busID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, busLockKey(busID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseBusLock(ctx context.Context, busID, token string) error {
	return releaseScript.Run(ctx, c.client, []string{busLockKey(busID)}, token).Err()
}

// RenewBusLock pushes the lock expiry out to ttl. It reports false when the
// lock is no longer ours.
func (c *RedisCache) RenewBusLock(ctx context.Context, busID, token string, ttl time.Duration) (bool, error) {
	n, err := renewScript.Run(ctx, c.client, []string{busLockKey(busID)}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Lock blocks until the bus lock is held, the wait timeout passes or ctx ends.
// While held the lock is renewed every third of its TTL. The returned func
// stops renewal and releases the lock.
func (c *RedisCache) Lock(ctx context.Context, busID string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.lockTimeout)
	defer cancel()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		token, ok, err := c.AcquireBusLock(waitCtx, busID, c.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire bus lock %s: %w", busID, err)
		}
		if ok {
			return c.hold(busID, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: bus %s", ErrLockTimeout, busID)
		case <-ticker.C:
		}
	}
}

func (c *RedisCache) hold(busID, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		interval := c.lockTTL / 3
		if interval <= 0 {
			interval = time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				renewCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				ok, err := c.RenewBusLock(renewCtx, busID, token, c.lockTTL)
				cancel()
				if err != nil {
					log.Printf("renew bus lock failed bus_id=%s: %v", busID, err)
					continue
				}
				if !ok {
					log.Printf("bus lock lost bus_id=%s", busID)
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// the caller's ctx may already be done
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := c.ReleaseBusLock(releaseCtx, busID, token); err != nil {
				log.Printf("release bus lock failed bus_id=%s: %v", busID, err)
			}
		})
	}
}

func etaKey(key string) string {
	return "cache:eta:" + key
}

func busLockKey(busID string) string {
	return fmt.Sprintf("lock:bus:%s", busID)
}
