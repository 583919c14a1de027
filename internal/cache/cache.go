package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v9"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTTL bounds how long a cached completion is reused.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultLocalSize is the in-process LRU capacity.
	DefaultLocalSize = 512

	lockTTL      = 10 * time.Second
	lockWaitStep = 100 * time.Millisecond
	lockWaitMax  = 50
)

// CompletionCache stores model completions keyed by prompt hash. The
// in-process LRU always runs; Redis is layered behind it when a client
// is provided. A nil *CompletionCache disables caching entirely.
type CompletionCache struct {
	local *lru.Cache[string, string]
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisClient connects and pings, failing fast on a bad address.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", addr).Msg("Redis connection established")
	return client, nil
}

// NewCompletionCache builds the cache. redisClient may be nil; the
// cache then runs purely in process.
func NewCompletionCache(localSize int, redisClient *redis.Client, ttl time.Duration) (*CompletionCache, error) {
	if localSize <= 0 {
		localSize = DefaultLocalSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	local, err := lru.New[string, string](localSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}

	return &CompletionCache{
		local: local,
		redis: redisClient,
		ttl:   ttl,
	}, nil
}

func (c *CompletionCache) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

// Get checks the local layer first, then Redis. Redis hits are
// promoted into the local layer.
func (c *CompletionCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}

	if value, ok := c.local.Get(key); ok {
		return value, true
	}

	if c.redis == nil {
		return "", false
	}

	value, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis get failed")
		return "", false
	}

	c.local.Add(key, value)
	return value, true
}

// Set writes through both layers. Redis failures are logged, not
// returned: the cache is an optimization, never a dependency.
func (c *CompletionCache) Set(ctx context.Context, key, value string) {
	if c == nil {
		return
	}

	c.local.Add(key, value)

	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis set failed")
	}
}

// GetOrCompute returns the cached value or computes and stores it.
// With Redis present a SetNX lock protects against stampedes: one
// caller computes while the rest poll for the stored value.
func (c *CompletionCache) GetOrCompute(ctx context.Context, key string, fn func() (string, error)) (string, error) {
	if c == nil {
		return fn()
	}

	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	if c.redis != nil {
		acquired, err := c.redis.SetNX(ctx, lockKey(key), "1", lockTTL).Result()
		if err == nil && !acquired {
			for i := 0; i < lockWaitMax; i++ {
				time.Sleep(lockWaitStep)
				if value, ok := c.Get(ctx, key); ok {
					return value, nil
				}
			}
			// The lock holder never published; compute locally.
		} else if err == nil {
			defer c.redis.Del(ctx, lockKey(key))
		}
	}

	value, err := fn()
	if err != nil {
		return "", err
	}

	c.Set(ctx, key, value)
	return value, nil
}
