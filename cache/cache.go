package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/metrics"
)

const keyPrefix = "blog:"

// Cache keeps JSON encoded read models in redis, or in process memory when redis is unavailable.
type Cache struct {
	// When Redis is available, use client for all operations
	client *redis.Client
	// Otherwise entries live here
	mu      sync.Mutex
	entries map[string]entry

	ttl     time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type entry struct {
	data    []byte
	expires time.Time
}

// New connects to redis at addr. An empty addr or a failed ping falls back to memory.
func New(addr string, ttl time.Duration, m *metrics.Metrics) *Cache {
	c := &Cache{
		ttl:     ttl,
		logger:  log.With().Str("component", "cache").Logger(),
		metrics: m,
	}
	if addr == "" {
		c.entries = map[string]entry{}
		c.logger.Info().Msg("REDIS_ADDR not set; using in-memory cache")
		return c
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		c.logger.Warn().Err(err).Str("addr", addr).Msg("Redis unavailable; using in-memory cache")
		client.Close()
		c.entries = map[string]entry{}
		return c
	}

	c.client = client
	return c
}

// UsesRedis reports whether entries are shared through redis.
func (c *Cache) UsesRedis() bool {
	return c.client != nil
}

// GetJSON decodes the entry for key into dst. found is false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	var data []byte
	if c.client != nil {
		val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			c.miss(ctx, key)
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("cache get error: %w", err)
		}
		data = val
	} else {
		c.mu.Lock()
		e, ok := c.entries[key]
		if ok && c.ttl > 0 && time.Now().After(e.expires) {
			delete(c.entries, key)
			ok = false
		}
		c.mu.Unlock()
		if !ok {
			c.miss(ctx, key)
			return false, nil
		}
		data = e.data
	}

	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

// SetJSON stores value under key for the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if c.client != nil {
		if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
			return fmt.Errorf("cache set error: %w", err)
		}
		return nil
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if c.client != nil {
		prefixed := make([]string, len(keys))
		for i, k := range keys {
			prefixed[i] = keyPrefix + k
		}
		if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
			return fmt.Errorf("cache delete error: %w", err)
		}
		return nil
	}

	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	return nil
}

// Ping checks the redis connection; the memory fallback is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) miss(ctx context.Context, key string) {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(ctx, key)
	}
}
