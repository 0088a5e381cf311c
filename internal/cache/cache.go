package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/tripsearch/internal/normalizer"
)

// Cache stores JSON values under string keys. Get refreshes the entry's TTL.
// A ttl of zero selects the cache's default.
type Cache interface {
	Get(ctx context.Context, key string, ttl time.Duration, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}

func TripPatternKey(id string) string {
	return "trip-pattern:" + id
}

// SearchParamsKey is the key of the params that produced the trip pattern.
func SearchParamsKey(tripPatternID string) string {
	return "search-params:" + normalizer.DerivedID(tripPatternID)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      30 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, ttl time.Duration, dest any) (bool, error) {
	data, err := c.client.GetEx(ctx, key, c.expiry(ttl)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.expiry(ttl)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) expiry(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return c.ttl
}

// MemoryCache keeps entries in process. All entries share one TTL.
type MemoryCache struct {
	lru *lru.LRU[string, []byte]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: lru.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryCache) Get(ctx context.Context, key string, ttl time.Duration, dest any) (bool, error) {
	data, ok := c.lru.Get(key)
	if !ok {
		return false, nil
	}
	// re-adding restarts the entry's expiry
	c.lru.Add(key, data)

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.lru.Add(key, data)
	return nil
}

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string, ttl time.Duration, dest any) (bool, error) {
	return false, nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
