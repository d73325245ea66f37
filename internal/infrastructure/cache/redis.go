package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// Cache stores pool addresses. A deployed pool's address never changes, so it
// is safe to reuse across requests; liquidity and quotes are never cached.
type Cache interface {
	GetPoolAddress(ctx context.Context, key string) (common.Address, bool, error)
	SetPoolAddress(ctx context.Context, key string, addr common.Address, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetPoolAddress retrieves a cached pool address
func (c *RedisCache) GetPoolAddress(ctx context.Context, key string) (common.Address, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.Address{}, false, nil
		}
		return common.Address{}, false, err
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, false, fmt.Errorf("corrupt cache entry %s: %q", key, value)
	}
	return common.HexToAddress(value), true, nil
}

// SetPoolAddress caches a pool address with TTL
func (c *RedisCache) SetPoolAddress(ctx context.Context, key string, addr common.Address, ttl time.Duration) error {
	return c.client.Set(ctx, key, addr.Hex(), ttl).Err()
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// PoolCacheKey generates a cache key for a pool. Token order does not matter.
func PoolCacheKey(dex entities.DEXType, tokenA, tokenB common.Address, fee uint32) string {
	token0, token1 := entities.SortTokens(tokenA, tokenB)
	return fmt.Sprintf("pool:%s:%s:%s:%d", dex, strings.ToLower(token0.Hex()), strings.ToLower(token1.Hex()), fee)
}

// InMemoryCache implements Cache using in-memory storage (for testing/development)
type InMemoryCache struct {
	mu    sync.Mutex
	pools map[string]cachedPool
	now   func() time.Time
}

type cachedPool struct {
	addr      common.Address
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		pools: make(map[string]cachedPool),
		now:   time.Now,
	}
}

func (c *InMemoryCache) GetPoolAddress(ctx context.Context, key string) (common.Address, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.pools[key]; ok {
		if c.now().Before(cached.expiresAt) {
			return cached.addr, true, nil
		}
		delete(c.pools, key)
	}
	return common.Address{}, false, nil
}

func (c *InMemoryCache) SetPoolAddress(ctx context.Context, key string, addr common.Address, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pools[key] = cachedPool{
		addr:      addr,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pools, key)
	return nil
}
