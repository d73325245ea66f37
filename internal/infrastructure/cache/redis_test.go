package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheRoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	key := PoolCacheKey(entities.DEXUniswapV3, entities.WETH.Address, entities.USDC.Address, 500)
	addr := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	_, ok, err := c.GetPoolAddress(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetPoolAddress(ctx, key, addr, time.Minute))
	got, ok, err := c.GetPoolAddress(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, addr, got)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetPoolAddress(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	c, mr := newRedisCache(t)
	require.NoError(t, mr.Set("pool:bad", "garbage"))

	_, ok, err := c.GetPoolAddress(context.Background(), "pool:bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt cache entry")
	assert.False(t, ok)
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	require.NoError(t, c.SetPoolAddress(ctx, "k", common.HexToAddress("0x01"), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	_, ok, err := c.GetPoolAddress(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
