package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bimakw/swap-router/internal/domain/entities"
	"github.com/bimakw/swap-router/internal/infrastructure/cache"
)

func newDiscovery(t *testing.T, reader PoolReader, c cache.Cache) *PoolDiscoveryService {
	return NewPoolDiscoveryService(entities.BaseMainnetProtocols(), reader, c, time.Minute, time.Second, zaptest.NewLogger(t))
}

func TestDiscoverPoolsNoPools(t *testing.T) {
	d := newDiscovery(t, newFakePoolReader(), nil)

	pools := d.DiscoverPools(context.Background(), tokenA, tokenB)
	assert.Empty(t, pools)
}

func TestDiscoverPoolsSortedAndPositive(t *testing.T) {
	reader := newFakePoolReader()
	reader.addPool(entities.DEXUniswapV3, 500, common.HexToAddress("0x01"), 5000)
	reader.addPool(entities.DEXUniswapV3, 3000, common.HexToAddress("0x02"), 90000)
	reader.addPool(entities.DEXUniswapV3, 10000, common.HexToAddress("0x03"), 0)
	reader.addPool(entities.DEXAerodrome, 0, common.HexToAddress("0x04"), 20000)

	d := newDiscovery(t, reader, nil)
	pools := d.DiscoverPools(context.Background(), tokenA, tokenB)

	require.Len(t, pools, 3)
	for i, p := range pools {
		assert.Positive(t, p.Liquidity.Sign(), "pool %d", i)
		if i > 0 {
			assert.GreaterOrEqual(t, pools[i-1].Liquidity.Cmp(p.Liquidity), 0)
		}
	}
	assert.Equal(t, uint32(3000), pools[0].Fee)
	assert.Equal(t, entities.DEXAerodrome, pools[1].DEX)
	assert.Equal(t, entities.VersionV2, pools[1].Version)

	token0, token1 := entities.SortTokens(tokenA, tokenB)
	assert.Equal(t, token0, pools[0].Token0)
	assert.Equal(t, token1, pools[0].Token1)
}

func TestDiscoverPoolsSkipsFailingProtocol(t *testing.T) {
	reader := newFakePoolReader()
	reader.addPool(entities.DEXUniswapV3, 500, common.HexToAddress("0x01"), 5000)
	reader.addPool(entities.DEXBaseSwap, 0, common.HexToAddress("0x05"), 7000)
	reader.failDEX[entities.DEXUniswapV3] = true

	d := newDiscovery(t, reader, nil)
	pools := d.DiscoverPools(context.Background(), tokenA, tokenB)

	require.Len(t, pools, 1)
	assert.Equal(t, entities.DEXBaseSwap, pools[0].DEX)
}

func TestDiscoverPoolsCachesAddresses(t *testing.T) {
	reader := newFakePoolReader()
	reader.addPool(entities.DEXUniswapV3, 500, common.HexToAddress("0x01"), 5000)

	d := newDiscovery(t, reader, cache.NewInMemoryCache())

	first := d.DiscoverPools(context.Background(), tokenA, tokenB)
	calls := atomic.LoadInt32(&reader.lookupCalls)
	// one lookup per fee tier plus one per v2 protocol
	assert.Equal(t, int32(6), calls)

	second := d.DiscoverPools(context.Background(), tokenB, tokenA)
	// only the existing pool is cached; missing pools are looked up again
	assert.Equal(t, int32(11), atomic.LoadInt32(&reader.lookupCalls))
	assert.Equal(t, first, second)
}

func TestDiscoverPoolsHungTierDoesNotBlockSiblings(t *testing.T) {
	reader := newFakePoolReader()
	reader.addPool(entities.DEXUniswapV3, 500, common.HexToAddress("0x01"), 5000)
	reader.addPool(entities.DEXUniswapV3, 3000, common.HexToAddress("0x02"), 9000)
	reader.addPool(entities.DEXAerodrome, 0, common.HexToAddress("0x04"), 7000)
	reader.blockFee[500] = true

	callTimeout := 50 * time.Millisecond
	d := NewPoolDiscoveryService(entities.BaseMainnetProtocols(), reader, nil, time.Minute, callTimeout, zaptest.NewLogger(t))

	start := time.Now()
	pools := d.DiscoverPools(context.Background(), tokenA, tokenB)
	elapsed := time.Since(start)

	require.Len(t, pools, 2)
	assert.Equal(t, uint32(3000), pools[0].Fee)
	assert.Equal(t, entities.DEXAerodrome, pools[1].DEX)
	assert.Less(t, elapsed, 10*callTimeout)
}

func TestDiscoverPoolsEvictsCachedAddressOnLiquidityFailure(t *testing.T) {
	ctx := context.Background()
	poolAddr := common.HexToAddress("0x02")

	reader := newFakePoolReader()
	reader.addPool(entities.DEXUniswapV3, 3000, poolAddr, 9000)

	c := cache.NewInMemoryCache()
	d := newDiscovery(t, reader, c)
	key := cache.PoolCacheKey(entities.DEXUniswapV3, tokenA, tokenB, 3000)

	require.Len(t, d.DiscoverPools(ctx, tokenA, tokenB), 1)
	_, ok, err := c.GetPoolAddress(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	reader.mu.Lock()
	reader.failPool[poolAddr] = true
	reader.mu.Unlock()

	assert.Empty(t, d.DiscoverPools(ctx, tokenA, tokenB))
	_, ok, err = c.GetPoolAddress(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "failed pool should be evicted")
}
