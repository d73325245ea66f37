package entities

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func singleHopRoute(reserve0, reserve1, amountIn *big.Int) *Route {
	token0 := common.HexToAddress("0x0000000000000000000000000000000000000001")
	token1 := common.HexToAddress("0x0000000000000000000000000000000000000002")
	return &Route{
		Hops: []Hop{{
			Pair: Pair{
				Token0:   Token{Address: token0},
				Token1:   Token{Address: token1},
				Reserve0: reserve0,
				Reserve1: reserve1,
				Fee:      30,
			},
			TokenIn:  token0,
			TokenOut: token1,
		}},
		AmountIn: amountIn,
	}
}

func TestRouteCalculateAmountOutMatchesPair(t *testing.T) {
	r := singleHopRoute(ether(10000), ether(10000), ether(1))

	want := r.Hops[0].Pair.GetAmountOut(ether(1), r.Hops[0].TokenIn)
	assert.Equal(t, 0, r.CalculateAmountOut().Cmp(want))
}

func TestRouteCalculateAmountOutEmpty(t *testing.T) {
	r := &Route{AmountIn: ether(1)}
	assert.Equal(t, 0, r.CalculateAmountOut().Sign())
}

func TestRoutePriceImpact(t *testing.T) {
	t.Run("small trade in deep pool", func(t *testing.T) {
		r := singleHopRoute(ether(10000), ether(10000), ether(1))
		assert.LessOrEqual(t, r.CalculatePriceImpact().Int64(), int64(2))
	})

	t.Run("trade of ten percent of reserves", func(t *testing.T) {
		r := singleHopRoute(ether(1000), ether(1000), ether(100))
		bps := r.CalculatePriceImpact().Int64()
		assert.Greater(t, bps, int64(880))
		assert.Less(t, bps, int64(930))

		pct := r.PriceImpactPercent()
		assert.InDelta(t, float64(bps)/100, pct, 1e-9)
	})

	t.Run("six decimal input draining the pool", func(t *testing.T) {
		// 500 WETH against 1M USDC, selling USDC
		weth := Token{Address: WETH.Address, Decimals: 18}
		usdc := Token{Address: USDC.Address, Decimals: 6}
		pair := Pair{
			Token0:   weth,
			Token1:   usdc,
			Reserve0: ether(500),
			Reserve1: big.NewInt(1_000_000_000_000),
			Fee:      30,
		}

		for _, amountIn := range []*big.Int{
			big.NewInt(10_000_000_000_000),    // 10M USDC, below 1e15 units
			big.NewInt(5_000_000_000_000_000), // 5B USDC, above 1e15 units
		} {
			r := &Route{
				Hops:     []Hop{{Pair: pair, TokenIn: usdc.Address, TokenOut: weth.Address}},
				AmountIn: amountIn,
			}
			assert.Greater(t, r.PriceImpactPercent(), 90.0, "amountIn %s", amountIn)
			assert.Equal(t, -1, r.CalculateAmountOut().Cmp(pair.Reserve0))
		}
	})

	t.Run("six decimal input small trade", func(t *testing.T) {
		pair := Pair{
			Token0:   WETH,
			Token1:   USDC,
			Reserve0: ether(500),
			Reserve1: big.NewInt(1_000_000_000_000),
			Fee:      30,
		}
		r := &Route{
			Hops:     []Hop{{Pair: pair, TokenIn: USDC.Address, TokenOut: WETH.Address}},
			AmountIn: big.NewInt(100_000_000), // 100 USDC
		}
		assert.Less(t, r.PriceImpactPercent(), 0.1)
	})

	t.Run("zero amount in", func(t *testing.T) {
		r := singleHopRoute(ether(1000), ether(1000), big.NewInt(0))
		assert.Equal(t, 0, r.CalculatePriceImpact().Sign())
	})
}

func TestQuoteCloneIsDeep(t *testing.T) {
	q := Quote{
		DEX:       DEXUniswapV3,
		AmountIn:  big.NewInt(10),
		AmountOut: big.NewInt(20),
		Liquidity: big.NewInt(30),
		Route:     []string{"uniswap_v3"},
	}

	c := q.Clone()
	c.AmountOut.SetInt64(99)
	c.Liquidity.SetInt64(99)
	c.Route[0] = "changed"

	assert.Equal(t, int64(20), q.AmountOut.Int64())
	assert.Equal(t, int64(30), q.Liquidity.Int64())
	assert.Equal(t, "uniswap_v3", q.Route[0])
}

func TestSortTokens(t *testing.T) {
	a, b := SortTokens(USDC.Address, WETH.Address)
	require.Equal(t, -1, a.Cmp(b))

	c, d := SortTokens(WETH.Address, USDC.Address)
	assert.Equal(t, a, c)
	assert.Equal(t, b, d)
}
