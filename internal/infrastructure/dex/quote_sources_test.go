package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

func TestV3QuoteSourceQuotesEachTier(t *testing.T) {
	protocol := v3Protocol(t)

	caller := newFakeCaller()
	caller.on(protocol.Quoter, quoterV2ABI, "quoteExactInputSingle", func(args []interface{}) ([]interface{}, error) {
		params := *abi.ConvertType(args[0], new(quoteExactInputSingleParams)).(*quoteExactInputSingleParams)
		assert.Equal(t, 0, params.SqrtPriceLimitX96.Sign())

		switch params.Fee.Uint64() {
		case 500:
			return []interface{}{big.NewInt(3000e6), big.NewInt(1), uint32(2), big.NewInt(90000)}, nil
		case 3000:
			return []interface{}{big.NewInt(2990e6), big.NewInt(1), uint32(1), big.NewInt(85000)}, nil
		case 10000:
			return []interface{}{big.NewInt(0), big.NewInt(1), uint32(0), big.NewInt(0)}, nil
		default:
			return nil, errors.New("execution reverted")
		}
	})

	source := NewV3QuoteSource(caller, protocol, time.Second, zaptest.NewLogger(t))
	assert.Equal(t, "uniswap_v3", source.Name())

	quotes, err := source.Quotes(context.Background(), entities.QuoteRequest{
		TokenIn:  weth,
		TokenOut: usdc,
		AmountIn: big.NewInt(1e18),
	})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	byFee := map[uint32]entities.Quote{}
	for _, q := range quotes {
		byFee[q.Fee] = q
		assert.Equal(t, entities.ConfidenceHigh, q.Confidence)
		assert.Equal(t, []string{"Uniswap V3"}, q.Route)
		assert.Equal(t, 0, q.Liquidity.Sign())
		assert.Equal(t, common.Address{}, q.PoolAddress)
	}
	assert.Equal(t, int64(3000e6), byFee[500].AmountOut.Int64())
	assert.Equal(t, uint64(90000), byFee[500].GasEstimate)
	assert.Equal(t, int64(2990e6), byFee[3000].AmountOut.Int64())
}

func TestV3QuoteSourceAllTiersFail(t *testing.T) {
	source := NewV3QuoteSource(newFakeCaller(), v3Protocol(t), time.Second, zaptest.NewLogger(t))

	_, err := source.Quotes(context.Background(), entities.QuoteRequest{
		TokenIn:  weth,
		TokenOut: usdc,
		AmountIn: big.NewInt(1e18),
	})
	assert.Error(t, err)
}

func TestV2QuoteSource(t *testing.T) {
	protocol := v2Protocol(t, entities.DEXBaseSwap)
	pair := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	reserve := new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))

	caller := newFakeCaller()
	caller.on(protocol.Factory, v2FactoryABI, "getPair", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{pair}, nil
	})
	caller.on(pair, v2PairABI, "getReserves", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{reserve, reserve, big.NewInt(0)}, nil
	})

	source := NewV2QuoteSource(caller, protocol, time.Second)
	quotes, err := source.Quotes(context.Background(), entities.QuoteRequest{
		TokenIn:  weth,
		TokenOut: usdc,
		AmountIn: big.NewInt(1e18),
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, entities.DEXBaseSwap, q.DEX)
	assert.Equal(t, entities.ConfidenceMedium, q.Confidence)
	assert.Equal(t, uint32(0), q.Fee)
	assert.Equal(t, uint64(v2SwapGas), q.GasEstimate)
	assert.Positive(t, q.AmountOut.Sign())
	assert.Equal(t, -1, q.AmountOut.Cmp(big.NewInt(1e18)))
	assert.Less(t, q.PriceImpact, 1.0)
}

func TestV2QuoteSourceMissingPair(t *testing.T) {
	protocol := v2Protocol(t, entities.DEXBaseSwap)
	caller := newFakeCaller()
	caller.on(protocol.Factory, v2FactoryABI, "getPair", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{common.Address{}}, nil
	})

	quotes, err := NewV2QuoteSource(caller, protocol, time.Second).Quotes(context.Background(), entities.QuoteRequest{
		TokenIn:  weth,
		TokenOut: usdc,
		AmountIn: big.NewInt(1e18),
	})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestV2QuoteSourceReportsImpactForSixDecimalInput(t *testing.T) {
	protocol := v2Protocol(t, entities.DEXBaseSwap)
	pair := common.HexToAddress("0x00000000000000000000000000000000000000c4")
	wethReserve := new(big.Int).Mul(big.NewInt(500), big.NewInt(1e18))
	usdcReserve := big.NewInt(1_000_000_000_000)

	caller := newFakeCaller()
	caller.on(protocol.Factory, v2FactoryABI, "getPair", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{pair}, nil
	})
	caller.on(pair, v2PairABI, "getReserves", func(args []interface{}) ([]interface{}, error) {
		// token0 is WETH, the lower address
		return []interface{}{wethReserve, usdcReserve, big.NewInt(0)}, nil
	})

	quotes, err := NewV2QuoteSource(caller, protocol, time.Second).Quotes(context.Background(), entities.QuoteRequest{
		TokenIn:  usdc,
		TokenOut: weth,
		AmountIn: big.NewInt(10_000_000_000_000), // 10M USDC
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	assert.Equal(t, -1, quotes[0].AmountOut.Cmp(wethReserve))
	assert.Greater(t, quotes[0].PriceImpact, 5.0)
}
