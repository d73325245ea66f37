package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// UniswapV3Client reads Uniswap V3 style factories, pools and quoters
type UniswapV3Client struct {
	caller ContractCaller
}

func NewUniswapV3Client(caller ContractCaller) *UniswapV3Client {
	return &UniswapV3Client{caller: caller}
}

// V3Quote is the decoded QuoterV2 response
type V3Quote struct {
	AmountOut               *big.Int
	SqrtPriceX96After       *big.Int
	InitializedTicksCrossed uint32
	GasEstimate             *big.Int
}

// GetPool calls factory.getPool; a zero address means the pool does not exist
func (c *UniswapV3Client) GetPool(ctx context.Context, factory, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	token0, token1 := entities.SortTokens(tokenA, tokenB)

	out, err := call(ctx, c.caller, v3FactoryABI, factory, "getPool", token0, token1, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return common.Address{}, err
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("getPool: unexpected output type %T", out[0])
	}
	return addr, nil
}

// GetLiquidity returns the pool's in-range liquidity L
func (c *UniswapV3Client) GetLiquidity(ctx context.Context, pool common.Address) (*big.Int, error) {
	out, err := call(ctx, c.caller, v3PoolABI, pool, "liquidity")
	if err != nil {
		return nil, err
	}

	liquidity, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("liquidity: unexpected output type %T", out[0])
	}
	return liquidity, nil
}

type quoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactInputSingle simulates a single-hop exact-input swap with no price limit
func (c *UniswapV3Client) QuoteExactInputSingle(ctx context.Context, quoter, tokenIn, tokenOut common.Address, amountIn *big.Int, fee uint32) (*V3Quote, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("amountIn must be positive")
	}

	params := quoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               new(big.Int).SetUint64(uint64(fee)),
		SqrtPriceLimitX96: big.NewInt(0),
	}

	out, err := call(ctx, c.caller, quoterV2ABI, quoter, "quoteExactInputSingle", params)
	if err != nil {
		return nil, fmt.Errorf("quoter call failed: %w", err)
	}
	if len(out) != 4 {
		return nil, fmt.Errorf("quoter returned %d values", len(out))
	}

	q := &V3Quote{}
	var ok bool
	if q.AmountOut, ok = out[0].(*big.Int); !ok {
		return nil, fmt.Errorf("quoter amountOut: unexpected type %T", out[0])
	}
	if q.SqrtPriceX96After, ok = out[1].(*big.Int); !ok {
		return nil, fmt.Errorf("quoter sqrtPriceX96After: unexpected type %T", out[1])
	}
	if q.InitializedTicksCrossed, ok = out[2].(uint32); !ok {
		return nil, fmt.Errorf("quoter ticksCrossed: unexpected type %T", out[2])
	}
	if q.GasEstimate, ok = out[3].(*big.Int); !ok {
		return nil, fmt.Errorf("quoter gasEstimate: unexpected type %T", out[3])
	}
	return q, nil
}
