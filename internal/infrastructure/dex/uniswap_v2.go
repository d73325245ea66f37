package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-router/internal/domain/entities"
	ethclient "github.com/bimakw/swap-router/internal/infrastructure/ethereum"
)

// UniswapV2Client reads constant-product factories and pairs. Solidly-style
// factories (Aerodrome) are keyed by a stable flag instead of a bare token pair.
type UniswapV2Client struct {
	caller ContractCaller
}

// NewUniswapV2Client creates a new Uniswap V2 client
func NewUniswapV2Client(caller ContractCaller) *UniswapV2Client {
	return &UniswapV2Client{caller: caller}
}

// GetPairAddress returns the pair address for two tokens, or the zero address
func (c *UniswapV2Client) GetPairAddress(ctx context.Context, protocol entities.Protocol, tokenA, tokenB common.Address) (common.Address, error) {
	token0, token1 := entities.SortTokens(tokenA, tokenB)

	var (
		out []interface{}
		err error
	)
	if protocol.Encoding == entities.EncodingSolidlyRouter {
		out, err = call(ctx, c.caller, solidlyFactoryABI, protocol.Factory, "getPool", token0, token1, protocol.Stable)
	} else {
		out, err = call(ctx, c.caller, v2FactoryABI, protocol.Factory, "getPair", token0, token1)
	}
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get pair address: %w", err)
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("pair lookup: unexpected output type %T", out[0])
	}
	return addr, nil
}

// GetReserves fetches reserves from a pair
func (c *UniswapV2Client) GetReserves(ctx context.Context, pairAddress common.Address) (*big.Int, *big.Int, error) {
	out, err := call(ctx, c.caller, v2PairABI, pairAddress, "getReserves")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get reserves: %w", err)
	}
	if len(out) < 2 {
		return nil, nil, ethclient.ErrShortResponse
	}

	reserve0, ok0 := out[0].(*big.Int)
	reserve1, ok1 := out[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, nil, fmt.Errorf("getReserves: unexpected output types %T, %T", out[0], out[1])
	}
	return reserve0, reserve1, nil
}

// GetPair fetches pair data including reserves
func (c *UniswapV2Client) GetPair(ctx context.Context, protocol entities.Protocol, pairAddress, token0, token1 common.Address) (*entities.Pair, error) {
	reserve0, reserve1, err := c.GetReserves(ctx, pairAddress)
	if err != nil {
		return nil, err
	}

	return &entities.Pair{
		Address:   pairAddress,
		Token0:    entities.Token{Address: token0},
		Token1:    entities.Token{Address: token1},
		Reserve0:  reserve0,
		Reserve1:  reserve1,
		DEX:       protocol.ID,
		Fee:       protocol.FeeBps,
		UpdatedAt: time.Now().Unix(),
	}, nil
}

// GetPairByTokens resolves and loads the pair for two tokens. It returns
// (nil, nil) when the factory has no pair.
func (c *UniswapV2Client) GetPairByTokens(ctx context.Context, protocol entities.Protocol, tokenA, tokenB common.Address) (*entities.Pair, error) {
	token0, token1 := entities.SortTokens(tokenA, tokenB)

	pairAddress, err := c.GetPairAddress(ctx, protocol, token0, token1)
	if err != nil {
		return nil, err
	}
	if pairAddress == ethclient.ZeroAddress {
		return nil, nil
	}

	return c.GetPair(ctx, protocol, pairAddress, token0, token1)
}
