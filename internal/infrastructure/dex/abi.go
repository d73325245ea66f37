package dex

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCaller performs read-only eth_call requests
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

const v3FactoryABIJSON = `[
	{"type":"function","name":"getPool","stateMutability":"view",
	 "inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"fee","type":"uint24"}],
	 "outputs":[{"name":"pool","type":"address"}]}
]`

const v3PoolABIJSON = `[
	{"type":"function","name":"liquidity","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint128"}]}
]`

const quoterV2ABIJSON = `[
	{"type":"function","name":"quoteExactInputSingle","stateMutability":"nonpayable",
	 "inputs":[{"name":"params","type":"tuple","components":[
		{"name":"tokenIn","type":"address"},
		{"name":"tokenOut","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"fee","type":"uint24"},
		{"name":"sqrtPriceLimitX96","type":"uint160"}]}],
	 "outputs":[
		{"name":"amountOut","type":"uint256"},
		{"name":"sqrtPriceX96After","type":"uint160"},
		{"name":"initializedTicksCrossed","type":"uint32"},
		{"name":"gasEstimate","type":"uint256"}]}
]`

const v2FactoryABIJSON = `[
	{"type":"function","name":"getPair","stateMutability":"view",
	 "inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],
	 "outputs":[{"name":"pair","type":"address"}]}
]`

const solidlyFactoryABIJSON = `[
	{"type":"function","name":"getPool","stateMutability":"view",
	 "inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"}],
	 "outputs":[{"name":"pool","type":"address"}]}
]`

// Solidly pools return uint256 words where Uniswap V2 returns uint112/uint32;
// the padded encoding is identical so one ABI decodes both.
const v2PairABIJSON = `[
	{"type":"function","name":"getReserves","stateMutability":"view",
	 "inputs":[],
	 "outputs":[{"name":"reserve0","type":"uint256"},{"name":"reserve1","type":"uint256"},{"name":"blockTimestampLast","type":"uint256"}]}
]`

const swapRouter02ABIJSON = `[
	{"type":"function","name":"exactInputSingle","stateMutability":"payable",
	 "inputs":[{"name":"params","type":"tuple","components":[
		{"name":"tokenIn","type":"address"},
		{"name":"tokenOut","type":"address"},
		{"name":"fee","type":"uint24"},
		{"name":"recipient","type":"address"},
		{"name":"amountIn","type":"uint256"},
		{"name":"amountOutMinimum","type":"uint256"},
		{"name":"sqrtPriceLimitX96","type":"uint160"}]}],
	 "outputs":[{"name":"amountOut","type":"uint256"}]},
	{"type":"function","name":"multicall","stateMutability":"payable",
	 "inputs":[{"name":"deadline","type":"uint256"},{"name":"data","type":"bytes[]"}],
	 "outputs":[{"name":"results","type":"bytes[]"}]}
]`

const v2RouterABIJSON = `[
	{"type":"function","name":"swapExactTokensForTokens","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"amountIn","type":"uint256"},
		{"name":"amountOutMin","type":"uint256"},
		{"name":"path","type":"address[]"},
		{"name":"to","type":"address"},
		{"name":"deadline","type":"uint256"}],
	 "outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

const solidlyRouterABIJSON = `[
	{"type":"function","name":"swapExactTokensForTokens","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"amountIn","type":"uint256"},
		{"name":"amountOutMin","type":"uint256"},
		{"name":"routes","type":"tuple[]","components":[
			{"name":"from","type":"address"},
			{"name":"to","type":"address"},
			{"name":"stable","type":"bool"},
			{"name":"factory","type":"address"}]},
		{"name":"to","type":"address"},
		{"name":"deadline","type":"uint256"}],
	 "outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

var (
	v3FactoryABI      = mustParseABI(v3FactoryABIJSON)
	v3PoolABI         = mustParseABI(v3PoolABIJSON)
	quoterV2ABI       = mustParseABI(quoterV2ABIJSON)
	v2FactoryABI      = mustParseABI(v2FactoryABIJSON)
	solidlyFactoryABI = mustParseABI(solidlyFactoryABIJSON)
	v2PairABI         = mustParseABI(v2PairABIJSON)
	swapRouter02ABI   = mustParseABI(swapRouter02ABIJSON)
	v2RouterABI       = mustParseABI(v2RouterABIJSON)
	solidlyRouterABI  = mustParseABI(solidlyRouterABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("dex: invalid ABI: %v", err))
	}
	return parsed
}

// call packs a method, executes it against target and unpacks the outputs
func call(ctx context.Context, caller ContractCaller, contract abi.ABI, target common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	result, err := caller.CallContract(ctx, ethereum.CallMsg{
		To:   &target,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("%s call to %s: %w", method, target.Hex(), err)
	}

	out, err := contract.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}
