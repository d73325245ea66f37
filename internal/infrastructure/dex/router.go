package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// SwapParams carries everything needed to encode a single-hop exact-input swap
type SwapParams struct {
	TokenIn      common.Address
	TokenOut     common.Address
	Fee          uint32
	Recipient    common.Address
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Deadline     uint64
}

type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type solidlyRoute struct {
	From    common.Address
	To      common.Address
	Stable  bool
	Factory common.Address
}

// EncodeSwap builds router calldata for the protocol's encoding scheme
func EncodeSwap(protocol entities.Protocol, p SwapParams) ([]byte, error) {
	switch protocol.Encoding {
	case entities.EncodingV3Router02:
		return EncodeV3ExactInputSingle(p)
	case entities.EncodingV2Router:
		return EncodeV2SwapExactTokensForTokens(p)
	case entities.EncodingSolidlyRouter:
		return EncodeSolidlySwapExactTokensForTokens(protocol, p)
	default:
		return nil, fmt.Errorf("unknown encoding scheme %q", protocol.Encoding)
	}
}

// EncodeV3ExactInputSingle encodes SwapRouter02 multicall(deadline, [exactInputSingle])
func EncodeV3ExactInputSingle(p SwapParams) ([]byte, error) {
	inner, err := swapRouter02ABI.Pack("exactInputSingle", exactInputSingleParams{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		Fee:               new(big.Int).SetUint64(uint64(p.Fee)),
		Recipient:         p.Recipient,
		AmountIn:          p.AmountIn,
		AmountOutMinimum:  p.AmountOutMin,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("pack exactInputSingle: %w", err)
	}

	data, err := swapRouter02ABI.Pack("multicall", new(big.Int).SetUint64(p.Deadline), [][]byte{inner})
	if err != nil {
		return nil, fmt.Errorf("pack multicall: %w", err)
	}
	return data, nil
}

// EncodeV2SwapExactTokensForTokens encodes a Uniswap V2 router swap over [tokenIn, tokenOut]
func EncodeV2SwapExactTokensForTokens(p SwapParams) ([]byte, error) {
	data, err := v2RouterABI.Pack("swapExactTokensForTokens",
		p.AmountIn,
		p.AmountOutMin,
		[]common.Address{p.TokenIn, p.TokenOut},
		p.Recipient,
		new(big.Int).SetUint64(p.Deadline),
	)
	if err != nil {
		return nil, fmt.Errorf("pack swapExactTokensForTokens: %w", err)
	}
	return data, nil
}

// EncodeSolidlySwapExactTokensForTokens encodes an Aerodrome-style router swap
func EncodeSolidlySwapExactTokensForTokens(protocol entities.Protocol, p SwapParams) ([]byte, error) {
	routes := []solidlyRoute{{
		From:    p.TokenIn,
		To:      p.TokenOut,
		Stable:  protocol.Stable,
		Factory: protocol.Factory,
	}}

	data, err := solidlyRouterABI.Pack("swapExactTokensForTokens",
		p.AmountIn,
		p.AmountOutMin,
		routes,
		p.Recipient,
		new(big.Int).SetUint64(p.Deadline),
	)
	if err != nil {
		return nil, fmt.Errorf("pack solidly swapExactTokensForTokens: %w", err)
	}
	return data, nil
}
