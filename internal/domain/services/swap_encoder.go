package services

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-router/internal/domain/entities"
	"github.com/bimakw/swap-router/internal/infrastructure/dex"
)

// DefaultDeadlineWindow is how long a signed swap stays executable
const DefaultDeadlineWindow = 1200 * time.Second

// Encoding errors
var (
	ErrUnsupportedDEX  = errors.New("unsupported DEX")
	ErrInvalidSlippage = errors.New("slippage must be between 0 and 10000 basis points")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidRoute    = errors.New("route is missing")
)

// SwapEncoder turns a selected route into router calldata
type SwapEncoder struct {
	protocols      *entities.ProtocolSet
	deadlineWindow time.Duration
	now            func() time.Time
}

// NewSwapEncoder creates an encoder for the configured protocols
func NewSwapEncoder(protocols *entities.ProtocolSet) *SwapEncoder {
	return &SwapEncoder{
		protocols:      protocols,
		deadlineWindow: DefaultDeadlineWindow,
		now:            time.Now,
	}
}

// AmountOutMin applies slippage with integer math, rounding down:
// amountOut * (10000 - slippageBps) / 10000
func AmountOutMin(amountOut *big.Int, slippageBps uint32) (*big.Int, error) {
	if slippageBps > 10000 {
		return nil, ErrInvalidSlippage
	}
	if amountOut == nil || amountOut.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	minOut := new(big.Int).Mul(amountOut, big.NewInt(int64(10000-slippageBps)))
	return minOut.Quo(minOut, big.NewInt(10000)), nil
}

// EncodeSwap builds a transaction that swaps exactly amountIn of the route's
// input token and reverts if less than the slippage-adjusted output arrives.
func (e *SwapEncoder) EncodeSwap(route *entities.SelectedRoute, wallet common.Address, amountIn *big.Int, slippageBps uint32) (*entities.SwapTransaction, error) {
	if route == nil {
		return nil, ErrInvalidRoute
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	protocol, ok := e.protocols.Get(route.DEX)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDEX, route.DEX)
	}

	amountOutMin, err := AmountOutMin(route.AmountOut, slippageBps)
	if err != nil {
		return nil, err
	}

	deadline := uint64(e.now().Add(e.deadlineWindow).Unix())

	data, err := dex.EncodeSwap(protocol, dex.SwapParams{
		TokenIn:      route.TokenIn,
		TokenOut:     route.TokenOut,
		Fee:          route.Fee,
		Recipient:    wallet,
		AmountIn:     amountIn,
		AmountOutMin: amountOutMin,
		Deadline:     deadline,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s swap: %w", protocol.ID, err)
	}

	gas := route.GasEstimate
	if gas == 0 {
		gas = estimateGas(1)
	}

	return &entities.SwapTransaction{
		To:           protocol.Router,
		Data:         data,
		Value:        big.NewInt(0),
		GasEstimate:  gas,
		AmountOutMin: amountOutMin,
		Deadline:     deadline,
	}, nil
}

// estimateGas is the fallback when a quote carries no gas estimate
func estimateGas(hops uint) uint64 {
	baseGas := uint64(21000)
	gasPerHop := uint64(100000) // Approximate gas for a Uniswap V2 swap

	return baseGas + uint64(hops)*gasPerHop
}
