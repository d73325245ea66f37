package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DEXType identifies a liquidity venue or an off-chain quote source
type DEXType string

const (
	DEXUniswapV3 DEXType = "uniswap_v3"
	DEXAerodrome DEXType = "aerodrome"
	DEXBaseSwap  DEXType = "baseswap"
	DEX1inch     DEXType = "1inch"
	DEX0x        DEXType = "0x"
)

// Pair is a constant-product (v2-style) pool snapshot
type Pair struct {
	Address   common.Address `json:"address"`
	Token0    Token          `json:"token0"`
	Token1    Token          `json:"token1"`
	Reserve0  *big.Int       `json:"reserve0"`
	Reserve1  *big.Int       `json:"reserve1"`
	DEX       DEXType        `json:"dex"`
	Fee       uint64         `json:"fee"` // Fee in basis points (e.g., 30 = 0.3%)
	UpdatedAt int64          `json:"updatedAt"`
}

// SpotAmountOut is the output at the pool's marginal price with the fee applied
// and no price impact: amountIn * (10000 - fee) * reserveOut / (reserveIn * 10000)
func (p *Pair) SpotAmountOut(amountIn *big.Int, tokenIn common.Address) *big.Int {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return big.NewInt(0)
	}

	reserveIn, reserveOut := p.reservesFor(tokenIn)
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return big.NewInt(0)
	}

	numerator := new(big.Int).Mul(amountIn, big.NewInt(10000-int64(p.Fee)))
	numerator.Mul(numerator, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, big.NewInt(10000))
	return numerator.Quo(numerator, denominator)
}

// GetAmountOut applies the x*y=k formula with the pair fee
func (p *Pair) GetAmountOut(amountIn *big.Int, tokenIn common.Address) *big.Int {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return big.NewInt(0)
	}

	reserveIn, reserveOut := p.reservesFor(tokenIn)
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return big.NewInt(0)
	}

	feeMultiplier := big.NewInt(10000 - int64(p.Fee))
	amountInWithFee := new(big.Int).Mul(amountIn, feeMultiplier)

	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)

	denominator := new(big.Int).Mul(reserveIn, big.NewInt(10000))
	denominator.Add(denominator, amountInWithFee)

	return new(big.Int).Div(numerator, denominator)
}

// Liquidity returns sqrt(reserve0 * reserve1), the v2 analogue of a v3 pool's L
func (p *Pair) Liquidity() *big.Int {
	if p.Reserve0 == nil || p.Reserve1 == nil {
		return big.NewInt(0)
	}
	k := new(big.Int).Mul(p.Reserve0, p.Reserve1)
	return k.Sqrt(k)
}

func (p *Pair) reservesFor(tokenIn common.Address) (*big.Int, *big.Int) {
	if tokenIn == p.Token0.Address {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}
