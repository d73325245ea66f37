package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Hop represents a single swap step in a route
type Hop struct {
	Pair     Pair           `json:"pair"`
	TokenIn  common.Address `json:"tokenIn"`
	TokenOut common.Address `json:"tokenOut"`
}

// Route is a path through constant-product pairs, used to price v2 quotes locally
type Route struct {
	Hops     []Hop    `json:"hops"`
	AmountIn *big.Int `json:"amountIn"`
}

// CalculateAmountOut calculates the final output amount for the entire route
func (r *Route) CalculateAmountOut() *big.Int {
	if len(r.Hops) == 0 || r.AmountIn == nil {
		return big.NewInt(0)
	}

	currentAmount := new(big.Int).Set(r.AmountIn)
	for _, hop := range r.Hops {
		currentAmount = hop.Pair.GetAmountOut(currentAmount, hop.TokenIn)
		if currentAmount.Sign() <= 0 {
			return big.NewInt(0)
		}
	}

	return currentAmount
}

// CalculatePriceImpact calculates the price impact in basis points
// Price impact = (spotPrice - executionPrice) / spotPrice * 10000
func (r *Route) CalculatePriceImpact() *big.Int {
	if len(r.Hops) == 0 || r.AmountIn == nil || r.AmountIn.Sign() == 0 {
		return big.NewInt(0)
	}

	spotAmount := r.calculateSpotAmount()
	if spotAmount.Sign() == 0 {
		return big.NewInt(0)
	}

	actualAmount := r.CalculateAmountOut()
	if actualAmount.Sign() == 0 {
		return big.NewInt(10000)
	}

	diff := new(big.Int).Sub(spotAmount, actualAmount)
	if diff.Sign() <= 0 {
		return big.NewInt(0)
	}

	impactScaled := new(big.Int).Mul(diff, big.NewInt(10000))
	return new(big.Int).Div(impactScaled, spotAmount)
}

// PriceImpactPercent is CalculatePriceImpact expressed as a percentage (0-100)
func (r *Route) PriceImpactPercent() float64 {
	bps := r.CalculatePriceImpact()
	return float64(bps.Int64()) / 100
}

// calculateSpotAmount is the route output at each hop's marginal price
func (r *Route) calculateSpotAmount() *big.Int {
	if len(r.Hops) == 0 || r.AmountIn == nil {
		return big.NewInt(0)
	}

	amount := new(big.Int).Set(r.AmountIn)
	for _, hop := range r.Hops {
		amount = hop.Pair.SpotAmountOut(amount, hop.TokenIn)
		if amount.Sign() <= 0 {
			return big.NewInt(0)
		}
	}
	return amount
}
