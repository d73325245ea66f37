package services

import (
	"math/big"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// Default selection thresholds.
const (
	DefaultMinLiquidity   = 1000
	DefaultMaxPriceImpact = 5.0 // percent
)

// SelectionPolicy holds the filters a quote must pass to be preferred
type SelectionPolicy struct {
	MinLiquidity   *big.Int
	MaxPriceImpact float64
}

// DefaultSelectionPolicy returns the default thresholds
func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{
		MinLiquidity:   big.NewInt(DefaultMinLiquidity),
		MaxPriceImpact: DefaultMaxPriceImpact,
	}
}

// MatchPools copies each quote and fills PoolAddress and Liquidity from the
// first pool with the same DEX and fee. Unmatched quotes keep their
// placeholders. Pools are expected deepest first, so ties go to the deepest.
func MatchPools(quotes []entities.Quote, pools []entities.PoolCandidate) []entities.Quote {
	type poolKey struct {
		dex entities.DEXType
		fee uint32
	}

	index := make(map[poolKey]entities.PoolCandidate, len(pools))
	for _, p := range pools {
		k := poolKey{dex: p.DEX, fee: p.Fee}
		if _, seen := index[k]; !seen {
			index[k] = p
		}
	}

	out := make([]entities.Quote, len(quotes))
	for i, q := range quotes {
		out[i] = q.Clone()
		if out[i].Liquidity == nil {
			out[i].Liquidity = big.NewInt(0)
		}
		if p, ok := index[poolKey{dex: q.DEX, fee: q.Fee}]; ok {
			out[i].PoolAddress = p.Address
			out[i].Liquidity = new(big.Int).Set(p.Liquidity)
		}
	}
	return out
}

// SelectBestRoute matches quotes to pools, filters by liquidity and price
// impact, and returns the highest output. When nothing passes the filters the
// first augmented quote is returned with Degraded set. Empty input yields nil.
//
// A returned route is best-effort; it is not a guarantee of execution safety.
func SelectBestRoute(quotes []entities.Quote, pools []entities.PoolCandidate, policy SelectionPolicy) *entities.SelectedRoute {
	if len(quotes) == 0 {
		return nil
	}

	minLiquidity := policy.MinLiquidity
	if minLiquidity == nil {
		minLiquidity = big.NewInt(DefaultMinLiquidity)
	}

	augmented := MatchPools(quotes, pools)

	var best *entities.Quote
	for i := range augmented {
		q := &augmented[i]
		if q.Liquidity.Cmp(minLiquidity) <= 0 {
			continue
		}
		if q.PriceImpact >= policy.MaxPriceImpact {
			continue
		}
		if q.AmountOut == nil {
			continue
		}
		if best == nil || q.AmountOut.Cmp(best.AmountOut) > 0 {
			best = q
		}
	}

	if best == nil {
		return &entities.SelectedRoute{Quote: augmented[0], Degraded: true}
	}
	return &entities.SelectedRoute{Quote: *best}
}
