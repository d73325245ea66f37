package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Confidence reflects how reliable a quote source is
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Quote is one source's estimate for executing a swap. Quotes live for a single
// route-selection call and are never persisted.
type Quote struct {
	DEX         DEXType         `json:"dexId"`
	TokenIn     common.Address  `json:"tokenIn"`
	TokenOut    common.Address  `json:"tokenOut"`
	AmountIn    *big.Int        `json:"amountIn"`
	AmountOut   *big.Int        `json:"amountOut"`
	GasEstimate uint64          `json:"gasEstimate"`
	PriceImpact float64         `json:"priceImpact"` // percent, display only
	Route       []string        `json:"route"`
	PoolAddress common.Address  `json:"poolAddress"`
	Fee         uint32          `json:"fee"`
	Liquidity   *big.Int        `json:"liquidity"`
	Confidence  Confidence      `json:"confidence"`
	Version     ProtocolVersion `json:"version,omitempty"`
}

// Clone returns a deep copy so callers can augment a quote without aliasing
func (q Quote) Clone() Quote {
	out := q
	if q.AmountIn != nil {
		out.AmountIn = new(big.Int).Set(q.AmountIn)
	}
	if q.AmountOut != nil {
		out.AmountOut = new(big.Int).Set(q.AmountOut)
	}
	if q.Liquidity != nil {
		out.Liquidity = new(big.Int).Set(q.Liquidity)
	}
	if q.Route != nil {
		out.Route = append([]string(nil), q.Route...)
	}
	return out
}

// SelectedRoute is the quote chosen by route selection
type SelectedRoute struct {
	Quote
	// Degraded is set when no quote passed the liquidity/impact filters and the
	// selector fell back to the best unfiltered quote.
	Degraded bool `json:"degraded"`
}

// SwapTransaction is a ready-to-sign transaction descriptor
type SwapTransaction struct {
	To           common.Address `json:"to"`
	Data         []byte         `json:"data"`
	Value        *big.Int       `json:"value"`
	GasEstimate  uint64         `json:"gasEstimate"`
	AmountOutMin *big.Int       `json:"amountOutMin"`
	Deadline     uint64         `json:"deadline"`
}

// QuoteRequest is the input shared by every quote source
type QuoteRequest struct {
	TokenIn  common.Address
	TokenOut common.Address
	AmountIn *big.Int
}
