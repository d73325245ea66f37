package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PoolResponse is a discovered pool
type PoolResponse struct {
	DEX       string `json:"dexId"`
	Address   string `json:"poolAddress"`
	Fee       uint32 `json:"fee"`
	Liquidity string `json:"liquidity"`
	Version   string `json:"version"`
}

// QuoteResponse is one source's quote after pool matching
type QuoteResponse struct {
	DEX         string   `json:"dexId"`
	AmountOut   string   `json:"amountOut"`
	GasEstimate uint64   `json:"gasEstimate"`
	PriceImpact float64  `json:"priceImpact"`
	Route       []string `json:"route"`
	PoolAddress string   `json:"poolAddress"`
	Fee         uint32   `json:"fee"`
	Liquidity   string   `json:"liquidity"`
	Confidence  string   `json:"confidence"`
}

// RouteResponse is the selected quote
type RouteResponse struct {
	QuoteResponse
	Degraded bool `json:"degraded"`
}

// TransactionResponse is a ready-to-sign transaction
type TransactionResponse struct {
	To           string `json:"to"`
	Data         string `json:"data"`
	Value        string `json:"value"`
	GasEstimate  uint64 `json:"gasEstimate"`
	AmountOutMin string `json:"amountOutMin"`
	Deadline     uint64 `json:"deadline"`
}

// TokenResponse identifies a token with optional display metadata
type TokenResponse struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals uint8  `json:"decimals,omitempty"`
}

func toTokenResponse(t entities.Token) TokenResponse {
	return TokenResponse{
		Address:  entities.LowerHex(t.Address),
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}
}

func toPoolResponses(pools []entities.PoolCandidate) []PoolResponse {
	out := make([]PoolResponse, 0, len(pools))
	for _, p := range pools {
		out = append(out, PoolResponse{
			DEX:       string(p.DEX),
			Address:   entities.LowerHex(p.Address),
			Fee:       p.Fee,
			Liquidity: amountString(p.Liquidity),
			Version:   string(p.Version),
		})
	}
	return out
}

func toQuoteResponse(q entities.Quote) QuoteResponse {
	poolAddress := ""
	if q.PoolAddress != (common.Address{}) {
		poolAddress = entities.LowerHex(q.PoolAddress)
	}
	route := q.Route
	if route == nil {
		route = []string{}
	}
	return QuoteResponse{
		DEX:         string(q.DEX),
		AmountOut:   amountString(q.AmountOut),
		GasEstimate: q.GasEstimate,
		PriceImpact: q.PriceImpact,
		Route:       route,
		PoolAddress: poolAddress,
		Fee:         q.Fee,
		Liquidity:   amountString(q.Liquidity),
		Confidence:  string(q.Confidence),
	}
}

func toQuoteResponses(quotes []entities.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}
	return out
}

func toRouteResponse(r *entities.SelectedRoute) *RouteResponse {
	if r == nil {
		return nil
	}
	return &RouteResponse{QuoteResponse: toQuoteResponse(r.Quote), Degraded: r.Degraded}
}

func toTransactionResponse(tx *entities.SwapTransaction) TransactionResponse {
	return TransactionResponse{
		To:           entities.LowerHex(tx.To),
		Data:         hexutil.Encode(tx.Data),
		Value:        amountString(tx.Value),
		GasEstimate:  tx.GasEstimate,
		AmountOutMin: amountString(tx.AmountOutMin),
		Deadline:     tx.Deadline,
	}
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// decodeJSON decodes a request body, rejecting unknown fields and oversized bodies
func decodeJSON(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
