package handlers

import (
	"context"
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-router/internal/domain/entities"
	"github.com/bimakw/swap-router/internal/domain/services"
)

// Router is the pipeline the handlers drive
type Router interface {
	DiscoverPools(ctx context.Context, tokenIn, tokenOut common.Address) []entities.PoolCandidate
	FindRoute(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) *services.RouteResult
	BuildSwap(route *entities.SelectedRoute, wallet common.Address, amountIn *big.Int, slippageBps uint32) (*entities.SwapTransaction, error)
}

// QuoteHandler handles pool, quote and swap requests
type QuoteHandler struct {
	router Router
	tokens *entities.TokenRegistry
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(router Router, tokens *entities.TokenRegistry) *QuoteHandler {
	if tokens == nil {
		tokens = entities.DefaultRegistry()
	}
	return &QuoteHandler{
		router: router,
		tokens: tokens,
	}
}

// PoolsResponse lists discovered pools for a pair
type PoolsResponse struct {
	TokenIn  TokenResponse  `json:"tokenIn"`
	TokenOut TokenResponse  `json:"tokenOut"`
	Pools    []PoolResponse `json:"pools"`
}

// QuotesResponse carries every quote and the selected route (null when none)
type QuotesResponse struct {
	TokenIn  TokenResponse   `json:"tokenIn"`
	TokenOut TokenResponse   `json:"tokenOut"`
	AmountIn string          `json:"amountIn"`
	Quotes   []QuoteResponse `json:"quotes"`
	Route    *RouteResponse  `json:"route"`
}

// SwapRequest is the body of POST /api/v1/swap
type SwapRequest struct {
	TokenIn     string `json:"tokenIn"`
	TokenOut    string `json:"tokenOut"`
	AmountIn    string `json:"amountIn"`
	Wallet      string `json:"wallet"`
	SlippageBps *int64 `json:"slippageBps"`
}

// SwapResponse is the selected route and its encoded transaction
type SwapResponse struct {
	Route       RouteResponse       `json:"route"`
	Transaction TransactionResponse `json:"transaction"`
}

// DefaultSlippageBps is used when a swap request omits slippage (0.5%)
const DefaultSlippageBps = 50

// GetPools handles GET /api/v1/pools
func (h *QuoteHandler) GetPools(w http.ResponseWriter, r *http.Request) {
	tokenIn, tokenOut, ok := h.parsePair(w, r.URL.Query().Get("tokenIn"), r.URL.Query().Get("tokenOut"))
	if !ok {
		return
	}

	pools := h.router.DiscoverPools(r.Context(), tokenIn, tokenOut)

	writeJSON(w, http.StatusOK, PoolsResponse{
		TokenIn:  toTokenResponse(h.tokens.Resolve(tokenIn)),
		TokenOut: toTokenResponse(h.tokens.Resolve(tokenOut)),
		Pools:    toPoolResponses(pools),
	})
}

// GetQuote handles GET /api/v1/quote
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("amountIn") == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "tokenIn, tokenOut, and amountIn are required")
		return
	}

	tokenIn, tokenOut, ok := h.parsePair(w, query.Get("tokenIn"), query.Get("tokenOut"))
	if !ok {
		return
	}
	amountIn, ok := parseAmount(w, query.Get("amountIn"))
	if !ok {
		return
	}

	result := h.router.FindRoute(r.Context(), tokenIn, tokenOut, amountIn)

	writeJSON(w, http.StatusOK, NewQuotesResponse(h.tokens, tokenIn, tokenOut, amountIn, result))
}

// BuildSwap handles POST /api/v1/swap.
// Only on-chain venues can be encoded. When the pipeline falls back to an
// aggregator quote (a degraded route) the response is 422 unsupported_dex,
// even if the same pair has on-chain liquidity at a worse price.
func (h *QuoteHandler) BuildSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	tokenIn, tokenOut, ok := h.parsePair(w, req.TokenIn, req.TokenOut)
	if !ok {
		return
	}
	amountIn, ok := parseAmount(w, req.AmountIn)
	if !ok {
		return
	}
	if !common.IsHexAddress(req.Wallet) {
		writeError(w, http.StatusBadRequest, "invalid_wallet", "wallet is not a valid address")
		return
	}
	wallet := common.HexToAddress(req.Wallet)

	slippageBps := uint32(DefaultSlippageBps)
	if req.SlippageBps != nil {
		if *req.SlippageBps < 0 || *req.SlippageBps > 10000 {
			writeError(w, http.StatusBadRequest, "invalid_slippage", "slippage must be 0-10000 basis points")
			return
		}
		slippageBps = uint32(*req.SlippageBps)
	}

	result := h.router.FindRoute(r.Context(), tokenIn, tokenOut, amountIn)
	if result.Route == nil {
		writeError(w, http.StatusNotFound, "no_route", "no quote is available for this pair right now")
		return
	}

	tx, err := h.router.BuildSwap(result.Route, wallet, amountIn, slippageBps)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedDEX) {
			writeError(w, http.StatusUnprocessableEntity, "unsupported_dex", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, NewSwapResponse(result.Route, tx))
}

// TokensResponse lists the tokens the registry knows by symbol
type TokensResponse struct {
	Tokens []TokenResponse `json:"tokens"`
}

// ListTokens handles GET /api/v1/tokens
func (h *QuoteHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	all := h.tokens.GetAll()
	out := make([]TokenResponse, 0, len(all))
	for _, t := range all {
		out = append(out, toTokenResponse(t))
	}
	writeJSON(w, http.StatusOK, TokensResponse{Tokens: out})
}

// NewQuotesResponse renders one pipeline run
func NewQuotesResponse(tokens *entities.TokenRegistry, tokenIn, tokenOut common.Address, amountIn *big.Int, result *services.RouteResult) QuotesResponse {
	return QuotesResponse{
		TokenIn:  toTokenResponse(tokens.Resolve(tokenIn)),
		TokenOut: toTokenResponse(tokens.Resolve(tokenOut)),
		AmountIn: amountIn.String(),
		Quotes:   toQuoteResponses(result.Quotes),
		Route:    toRouteResponse(result.Route),
	}
}

// NewSwapResponse renders a selected route with its transaction
func NewSwapResponse(route *entities.SelectedRoute, tx *entities.SwapTransaction) SwapResponse {
	return SwapResponse{
		Route:       *toRouteResponse(route),
		Transaction: toTransactionResponse(tx),
	}
}

// parsePair accepts hex addresses or registered symbols
func (h *QuoteHandler) parsePair(w http.ResponseWriter, tokenInRef, tokenOutRef string) (common.Address, common.Address, bool) {
	if tokenInRef == "" || tokenOutRef == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "tokenIn and tokenOut are required")
		return common.Address{}, common.Address{}, false
	}
	tokenIn, ok := h.tokens.Lookup(tokenInRef)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_token_in", "tokenIn is not a valid address or known symbol")
		return common.Address{}, common.Address{}, false
	}
	tokenOut, ok := h.tokens.Lookup(tokenOutRef)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_token_out", "tokenOut is not a valid address or known symbol")
		return common.Address{}, common.Address{}, false
	}

	if tokenIn == tokenOut {
		writeError(w, http.StatusBadRequest, "same_token", "tokenIn and tokenOut must differ")
		return common.Address{}, common.Address{}, false
	}
	return tokenIn, tokenOut, true
}

func parseAmount(w http.ResponseWriter, raw string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amountIn must be a positive integer")
		return nil, false
	}
	return amount, true
}
