package aggregator

import (
	"context"
	"fmt"
	"math/big"
	"net/url"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// DefaultOneInchURL is the 1inch developer portal host
const DefaultOneInchURL = "https://api.1inch.dev"

// OneInchClient quotes swaps through the 1inch v5.2 quote API
type OneInchClient struct {
	rest    *restClient
	apiKey  string
	chainID int64
}

// NewOneInchClient creates a 1inch quote source for one chain
func NewOneInchClient(baseURL, apiKey string, chainID int64, opts ...ClientOption) *OneInchClient {
	if baseURL == "" {
		baseURL = DefaultOneInchURL
	}
	return &OneInchClient{
		rest:    newRestClient(baseURL, opts...),
		apiKey:  apiKey,
		chainID: chainID,
	}
}

type oneInchProtocol struct {
	Name             string     `json:"name"`
	Part             flexNumber `json:"part"`
	FromTokenAddress string     `json:"fromTokenAddress"`
	ToTokenAddress   string     `json:"toTokenAddress"`
}

type oneInchQuoteResponse struct {
	ToAmount    string                `json:"toAmount"`
	Gas         flexNumber            `json:"gas"`
	PriceImpact flexNumber            `json:"priceImpact"`
	Protocols   [][][]oneInchProtocol `json:"protocols"`
}

func (c *OneInchClient) Name() string {
	return string(entities.DEX1inch)
}

// Quotes requests a single quote. A zero output yields no quote.
func (c *OneInchClient) Quotes(ctx context.Context, req entities.QuoteRequest) ([]entities.Quote, error) {
	q := url.Values{}
	q.Set("src", entities.LowerHex(req.TokenIn))
	q.Set("dst", entities.LowerHex(req.TokenOut))
	q.Set("amount", req.AmountIn.String())
	q.Set("includeGas", "true")
	q.Set("includeProtocols", "true")

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var resp oneInchQuoteResponse
	path := fmt.Sprintf("/swap/v5.2/%d/quote?%s", c.chainID, q.Encode())
	if err := c.rest.getJSON(ctx, path, headers, &resp); err != nil {
		return nil, fmt.Errorf("1inch quote: %w", err)
	}

	amountOut, err := parseAmount("toAmount", resp.ToAmount)
	if err != nil {
		return nil, fmt.Errorf("1inch quote: %w", err)
	}
	if amountOut.Sign() == 0 {
		return nil, nil
	}

	return []entities.Quote{{
		DEX:         entities.DEX1inch,
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		AmountIn:    new(big.Int).Set(req.AmountIn),
		AmountOut:   amountOut,
		GasEstimate: resp.Gas.Uint64(),
		PriceImpact: resp.PriceImpact.Float64(),
		Route:       oneInchRoute(resp.Protocols),
		Liquidity:   big.NewInt(0),
		Confidence:  entities.ConfidenceHigh,
	}}, nil
}

// oneInchRoute flattens the nested protocol split into distinct venue names
func oneInchRoute(protocols [][][]oneInchProtocol) []string {
	seen := make(map[string]bool)
	var route []string
	for _, path := range protocols {
		for _, hop := range path {
			for _, p := range hop {
				if p.Name == "" || seen[p.Name] {
					continue
				}
				seen[p.Name] = true
				route = append(route, p.Name)
			}
		}
	}
	if len(route) == 0 {
		return []string{"1inch"}
	}
	return route
}
