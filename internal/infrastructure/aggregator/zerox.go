package aggregator

import (
	"context"
	"fmt"
	"math/big"
	"net/url"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// DefaultZeroXURL is the 0x v1 host for Base
const DefaultZeroXURL = "https://base.api.0x.org"

// ZeroXClient quotes swaps through the 0x v1 swap API
type ZeroXClient struct {
	rest   *restClient
	apiKey string
}

// NewZeroXClient creates a 0x quote source
func NewZeroXClient(baseURL, apiKey string, opts ...ClientOption) *ZeroXClient {
	if baseURL == "" {
		baseURL = DefaultZeroXURL
	}
	return &ZeroXClient{
		rest:   newRestClient(baseURL, opts...),
		apiKey: apiKey,
	}
}

type zeroXSource struct {
	Name       string     `json:"name"`
	Proportion flexNumber `json:"proportion"`
}

type zeroXQuoteResponse struct {
	BuyAmount            string        `json:"buyAmount"`
	Gas                  flexNumber    `json:"gas"`
	EstimatedGas         flexNumber    `json:"estimatedGas"`
	EstimatedPriceImpact flexNumber    `json:"estimatedPriceImpact"`
	PriceImpact          flexNumber    `json:"priceImpact"`
	Sources              []zeroXSource `json:"sources"`
}

func (c *ZeroXClient) Name() string {
	return string(entities.DEX0x)
}

// Quotes requests a single quote. A zero output yields no quote.
func (c *ZeroXClient) Quotes(ctx context.Context, req entities.QuoteRequest) ([]entities.Quote, error) {
	q := url.Values{}
	q.Set("buyToken", entities.LowerHex(req.TokenOut))
	q.Set("sellToken", entities.LowerHex(req.TokenIn))
	q.Set("sellAmount", req.AmountIn.String())

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["0x-api-key"] = c.apiKey
	}

	var resp zeroXQuoteResponse
	if err := c.rest.getJSON(ctx, "/swap/v1/quote?"+q.Encode(), headers, &resp); err != nil {
		return nil, fmt.Errorf("0x quote: %w", err)
	}

	amountOut, err := parseAmount("buyAmount", resp.BuyAmount)
	if err != nil {
		return nil, fmt.Errorf("0x quote: %w", err)
	}
	if amountOut.Sign() == 0 {
		return nil, nil
	}

	gas := resp.Gas.Uint64()
	if gas == 0 {
		gas = resp.EstimatedGas.Uint64()
	}
	impact := resp.EstimatedPriceImpact
	if impact == "" {
		impact = resp.PriceImpact
	}

	return []entities.Quote{{
		DEX:         entities.DEX0x,
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		AmountIn:    new(big.Int).Set(req.AmountIn),
		AmountOut:   amountOut,
		GasEstimate: gas,
		PriceImpact: impact.Float64(),
		Route:       zeroXRoute(resp.Sources),
		Liquidity:   big.NewInt(0),
		Confidence:  entities.ConfidenceHigh,
	}}, nil
}

// zeroXRoute keeps the sources that actually carry part of the fill
func zeroXRoute(sources []zeroXSource) []string {
	var route []string
	for _, s := range sources {
		if s.Name != "" && s.Proportion.Float64() > 0 {
			route = append(route, s.Name)
		}
	}
	if len(route) == 0 {
		return []string{"0x"}
	}
	return route
}
