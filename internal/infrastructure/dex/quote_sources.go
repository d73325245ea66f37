package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// Gas for one constant-product hop: 21000 base + 100000 per swap
const v2SwapGas = 121000

// V3QuoteSource quotes every fee tier of a tiered protocol through its QuoterV2
type V3QuoteSource struct {
	client      *UniswapV3Client
	protocol    entities.Protocol
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewV3QuoteSource creates a quoter-backed source for one v3 protocol
func NewV3QuoteSource(caller ContractCaller, protocol entities.Protocol, callTimeout time.Duration, logger *zap.Logger) *V3QuoteSource {
	return &V3QuoteSource{
		client:      NewUniswapV3Client(caller),
		protocol:    protocol,
		callTimeout: callTimeout,
		logger:      logger.With(zap.String("source", string(protocol.ID))),
	}
}

func (s *V3QuoteSource) Name() string {
	return string(s.protocol.ID)
}

// Quotes returns one quote per fee tier that produced a positive output. A tier
// failure is logged and skipped; an error is returned only if every tier failed.
func (s *V3QuoteSource) Quotes(ctx context.Context, req entities.QuoteRequest) ([]entities.Quote, error) {
	tiers := s.protocol.FeeTiers
	results := make([]*entities.Quote, len(tiers))
	errs := make([]error, len(tiers))
	var wg sync.WaitGroup

	for i, fee := range tiers {
		wg.Add(1)
		go func(idx int, fee uint32) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()

			q, err := s.client.QuoteExactInputSingle(callCtx, s.protocol.Quoter, req.TokenIn, req.TokenOut, req.AmountIn, fee)
			if err != nil {
				s.logger.Debug("fee tier quote failed", zap.Uint32("fee", fee), zap.Error(err))
				errs[idx] = fmt.Errorf("fee %d: %w", fee, err)
				return
			}
			if q.AmountOut.Sign() <= 0 {
				return
			}

			results[idx] = &entities.Quote{
				DEX:         s.protocol.ID,
				TokenIn:     req.TokenIn,
				TokenOut:    req.TokenOut,
				AmountIn:    new(big.Int).Set(req.AmountIn),
				AmountOut:   q.AmountOut,
				GasEstimate: q.GasEstimate.Uint64(),
				Route:       []string{s.protocol.Name},
				Fee:         fee,
				Liquidity:   big.NewInt(0),
				Confidence:  entities.ConfidenceHigh,
				Version:     entities.VersionV3,
			}
		}(i, fee)
	}

	wg.Wait()

	quotes := make([]entities.Quote, 0, len(tiers))
	failed := 0
	for i := range tiers {
		if results[i] != nil {
			quotes = append(quotes, *results[i])
		}
		if errs[i] != nil {
			failed++
		}
	}

	if len(tiers) > 0 && failed == len(tiers) {
		return nil, errors.Join(errs...)
	}
	return quotes, nil
}

// V2QuoteSource prices a constant-product pair locally from its reserves
type V2QuoteSource struct {
	client      *UniswapV2Client
	protocol    entities.Protocol
	callTimeout time.Duration
}

// NewV2QuoteSource creates a reserves-backed source for one v2 protocol
func NewV2QuoteSource(caller ContractCaller, protocol entities.Protocol, callTimeout time.Duration) *V2QuoteSource {
	return &V2QuoteSource{
		client:      NewUniswapV2Client(caller),
		protocol:    protocol,
		callTimeout: callTimeout,
	}
}

func (s *V2QuoteSource) Name() string {
	return string(s.protocol.ID)
}

// Quotes returns at most one quote. Reserves may lag the chain head, so the
// quote is tagged with medium confidence.
func (s *V2QuoteSource) Quotes(ctx context.Context, req entities.QuoteRequest) ([]entities.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	pair, err := s.client.GetPairByTokens(ctx, s.protocol, req.TokenIn, req.TokenOut)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, nil
	}

	route := entities.Route{
		Hops:     []entities.Hop{{Pair: *pair, TokenIn: req.TokenIn, TokenOut: req.TokenOut}},
		AmountIn: req.AmountIn,
	}
	amountOut := route.CalculateAmountOut()
	if amountOut.Sign() <= 0 {
		return nil, nil
	}

	return []entities.Quote{{
		DEX:         s.protocol.ID,
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		AmountIn:    new(big.Int).Set(req.AmountIn),
		AmountOut:   amountOut,
		GasEstimate: v2SwapGas,
		PriceImpact: route.PriceImpactPercent(),
		Route:       []string{s.protocol.Name},
		Liquidity:   big.NewInt(0),
		Confidence:  entities.ConfidenceMedium,
		Version:     entities.VersionV2,
	}}, nil
}
