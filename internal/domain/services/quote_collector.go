package services

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// QuoteSource is one independent origin of swap quotes
type QuoteSource interface {
	Name() string
	Quotes(ctx context.Context, req entities.QuoteRequest) ([]entities.Quote, error)
}

// QuoteCollector fans a quote request out to every source and keeps the successes
type QuoteCollector struct {
	sources     []QuoteSource
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewQuoteCollector creates a collector over the given sources
func NewQuoteCollector(sources []QuoteSource, callTimeout time.Duration, logger *zap.Logger) *QuoteCollector {
	return &QuoteCollector{
		sources:     sources,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// CollectQuotes returns every quote any source produced, best amountOut first.
// Source failures are logged; if every source fails the result is empty.
func (c *QuoteCollector) CollectQuotes(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) []entities.Quote {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return []entities.Quote{}
	}

	req := entities.QuoteRequest{TokenIn: tokenIn, TokenOut: tokenOut, AmountIn: amountIn}
	results := make([][]entities.Quote, len(c.sources))
	var wg sync.WaitGroup

	for i, source := range c.sources {
		wg.Add(1)
		go func(idx int, src QuoteSource) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("quote source panicked", zap.String("source", src.Name()), zap.Any("panic", r))
				}
			}()

			callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
			defer cancel()

			quotes, err := src.Quotes(callCtx, req)
			if err != nil {
				c.logger.Warn("quote source failed", zap.String("source", src.Name()), zap.Error(err))
				return
			}
			results[idx] = quotes
		}(i, source)
	}

	wg.Wait()

	quotes := make([]entities.Quote, 0, len(c.sources))
	for _, r := range results {
		for _, q := range r {
			if q.AmountOut == nil || q.AmountOut.Sign() <= 0 {
				continue
			}
			if q.Liquidity == nil {
				q.Liquidity = big.NewInt(0)
			}
			quotes = append(quotes, q)
		}
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].AmountOut.Cmp(quotes[j].AmountOut) > 0
	})

	c.logger.Debug("quote collection finished",
		zap.Int("sources", len(c.sources)),
		zap.Int("quotes", len(quotes)),
	)
	return quotes
}
