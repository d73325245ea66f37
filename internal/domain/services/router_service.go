package services

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// RouterService composes discovery, quoting, selection and encoding
type RouterService struct {
	discovery *PoolDiscoveryService
	collector *QuoteCollector
	encoder   *SwapEncoder
	policy    SelectionPolicy
	logger    *zap.Logger
}

// NewRouterService creates a new router service
func NewRouterService(discovery *PoolDiscoveryService, collector *QuoteCollector, encoder *SwapEncoder, policy SelectionPolicy, logger *zap.Logger) *RouterService {
	return &RouterService{
		discovery: discovery,
		collector: collector,
		encoder:   encoder,
		policy:    policy,
		logger:    logger,
	}
}

// RouteResult is everything one pipeline run observed. Route is nil when no
// quote could be obtained.
type RouteResult struct {
	Pools  []entities.PoolCandidate `json:"pools"`
	Quotes []entities.Quote         `json:"quotes"`
	Route  *entities.SelectedRoute  `json:"route"`
}

// DiscoverPools lists pools for the pair across every configured protocol
func (s *RouterService) DiscoverPools(ctx context.Context, tokenIn, tokenOut common.Address) []entities.PoolCandidate {
	return s.discovery.DiscoverPools(ctx, tokenIn, tokenOut)
}

// GetQuotes gathers quotes from every source
func (s *RouterService) GetQuotes(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) []entities.Quote {
	return s.collector.CollectQuotes(ctx, tokenIn, tokenOut, amountIn)
}

// SelectBestRoute applies the service's selection policy
func (s *RouterService) SelectBestRoute(quotes []entities.Quote, pools []entities.PoolCandidate) *entities.SelectedRoute {
	return SelectBestRoute(quotes, pools, s.policy)
}

// BuildSwap encodes the route into a transaction for wallet
func (s *RouterService) BuildSwap(route *entities.SelectedRoute, wallet common.Address, amountIn *big.Int, slippageBps uint32) (*entities.SwapTransaction, error) {
	return s.encoder.EncodeSwap(route, wallet, amountIn, slippageBps)
}

// FindRoute runs pool discovery and quote collection concurrently and selects
// the best route from their independent snapshots.
func (s *RouterService) FindRoute(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) *RouteResult {
	var (
		pools  []entities.PoolCandidate
		quotes []entities.Quote
		wg     sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		pools = s.DiscoverPools(ctx, tokenIn, tokenOut)
	}()
	go func() {
		defer wg.Done()
		quotes = s.GetQuotes(ctx, tokenIn, tokenOut, amountIn)
	}()
	wg.Wait()

	route := s.SelectBestRoute(quotes, pools)
	if route == nil {
		s.logger.Info("no route found",
			zap.String("tokenIn", entities.LowerHex(tokenIn)),
			zap.String("tokenOut", entities.LowerHex(tokenOut)),
			zap.String("amountIn", amountIn.String()),
		)
	} else {
		s.logger.Info("route selected",
			zap.String("dex", string(route.DEX)),
			zap.Uint32("fee", route.Fee),
			zap.String("amountOut", route.AmountOut.String()),
			zap.Bool("degraded", route.Degraded),
			zap.Int("quotes", len(quotes)),
			zap.Int("pools", len(pools)),
		)
	}

	return &RouteResult{
		Pools:  pools,
		Quotes: MatchPools(quotes, pools),
		Route:  route,
	}
}
