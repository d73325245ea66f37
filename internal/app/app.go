package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/swap-router/internal/config"
	"github.com/bimakw/swap-router/internal/domain/entities"
	"github.com/bimakw/swap-router/internal/domain/services"
	"github.com/bimakw/swap-router/internal/infrastructure/aggregator"
	"github.com/bimakw/swap-router/internal/infrastructure/cache"
	"github.com/bimakw/swap-router/internal/infrastructure/dex"
	"github.com/bimakw/swap-router/internal/infrastructure/ethereum"
)

// App holds the wired services and the resources that need closing
type App struct {
	Router    *services.RouterService
	Tokens    *entities.TokenRegistry
	Protocols *entities.ProtocolSet

	closers []func()
}

// New connects to the RPC endpoint and cache and wires the pipeline
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	ethClient, err := ethereum.NewClient(ctx, cfg.RPCURL,
		ethereum.WithMaxRetries(cfg.MaxRetries),
		ethereum.WithBackoff(cfg.InitialBackoff, cfg.MaxBackoff),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to rpc: %w", err)
	}
	logger.Info("connected to rpc", zap.String("chainId", ethClient.ChainID().String()))

	if ethClient.ChainID().Int64() != cfg.ChainID {
		ethClient.Close()
		return nil, fmt.Errorf("rpc chain id %s does not match configured %d", ethClient.ChainID(), cfg.ChainID)
	}

	a := &App{closers: []func(){ethClient.Close}}

	var cacheClient cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
			cacheClient = cache.NewInMemoryCache()
		} else {
			cacheClient = redisCache
			a.closers = append(a.closers, func() { _ = redisCache.Close() })
			logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		cacheClient = cache.NewInMemoryCache()
		logger.Info("using in-memory cache")
	}

	tokens := entities.DefaultRegistry()
	if cfg.TokensFile != "" {
		if err := tokens.LoadFromFile(cfg.TokensFile); err != nil {
			a.Close()
			return nil, err
		}
	}
	logger.Info("tokens loaded", zap.Int("count", tokens.Count()))

	router, protocols, err := Wire(cfg, ethClient, cacheClient, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Router = router
	a.Tokens = tokens
	a.Protocols = protocols
	return a, nil
}

// Wire builds the router service over an existing contract caller and cache
func Wire(cfg *config.Config, caller dex.ContractCaller, c cache.Cache, logger *zap.Logger) (*services.RouterService, *entities.ProtocolSet, error) {
	protocols, err := entities.ProtocolsForChain(cfg.ChainID)
	if err != nil {
		return nil, nil, err
	}

	sources := make([]services.QuoteSource, 0, protocols.Len()+2)
	for _, p := range protocols.All() {
		switch p.Version {
		case entities.VersionV3:
			sources = append(sources, dex.NewV3QuoteSource(caller, p, cfg.CallTimeout, logger))
		case entities.VersionV2:
			sources = append(sources, dex.NewV2QuoteSource(caller, p, cfg.CallTimeout))
		}
	}

	aggOpts := []aggregator.ClientOption{
		aggregator.WithTimeout(cfg.CallTimeout),
		aggregator.WithMaxRetries(cfg.MaxRetries),
		aggregator.WithBackoff(cfg.InitialBackoff, cfg.MaxBackoff),
	}
	if cfg.OneInch.Enabled {
		sources = append(sources, aggregator.NewOneInchClient(cfg.OneInch.BaseURL, cfg.OneInch.APIKey, cfg.ChainID, aggOpts...))
	}
	if cfg.ZeroX.Enabled {
		sources = append(sources, aggregator.NewZeroXClient(cfg.ZeroX.BaseURL, cfg.ZeroX.APIKey, aggOpts...))
	}

	discovery := services.NewPoolDiscoveryService(protocols, dex.NewPoolReader(caller), c, cfg.PoolCacheTTL, cfg.CallTimeout, logger.Named("discovery"))
	collector := services.NewQuoteCollector(sources, cfg.CallTimeout, logger.Named("quotes"))
	encoder := services.NewSwapEncoder(protocols)
	policy := services.SelectionPolicy{
		MinLiquidity:   cfg.MinLiquidity,
		MaxPriceImpact: cfg.MaxPriceImpact,
	}

	return services.NewRouterService(discovery, collector, encoder, policy, logger.Named("router")), protocols, nil
}

// Close releases the RPC connection and cache
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
