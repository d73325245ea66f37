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
	"github.com/bimakw/swap-router/internal/infrastructure/cache"
)

// PoolReader looks up pools on-chain
type PoolReader interface {
	PoolAddress(ctx context.Context, protocol entities.Protocol, tokenA, tokenB common.Address, fee uint32) (common.Address, error)
	PoolLiquidity(ctx context.Context, protocol entities.Protocol, pool common.Address) (*big.Int, error)
}

// PoolDiscoveryService enumerates pools for a token pair across configured protocols
type PoolDiscoveryService struct {
	protocols   *entities.ProtocolSet
	reader      PoolReader
	cache       cache.Cache
	cacheTTL    time.Duration
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewPoolDiscoveryService creates a discovery service. cache may be nil.
func NewPoolDiscoveryService(protocols *entities.ProtocolSet, reader PoolReader, c cache.Cache, cacheTTL, callTimeout time.Duration, logger *zap.Logger) *PoolDiscoveryService {
	return &PoolDiscoveryService{
		protocols:   protocols,
		reader:      reader,
		cache:       c,
		cacheTTL:    cacheTTL,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

type poolLookup struct {
	protocol entities.Protocol
	fee      uint32
}

// DiscoverPools returns every pool with positive liquidity, deepest first.
// Lookup failures are logged and skipped; the result is never an error.
func (s *PoolDiscoveryService) DiscoverPools(ctx context.Context, tokenIn, tokenOut common.Address) []entities.PoolCandidate {
	var lookups []poolLookup
	for _, p := range s.protocols.All() {
		if p.Tiered() {
			for _, fee := range p.FeeTiers {
				lookups = append(lookups, poolLookup{protocol: p, fee: fee})
			}
			continue
		}
		lookups = append(lookups, poolLookup{protocol: p})
	}

	results := make([]*entities.PoolCandidate, len(lookups))
	var wg sync.WaitGroup

	for i, l := range lookups {
		wg.Add(1)
		go func(idx int, l poolLookup) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()

			candidate, err := s.lookup(callCtx, l, tokenIn, tokenOut)
			if err != nil {
				s.logger.Warn("pool lookup failed",
					zap.String("dex", string(l.protocol.ID)),
					zap.Uint32("fee", l.fee),
					zap.Error(err),
				)
				return
			}
			results[idx] = candidate
		}(i, l)
	}

	wg.Wait()

	pools := make([]entities.PoolCandidate, 0, len(lookups))
	for _, r := range results {
		if r != nil {
			pools = append(pools, *r)
		}
	}

	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].Liquidity.Cmp(pools[j].Liquidity) > 0
	})

	s.logger.Debug("pool discovery finished",
		zap.String("tokenIn", entities.LowerHex(tokenIn)),
		zap.String("tokenOut", entities.LowerHex(tokenOut)),
		zap.Int("lookups", len(lookups)),
		zap.Int("pools", len(pools)),
	)
	return pools
}

// lookup returns (nil, nil) when the pool does not exist or is empty
func (s *PoolDiscoveryService) lookup(ctx context.Context, l poolLookup, tokenIn, tokenOut common.Address) (*entities.PoolCandidate, error) {
	key := cache.PoolCacheKey(l.protocol.ID, tokenIn, tokenOut, l.fee)
	addr, cached, err := s.poolAddress(ctx, l, key, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if addr == (common.Address{}) {
		return nil, nil
	}

	liquidity, err := s.reader.PoolLiquidity(ctx, l.protocol, addr)
	if err != nil {
		// A stale entry would fail every later lookup until its TTL ran out
		if cached {
			if derr := s.cache.Delete(ctx, key); derr != nil {
				s.logger.Debug("pool cache evict failed", zap.String("key", key), zap.Error(derr))
			}
		}
		return nil, err
	}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return nil, nil
	}

	token0, token1 := entities.SortTokens(tokenIn, tokenOut)
	return &entities.PoolCandidate{
		DEX:       l.protocol.ID,
		Address:   addr,
		Token0:    token0,
		Token1:    token1,
		Fee:       l.fee,
		Liquidity: liquidity,
		Version:   l.protocol.Version,
	}, nil
}

// poolAddress reports whether the address was served from cache
func (s *PoolDiscoveryService) poolAddress(ctx context.Context, l poolLookup, key string, tokenIn, tokenOut common.Address) (common.Address, bool, error) {
	if s.cache != nil {
		addr, ok, err := s.cache.GetPoolAddress(ctx, key)
		if err != nil {
			s.logger.Debug("pool cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return addr, true, nil
		}
	}

	addr, err := s.reader.PoolAddress(ctx, l.protocol, tokenIn, tokenOut, l.fee)
	if err != nil {
		return common.Address{}, false, err
	}

	// Missing pools may be deployed later, so only hits are cached
	if s.cache != nil && addr != (common.Address{}) {
		if err := s.cache.SetPoolAddress(ctx, key, addr, s.cacheTTL); err != nil {
			s.logger.Debug("pool cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return addr, false, nil
}
