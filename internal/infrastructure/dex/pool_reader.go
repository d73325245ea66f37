package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-router/internal/domain/entities"
)

// PoolReader resolves pool addresses and liquidity for any configured protocol,
// dispatching on the protocol version.
type PoolReader struct {
	v2 *UniswapV2Client
	v3 *UniswapV3Client
}

// NewPoolReader creates a PoolReader sharing one contract caller
func NewPoolReader(caller ContractCaller) *PoolReader {
	return &PoolReader{
		v2: NewUniswapV2Client(caller),
		v3: NewUniswapV3Client(caller),
	}
}

// PoolAddress returns the pool for (tokenA, tokenB, fee). The fee is ignored for
// non-tiered protocols. A zero address means no pool exists.
func (r *PoolReader) PoolAddress(ctx context.Context, protocol entities.Protocol, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	switch protocol.Version {
	case entities.VersionV3:
		return r.v3.GetPool(ctx, protocol.Factory, tokenA, tokenB, fee)
	case entities.VersionV2:
		return r.v2.GetPairAddress(ctx, protocol, tokenA, tokenB)
	default:
		return common.Address{}, fmt.Errorf("unknown protocol version %q", protocol.Version)
	}
}

// PoolLiquidity returns L for v3 pools and sqrt(reserve0*reserve1) for v2 pairs
func (r *PoolReader) PoolLiquidity(ctx context.Context, protocol entities.Protocol, pool common.Address) (*big.Int, error) {
	switch protocol.Version {
	case entities.VersionV3:
		return r.v3.GetLiquidity(ctx, pool)
	case entities.VersionV2:
		reserve0, reserve1, err := r.v2.GetReserves(ctx, pool)
		if err != nil {
			return nil, err
		}
		pair := entities.Pair{Reserve0: reserve0, Reserve1: reserve1}
		return pair.Liquidity(), nil
	default:
		return nil, fmt.Errorf("unknown protocol version %q", protocol.Version)
	}
}
