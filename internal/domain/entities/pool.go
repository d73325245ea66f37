package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ProtocolVersion decides how a venue is discovered, quoted and encoded
type ProtocolVersion string

const (
	VersionV2 ProtocolVersion = "v2"
	VersionV3 ProtocolVersion = "v3"
)

// PoolCandidate is a discovered pool with non-zero liquidity
type PoolCandidate struct {
	DEX       DEXType         `json:"dexId"`
	Address   common.Address  `json:"poolAddress"`
	Token0    common.Address  `json:"token0"`
	Token1    common.Address  `json:"token1"`
	Fee       uint32          `json:"fee"` // native fee unit of the protocol; 0 when not tiered
	Liquidity *big.Int        `json:"liquidity"`
	Version   ProtocolVersion `json:"version"`
}

// SortTokens orders two addresses the way pool factories do
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address) {
	if tokenA.Cmp(tokenB) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}
