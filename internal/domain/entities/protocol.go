package entities

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// EncodingScheme selects the router ABI used to build swap calldata
type EncodingScheme string

const (
	// EncodingV3Router02 wraps exactInputSingle in multicall(deadline, data[])
	EncodingV3Router02 EncodingScheme = "v3_router02"
	// EncodingV2Router is Uniswap V2 swapExactTokensForTokens with an address path
	EncodingV2Router EncodingScheme = "v2_router"
	// EncodingSolidlyRouter is swapExactTokensForTokens with (from,to,stable,factory) routes
	EncodingSolidlyRouter EncodingScheme = "solidly_router"
)

// Protocol describes one configured DEX deployment
type Protocol struct {
	ID       DEXType
	Name     string
	Version  ProtocolVersion
	Factory  common.Address
	Router   common.Address
	Quoter   common.Address
	FeeTiers []uint32
	Encoding EncodingScheme
	FeeBps   uint64 // swap fee for v2 reserve math
	Stable   bool   // solidly pool flavour
}

// Tiered reports whether pools are keyed by fee tier
func (p Protocol) Tiered() bool {
	return p.Version == VersionV3 && len(p.FeeTiers) > 0
}

// ProtocolSet is an immutable collection of protocols. Accessors return copies.
type ProtocolSet struct {
	protocols []Protocol
	byID      map[DEXType]int
}

// NewProtocolSet validates and freezes a list of protocols
func NewProtocolSet(protocols ...Protocol) (*ProtocolSet, error) {
	s := &ProtocolSet{
		protocols: make([]Protocol, 0, len(protocols)),
		byID:      make(map[DEXType]int, len(protocols)),
	}
	for _, p := range protocols {
		if p.ID == "" {
			return nil, fmt.Errorf("protocol has empty id")
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate protocol %q", p.ID)
		}
		if p.Version == VersionV3 && len(p.FeeTiers) == 0 {
			return nil, fmt.Errorf("protocol %q: v3 protocol needs fee tiers", p.ID)
		}
		p.FeeTiers = append([]uint32(nil), p.FeeTiers...)
		s.byID[p.ID] = len(s.protocols)
		s.protocols = append(s.protocols, p)
	}
	return s, nil
}

// Get returns the protocol with the given id
func (s *ProtocolSet) Get(id DEXType) (Protocol, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Protocol{}, false
	}
	return s.protocols[idx].copy(), true
}

// All returns every configured protocol in declaration order
func (s *ProtocolSet) All() []Protocol {
	out := make([]Protocol, len(s.protocols))
	for i, p := range s.protocols {
		out[i] = p.copy()
	}
	return out
}

// Len returns the number of protocols
func (s *ProtocolSet) Len() int {
	return len(s.protocols)
}

func (p Protocol) copy() Protocol {
	p.FeeTiers = append([]uint32(nil), p.FeeTiers...)
	return p
}

// Base mainnet deployments
var (
	BaseUniswapV3Factory  = common.HexToAddress("0x33128a8fC17869897dcE68Ed026d694621f6FDfD")
	BaseUniswapV3QuoterV2 = common.HexToAddress("0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a")
	BaseSwapRouter02      = common.HexToAddress("0x2626664c2603336E57B271c5C0b26F421741e481")
	BaseAerodromeFactory  = common.HexToAddress("0x420DD381b31aEf6683db6B902084cB0FFECe40Da")
	BaseAerodromeRouter   = common.HexToAddress("0xcF77a3Ba9A5CA399B7c97c74d54e5b1Beb874E43")
	BaseBaseSwapFactory   = common.HexToAddress("0xFDa619b6d20975be80A10332cD39b9a4b0FAa8BB")
	BaseBaseSwapRouter    = common.HexToAddress("0x327Df1E6de05895d2ab08513aaDD9313Fe505d86")
)

// BaseChainID is the chain id of Base mainnet
const BaseChainID = 8453

// V3FeeTiers are Uniswap V3 fee tiers in hundredths of a bip (1 = 0.0001%)
var V3FeeTiers = []uint32{
	100,   // 0.01%
	500,   // 0.05%
	3000,  // 0.30%
	10000, // 1.00%
}

// BaseMainnetProtocols returns the default protocol table for Base
func BaseMainnetProtocols() *ProtocolSet {
	set, err := NewProtocolSet(
		Protocol{
			ID:       DEXUniswapV3,
			Name:     "Uniswap V3",
			Version:  VersionV3,
			Factory:  BaseUniswapV3Factory,
			Router:   BaseSwapRouter02,
			Quoter:   BaseUniswapV3QuoterV2,
			FeeTiers: V3FeeTiers,
			Encoding: EncodingV3Router02,
		},
		Protocol{
			ID:       DEXAerodrome,
			Name:     "Aerodrome",
			Version:  VersionV2,
			Factory:  BaseAerodromeFactory,
			Router:   BaseAerodromeRouter,
			Encoding: EncodingSolidlyRouter,
			FeeBps:   30,
		},
		Protocol{
			ID:       DEXBaseSwap,
			Name:     "BaseSwap",
			Version:  VersionV2,
			Factory:  BaseBaseSwapFactory,
			Router:   BaseBaseSwapRouter,
			Encoding: EncodingV2Router,
			FeeBps:   25,
		},
	)
	if err != nil {
		panic(err)
	}
	return set
}

// ProtocolsForChain returns the built-in protocol table for a chain
func ProtocolsForChain(chainID int64) (*ProtocolSet, error) {
	switch chainID {
	case BaseChainID:
		return BaseMainnetProtocols(), nil
	default:
		return nil, fmt.Errorf("no protocol table for chain %d", chainID)
	}
}
