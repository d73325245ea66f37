package entities

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals uint8          `json:"decimals"`
}

// WETH is Wrapped Ether on Base
var WETH = Token{
	Address:  common.HexToAddress("0x4200000000000000000000000000000000000006"),
	Symbol:   "WETH",
	Name:     "Wrapped Ether",
	Decimals: 18,
}

// USDC is native USD Coin on Base
var USDC = Token{
	Address:  common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
	Symbol:   "USDC",
	Name:     "USD Coin",
	Decimals: 6,
}

// USDbC is bridged USD Coin on Base
var USDbC = Token{
	Address:  common.HexToAddress("0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA"),
	Symbol:   "USDbC",
	Name:     "USD Base Coin",
	Decimals: 6,
}

// DAI is Dai Stablecoin on Base
var DAI = Token{
	Address:  common.HexToAddress("0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb"),
	Symbol:   "DAI",
	Name:     "Dai Stablecoin",
	Decimals: 18,
}

// AERO is the Aerodrome governance token
var AERO = Token{
	Address:  common.HexToAddress("0x940181a94A35A4569E4529A3CDfB74e38FD98631"),
	Symbol:   "AERO",
	Name:     "Aerodrome",
	Decimals: 18,
}

// LowerHex renders an address as lowercase hex, the wire form used for tokens
func LowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
