package entities

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TokenConfig represents token configuration from JSON
type TokenConfig struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// TokensConfig represents the tokens.json structure
type TokensConfig struct {
	Tokens []TokenConfig `json:"tokens"`
}

// TokenRegistry holds loaded tokens indexed by address and symbol
type TokenRegistry struct {
	byAddress map[common.Address]Token
	bySymbol  map[string]Token
	all       []Token
}

// NewTokenRegistry creates a new token registry
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		byAddress: make(map[common.Address]Token),
		bySymbol:  make(map[string]Token),
		all:       make([]Token, 0),
	}
}

// LoadFromFile loads tokens from a JSON config file
func (r *TokenRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read token config: %w", err)
	}

	var config TokensConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse token config: %w", err)
	}

	for _, tc := range config.Tokens {
		if !common.IsHexAddress(tc.Address) {
			return fmt.Errorf("invalid token address %q for %s", tc.Address, tc.Symbol)
		}
		token := Token{
			Address:  common.HexToAddress(tc.Address),
			Symbol:   tc.Symbol,
			Name:     tc.Name,
			Decimals: tc.Decimals,
		}
		r.Register(token)
	}

	return nil
}

// Register adds a token to the registry. Re-registering an address replaces it.
func (r *TokenRegistry) Register(token Token) {
	if old, ok := r.byAddress[token.Address]; ok {
		delete(r.bySymbol, strings.ToUpper(old.Symbol))
		for i, t := range r.all {
			if t.Address == token.Address {
				r.all = append(r.all[:i], r.all[i+1:]...)
				break
			}
		}
	}
	r.byAddress[token.Address] = token
	r.bySymbol[strings.ToUpper(token.Symbol)] = token
	r.all = append(r.all, token)
}

// Resolve returns the registered token or an anonymous 18-decimal token
func (r *TokenRegistry) Resolve(addr common.Address) Token {
	if token, ok := r.GetByAddress(addr); ok {
		return token
	}
	return Token{Address: addr, Symbol: "UNKNOWN", Decimals: 18}
}

// GetByAddress returns a token by its address
func (r *TokenRegistry) GetByAddress(addr common.Address) (Token, bool) {
	token, ok := r.byAddress[addr]
	return token, ok
}

// GetBySymbol returns a token by its symbol
func (r *TokenRegistry) GetBySymbol(symbol string) (Token, bool) {
	token, ok := r.bySymbol[strings.ToUpper(symbol)]
	return token, ok
}

// Lookup accepts a hex address or a registered symbol (case-insensitive)
func (r *TokenRegistry) Lookup(ref string) (common.Address, bool) {
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), true
	}
	if token, ok := r.GetBySymbol(ref); ok {
		return token.Address, true
	}
	return common.Address{}, false
}

// GetAll returns all registered tokens
func (r *TokenRegistry) GetAll() []Token {
	return r.all
}

// Count returns the number of registered tokens
func (r *TokenRegistry) Count() int {
	return len(r.all)
}

// DefaultRegistry returns a registry with hardcoded default tokens
// Use this as fallback if config file is not available
func DefaultRegistry() *TokenRegistry {
	r := NewTokenRegistry()
	r.Register(WETH)
	r.Register(USDC)
	r.Register(USDbC)
	r.Register(DAI)
	r.Register(AERO)
	return r
}
