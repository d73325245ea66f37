package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AggregatorConfig configures one off-chain quote API
type AggregatorConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
}

// Config is the immutable runtime configuration shared by both binaries
type Config struct {
	Port    string
	RPCURL  string
	ChainID int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PoolCacheTTL  time.Duration

	CallTimeout    time.Duration
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	OneInch AggregatorConfig
	ZeroX   AggregatorConfig

	MinLiquidity   *big.Int
	MaxPriceImpact float64

	TokensFile string
	LogLevel   string
	LogFormat  string
}

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string][]string{
	"port":                       {"PORT"},
	"rpc.url":                    {"BASE_RPC_URL", "ETH_RPC_URL"},
	"rpc.chain_id":               {"CHAIN_ID"},
	"rpc.call_timeout":           {"CALL_TIMEOUT"},
	"rpc.max_retries":            {"MAX_RETRIES"},
	"rpc.initial_backoff":        {"INITIAL_BACKOFF"},
	"rpc.max_backoff":            {"MAX_BACKOFF"},
	"redis.addr":                 {"REDIS_ADDR"},
	"redis.password":             {"REDIS_PASSWORD"},
	"redis.db":                   {"REDIS_DB"},
	"cache.pool_ttl":             {"POOL_CACHE_TTL"},
	"oneinch.enabled":            {"ONEINCH_ENABLED"},
	"oneinch.base_url":           {"ONEINCH_BASE_URL"},
	"oneinch.api_key":            {"ONEINCH_API_KEY"},
	"zerox.enabled":              {"ZEROX_ENABLED"},
	"zerox.base_url":             {"ZEROX_BASE_URL"},
	"zerox.api_key":              {"ZEROX_API_KEY"},
	"selection.min_liquidity":    {"MIN_LIQUIDITY"},
	"selection.max_price_impact": {"MAX_PRICE_IMPACT"},
	"tokens_file":                {"TOKENS_FILE"},
	"log.level":                  {"LOG_LEVEL"},
	"log.format":                 {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("rpc.url", "https://mainnet.base.org")
	v.SetDefault("rpc.chain_id", 8453)
	v.SetDefault("rpc.call_timeout", 8*time.Second)
	v.SetDefault("rpc.max_retries", 2)
	v.SetDefault("rpc.initial_backoff", 200*time.Millisecond)
	v.SetDefault("rpc.max_backoff", 2*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.pool_ttl", 10*time.Minute)
	v.SetDefault("oneinch.enabled", true)
	v.SetDefault("oneinch.base_url", "https://api.1inch.dev")
	v.SetDefault("zerox.enabled", true)
	v.SetDefault("zerox.base_url", "https://base.api.0x.org")
	v.SetDefault("selection.min_liquidity", "1000")
	v.SetDefault("selection.max_price_impact", 5.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// DefaultSearchPaths are the directories scanned for config.yaml
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "swap-router"))
	}
	return paths
}

// Load reads config.yaml from the first matching search path (optional) and
// applies environment overrides on top of the defaults.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	minLiquidity, ok := new(big.Int).SetString(strings.TrimSpace(v.GetString("selection.min_liquidity")), 10)
	if !ok || minLiquidity.Sign() < 0 {
		return nil, fmt.Errorf("selection.min_liquidity must be a non-negative integer, got %q", v.GetString("selection.min_liquidity"))
	}

	cfg := &Config{
		Port:    v.GetString("port"),
		RPCURL:  v.GetString("rpc.url"),
		ChainID: v.GetInt64("rpc.chain_id"),

		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),
		PoolCacheTTL:  v.GetDuration("cache.pool_ttl"),

		CallTimeout:    v.GetDuration("rpc.call_timeout"),
		MaxRetries:     v.GetUint64("rpc.max_retries"),
		InitialBackoff: v.GetDuration("rpc.initial_backoff"),
		MaxBackoff:     v.GetDuration("rpc.max_backoff"),

		OneInch: AggregatorConfig{
			Enabled: v.GetBool("oneinch.enabled"),
			BaseURL: v.GetString("oneinch.base_url"),
			APIKey:  v.GetString("oneinch.api_key"),
		},
		ZeroX: AggregatorConfig{
			Enabled: v.GetBool("zerox.enabled"),
			BaseURL: v.GetString("zerox.base_url"),
			APIKey:  v.GetString("zerox.api_key"),
		},

		MinLiquidity:   minLiquidity,
		MaxPriceImpact: v.GetFloat64("selection.max_price_impact"),

		TokensFile: v.GetString("tokens_file"),
		LogLevel:   v.GetString("log.level"),
		LogFormat:  v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc.url is required")
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("rpc.call_timeout must be positive, got %s", c.CallTimeout)
	}
	if c.MaxPriceImpact <= 0 || c.MaxPriceImpact > 100 {
		return fmt.Errorf("selection.max_price_impact must be in (0, 100], got %v", c.MaxPriceImpact)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.LogFormat)
	}
	return nil
}
