package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bimakw/swap-router/internal/app"
	"github.com/bimakw/swap-router/internal/config"
	"github.com/bimakw/swap-router/internal/infrastructure/logging"
	"github.com/bimakw/swap-router/internal/presentation/handlers"
)

type options struct {
	tokenIn     string
	tokenOut    string
	amountIn    string
	wallet      string
	slippageBps uint32
	timeout     time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "quote",
		Short:        "Find the best swap route for a token pair on Base",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.tokenIn, "token-in", "", "address or symbol of the token being sold")
	flags.StringVar(&opts.tokenOut, "token-out", "", "address or symbol of the token being bought")
	flags.StringVar(&opts.amountIn, "amount-in", "", "input amount in base units")
	flags.StringVar(&opts.wallet, "wallet", "", "recipient wallet; when set the swap transaction is encoded")
	flags.Uint32Var(&opts.slippageBps, "slippage-bps", handlers.DefaultSlippageBps, "slippage tolerance in basis points")
	flags.DurationVar(&opts.timeout, "timeout", time.Minute, "overall deadline")
	_ = cmd.MarkFlagRequired("token-in")
	_ = cmd.MarkFlagRequired("token-out")
	_ = cmd.MarkFlagRequired("amount-in")

	return cmd
}

func run(parent context.Context, opts *options) error {
	amountIn, ok := new(big.Int).SetString(opts.amountIn, 10)
	if !ok || amountIn.Sign() <= 0 {
		return fmt.Errorf("amount-in must be a positive integer, got %q", opts.amountIn)
	}
	if opts.wallet != "" && !common.IsHexAddress(opts.wallet) {
		return fmt.Errorf("wallet %q is not a hex address", opts.wallet)
	}

	cfg, err := config.Load(config.DefaultSearchPaths()...)
	if err != nil {
		return err
	}
	// stdout carries the result; logs go to stderr
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, opts.timeout)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	tokenIn, ok := application.Tokens.Lookup(opts.tokenIn)
	if !ok {
		return fmt.Errorf("token-in %q is not an address or known symbol", opts.tokenIn)
	}
	tokenOut, ok := application.Tokens.Lookup(opts.tokenOut)
	if !ok {
		return fmt.Errorf("token-out %q is not an address or known symbol", opts.tokenOut)
	}
	if tokenIn == tokenOut {
		return errors.New("token-in and token-out must differ")
	}

	result := application.Router.FindRoute(ctx, tokenIn, tokenOut, amountIn)

	var out interface{} = handlers.NewQuotesResponse(application.Tokens, tokenIn, tokenOut, amountIn, result)
	if opts.wallet != "" {
		if result.Route == nil {
			return errors.New("no route available for this pair")
		}
		tx, err := application.Router.BuildSwap(result.Route, common.HexToAddress(opts.wallet), amountIn, opts.slippageBps)
		if err != nil {
			logger.Error("encode swap", zap.Error(err))
			return err
		}
		out = handlers.NewSwapResponse(result.Route, tx)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
