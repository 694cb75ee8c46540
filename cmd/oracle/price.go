package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/contract"
	"vaultScope/internal/platform"
	"vaultScope/internal/price"
	"vaultScope/internal/storage/memory"
)

func runPrice(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid token address: %q", args[0])
	}
	token := common.HexToAddress(args[0])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	caller := contract.NewCaller(chainClient, logger)
	oracle := price.NewOracle(cfg.Chain, platform.NewRuleset(cfg.Chain), caller, memory.NewStore(), logger, nil)

	fixed := oracle.PriceOfCoin(ctx, token)
	fmt.Println(price.FormatDecimal(price.RatFromFixed18(fixed)))
	return nil
}
