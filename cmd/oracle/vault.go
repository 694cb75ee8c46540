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
	"vaultScope/internal/model"
	"vaultScope/internal/platform"
	"vaultScope/internal/price"
	"vaultScope/internal/storage/postgres"
)

func runVault(cmd *cobra.Command, args []string) error {
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
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid vault address: %q", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	vault, ok, err := store.LoadVault(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load vault: %w", err)
	}
	if !ok {
		return fmt.Errorf("vault %s is not registered", args[0])
	}

	number, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}
	ts, err := chainClient.BlockTimestamp(ctx, number)
	if err != nil {
		return fmt.Errorf("block timestamp %d: %w", number, err)
	}

	caller := contract.NewCaller(chainClient, logger)
	oracle := price.NewOracle(cfg.Chain, platform.NewRuleset(cfg.Chain), caller, store, logger, nil)

	sharePrice, err := oracle.PriceOfVault(ctx, vault, model.BlockRef{Number: number, Timestamp: ts})
	if err != nil {
		return err
	}

	fmt.Println(price.FormatDecimal(sharePrice))
	return nil
}
