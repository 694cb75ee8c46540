package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/contract"
	"vaultScope/internal/model"
	"vaultScope/internal/price"
	"vaultScope/internal/storage/postgres"
	"vaultScope/internal/tvl"
)

func runRegister(cmd *cobra.Command, args []string) error {
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
	if !common.IsHexAddress(args[1]) {
		return fmt.Errorf("invalid underlying address: %q", args[1])
	}
	vaultAddr := common.HexToAddress(args[0])
	underlying := common.HexToAddress(args[1])

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

	caller := contract.NewCaller(chainClient, logger)

	// Underlying metadata is captured at registration so share pricing can
	// classify the token without further name lookups.
	token := model.Token{Address: underlying.Hex()}
	if name, err := caller.TokenName(ctx, underlying); err == nil {
		token.Name = name
	} else {
		logger.Warn("token name lookup failed", zap.String("token", underlying.Hex()), zap.Error(err))
	}
	if decimals, err := caller.Decimals(ctx, underlying); err == nil {
		token.Decimals = decimals
	} else {
		token.Decimals = price.DefaultDecimals
		logger.Warn("token decimals lookup failed", zap.String("token", underlying.Hex()), zap.Error(err))
	}
	if err := store.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	if err := store.SaveVault(ctx, model.Vault{
		Address:    vaultAddr.Hex(),
		Underlying: underlying.Hex(),
		Tvl:        "0",
	}); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}

	number, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}
	ts, err := chainClient.BlockTimestamp(ctx, number)
	if err != nil {
		return fmt.Errorf("block timestamp %d: %w", number, err)
	}

	registry := tvl.NewRegistry(store, logger, nil)
	if err := registry.PushVault(ctx, vaultAddr.Hex(), model.BlockRef{Number: number, Timestamp: ts}); err != nil {
		return err
	}

	logger.Info("vault registered",
		zap.String("vault", vaultAddr.Hex()),
		zap.String("underlying", underlying.Hex()),
		zap.String("name", token.Name),
		zap.Uint64("block", number),
	)
	return nil
}
