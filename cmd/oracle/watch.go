package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/contract"
	"vaultScope/internal/metrics"
	"vaultScope/internal/platform"
	"vaultScope/internal/price"
	"vaultScope/internal/storage"
	"vaultScope/internal/storage/postgres"
	"vaultScope/internal/tvl"
	"vaultScope/internal/watch"
)

func runWatch(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pgStore.Close()

	var store storage.Store = pgStore
	if cfg.FeedLog != "" {
		store = storage.WithFeedLog(pgStore, storage.NewFeedLog(cfg.FeedLog))
	}

	var metricSet *metrics.Set
	if cfg.MetricsAddr != "" {
		metricSet = metrics.NewSet(prometheus.DefaultRegisterer)
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	caller := contract.NewCaller(chainClient, logger)
	oracle := price.NewOracle(cfg.Chain, platform.NewRuleset(cfg.Chain), caller, store, logger, metricSet)
	registry := tvl.NewRegistry(store, logger, metricSet)

	watcher := watch.NewWatcher(watch.RunConfig{
		Interval:     cfg.Interval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, caller, oracle, registry, store, logger)

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("feed_log", cfg.FeedLog),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Duration("interval", cfg.Interval),
	)

	return watcher.Run(ctx)
}
