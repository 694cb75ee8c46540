package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "oracle",
		Short:        "zkSync Era vault price and TVL oracle",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	priceCmd := &cobra.Command{
		Use:   "price <token-address>",
		Short: "Resolve one token price",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrice,
	}
	priceCmd.Flags().String("rpc", "", "zkSync Era RPC URL")
	priceCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(priceCmd)

	vaultCmd := &cobra.Command{
		Use:   "vault <vault-address>",
		Short: "Resolve one registered vault's share price",
		Args:  cobra.ExactArgs(1),
		RunE:  runVault,
	}
	vaultCmd.Flags().String("rpc", "", "zkSync Era RPC URL")
	vaultCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	vaultCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(vaultCmd)

	registerCmd := &cobra.Command{
		Use:   "register <vault-address> <underlying-address>",
		Short: "Register a vault for tracking",
		Args:  cobra.ExactArgs(2),
		RunE:  runRegister,
	}
	registerCmd.Flags().String("rpc", "", "zkSync Era RPC URL")
	registerCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	registerCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(registerCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprice registered vaults on an interval",
		RunE:  runWatch,
	}
	watchCmd.Flags().String("rpc", "", "zkSync Era RPC URL")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	watchCmd.Flags().String("feed-log", "", "optional JSONL price feed audit log")
	watchCmd.Flags().String("metrics-addr", "", "optional Prometheus listen address")
	watchCmd.Flags().Duration("interval", 30*time.Second, "sweep interval")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
