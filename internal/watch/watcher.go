package watch

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultScope/internal/model"
	"vaultScope/internal/price"
	"vaultScope/internal/storage"
	"vaultScope/internal/tvl"
)

// RunConfig holds runtime settings for the watch loop.
type RunConfig struct {
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// BlockSource resolves the chain head and block timestamps. chain.Client
// satisfies it.
type BlockSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// SupplyReader resolves the share token supply of a vault.
type SupplyReader interface {
	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
}

// Watcher periodically reprices every registered vault, refreshes its TVL,
// and triggers the aggregate recompute.
type Watcher struct {
	cfg      RunConfig
	blocks   BlockSource
	reader   SupplyReader
	oracle   *price.Oracle
	registry *tvl.Registry
	store    storage.Store
	logger   *zap.Logger
}

// NewWatcher builds a Watcher with its dependencies.
func NewWatcher(
	cfg RunConfig,
	blocks BlockSource,
	reader SupplyReader,
	oracle *price.Oracle,
	registry *tvl.Registry,
	store storage.Store,
	logger *zap.Logger,
) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		cfg:      cfg,
		blocks:   blocks,
		reader:   reader,
		oracle:   oracle,
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Run executes the watch loop until the context is canceled. The first
// sweep runs immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if w.blocks == nil {
		return fmt.Errorf("block source is nil")
	}
	if w.oracle == nil {
		return fmt.Errorf("oracle is nil")
	}
	if w.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := w.Sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep reprices every registered vault once at the current chain head.
func (w *Watcher) Sweep(ctx context.Context) error {
	block, err := w.headBlockWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("resolve head block: %w", err)
	}

	state, ok, err := w.store.LoadTotalTvlState(ctx, tvl.StateID)
	if err != nil {
		return fmt.Errorf("load registry state: %w", err)
	}
	if !ok || len(state.Vaults) == 0 {
		w.logger.Info("no vaults registered", zap.Uint64("block", block.Number))
		return nil
	}

	// The registry list keeps duplicates; each vault is swept once.
	seen := make(map[string]struct{}, len(state.Vaults))
	for _, address := range state.Vaults {
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.sweepVault(ctx, address, block); err != nil {
			w.logger.Warn("vault sweep failed", zap.String("vault", address), zap.Error(err))
		}
	}

	if err := w.registry.BumpCounter(ctx); err != nil {
		return err
	}
	if err := w.registry.MaybeRecompute(ctx, block); err != nil {
		return err
	}

	w.logger.Info("sweep complete", zap.Uint64("block", block.Number), zap.Int("vaults", len(seen)))
	return nil
}

func (w *Watcher) sweepVault(ctx context.Context, address string, block model.BlockRef) error {
	vault, ok, err := w.store.LoadVault(ctx, address)
	if err != nil {
		return fmt.Errorf("load vault: %w", err)
	}
	if !ok {
		return fmt.Errorf("vault %s not found", address)
	}

	sharePrice, err := w.oracle.PriceOfVault(ctx, vault, block)
	if err != nil {
		return fmt.Errorf("price vault: %w", err)
	}

	vaultAddr := common.HexToAddress(vault.Address)
	supply, err := w.reader.TotalSupply(ctx, vaultAddr)
	if err != nil {
		return fmt.Errorf("vault supply: %w", err)
	}

	locked := price.Amount(supply, w.oracle.DecimalsOf(ctx, vaultAddr))
	locked.Mul(locked, sharePrice)

	vault.Tvl = price.FormatDecimal(locked)
	if err := w.store.SaveVault(ctx, vault); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}

	w.logger.Debug("vault updated",
		zap.String("vault", vault.Address),
		zap.String("price", price.FormatDecimal(sharePrice)),
		zap.String("tvl", vault.Tvl))
	return nil
}

func (w *Watcher) headBlockWithRetry(ctx context.Context) (model.BlockRef, error) {
	var block model.BlockRef
	err := withRetry(ctx, w.cfg.MaxRetries, w.cfg.RetryBackoff, func(ctx context.Context) error {
		number, err := w.blocks.LatestBlockNumber(ctx)
		if err != nil {
			w.logger.Warn("latest block fetch failed", zap.Error(err))
			return err
		}
		ts, err := w.blocks.BlockTimestamp(ctx, number)
		if err != nil {
			w.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", number))
			return err
		}
		block = model.BlockRef{Number: number, Timestamp: ts}
		return nil
	})
	return block, err
}
