package storage

import (
	"context"

	"vaultScope/internal/model"
)

// Store is the persistence boundary of the oracle. Implementations provide
// load-or-miss reads, upsert-style saves, and append-only feeds/snapshots.
type Store interface {
	LoadVault(ctx context.Context, address string) (model.Vault, bool, error)
	SaveVault(ctx context.Context, vault model.Vault) error

	LoadToken(ctx context.Context, address string) (model.Token, bool, error)
	SaveToken(ctx context.Context, token model.Token) error

	LoadTotalTvlState(ctx context.Context, id string) (model.TotalTvlState, bool, error)
	SaveTotalTvlState(ctx context.Context, state model.TotalTvlState) error

	// BumpTvlCounter increments and returns the audit counter.
	BumpTvlCounter(ctx context.Context) (uint64, error)

	AppendPriceFeed(ctx context.Context, feed model.PriceFeed) error
	AppendTvlSnapshot(ctx context.Context, snapshot model.TvlSnapshot) error

	Close()
}
