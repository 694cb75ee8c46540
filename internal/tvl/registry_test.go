package tvl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultScope/internal/model"
	"vaultScope/internal/storage/memory"
)

func TestPushVaultKeepsDuplicates(t *testing.T) {
	store := memory.NewStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()
	block := model.BlockRef{Number: 10, Timestamp: 1000}

	require.NoError(t, registry.PushVault(ctx, "0xAA00000000000000000000000000000000000001", block))
	require.NoError(t, registry.PushVault(ctx, "0xaa00000000000000000000000000000000000001", block))

	state, ok, err := store.LoadTotalTvlState(ctx, StateID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{
		"0xaa00000000000000000000000000000000000001",
		"0xaa00000000000000000000000000000000000001",
	}, state.Vaults)
	require.Equal(t, uint64(10), state.CreatedAtBlock)
}

func TestMaybeRecomputeFirstRunFires(t *testing.T) {
	store := memory.NewStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, store.SaveVault(ctx, model.Vault{
		Address: "0xaa00000000000000000000000000000000000001", Tvl: "1.5",
	}))
	require.NoError(t, registry.PushVault(ctx, "0xaa00000000000000000000000000000000000001", model.BlockRef{Number: 1, Timestamp: 100}))

	require.NoError(t, registry.MaybeRecompute(ctx, model.BlockRef{Number: 2, Timestamp: 200}))

	snapshots := store.TvlSnapshots()
	require.Len(t, snapshots, 1)
	require.Equal(t, "1.500000000000000000", snapshots[0].TotalTvl)
	require.Equal(t, uint64(2), snapshots[0].BlockNumber)

	state, _, err := store.LoadTotalTvlState(ctx, StateID)
	require.NoError(t, err)
	require.Equal(t, uint64(200), state.LastUpdate)
}

func TestMaybeRecomputeWithinCadenceIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, registry.MaybeRecompute(ctx, model.BlockRef{Number: 1, Timestamp: 1000}))
	require.Len(t, store.TvlSnapshots(), 1)

	// One second short of the cadence.
	require.NoError(t, registry.MaybeRecompute(ctx, model.BlockRef{Number: 2, Timestamp: 1000 + recomputeInterval - 1}))
	require.Len(t, store.TvlSnapshots(), 1)

	require.NoError(t, registry.MaybeRecompute(ctx, model.BlockRef{Number: 3, Timestamp: 1000 + recomputeInterval}))
	require.Len(t, store.TvlSnapshots(), 2)
}

func TestRecomputeCountsDuplicatesAndClampsParseFailures(t *testing.T) {
	store := memory.NewStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()
	block := model.BlockRef{Number: 5, Timestamp: 500}

	require.NoError(t, store.SaveVault(ctx, model.Vault{
		Address: "0xaa00000000000000000000000000000000000001", Tvl: "2",
	}))
	require.NoError(t, store.SaveVault(ctx, model.Vault{
		Address: "0xaa00000000000000000000000000000000000002", Tvl: "garbage",
	}))

	require.NoError(t, registry.PushVault(ctx, "0xaa00000000000000000000000000000000000001", block))
	require.NoError(t, registry.PushVault(ctx, "0xaa00000000000000000000000000000000000001", block))
	require.NoError(t, registry.PushVault(ctx, "0xaa00000000000000000000000000000000000002", block))
	// Registered but never stored.
	require.NoError(t, registry.PushVault(ctx, "0xaa00000000000000000000000000000000000003", block))

	require.NoError(t, registry.MaybeRecompute(ctx, block))

	snapshots := store.TvlSnapshots()
	require.Len(t, snapshots, 1)
	require.Equal(t, "4.000000000000000000", snapshots[0].TotalTvl)
}

func TestBumpCounter(t *testing.T) {
	store := memory.NewStore()
	registry := NewRegistry(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, registry.BumpCounter(ctx))
	require.NoError(t, registry.BumpCounter(ctx))

	count, err := store.BumpTvlCounter(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)
}
