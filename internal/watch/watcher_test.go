package watch

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/config"
	"vaultScope/internal/contract"
	"vaultScope/internal/model"
	"vaultScope/internal/platform"
	"vaultScope/internal/price"
	"vaultScope/internal/storage/memory"
	"vaultScope/internal/tvl"
)

var errReverted = errors.New("execution reverted")

var (
	testWETH   = common.BytesToAddress([]byte{0x11})
	testStable = common.BytesToAddress([]byte{0x12})
)

// stubReader satisfies price.ChainReader and SupplyReader. Every pool
// query reverts; only decimals and supplies are served.
type stubReader struct {
	supplies map[common.Address]*big.Int
}

func (r *stubReader) Decimals(context.Context, common.Address) (uint8, error) {
	return 18, nil
}

func (r *stubReader) TotalSupply(_ context.Context, token common.Address) (*big.Int, error) {
	supply, ok := r.supplies[token]
	if !ok {
		return nil, errReverted
	}
	return supply, nil
}

func (r *stubReader) PoolFor(context.Context, common.Address, common.Address, common.Address) (common.Address, error) {
	return common.Address{}, errReverted
}

func (r *stubReader) Reserves(context.Context, common.Address) (*big.Int, *big.Int, error) {
	return nil, nil, errReverted
}

func (r *stubReader) Token0(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errReverted
}

func (r *stubReader) Token1(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errReverted
}

func (r *stubReader) PoolID(context.Context, common.Address) ([32]byte, error) {
	return [32]byte{}, errReverted
}

func (r *stubReader) PoolVault(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errReverted
}

func (r *stubReader) PoolTokens(context.Context, common.Address, [32]byte) ([]common.Address, []*big.Int, error) {
	return nil, nil, errReverted
}

func (r *stubReader) Minter(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errReverted
}

func (r *stubReader) Coin(context.Context, common.Address, int64) (common.Address, error) {
	return common.Address{}, errReverted
}

func (r *stubReader) CoinBalance(context.Context, common.Address, int64) (*big.Int, error) {
	return nil, errReverted
}

func (r *stubReader) LiquidityPool(context.Context, common.Address, common.Address) (contract.VelocorePoolState, error) {
	return contract.VelocorePoolState{}, errReverted
}

type stubBlocks struct {
	number    uint64
	timestamp uint64
	failures  int
}

func (b *stubBlocks) LatestBlockNumber(context.Context) (uint64, error) {
	if b.failures > 0 {
		b.failures--
		return 0, errReverted
	}
	return b.number, nil
}

func (b *stubBlocks) BlockTimestamp(context.Context, uint64) (uint64, error) {
	return b.timestamp, nil
}

func testChainConfig() config.ChainConfig {
	return config.ChainConfig{
		WrappedNative: testWETH,
		PrimaryStable: testStable,
		Stablecoins:   []common.Address{testStable},
		PairMarkers:   []string{"LP Token"},
	}
}

func newTestWatcher(reader *stubReader, blocks *stubBlocks) (*Watcher, *memory.Store) {
	cfg := testChainConfig()
	store := memory.NewStore()
	oracle := price.NewOracle(cfg, platform.NewRuleset(cfg), reader, store, nil, nil)
	registry := tvl.NewRegistry(store, nil, nil)
	watcher := NewWatcher(RunConfig{
		Interval:     time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, blocks, reader, oracle, registry, store, nil)
	return watcher, store
}

func TestSweepUpdatesVaultTvl(t *testing.T) {
	ctx := context.Background()
	vaultAddr := common.BytesToAddress([]byte{0x40})

	reader := &stubReader{supplies: map[common.Address]*big.Int{
		vaultAddr: new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18)),
	}}
	blocks := &stubBlocks{number: 42, timestamp: 4200}

	watcher, store := newTestWatcher(reader, blocks)
	require.NoError(t, store.SaveVault(ctx, model.Vault{
		Address:    vaultAddr.Hex(),
		Underlying: testStable.Hex(),
	}))
	registry := tvl.NewRegistry(store, nil, nil)
	require.NoError(t, registry.PushVault(ctx, vaultAddr.Hex(), model.BlockRef{Number: 1, Timestamp: 10}))

	require.NoError(t, watcher.Sweep(ctx))

	vault, ok, err := store.LoadVault(ctx, vaultAddr.Hex())
	require.NoError(t, err)
	require.True(t, ok)
	// 5 shares at the stable unit price.
	require.Equal(t, "5.000000000000000000", vault.Tvl)

	feeds := store.PriceFeeds()
	require.Len(t, feeds, 1)
	require.Equal(t, uint64(42), feeds[0].BlockNumber)

	// First sweep also triggers the aggregate recompute.
	snapshots := store.TvlSnapshots()
	require.Len(t, snapshots, 1)
	require.Equal(t, "5.000000000000000000", snapshots[0].TotalTvl)
}

func TestSweepNoVaultsIsNoop(t *testing.T) {
	watcher, store := newTestWatcher(&stubReader{}, &stubBlocks{number: 1, timestamp: 10})

	require.NoError(t, watcher.Sweep(context.Background()))
	require.Empty(t, store.PriceFeeds())
	require.Empty(t, store.TvlSnapshots())
}

func TestSweepRetriesHeadBlock(t *testing.T) {
	ctx := context.Background()
	blocks := &stubBlocks{number: 7, timestamp: 70, failures: 2}

	watcher, _ := newTestWatcher(&stubReader{}, blocks)
	require.NoError(t, watcher.Sweep(ctx))
}

func TestWithRetryExhausts(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return errReverted
	})
	require.ErrorIs(t, err, errReverted)
	require.Equal(t, 3, calls)
}

func TestNextRetryDelayCaps(t *testing.T) {
	require.Equal(t, 2*time.Second, nextRetryDelay(time.Second))
	require.Equal(t, maxRetryDelay, nextRetryDelay(20*time.Second))
	require.Equal(t, maxRetryDelay, nextRetryDelay(maxRetryDelay))
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, 5, time.Millisecond, func(context.Context) error {
		return errReverted
	})
	require.ErrorIs(t, err, context.Canceled)
}
