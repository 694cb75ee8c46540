package contract

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers calls by method selector; unknown selectors revert.
type fakeBackend struct {
	responses map[string][]byte
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(msg.Data) < 4 {
		return nil, errors.New("missing selector")
	}
	selector := hex.EncodeToString(msg.Data[:4])
	resp, ok := f.responses[selector]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return resp, nil
}

func packOutput(t *testing.T, abiName, method string, values ...interface{}) (string, []byte) {
	t.Helper()
	parsed, err := parsedABI(abiName)
	require.NoError(t, err)
	m, ok := parsed.Methods[method]
	require.True(t, ok, "method %s missing", method)
	data, err := m.Outputs.Pack(values...)
	require.NoError(t, err)
	return hex.EncodeToString(m.ID), data
}

func TestCallerReserves(t *testing.T) {
	reserve0, _ := new(big.Int).SetString("26990535753519829458", 10)
	reserve1, _ := new(big.Int).SetString("1300457263436280126139", 10)

	selector, data := packOutput(t, "pair", "getReserves", reserve0, reserve1)
	caller := NewCaller(&fakeBackend{responses: map[string][]byte{selector: data}}, nil)

	got0, got1, err := caller.Reserves(context.Background(), common.HexToAddress("0x1"))
	require.NoError(t, err)
	assert.Zero(t, got0.Cmp(reserve0))
	assert.Zero(t, got1.Cmp(reserve1))
}

func TestCallerDecimals(t *testing.T) {
	selector, data := packOutput(t, "erc20", "decimals", uint8(6))
	caller := NewCaller(&fakeBackend{responses: map[string][]byte{selector: data}}, nil)

	decimals, err := caller.Decimals(context.Background(), common.HexToAddress("0x2"))
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)
}

func TestCallerRevertIsError(t *testing.T) {
	caller := NewCaller(&fakeBackend{responses: map[string][]byte{}}, nil)

	_, _, err := caller.Reserves(context.Background(), common.HexToAddress("0x3"))
	require.Error(t, err)

	_, err = caller.TotalSupply(context.Background(), common.HexToAddress("0x3"))
	require.Error(t, err)
}

func TestCallerPoolForFallsBackToGetPair(t *testing.T) {
	pool := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	selector, data := packOutput(t, "factory", "getPair", pool)
	caller := NewCaller(&fakeBackend{responses: map[string][]byte{selector: data}}, nil)

	got, err := caller.PoolFor(
		context.Background(),
		common.HexToAddress("0x4"),
		common.HexToAddress("0x5"),
		common.HexToAddress("0x6"),
	)
	require.NoError(t, err)
	assert.Equal(t, pool, got)
}

func TestCallerPoolTokens(t *testing.T) {
	tokens := []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		common.HexToAddress("0x00000000000000000000000000000000000000a2"),
	}
	balances := []*big.Int{big.NewInt(1000), big.NewInt(2000)}

	selector, data := packOutput(t, "balancerVault", "getPoolTokens", tokens, balances, big.NewInt(1))
	caller := NewCaller(&fakeBackend{responses: map[string][]byte{selector: data}}, nil)

	gotTokens, gotBalances, err := caller.PoolTokens(context.Background(), common.HexToAddress("0x7"), [32]byte{1})
	require.NoError(t, err)
	assert.Equal(t, tokens, gotTokens)
	require.Len(t, gotBalances, 2)
	assert.Zero(t, gotBalances[0].Cmp(balances[0]))
	assert.Zero(t, gotBalances[1].Cmp(balances[1]))
}
