package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Backend executes read-only contract calls. chain.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// VelocorePoolState is the raw result of a generalized-pool query. Listed
// tokens come back as padded 32-byte words, not plain addresses.
type VelocorePoolState struct {
	ListedTokens   [][32]byte
	Reserves       []*big.Int
	MintedLPTokens []*big.Int
}

// Caller issues read-only methods against the protocol families the oracle
// understands. Every method is fallible: a failed or reverted call surfaces
// as an error, and callers decide the fallback.
type Caller struct {
	backend Backend
	logger  *zap.Logger
}

// NewCaller builds a Caller over the given backend.
func NewCaller(backend Backend, logger *zap.Logger) *Caller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Caller{backend: backend, logger: logger}
}

func (c *Caller) call(ctx context.Context, target common.Address, abiName, method string, args ...interface{}) ([]interface{}, error) {
	if c.backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	parsed, err := parsedABI(abiName)
	if err != nil {
		return nil, fmt.Errorf("parse %s abi: %w", abiName, err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		c.logger.Debug("contract call reverted",
			zap.String("target", target.Hex()),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// Decimals returns the ERC20 decimal precision.
func (c *Caller) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	values, err := c.call(ctx, token, "erc20", "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

// TokenName returns the ERC20 display name.
func (c *Caller) TokenName(ctx context.Context, token common.Address) (string, error) {
	values, err := c.call(ctx, token, "erc20", "name")
	if err != nil {
		return "", err
	}
	name, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("name: unsupported type %T", values[0])
	}
	return name, nil
}

// TotalSupply returns the ERC20 total supply.
func (c *Caller) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	values, err := c.call(ctx, token, "erc20", "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// PoolFor resolves the pool pairing two tokens through a factory. SyncSwap
// style factories expose getPool, classic AMM factories expose getPair; the
// first that answers wins.
func (c *Caller) PoolFor(ctx context.Context, factory, tokenA, tokenB common.Address) (common.Address, error) {
	values, err := c.call(ctx, factory, "factory", "getPool", tokenA, tokenB)
	if err != nil {
		values, err = c.call(ctx, factory, "factory", "getPair", tokenA, tokenB)
	}
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// Reserves returns the two reserve sides of a pair.
func (c *Caller) Reserves(ctx context.Context, pool common.Address) (*big.Int, *big.Int, error) {
	values, err := c.call(ctx, pool, "pair", "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("getReserves return size %d", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve1: %w", err)
	}
	return reserve0, reserve1, nil
}

// Token0 returns the pair's first token.
func (c *Caller) Token0(ctx context.Context, pool common.Address) (common.Address, error) {
	values, err := c.call(ctx, pool, "pair", "token0")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// Token1 returns the pair's second token.
func (c *Caller) Token1(ctx context.Context, pool common.Address) (common.Address, error) {
	values, err := c.call(ctx, pool, "pair", "token1")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// PoolID returns a weighted pool's id in its vault.
func (c *Caller) PoolID(ctx context.Context, pool common.Address) ([32]byte, error) {
	values, err := c.call(ctx, pool, "weightedPool", "getPoolId")
	if err != nil {
		return [32]byte{}, err
	}
	id, ok := values[0].([32]byte)
	if !ok {
		return [32]byte{}, fmt.Errorf("getPoolId: unsupported type %T", values[0])
	}
	return id, nil
}

// PoolVault returns the vault a weighted pool is registered with.
func (c *Caller) PoolVault(ctx context.Context, pool common.Address) (common.Address, error) {
	values, err := c.call(ctx, pool, "weightedPool", "getVault")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// PoolTokens returns the token and balance vectors of a weighted pool.
func (c *Caller) PoolTokens(ctx context.Context, vault common.Address, poolID [32]byte) ([]common.Address, []*big.Int, error) {
	values, err := c.call(ctx, vault, "balancerVault", "getPoolTokens", poolID)
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("getPoolTokens return size %d", len(values))
	}
	tokens, ok := values[0].([]common.Address)
	if !ok {
		return nil, nil, fmt.Errorf("getPoolTokens tokens: unsupported type %T", values[0])
	}
	balances, ok := values[1].([]*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("getPoolTokens balances: unsupported type %T", values[1])
	}
	return tokens, balances, nil
}

// Minter returns a Curve pool's separate minter contract, when it has one.
func (c *Caller) Minter(ctx context.Context, pool common.Address) (common.Address, error) {
	values, err := c.call(ctx, pool, "curve", "minter")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// Coin returns the i-th coin of a Curve pool.
func (c *Caller) Coin(ctx context.Context, minter common.Address, index int64) (common.Address, error) {
	values, err := c.call(ctx, minter, "curve", "coins", big.NewInt(index))
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// CoinBalance returns the i-th coin balance of a Curve pool.
func (c *Caller) CoinBalance(ctx context.Context, minter common.Address, index int64) (*big.Int, error) {
	values, err := c.call(ctx, minter, "curve", "balances", big.NewInt(index))
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// LiquidityPool queries a Velocore-style generalized pool through its factory.
func (c *Caller) LiquidityPool(ctx context.Context, factory, pool common.Address) (VelocorePoolState, error) {
	values, err := c.call(ctx, factory, "velocore", "queryPool", pool)
	if err != nil {
		return VelocorePoolState{}, err
	}
	if len(values) < 3 {
		return VelocorePoolState{}, fmt.Errorf("queryPool return size %d", len(values))
	}
	listed, ok := values[0].([][32]byte)
	if !ok {
		return VelocorePoolState{}, fmt.Errorf("queryPool listedTokens: unsupported type %T", values[0])
	}
	reserves, ok := values[1].([]*big.Int)
	if !ok {
		return VelocorePoolState{}, fmt.Errorf("queryPool reserves: unsupported type %T", values[1])
	}
	minted, ok := values[2].([]*big.Int)
	if !ok {
		return VelocorePoolState{}, fmt.Errorf("queryPool mintedLPTokens: unsupported type %T", values[2])
	}
	return VelocorePoolState{ListedTokens: listed, Reserves: reserves, MintedLPTokens: minted}, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
