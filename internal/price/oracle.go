package price

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultScope/internal/config"
	"vaultScope/internal/contract"
	"vaultScope/internal/metrics"
	"vaultScope/internal/model"
	"vaultScope/internal/platform"
	"vaultScope/internal/storage"
)

// ChainReader is the read-only contract surface the engine prices from.
// contract.Caller satisfies it; tests substitute an in-memory fake.
type ChainReader interface {
	DecimalsReader
	PoolFor(ctx context.Context, factory, tokenA, tokenB common.Address) (common.Address, error)
	Reserves(ctx context.Context, pool common.Address) (*big.Int, *big.Int, error)
	Token0(ctx context.Context, pool common.Address) (common.Address, error)
	Token1(ctx context.Context, pool common.Address) (common.Address, error)
	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
	PoolID(ctx context.Context, pool common.Address) ([32]byte, error)
	PoolVault(ctx context.Context, pool common.Address) (common.Address, error)
	PoolTokens(ctx context.Context, vault common.Address, poolID [32]byte) ([]common.Address, []*big.Int, error)
	Minter(ctx context.Context, pool common.Address) (common.Address, error)
	Coin(ctx context.Context, minter common.Address, index int64) (common.Address, error)
	CoinBalance(ctx context.Context, minter common.Address, index int64) (*big.Int, error)
	LiquidityPool(ctx context.Context, factory, pool common.Address) (contract.VelocorePoolState, error)
}

// nativeSentinel marks native ether inside generalized pool token lists.
var nativeSentinel = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// Oracle resolves token and vault-share prices from on-chain pool state.
// Every failure path degrades to a zero price; zero means "unpriceable",
// never a legitimate valuation.
type Oracle struct {
	cfg      config.ChainConfig
	rules    *platform.Ruleset
	reader   ChainReader
	decimals *DecimalsCache
	store    storage.Store
	logger   *zap.Logger
	metrics  *metrics.Set
}

// NewOracle builds an Oracle with its collaborators. metrics may be nil.
func NewOracle(
	cfg config.ChainConfig,
	rules *platform.Ruleset,
	reader ChainReader,
	store storage.Store,
	logger *zap.Logger,
	met *metrics.Set,
) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		cfg:      cfg,
		rules:    rules,
		reader:   reader,
		decimals: NewDecimalsCache(reader, logger),
		store:    store,
		logger:   logger,
		metrics:  met,
	}
}

// DecimalsOf returns the cached decimal precision of a token.
func (o *Oracle) DecimalsOf(ctx context.Context, token common.Address) uint8 {
	return o.decimals.DecimalsOf(ctx, token)
}

// PriceOfCoin resolves a token's price in the 18-decimal stable domain.
// Routing is two-hop at most: token to wrapped native, then wrapped native
// to the primary stablecoin. A zero first hop is terminal.
func (o *Oracle) PriceOfCoin(ctx context.Context, token common.Address) *big.Int {
	o.metrics.IncPriceRequests()

	switch o.rules.ClassifyAddress(token) {
	case platform.Stablecoin:
		return Unit()
	case platform.WrappedBTC:
		return o.QuoteViaPool(ctx, o.cfg.WrappedBTC, o.cfg.PrimaryStable)
	case platform.WrappedNative:
		return o.QuoteViaPool(ctx, o.cfg.WrappedNative, o.cfg.PrimaryStable)
	}

	price := o.QuoteViaPool(ctx, token, o.cfg.WrappedNative)
	if price.Sign() == 0 {
		o.metrics.IncUnpricedResults()
		return price
	}

	nativePrice := o.QuoteViaPool(ctx, o.cfg.WrappedNative, o.cfg.PrimaryStable)
	price.Mul(price, nativePrice)
	return price.Quo(price, Unit())
}

// QuoteViaPool prices token against quote through the default AMM factory,
// from the pool's spot reserve ratio.
func (o *Oracle) QuoteViaPool(ctx context.Context, token, quote common.Address) *big.Int {
	if o.rules.IsStablecoin(token) {
		return Unit()
	}

	pool, err := o.reader.PoolFor(ctx, o.cfg.SwapFactory, quote, token)
	if err != nil {
		o.metrics.IncRevertedCalls()
		return Zero()
	}

	reserve0, reserve1, err := o.reader.Reserves(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not get reserves", zap.String("pool", pool.Hex()), zap.Error(err))
		return Zero()
	}
	if reserve0.Sign() == 0 {
		return Zero()
	}

	token1, err := o.reader.Token1(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		return Zero()
	}

	tokenDecimals := o.decimals.DecimalsOf(ctx, token)
	quoteDecimals := o.decimals.DecimalsOf(ctx, quote)
	// The factor is the same whichever side carries more precision.
	exp := int(tokenDecimals) - int(quoteDecimals) + DefaultDecimals

	if token1 == quote {
		return mulScaleDiv(reserve1, exp, reserve0)
	}
	return mulScaleDiv(reserve0, exp, reserve1)
}

// PriceOfVault resolves a vault share's decimal price and appends a price
// feed record. A zero result marks the share as unpriceable.
func (o *Oracle) PriceOfVault(ctx context.Context, vault model.Vault, block model.BlockRef) (*big.Rat, error) {
	if o.cfg.ProfitShare != (common.Address{}) && common.HexToAddress(vault.Address) == o.cfg.ProfitShare {
		price := RatFromFixed18(o.PriceOfCoin(ctx, o.cfg.RewardToken))
		return price, o.recordFeed(ctx, vault, price, block)
	}

	underlying := common.HexToAddress(vault.Underlying)
	if fixed := o.PriceOfCoin(ctx, underlying); fixed.Sign() != 0 {
		price := RatFromFixed18(fixed)
		return price, o.recordFeed(ctx, vault, price, block)
	}

	token, ok, err := o.store.LoadToken(ctx, vault.Underlying)
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w", vault.Underlying, err)
	}
	if !ok {
		o.metrics.IncUnpricedResults()
		return new(big.Rat), nil
	}

	var price *big.Rat
	switch o.rules.ClassifyName(token.Name) {
	case platform.PlainPair:
		price = o.pairSharePrice(ctx, underlying)
	case platform.Velocore:
		price = o.velocoreSharePrice(ctx, underlying)
	case platform.BalancerWeighted:
		price = o.balancerSharePrice(ctx, underlying, mapset.NewSet[common.Address]())
	case platform.SyncSwap:
		price = o.syncSwapSharePrice(ctx, underlying)
	case platform.Curve:
		price = o.curveSharePrice(ctx, underlying)
	default:
		o.metrics.IncUnpricedResults()
		return new(big.Rat), nil
	}

	if price.Sign() == 0 {
		o.metrics.IncUnpricedResults()
	}
	return price, o.recordFeed(ctx, vault, price, block)
}

func (o *Oracle) recordFeed(ctx context.Context, vault model.Vault, price *big.Rat, block model.BlockRef) error {
	feed := model.PriceFeed{
		VaultAddress:   strings.ToLower(vault.Address),
		Price:          FormatDecimal(price),
		BlockNumber:    block.Number,
		BlockTimestamp: block.Timestamp,
	}
	if err := o.store.AppendPriceFeed(ctx, feed); err != nil {
		return fmt.Errorf("append price feed: %w", err)
	}
	o.metrics.IncFeedRecords()
	return nil
}

// pairSharePrice values one LP share of a plain two-asset pool as its
// proportional claim on both reserves.
func (o *Oracle) pairSharePrice(ctx context.Context, pool common.Address) *big.Rat {
	reserve0, reserve1, err := o.reader.Reserves(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not get reserves, pricing share as plain coin",
			zap.String("pool", pool.Hex()), zap.Error(err))
		return RatFromFixed18(o.PriceOfCoin(ctx, pool))
	}

	supply, err := o.reader.TotalSupply(ctx, pool)
	if err != nil || supply.Sign() == 0 {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not get total supply", zap.String("pool", pool.Hex()), zap.Error(err))
		return new(big.Rat)
	}

	token0, err := o.reader.Token0(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		return new(big.Rat)
	}
	token1, err := o.reader.Token1(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		return new(big.Rat)
	}

	// One share's fraction of the pool, the share itself in 18 decimals.
	fraction := new(big.Rat).SetFrac(Unit(), supply)

	first := Amount(reserve0, o.decimals.DecimalsOf(ctx, token0))
	first.Mul(first, fraction)
	second := Amount(reserve1, o.decimals.DecimalsOf(ctx, token1))
	second.Mul(second, fraction)

	price0 := o.PriceOfCoin(ctx, token0)
	price1 := o.PriceOfCoin(ctx, token1)
	if price0.Sign() == 0 || price1.Sign() == 0 {
		o.logger.Warn("constituent price is zero",
			zap.String("token0", token0.Hex()), zap.String("token1", token1.Hex()))
		return new(big.Rat)
	}

	first.Mul(first, RatFromFixed18(price0))
	second.Mul(second, RatFromFixed18(price1))
	return first.Add(first, second)
}

// velocoreSharePrice values a generalized-pool LP token from the factory's
// pool query.
func (o *Oracle) velocoreSharePrice(ctx context.Context, lp common.Address) *big.Rat {
	state, err := o.reader.LiquidityPool(ctx, o.cfg.VelocoreFactory, lp)
	if err != nil {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not query pool, pricing share as plain coin",
			zap.String("pool", lp.Hex()), zap.Error(err))
		return RatFromFixed18(o.PriceOfCoin(ctx, lp))
	}
	if len(state.ListedTokens) < 2 || len(state.Reserves) < 2 || len(state.MintedLPTokens) < 1 {
		return new(big.Rat)
	}

	token0 := o.listedTokenAddress(state.ListedTokens[0])
	token1 := o.listedTokenAddress(state.ListedTokens[1])

	price0 := o.PriceOfCoin(ctx, token0)
	price1 := o.PriceOfCoin(ctx, token1)
	if price0.Sign() == 0 || price1.Sign() == 0 {
		o.logger.Warn("constituent price is zero",
			zap.String("token0", token0.Hex()), zap.String("token1", token1.Hex()))
		return new(big.Rat)
	}

	supply := Amount(state.MintedLPTokens[0], o.decimals.DecimalsOf(ctx, lp))
	if supply.Sign() == 0 {
		return new(big.Rat)
	}

	amount0 := Amount(state.Reserves[0], o.decimals.DecimalsOf(ctx, token0))
	amount1 := Amount(state.Reserves[1], o.decimals.DecimalsOf(ctx, token1))

	value := amount0.Mul(amount0, RatFromFixed18(price0))
	value.Add(value, amount1.Mul(amount1, RatFromFixed18(price1)))
	return value.Quo(value, supply)
}

// listedTokenAddress unwraps a padded token word, substituting the wrapped
// native token for the native ether sentinel.
func (o *Oracle) listedTokenAddress(word [32]byte) common.Address {
	addr := common.BytesToAddress(word[12:])
	if addr == nativeSentinel {
		return o.cfg.WrappedNative
	}
	return addr
}

// balancerSharePrice values a weighted pool share. Constituents that are
// themselves weighted pools are valued recursively; the visited set tracks
// the current recursion path so a true cycle stops with a zero result
// while a pool reached twice through different branches reprices.
func (o *Oracle) balancerSharePrice(ctx context.Context, pool common.Address, visited mapset.Set[common.Address]) *big.Rat {
	if !visited.Add(pool) {
		o.logger.Warn("cyclic pool composition", zap.String("pool", pool.Hex()))
		return new(big.Rat)
	}
	defer visited.Remove(pool)

	poolID, err := o.reader.PoolID(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not get pool id", zap.String("pool", pool.Hex()), zap.Error(err))
		return new(big.Rat)
	}
	supply, err := o.reader.TotalSupply(ctx, pool)
	if err != nil || supply.Sign() == 0 {
		o.metrics.IncRevertedCalls()
		return new(big.Rat)
	}
	vaultAddr, err := o.reader.PoolVault(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		return new(big.Rat)
	}
	tokens, balances, err := o.reader.PoolTokens(ctx, vaultAddr, poolID)
	if err != nil || len(tokens) != len(balances) {
		o.metrics.IncRevertedCalls()
		return new(big.Rat)
	}

	sum := new(big.Rat)
	for i, tokenAddr := range tokens {
		decimals := o.decimals.DecimalsOf(ctx, tokenAddr)
		balance := normalizePrecision(balances[i], decimals)

		var tokenPrice *big.Rat
		switch {
		case tokenAddr == pool:
			tokenPrice = new(big.Rat).SetInt64(1)
		case o.isWeightedPool(ctx, tokenAddr):
			tokenPrice = o.balancerSharePrice(ctx, tokenAddr, visited)
		default:
			tokenPrice = RatFromFixed18(o.PriceOfCoin(ctx, tokenAddr))
		}

		sum.Add(sum, balance.Mul(balance, tokenPrice))
	}

	if sum.Sign() <= 0 {
		return sum
	}
	return sum.Quo(sum, new(big.Rat).SetInt(supply))
}

// isWeightedPool reports whether the token itself answers getPoolId.
func (o *Oracle) isWeightedPool(ctx context.Context, token common.Address) bool {
	_, err := o.reader.PoolID(ctx, token)
	return err == nil
}

// normalizePrecision maps a raw balance onto the common 18-decimal basis.
func normalizePrecision(balance *big.Int, decimals uint8) *big.Rat {
	if balance == nil {
		return new(big.Rat)
	}
	denom := new(big.Int).Quo(fixed18, pow10(int(decimals)))
	if denom.Sign() == 0 {
		denom = big.NewInt(1)
	}
	scaled := new(big.Int).Quo(balance, denom)
	return new(big.Rat).SetInt(scaled)
}

// syncSwapSharePrice values a stable-pool share where the total supply
// compensates for the precision gap between the two sides.
func (o *Oracle) syncSwapSharePrice(ctx context.Context, pool common.Address) *big.Rat {
	token0, err := o.reader.Token0(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		return new(big.Rat)
	}
	token1, err := o.reader.Token1(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		return new(big.Rat)
	}

	price0 := o.PriceOfCoin(ctx, token0)
	if price0.Sign() == 0 {
		o.logger.Warn("can not price token0", zap.String("token", token0.Hex()), zap.String("pool", pool.Hex()))
		return new(big.Rat)
	}
	price1 := o.PriceOfCoin(ctx, token1)
	if price1.Sign() == 0 {
		o.logger.Warn("can not price token1", zap.String("token", token1.Hex()), zap.String("pool", pool.Hex()))
		return new(big.Rat)
	}

	decimals0 := o.decimals.DecimalsOf(ctx, token0)
	decimals1 := o.decimals.DecimalsOf(ctx, token1)

	reserve0, reserve1, err := o.reader.Reserves(ctx, pool)
	if err != nil {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not get reserves", zap.String("pool", pool.Hex()), zap.Error(err))
		return new(big.Rat)
	}
	supplyRaw, err := o.reader.TotalSupply(ctx, pool)
	if err != nil || supplyRaw.Sign() == 0 {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not get total supply", zap.String("pool", pool.Hex()), zap.Error(err))
		return new(big.Rat)
	}

	supply := new(big.Rat).SetInt(supplyRaw)
	supply.Quo(supply, scaleRatio(DefaultDecimals+int(decimals0)-int(decimals1)))

	amount0 := Amount(reserve0, decimals0)
	amount1 := Amount(reserve1, decimals1)

	// Each side's price is normalized by that side's own precision.
	value0 := new(big.Rat).SetFrac(price0, pow10(int(decimals0)))
	value1 := new(big.Rat).SetFrac(price1, pow10(int(decimals1)))

	total := amount0.Mul(amount0, value0)
	total.Add(total, amount1.Mul(amount1, value1))
	return total.Quo(total, supply)
}

// curveSharePrice values a stable-pool share by enumerating its coins
// through the optional minter contract.
func (o *Oracle) curveSharePrice(ctx context.Context, pool common.Address) *big.Rat {
	minter := pool
	if resolved, err := o.reader.Minter(ctx, pool); err == nil {
		minter = resolved
	}

	// Enumeration ends at the first revert or the first zero address.
	index := int64(0)
	for {
		coin, err := o.reader.Coin(ctx, minter, index)
		if err != nil {
			break
		}
		if coin == (common.Address{}) {
			index--
			break
		}
		index++
	}
	size := index + 1
	if size < 1 {
		return new(big.Rat)
	}

	value := new(big.Rat)
	for i := int64(0); i < size; i++ {
		coin, err := o.reader.Coin(ctx, minter, i)
		if err != nil {
			break
		}
		coinPrice := RatFromFixed18(o.PriceOfCoin(ctx, coin))
		balance, err := o.reader.CoinBalance(ctx, minter, i)
		if err != nil {
			o.metrics.IncRevertedCalls()
			o.logger.Warn("can not get coin balance",
				zap.String("minter", minter.Hex()), zap.Int64("index", i), zap.Error(err))
			return new(big.Rat)
		}
		entry := Amount(balance, o.decimals.DecimalsOf(ctx, coin))
		value.Add(value, entry.Mul(entry, coinPrice))
	}

	supply, err := o.reader.TotalSupply(ctx, pool)
	if err != nil || supply.Sign() == 0 {
		o.metrics.IncRevertedCalls()
		o.logger.Warn("can not get total supply", zap.String("pool", pool.Hex()), zap.Error(err))
		return new(big.Rat)
	}

	value.Mul(value, new(big.Rat).SetInt(Unit()))
	return value.Quo(value, new(big.Rat).SetInt(supply))
}
