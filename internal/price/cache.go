package price

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// DecimalsReader resolves a token's on-chain decimal precision.
type DecimalsReader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// DecimalsCache caches token decimals by address. A failed lookup falls
// back to DefaultDecimals without caching the failure, so later calls retry.
type DecimalsCache struct {
	mu     sync.RWMutex
	data   map[common.Address]uint8
	reader DecimalsReader
	logger *zap.Logger
}

func NewDecimalsCache(reader DecimalsReader, logger *zap.Logger) *DecimalsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DecimalsCache{
		data:   make(map[common.Address]uint8),
		reader: reader,
		logger: logger,
	}
}

// DecimalsOf returns the token's precision, querying on first use.
func (c *DecimalsCache) DecimalsOf(ctx context.Context, token common.Address) uint8 {
	c.mu.RLock()
	decimals, ok := c.data[token]
	c.mu.RUnlock()
	if ok {
		return decimals
	}

	decimals, err := c.reader.Decimals(ctx, token)
	if err != nil {
		c.logger.Debug("decimals fetch failed", zap.String("token", token.Hex()), zap.Error(err))
		return DefaultDecimals
	}

	c.mu.Lock()
	c.data[token] = decimals
	c.mu.Unlock()

	return decimals
}
