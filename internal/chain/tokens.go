package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"arbScope/internal/model"
)

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// ExpectedToken is a configured token whose decimals must match the chain.
type ExpectedToken struct {
	Symbol   string
	Address  common.Address
	Decimals uint8
}

// VerifyTokens fetches on-chain metadata for every token with retries and
// fails when a configured decimals value disagrees with the contract.
func VerifyTokens(ctx context.Context, caller Caller, cache *TokenMetaCache, tokens []ExpectedToken, maxRetries int, backoff time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewTokenMetaCache()
	}

	for _, token := range tokens {
		meta, ok := cache.Get(token.Address)
		if !ok {
			err := WithRetry(ctx, maxRetries, backoff, func(ctx context.Context) error {
				var err error
				meta, err = FetchTokenMeta(ctx, caller, token.Address, logger)
				if err != nil {
					logger.Warn("token metadata fetch failed", zap.String("token", token.Symbol), zap.Error(err))
				}
				return err
			})
			if err != nil {
				return fmt.Errorf("token %s metadata: %w", token.Symbol, err)
			}
			cache.Set(token.Address, meta)
		}

		if meta.Decimals != token.Decimals {
			return fmt.Errorf("token %s: configured decimals %d, chain reports %d", token.Symbol, token.Decimals, meta.Decimals)
		}
		logger.Debug("token verified",
			zap.String("token", token.Symbol),
			zap.String("address", token.Address.Hex()),
			zap.String("chain_symbol", meta.Symbol),
			zap.Uint8("decimals", meta.Decimals),
		)
	}
	return nil
}
