// Package venue fetches single-pool price quotes from on-chain quoting
// contracts. Every call is one network round trip, nothing is cached.
package venue

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"arbScope/internal/chain"
	"arbScope/internal/model"
	"arbScope/internal/registry"
)

var (
	// ErrPoolNotFound is returned when the venue has no pool for the pair and fee tier.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrUnsupportedVenue is returned for venue kinds without an adapter.
	ErrUnsupportedVenue = errors.New("unsupported venue kind")
)

// Request identifies one (pair, venue, fee tier) quote.
type Request struct {
	Pair    model.TokenPair
	Base    registry.Token
	Quote   registry.Token
	Venue   registry.Venue
	FeeTier uint32
	// Probe is the base-token amount sold to discover the price.
	Probe decimal.Decimal
	// Block pins every call of a cycle to one block; nil means latest.
	Block *big.Int
}

// Adapter fetches a single quote.
type Adapter interface {
	FetchQuote(ctx context.Context, req Request) (model.Quote, error)
}

// Quoter dispatches quote requests to the protocol-specific implementation of
// the request's venue.
type Quoter struct {
	caller chain.Caller
	now    func() time.Time
}

// NewQuoter builds a Quoter on top of a contract caller.
func NewQuoter(caller chain.Caller) *Quoter {
	return &Quoter{caller: caller, now: time.Now}
}

// FetchQuote implements Adapter.
func (q *Quoter) FetchQuote(ctx context.Context, req Request) (model.Quote, error) {
	if q.caller == nil {
		return model.Quote{}, fmt.Errorf("chain caller is nil")
	}

	probe := FromUnits(req.Probe, req.Base.Decimals)
	if probe.Sign() <= 0 {
		return model.Quote{}, fmt.Errorf("probe %s %s rounds to zero", req.Probe, req.Base.Symbol)
	}

	var (
		amountOut *big.Int
		pool      common.Address
		err       error
	)
	switch req.Venue.Kind {
	case registry.KindUniswapV3:
		amountOut, pool, err = q.quoteV3(ctx, req, probe)
	case registry.KindUniswapV2:
		amountOut, pool, err = q.quoteV2(ctx, req, probe)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedVenue, req.Venue.Kind)
	}
	if err != nil {
		return model.Quote{}, err
	}

	balance, err := chain.BalanceOf(ctx, q.caller, req.Quote.Address, pool, req.Block)
	if err != nil {
		return model.Quote{}, fmt.Errorf("pool depth: %w", err)
	}

	price := NormalizedPrice(probe, req.Base.Decimals, amountOut, req.Quote.Decimals)
	depth := ToUnits(balance, req.Quote.Decimals)
	return model.NewQuote(req.Pair, req.Venue.Name, req.FeeTier, price, depth, q.now().UTC())
}
