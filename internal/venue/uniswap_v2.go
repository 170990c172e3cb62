package venue

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"arbScope/internal/chain"
)

func (q *Quoter) quoteV2(ctx context.Context, req Request, amountIn *big.Int) (*big.Int, common.Address, error) {
	factoryABI, err := V2FactoryABI()
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	routerABI, err := V2RouterABI()
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("parse router abi: %w", err)
	}

	values, err := chain.Call(ctx, q.caller, req.Venue.Factory, factoryABI, "getPair", req.Block,
		req.Base.Address, req.Quote.Address)
	if err != nil {
		return nil, common.Address{}, err
	}
	pair, err := chain.AsAddress(values[0])
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("getPair: %w", err)
	}
	if pair == (common.Address{}) {
		return nil, common.Address{}, fmt.Errorf("%w: %s", ErrPoolNotFound, req.Pair)
	}

	path := []common.Address{req.Base.Address, req.Quote.Address}
	values, err = chain.Call(ctx, q.caller, req.Venue.Router, routerABI, "getAmountsOut", req.Block, amountIn, path)
	if err != nil {
		return nil, common.Address{}, err
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) != len(path) {
		return nil, common.Address{}, fmt.Errorf("getAmountsOut: unexpected result %T", values[0])
	}
	return new(big.Int).Set(amounts[len(amounts)-1]), pair, nil
}
