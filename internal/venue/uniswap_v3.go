package venue

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"arbScope/internal/chain"
)

type quoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

func (q *Quoter) quoteV3(ctx context.Context, req Request, amountIn *big.Int) (*big.Int, common.Address, error) {
	factoryABI, err := V3FactoryABI()
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	quoterABI, err := QuoterV2ABI()
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("parse quoter abi: %w", err)
	}

	fee := new(big.Int).SetUint64(uint64(req.FeeTier))
	values, err := chain.Call(ctx, q.caller, req.Venue.Factory, factoryABI, "getPool", req.Block,
		req.Base.Address, req.Quote.Address, fee)
	if err != nil {
		return nil, common.Address{}, err
	}
	pool, err := chain.AsAddress(values[0])
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("getPool: %w", err)
	}
	if pool == (common.Address{}) {
		return nil, common.Address{}, fmt.Errorf("%w: %s fee %d", ErrPoolNotFound, req.Pair, req.FeeTier)
	}

	params := quoteExactInputSingleParams{
		TokenIn:           req.Base.Address,
		TokenOut:          req.Quote.Address,
		AmountIn:          amountIn,
		Fee:               fee,
		SqrtPriceLimitX96: big.NewInt(0),
	}
	values, err = chain.Call(ctx, q.caller, req.Venue.Quoter, quoterABI, "quoteExactInputSingle", req.Block, params)
	if err != nil {
		return nil, common.Address{}, err
	}
	amountOut, err := chain.AsBigInt(values[0])
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("quoteExactInputSingle: %w", err)
	}
	return amountOut, pool, nil
}
