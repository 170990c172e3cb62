// Package collector fans venue quote calls out over a bounded worker pool and
// merges the results of one scan cycle into a QuoteSet.
package collector

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"arbScope/internal/model"
	"arbScope/internal/registry"
	"arbScope/internal/venue"
)

// Config controls collection behavior.
type Config struct {
	Workers     int
	CallTimeout time.Duration
	// PinBlock quotes every call of a cycle at the block observed when the
	// cycle starts.
	PinBlock bool
}

// BlockSource reports the latest block number.
type BlockSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// Collector gathers one QuoteSet per call to Collect.
type Collector struct {
	cfg     Config
	adapter venue.Adapter
	blocks  BlockSource
	logger  *zap.Logger
}

type job struct {
	index int
	req   venue.Request
}

type jobResult struct {
	job   job
	quote model.Quote
	err   error
}

// New builds a Collector. blocks may be nil when PinBlock is off.
func New(cfg Config, adapter venue.Adapter, blocks BlockSource, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	return &Collector{
		cfg:     cfg,
		adapter: adapter,
		blocks:  blocks,
		logger:  logger,
	}
}

// Collect issues one adapter call per (pair, venue, fee tier) and returns the
// valid quotes gathered before ctx ends. ctx carries the cycle deadline: once
// it is done no new call is dispatched and results still in flight are
// dropped. Individual calls are bounded by CallTimeout only, so a call that
// already started is allowed to finish on its own.
func (c *Collector) Collect(ctx context.Context, reg *registry.Registry) model.CollectResult {
	jobs := c.plan(reg)
	result := model.CollectResult{Quotes: make(model.QuoteSet)}
	result.Stats.PairsAttempted = len(reg.Pairs())
	result.Stats.QuotesAttempted = len(jobs)

	block := c.pinBlock(ctx)
	if block != nil {
		result.Block = block.Uint64()
		for i := range jobs {
			jobs[i].req.Block = block
		}
	}

	results := make(chan jobResult, len(jobs))
	sem := semaphore.NewWeighted(int64(c.cfg.Workers))
	callParent := context.WithoutCancel(ctx)

	dispatched := 0
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		dispatched++
		go func(j job) {
			defer sem.Release(1)
			callCtx, cancel := context.WithTimeout(callParent, c.cfg.CallTimeout)
			defer cancel()
			quote, err := c.adapter.FetchQuote(callCtx, j.req)
			results <- jobResult{job: j, quote: quote, err: err}
		}(j)
	}

	received := make([]jobResult, 0, dispatched)
merge:
	for len(received) < dispatched {
		select {
		case r := <-results:
			received = append(received, r)
		case <-ctx.Done():
			break merge
		}
	}

	if len(received) < len(jobs) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.Stats.DeadlineExceeded = true
	}

	sort.Slice(received, func(i, k int) bool { return received[i].job.index < received[k].job.index })
	minLiquidity := reg.Thresholds().MinLiquidityUSD
	for _, r := range received {
		req := r.job.req
		if r.err != nil {
			if errors.Is(r.err, model.ErrVoidQuote) {
				result.Stats.QuotesVoid++
				c.logger.Debug("void quote", zap.String("pair", req.Pair.String()), zap.String("venue", req.Venue.Name), zap.Uint32("fee_tier", req.FeeTier), zap.Error(r.err))
				continue
			}
			result.Stats.QuotesFailed++
			result.Failures = append(result.Failures, model.Failure{Pair: req.Pair, Venue: req.Venue.Name, FeeTier: req.FeeTier, Err: r.err})
			if errors.Is(r.err, venue.ErrPoolNotFound) {
				c.logger.Debug("no pool", zap.String("pair", req.Pair.String()), zap.String("venue", req.Venue.Name), zap.Uint32("fee_tier", req.FeeTier))
			} else {
				c.logger.Warn("quote failed", zap.String("pair", req.Pair.String()), zap.String("venue", req.Venue.Name), zap.Uint32("fee_tier", req.FeeTier), zap.Error(r.err))
			}
			continue
		}

		if minLiquidity.IsPositive() && r.quote.Depth.Mul(req.Quote.USDPrice).LessThan(minLiquidity) {
			result.Stats.QuotesThin++
			c.logger.Debug("thin pool", zap.String("pair", req.Pair.String()), zap.String("source", r.quote.Source()), zap.String("depth", r.quote.Depth.String()))
			continue
		}

		result.Quotes.Add(r.quote)
		result.Stats.QuotesSucceeded++
	}
	result.Stats.PairsSucceeded = len(result.Quotes)

	return result
}

func (c *Collector) plan(reg *registry.Registry) []job {
	jobs := make([]job, 0, reg.JobCount())
	for _, pair := range reg.Pairs() {
		base, _ := reg.Token(pair.Base)
		quote, _ := reg.Token(pair.Quote)
		for _, v := range reg.Venues() {
			for _, tier := range v.FeeTiers {
				jobs = append(jobs, job{
					index: len(jobs),
					req: venue.Request{
						Pair:    pair,
						Base:    base,
						Quote:   quote,
						Venue:   v,
						FeeTier: tier,
						Probe:   base.Probe,
					},
				})
			}
		}
	}
	return jobs
}

func (c *Collector) pinBlock(ctx context.Context) *big.Int {
	if !c.cfg.PinBlock || c.blocks == nil {
		return nil
	}
	number, err := c.blocks.LatestBlockNumber(ctx)
	if err != nil {
		c.logger.Warn("latest block lookup failed, quoting at latest", zap.Error(err))
		return nil
	}
	return new(big.Int).SetUint64(number)
}
