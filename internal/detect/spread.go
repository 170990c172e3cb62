// Package detect derives arbitrage candidates from a frozen QuoteSet. Both
// detectors are pure functions of their inputs.
package detect

import (
	"sort"

	"github.com/shopspring/decimal"

	"arbScope/internal/model"
)

const rateScale = 18

// Spreads returns at most one candidate per pair: the cheapest quote as the
// buy side and the richest quote from a different source as the sell side.
// Pairs with fewer than two quotes are skipped. Zero spreads are kept.
func Spreads(qs model.QuoteSet) []model.DirectCandidate {
	pairs := make([]model.TokenPair, 0, len(qs))
	for pair, quotes := range qs {
		if len(quotes) >= 2 {
			pairs = append(pairs, pair)
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].String() < pairs[j].String() })

	out := make([]model.DirectCandidate, 0, len(pairs))
	for _, pair := range pairs {
		if c, ok := bestSpread(pair, qs[pair]); ok {
			out = append(out, c)
		}
	}
	return out
}

func bestSpread(pair model.TokenPair, quotes []model.Quote) (model.DirectCandidate, bool) {
	buy := quotes[0]
	for _, q := range quotes[1:] {
		if cheaper(q, buy) {
			buy = q
		}
	}

	var (
		sell  model.Quote
		found bool
	)
	for _, q := range quotes {
		if q.SameSource(buy) {
			continue
		}
		if !found || richer(q, sell) {
			sell = q
			found = true
		}
	}
	if !found {
		return model.DirectCandidate{}, false
	}

	spread := sell.Price.Sub(buy.Price).DivRound(buy.Price, rateScale)
	return model.DirectCandidate{Pair: pair, Buy: buy, Sell: sell, Spread: spread}, true
}

// cheaper orders buy-side quotes: lower price, then greater depth, then
// lower venue name, then lower fee tier.
func cheaper(a, b model.Quote) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	return preferSource(a, b)
}

// richer orders sell-side quotes: higher price, then the same fallbacks as cheaper.
func richer(a, b model.Quote) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	return preferSource(a, b)
}

func preferSource(a, b model.Quote) bool {
	if c := a.Depth.Cmp(b.Depth); c != 0 {
		return c > 0
	}
	if a.Venue != b.Venue {
		return a.Venue < b.Venue
	}
	return a.FeeTier < b.FeeTier
}

var one = decimal.NewFromInt(1)
