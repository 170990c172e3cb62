package detect

import (
	"github.com/shopspring/decimal"

	"arbScope/internal/model"
	"arbScope/internal/registry"
)

type edge struct {
	from string
	to   string
}

// Triangles enumerates every 3-token cycle whose three hops have valid quotes
// and returns those whose compounded multiplier exceeds the registry's
// minimum cycle multiplier. Each triangle starts at its first flash-loanable
// token in registry order and is evaluated in both directions.
func Triangles(qs model.QuoteSet, reg *registry.Registry) []model.TriangularCandidate {
	hops := bestHops(qs)
	minMultiplier := reg.Thresholds().MinCycleMultiplier
	tokens := reg.Tokens()

	var out []model.TriangularCandidate
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			for k := j + 1; k < len(tokens); k++ {
				start, o1, o2, ok := orient(tokens[i], tokens[j], tokens[k])
				if !ok {
					continue
				}
				for _, order := range [][3]string{{start, o1, o2}, {start, o2, o1}} {
					c, ok := buildCycle(hops, order)
					if !ok {
						continue
					}
					if c.Multiplier.GreaterThan(minMultiplier) {
						out = append(out, c)
					}
				}
			}
		}
	}
	return out
}

// orient picks the first flash-loanable token as the start of the cycle and
// returns the remaining two in registry order.
func orient(a, b, c registry.Token) (string, string, string, bool) {
	switch {
	case a.FlashLoan:
		return a.Symbol, b.Symbol, c.Symbol, true
	case b.FlashLoan:
		return b.Symbol, a.Symbol, c.Symbol, true
	case c.FlashLoan:
		return c.Symbol, a.Symbol, b.Symbol, true
	default:
		return "", "", "", false
	}
}

func buildCycle(hops map[edge]model.Hop, order [3]string) (model.TriangularCandidate, bool) {
	c := model.TriangularCandidate{Tokens: order, Multiplier: one}
	for i := 0; i < 3; i++ {
		h, ok := hops[edge{from: order[i], to: order[(i+1)%3]}]
		if !ok {
			return model.TriangularCandidate{}, false
		}
		c.Hops[i] = h
		c.Multiplier = c.Multiplier.Mul(h.Rate)
	}
	return c, true
}

// bestHops returns the best hop for every directed edge available in the
// QuoteSet. A pair's quotes serve its own direction at price and the reverse
// direction through invertedRate.
func bestHops(qs model.QuoteSet) map[edge]model.Hop {
	best := make(map[edge]model.Hop)
	consider := func(h model.Hop) {
		e := edge{from: h.From, to: h.To}
		if cur, ok := best[e]; !ok || betterHop(h, cur) {
			best[e] = h
		}
	}
	for pair, quotes := range qs {
		for _, q := range quotes {
			consider(model.Hop{From: pair.Base, To: pair.Quote, Quote: q, Rate: q.Price})
			consider(model.Hop{From: pair.Quote, To: pair.Base, Quote: q, Inverted: true, Rate: invertedRate(q)})
		}
	}
	return best
}

// invertedRate prices the quote's pair in the quote->base direction. The
// quoted price is already net of one pool fee for a sale of base, so 1/price
// would hand that fee back; the fee is charged for the traded direction
// instead, leaving (1-fee)^2/price.
func invertedRate(q model.Quote) decimal.Decimal {
	keep := one.Sub(decimal.New(int64(q.FeeTier), -6))
	return keep.Mul(keep).DivRound(q.Price, rateScale)
}

func betterHop(a, b model.Hop) bool {
	if c := a.Rate.Cmp(b.Rate); c != 0 {
		return c > 0
	}
	return preferSource(a.Quote, b.Quote)
}
