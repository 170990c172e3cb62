// Package profit sizes candidates against flash-loan limits and pool depth
// and nets out loan fees and gas.
package profit

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arbScope/internal/model"
	"arbScope/internal/registry"
)

const usdScale = 18

// planNamespace keys deterministic plan IDs.
var planNamespace = uuid.MustParse("6f0b8a52-3c1e-4c55-9a4e-2b7d1f8e0c91")

// Calculator scores candidates. It holds no mutable state and is safe for
// concurrent use.
type Calculator struct {
	reg        *registry.Registry
	thresholds registry.Thresholds
}

func NewCalculator(reg *registry.Registry) *Calculator {
	return &Calculator{reg: reg, thresholds: reg.Thresholds()}
}

// ScoreDirect sizes a direct candidate. The borrowed token is the pair's
// quote token, so both quote depths are already in borrowed units.
func (c *Calculator) ScoreDirect(dc model.DirectCandidate) model.TradePlan {
	cand := dc
	plan := model.TradePlan{
		ID:          planID(directKey(dc)),
		Kind:        model.PlanDirect,
		Direct:      &cand,
		BorrowToken: dc.Pair.Quote,
	}
	token, ok := c.reg.Token(dc.Pair.Quote)
	if !ok {
		return plan
	}
	depth := decimal.Min(dc.Buy.Depth, dc.Sell.Depth)
	return c.finish(plan, token, depth, dc.Spread)
}

// ScoreTriangular sizes a triangular candidate. The borrowed token is the
// cycle start token and every hop depth is converted to start-token units.
func (c *Calculator) ScoreTriangular(tc model.TriangularCandidate) model.TradePlan {
	cand := tc
	plan := model.TradePlan{
		ID:          planID(triangularKey(tc)),
		Kind:        model.PlanTriangular,
		Triangular:  &cand,
		BorrowToken: tc.Tokens[0],
	}
	token, ok := c.reg.Token(tc.Tokens[0])
	if !ok {
		return plan
	}
	depth, ok := cycleDepth(tc)
	if !ok {
		return plan
	}
	return c.finish(plan, token, depth, tc.Multiplier.Sub(decimal.NewFromInt(1)))
}

// Score sizes every candidate and returns the plans in input order, direct
// candidates first.
func (c *Calculator) Score(direct []model.DirectCandidate, triangular []model.TriangularCandidate) []model.TradePlan {
	plans := make([]model.TradePlan, 0, len(direct)+len(triangular))
	for _, dc := range direct {
		plans = append(plans, c.ScoreDirect(dc))
	}
	for _, tc := range triangular {
		plans = append(plans, c.ScoreTriangular(tc))
	}
	return plans
}

func (c *Calculator) finish(plan model.TradePlan, token registry.Token, depth, edge decimal.Decimal) model.TradePlan {
	th := c.thresholds
	target := th.TargetNotionalUSD.DivRound(token.USDPrice, usdScale)
	maxLoan := th.MaxFlashLoanUSD.DivRound(token.USDPrice, usdScale)

	notional := decimal.Min(target, maxLoan, depth)
	if notional.IsNegative() {
		notional = decimal.Zero
	}
	notionalUSD := notional.Mul(token.USDPrice)

	plan.Notional = notional
	plan.NotionalUSD = notionalUSD
	plan.GrossProfit = notionalUSD.Mul(edge)
	plan.FlashLoanFee = notionalUSD.Mul(th.FlashLoanFeeRate)
	plan.GasCost = th.GasCostUSD
	plan.NetProfit = plan.GrossProfit.Sub(plan.FlashLoanFee).Sub(plan.GasCost)
	plan.Profitable = Qualifies(plan, th)
	return plan
}

// Qualifies applies the strict net-profit threshold and the notional floor.
func Qualifies(plan model.TradePlan, th registry.Thresholds) bool {
	return plan.NetProfit.GreaterThan(th.MinNetProfitUSD) &&
		plan.NotionalUSD.GreaterThanOrEqual(th.MinNotionalUSD)
}

// cycleDepth returns the smallest hop depth in start-token units. A forward
// hop's depth is in its To token, an inverted hop's depth in its From token.
func cycleDepth(tc model.TriangularCandidate) (decimal.Decimal, bool) {
	var (
		smallest decimal.Decimal
		reach    = decimal.NewFromInt(1)
	)
	for i, h := range tc.Hops {
		if !h.Rate.IsPositive() {
			return decimal.Zero, false
		}
		before := reach
		reach = reach.Mul(h.Rate)
		scale := reach
		if h.Inverted {
			scale = before
		}
		depth := h.Quote.Depth.DivRound(scale, usdScale)
		if i == 0 || depth.LessThan(smallest) {
			smallest = depth
		}
	}
	return smallest, true
}

func planID(key string) string {
	return uuid.NewSHA1(planNamespace, []byte(key)).String()
}

func directKey(dc model.DirectCandidate) string {
	return fmt.Sprintf("direct|%s|%s|%s", dc.Pair, dc.Buy.Source(), dc.Sell.Source())
}

func triangularKey(tc model.TriangularCandidate) string {
	parts := []string{"triangular", tc.Path()}
	for _, h := range tc.Hops {
		parts = append(parts, h.Quote.Source())
	}
	return strings.Join(parts, "|")
}
