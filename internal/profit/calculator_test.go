package profit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbScope/internal/model"
	"arbScope/internal/registry"
	"arbScope/internal/registry/regtest"
)

var wethUSDC = model.TokenPair{Base: "WETH", Quote: "USDC"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quote(t *testing.T, pair model.TokenPair, venue string, tier uint32, price, depth string) model.Quote {
	t.Helper()
	q, err := model.NewQuote(pair, venue, tier, dec(price), dec(depth), time.Unix(1700000000, 0))
	require.NoError(t, err)
	return q
}

func direct(t *testing.T, buyPrice, buyDepth, sellPrice, sellDepth string) model.DirectCandidate {
	buy := quote(t, wethUSDC, regtest.UniswapV3, 500, buyPrice, buyDepth)
	sell := quote(t, wethUSDC, regtest.SushiswapV2, 3000, sellPrice, sellDepth)
	return model.DirectCandidate{
		Pair:   wethUSDC,
		Buy:    buy,
		Sell:   sell,
		Spread: sell.Price.Sub(buy.Price).DivRound(buy.Price, 18),
	}
}

func calculator(t *testing.T, mutate func(*registry.Spec)) *Calculator {
	spec := regtest.Spec()
	if mutate != nil {
		mutate(&spec)
	}
	return NewCalculator(regtest.New(t, spec))
}

func TestScoreDirectCapsNotionalAtDepth(t *testing.T) {
	calc := calculator(t, func(s *registry.Spec) { s.Thresholds.TargetNotionalUSD = "100000" })

	plan := calc.ScoreDirect(direct(t, "3000", "50000", "3010", "20000"))
	assert.Equal(t, model.PlanDirect, plan.Kind)
	assert.Equal(t, "USDC", plan.BorrowToken)
	assert.True(t, plan.Notional.Equal(dec("20000")), "notional %s", plan.Notional)
}

func TestScoreDirectNetEqualToThresholdIsNotProfitable(t *testing.T) {
	calc := calculator(t, nil)

	// 20000 * 0.00105 = 21 gross, minus 10 loan fee and 1 gas leaves exactly 10.
	plan := calc.ScoreDirect(direct(t, "3000", "50000", "3003.15", "20000"))
	require.True(t, plan.NetProfit.Equal(dec("10")), "net %s", plan.NetProfit)
	assert.False(t, plan.Profitable)

	plan = calc.ScoreDirect(direct(t, "3000", "50000", "3003.3", "20000"))
	require.True(t, plan.NetProfit.Equal(dec("11")), "net %s", plan.NetProfit)
	assert.True(t, plan.Profitable)
}

func TestScoreDirectNetFormulaIsExact(t *testing.T) {
	calc := calculator(t, func(s *registry.Spec) {
		s.Thresholds.FlashLoanFeeRate = "0.0009"
		s.Thresholds.GasCostUSD = "3.17"
	})

	plan := calc.ScoreDirect(direct(t, "2999.13", "12345.678", "3011.77", "98765.4321"))
	want := plan.GrossProfit.Sub(plan.FlashLoanFee).Sub(plan.GasCost)
	assert.True(t, plan.NetProfit.Equal(want))
	assert.True(t, plan.FlashLoanFee.Equal(plan.NotionalUSD.Mul(dec("0.0009"))))
	assert.True(t, plan.GasCost.Equal(dec("3.17")))
	assert.True(t, plan.Notional.Equal(dec("12345.678")))
}

func TestScoreDirectBelowNotionalFloor(t *testing.T) {
	calc := calculator(t, nil)

	plan := calc.ScoreDirect(direct(t, "3000", "500", "3300", "900"))
	assert.True(t, plan.NetProfit.GreaterThan(dec("10")))
	assert.False(t, plan.Profitable)
}

func TestScoreDirectIsIdempotent(t *testing.T) {
	calc := calculator(t, nil)
	dc := direct(t, "3000", "50000", "3030", "20000")

	first := calc.ScoreDirect(dc)
	second := calc.ScoreDirect(dc)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.ID)

	other := calc.ScoreDirect(direct(t, "3000", "50000", "3040", "20000"))
	assert.Equal(t, first.ID, other.ID, "same route keeps its id")
}

func TestScoreTriangularConvertsDepths(t *testing.T) {
	calc := calculator(t, func(s *registry.Spec) { s.Tokens[0].USDPrice = "3000" })

	arbUSDC := model.TokenPair{Base: "ARB", Quote: "USDC"}
	arbWETH := model.TokenPair{Base: "ARB", Quote: "WETH"}
	tc := model.TriangularCandidate{
		Tokens: [3]string{"WETH", "USDC", "ARB"},
		Hops: [3]model.Hop{
			{From: "WETH", To: "USDC", Quote: quote(t, wethUSDC, regtest.UniswapV3, 500, "3000", "50000"), Rate: dec("3000")},
			{From: "USDC", To: "ARB", Quote: quote(t, arbUSDC, regtest.UniswapV3, 500, "1", "40000"), Inverted: true, Rate: dec("1")},
			{From: "ARB", To: "WETH", Quote: quote(t, arbWETH, regtest.SushiswapV2, 3000, "0.00034", "30"), Rate: dec("0.00034")},
		},
		Multiplier: dec("1.02"),
	}

	plan := calc.ScoreTriangular(tc)
	assert.Equal(t, model.PlanTriangular, plan.Kind)
	assert.Equal(t, "WETH", plan.BorrowToken)
	// 40000 USDC of ARB/USDC depth is 13.33 WETH at 3000 USDC per WETH.
	assert.Equal(t, "13.333333333333333333", plan.Notional.String())
	assert.True(t, plan.NetProfit.Equal(plan.GrossProfit.Sub(plan.FlashLoanFee).Sub(plan.GasCost)))
	assert.True(t, plan.Profitable)
	assert.Equal(t, plan, calc.ScoreTriangular(tc))
}

func TestScoreKeepsOrder(t *testing.T) {
	calc := calculator(t, nil)
	plans := calc.Score([]model.DirectCandidate{
		direct(t, "3000", "50000", "3010", "20000"),
		direct(t, "3000", "50000", "3001", "20000"),
	}, nil)
	require.Len(t, plans, 2)
	assert.True(t, plans[0].Profitable)
	assert.False(t, plans[1].Profitable)
}
