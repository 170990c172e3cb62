package model

import "github.com/shopspring/decimal"

// PlanKind distinguishes direct and triangular plans.
type PlanKind string

const (
	PlanDirect     PlanKind = "direct"
	PlanTriangular PlanKind = "triangular"
)

// TradePlan is a sized and costed candidate. Notional is in BorrowToken units,
// all profit and cost fields are in USD.
type TradePlan struct {
	ID           string               `json:"id"`
	Kind         PlanKind             `json:"kind"`
	Direct       *DirectCandidate     `json:"direct,omitempty"`
	Triangular   *TriangularCandidate `json:"triangular,omitempty"`
	BorrowToken  string               `json:"borrow_token"`
	Notional     decimal.Decimal      `json:"notional"`
	NotionalUSD  decimal.Decimal      `json:"notional_usd"`
	GrossProfit  decimal.Decimal      `json:"gross_profit"`
	FlashLoanFee decimal.Decimal      `json:"flash_loan_fee"`
	GasCost      decimal.Decimal      `json:"gas_cost"`
	NetProfit    decimal.Decimal      `json:"net_profit"`
	Profitable   bool                 `json:"profitable"`
}

// Label returns a short human description of the plan route.
func (p TradePlan) Label() string {
	switch {
	case p.Direct != nil:
		return p.Direct.Pair.String() + " " + p.Direct.Buy.Source() + "->" + p.Direct.Sell.Source()
	case p.Triangular != nil:
		return p.Triangular.Path()
	default:
		return string(p.Kind)
	}
}
