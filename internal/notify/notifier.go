package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"arbScope/internal/model"
)

// Sender delivers a titled message.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier turns the opportunities of a sealed cycle into alerts.
type Notifier struct {
	sender   Sender
	maxSends int
}

// NewNotifier caps alerts per cycle at maxPerCycle; zero means no cap.
func NewNotifier(sender Sender, maxPerCycle int) *Notifier {
	return &Notifier{sender: sender, maxSends: maxPerCycle}
}

func (n *Notifier) Name() string {
	return n.sender.Name()
}

// Publish sends one alert per opportunity in the order the cycle lists them.
func (n *Notifier) Publish(ctx context.Context, cycle model.ScanCycle) error {
	var err error
	for i, plan := range cycle.Opportunities {
		if n.maxSends > 0 && i >= n.maxSends {
			break
		}
		if sendErr := n.sender.Send(ctx, Title(plan), Body(plan)); sendErr != nil {
			err = multierr.Append(err, fmt.Errorf("plan %s: %w", plan.ID, sendErr))
		}
	}
	return err
}

var hundred = decimal.NewFromInt(100)

// Title renders the alert headline.
func Title(plan model.TradePlan) string {
	switch {
	case plan.Direct != nil:
		return "Arbitrage " + plan.Direct.Pair.String()
	case plan.Triangular != nil:
		return "Triangular " + plan.Triangular.Path()
	default:
		return "Arbitrage"
	}
}

// Body renders the alert details.
func Body(plan model.TradePlan) string {
	var b strings.Builder
	switch {
	case plan.Direct != nil:
		d := plan.Direct
		fmt.Fprintf(&b, "Spread: %s%%\n", d.Spread.Mul(hundred).StringFixed(3))
		fmt.Fprintf(&b, "Buy: %s @ %s (depth %s)\n", d.Buy.Source(), d.Buy.Price, d.Buy.Depth.StringFixed(0))
		fmt.Fprintf(&b, "Sell: %s @ %s (depth %s)\n", d.Sell.Source(), d.Sell.Price, d.Sell.Depth.StringFixed(0))
	case plan.Triangular != nil:
		tri := plan.Triangular
		fmt.Fprintf(&b, "Cycle return: %s%%\n", tri.Multiplier.Sub(decimal.NewFromInt(1)).Mul(hundred).StringFixed(3))
		for _, h := range tri.Hops {
			fmt.Fprintf(&b, "%s->%s: %s @ %s\n", h.From, h.To, h.Quote.Source(), h.Rate)
		}
	}
	fmt.Fprintf(&b, "Loan: %s %s ($%s)\n", plan.Notional.StringFixed(4), plan.BorrowToken, plan.NotionalUSD.StringFixed(2))
	fmt.Fprintf(&b, "Gross: $%s\n", plan.GrossProfit.StringFixed(2))
	fmt.Fprintf(&b, "Net: $%s", plan.NetProfit.StringFixed(2))
	if plan.NotionalUSD.IsPositive() {
		roi := plan.NetProfit.DivRound(plan.NotionalUSD, 8).Mul(hundred)
		fmt.Fprintf(&b, "\nROI: %s%%", roi.StringFixed(2))
	}
	return b.String()
}
