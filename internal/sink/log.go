package sink

import (
	"context"

	"go.uber.org/zap"

	"arbScope/internal/model"
)

// LogSink writes one line per qualifying opportunity.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Publish(_ context.Context, cycle model.ScanCycle) error {
	for _, plan := range cycle.Opportunities {
		s.logger.Info("opportunity",
			zap.String("cycle_id", cycle.ID),
			zap.Uint64("sequence", cycle.Sequence),
			zap.String("plan_id", plan.ID),
			zap.String("kind", string(plan.Kind)),
			zap.String("route", plan.Label()),
			zap.String("borrow_token", plan.BorrowToken),
			zap.Stringer("notional", plan.Notional),
			zap.Stringer("notional_usd", plan.NotionalUSD),
			zap.Stringer("gross_usd", plan.GrossProfit),
			zap.Stringer("net_usd", plan.NetProfit),
		)
	}
	return nil
}
