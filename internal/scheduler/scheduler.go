// Package scheduler drives scan cycles on a fixed cadence. At most one cycle
// is active at a time; ticks that arrive while a cycle runs are dropped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"arbScope/internal/detect"
	"arbScope/internal/model"
	"arbScope/internal/profit"
	"arbScope/internal/registry"
	"arbScope/internal/sink"
)

// ErrCycleInFlight is returned by RunCycle when another cycle is active.
var ErrCycleInFlight = errors.New("scan cycle already in flight")

const publishTimeout = 10 * time.Second

// Config holds scheduling settings.
type Config struct {
	Cadence       time.Duration
	CycleDeadline time.Duration
	// MaxCycles stops Run after that many cycles have started. Zero runs
	// until the context ends.
	MaxCycles int
}

// Validate checks the cadence and deadline relationship.
func (c Config) Validate() error {
	if c.Cadence <= 0 {
		return fmt.Errorf("cadence must be greater than zero")
	}
	if c.CycleDeadline <= 0 {
		return fmt.Errorf("cycle deadline must be greater than zero")
	}
	if c.CycleDeadline >= c.Cadence {
		return fmt.Errorf("cycle deadline %s must be shorter than cadence %s", c.CycleDeadline, c.Cadence)
	}
	if c.MaxCycles < 0 {
		return fmt.Errorf("max cycles must not be negative")
	}
	return nil
}

// Collector gathers the quotes of one cycle.
type Collector interface {
	Collect(ctx context.Context, reg *registry.Registry) model.CollectResult
}

// Ticker delivers cadence ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithTicker replaces the wall-clock ticker.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(s *Scheduler) { s.newTicker = newTicker }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithSequenceStore persists cycle numbering.
func WithSequenceStore(store SequenceStore) Option {
	return func(s *Scheduler) { s.seqStore = store }
}

// Scheduler runs collect, detect, score and seal for each cycle and hands the
// sealed ScanCycle to the sink.
type Scheduler struct {
	cfg       Config
	reg       *registry.Registry
	collector Collector
	calc      *profit.Calculator
	sink      sink.Sink
	logger    *zap.Logger

	newTicker func(time.Duration) Ticker
	now       func() time.Time
	seqStore  SequenceStore

	state      atomic.Int32
	running    atomic.Bool
	seq        atomic.Uint64
	resumeOnce sync.Once
}

// New builds a Scheduler. out may be nil when cycles are only logged.
func New(cfg Config, reg *registry.Registry, collector Collector, out sink.Sink, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cfg:       cfg,
		reg:       reg,
		collector: collector,
		calc:      profit.NewCalculator(reg),
		sink:      out,
		logger:    logger,
		newTicker: func(d time.Duration) Ticker { return timeTicker{t: time.NewTicker(d)} },
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports where the current cycle is.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run starts a cycle immediately and then on every cadence tick until ctx
// ends or MaxCycles cycles have started. It returns after the in-flight cycle
// has sealed.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	var (
		wg      sync.WaitGroup
		started int
	)
	defer wg.Wait()

	// launch reports whether more cycles may start.
	launch := func() bool {
		if !s.running.CompareAndSwap(false, true) {
			s.logger.Warn("cycle still in flight, skipping tick", zap.Uint64("sequence", s.seq.Load()), zap.Stringer("state", s.State()))
			return true
		}
		started++
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.running.Store(false)
			s.runCycle(ctx)
		}()
		return s.cfg.MaxCycles == 0 || started < s.cfg.MaxCycles
	}

	if !launch() {
		return nil
	}

	ticker := s.newTicker(s.cfg.Cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", zap.Int("cycles_started", started))
			return ctx.Err()
		case <-ticker.C():
			if !launch() {
				return nil
			}
		}
	}
}

// RunCycle runs one cycle synchronously and returns the sealed ScanCycle.
func (s *Scheduler) RunCycle(ctx context.Context) (model.ScanCycle, error) {
	if !s.running.CompareAndSwap(false, true) {
		return model.ScanCycle{}, ErrCycleInFlight
	}
	defer s.running.Store(false)
	return s.runCycle(ctx), nil
}

func (s *Scheduler) runCycle(ctx context.Context) model.ScanCycle {
	s.resume(ctx)

	cycle := model.ScanCycle{
		ID:        uuid.NewString(),
		Sequence:  s.seq.Add(1),
		StartedAt: s.now(),
	}

	s.state.Store(int32(StateCollecting))
	collectCtx := ctx
	if s.cfg.CycleDeadline > 0 {
		var cancel context.CancelFunc
		collectCtx, cancel = context.WithTimeout(ctx, s.cfg.CycleDeadline)
		defer cancel()
	}
	res := s.collector.Collect(collectCtx, s.reg)

	s.state.Store(int32(StateScoring))
	direct := detect.Spreads(res.Quotes)
	triangular := detect.Triangles(res.Quotes, s.reg)
	plans := s.calc.Score(direct, triangular)

	cycle.Block = res.Block
	cycle.CollectStats = res.Stats
	cycle.DirectCandidates = len(direct)
	cycle.TriangularCandidates = len(triangular)
	cycle.Opportunities = qualifying(plans)
	cycle.EndedAt = s.now()
	s.state.Store(int32(StateSealed))

	s.logSummary(cycle)
	s.publish(ctx, cycle)

	s.state.Store(int32(StateIdle))
	return cycle
}

// qualifying keeps profitable plans, best net profit first.
func qualifying(plans []model.TradePlan) []model.TradePlan {
	out := make([]model.TradePlan, 0, len(plans))
	for _, p := range plans {
		if p.Profitable {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetProfit.GreaterThan(out[j].NetProfit)
	})
	return out
}

func (s *Scheduler) logSummary(cycle model.ScanCycle) {
	fields := []zap.Field{
		zap.String("cycle_id", cycle.ID),
		zap.Uint64("sequence", cycle.Sequence),
		zap.Duration("duration", cycle.Duration()),
		zap.Int("pairs_attempted", cycle.PairsAttempted),
		zap.Int("pairs_succeeded", cycle.PairsSucceeded),
		zap.Int("quotes_attempted", cycle.QuotesAttempted),
		zap.Int("quotes_succeeded", cycle.QuotesSucceeded),
		zap.Int("quotes_failed", cycle.QuotesFailed),
		zap.Int("quotes_void", cycle.QuotesVoid),
		zap.Int("quotes_thin", cycle.QuotesThin),
		zap.Bool("deadline_exceeded", cycle.DeadlineExceeded),
		zap.Int("direct_candidates", cycle.DirectCandidates),
		zap.Int("triangular_candidates", cycle.TriangularCandidates),
		zap.Int("opportunities", len(cycle.Opportunities)),
	}
	if cycle.Block != 0 {
		fields = append(fields, zap.Uint64("block", cycle.Block))
	}
	s.logger.Info("scan cycle sealed", fields...)
}

// publish delivers the sealed cycle even when ctx is already cancelled, so a
// shutdown does not lose the cycle it interrupted.
func (s *Scheduler) publish(ctx context.Context, cycle model.ScanCycle) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if s.sink != nil {
		if err := s.sink.Publish(pubCtx, cycle); err != nil {
			s.logger.Error("publish scan cycle", zap.String("cycle_id", cycle.ID), zap.Error(err))
		}
	}
	if s.seqStore != nil {
		if err := s.seqStore.SaveSequence(pubCtx, cycle.Sequence); err != nil {
			s.logger.Warn("save sequence", zap.Uint64("sequence", cycle.Sequence), zap.Error(err))
		}
	}
}

func (s *Scheduler) resume(ctx context.Context) {
	s.resumeOnce.Do(func() {
		if s.seqStore == nil {
			return
		}
		last, ok, err := s.seqStore.LoadSequence(ctx)
		if err != nil {
			s.logger.Warn("load sequence, numbering from zero", zap.Error(err))
			return
		}
		if ok {
			s.seq.Store(last)
			s.logger.Info("resume from checkpoint", zap.Uint64("last_sequence", last))
		}
	})
}
