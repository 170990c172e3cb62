// Package sink delivers sealed scan cycles to external consumers.
package sink

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"arbScope/internal/model"
)

// Sink receives every sealed ScanCycle. Implementations must not retain the
// cycle after Publish returns.
type Sink interface {
	Name() string
	Publish(ctx context.Context, cycle model.ScanCycle) error
}

// Multi fans a cycle out to several sinks. Every sink is attempted and the
// failures are combined.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Multi{sinks: out}
}

func (m *Multi) Name() string {
	return "multi"
}

func (m *Multi) Publish(ctx context.Context, cycle model.ScanCycle) error {
	var err error
	for _, s := range m.sinks {
		if pubErr := s.Publish(ctx, cycle); pubErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", s.Name(), pubErr))
		}
	}
	return err
}

// Len returns the number of wrapped sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}
