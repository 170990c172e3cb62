// Package sinktest provides an in-memory sink for tests.
package sinktest

import (
	"context"
	"sync"

	"arbScope/internal/model"
)

// Recorder keeps every published cycle and can be told to fail.
type Recorder struct {
	mu     sync.Mutex
	cycles []model.ScanCycle
	Err    error
}

func (r *Recorder) Name() string {
	return "recorder"
}

func (r *Recorder) Publish(_ context.Context, cycle model.ScanCycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles = append(r.cycles, cycle)
	return r.Err
}

// Cycles returns a copy of the published cycles.
func (r *Recorder) Cycles() []model.ScanCycle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ScanCycle(nil), r.cycles...)
}
