// Package venuetest provides a scripted venue.Adapter for tests.
package venuetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"arbScope/internal/model"
	"arbScope/internal/venue"
)

type key struct {
	pair    model.TokenPair
	venue   string
	feeTier uint32
}

type response struct {
	price decimal.Decimal
	depth decimal.Decimal
	err   error
	hold  <-chan struct{}
}

// FakeAdapter answers quote requests from a script. Requests without a
// scripted response fail with venue.ErrPoolNotFound.
type FakeAdapter struct {
	mu          sync.Mutex
	responses   map[key]response
	calls       int
	inFlight    int
	maxInFlight int
	Now         time.Time
}

func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		responses: make(map[key]response),
		Now:       time.Unix(1700000000, 0).UTC(),
	}
}

// Set scripts a price and depth for (pair, venue, fee tier).
func (f *FakeAdapter) Set(pair model.TokenPair, venueName string, feeTier uint32, price, depth string) {
	f.set(pair, venueName, feeTier, response{
		price: decimal.RequireFromString(price),
		depth: decimal.RequireFromString(depth),
	})
}

// SetErr scripts a failure.
func (f *FakeAdapter) SetErr(pair model.TokenPair, venueName string, feeTier uint32, err error) {
	f.set(pair, venueName, feeTier, response{err: err})
}

// Hold makes the scripted response wait until release is closed or the call
// context ends.
func (f *FakeAdapter) Hold(pair model.TokenPair, venueName string, feeTier uint32, release <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{pair: pair, venue: venueName, feeTier: feeTier}
	r := f.responses[k]
	r.hold = release
	f.responses[k] = r
}

func (f *FakeAdapter) set(pair model.TokenPair, venueName string, feeTier uint32, r response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{pair: pair, venue: venueName, feeTier: feeTier}
	r.hold = f.responses[k].hold
	f.responses[k] = r
}

// Calls returns the number of FetchQuote calls.
func (f *FakeAdapter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// MaxInFlight returns the highest number of concurrent calls observed.
func (f *FakeAdapter) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// FetchQuote implements venue.Adapter.
func (f *FakeAdapter) FetchQuote(ctx context.Context, req venue.Request) (model.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	r, ok := f.responses[key{pair: req.Pair, venue: req.Venue.Name, feeTier: req.FeeTier}]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if r.hold != nil {
		select {
		case <-r.hold:
		case <-ctx.Done():
			return model.Quote{}, ctx.Err()
		}
	}
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s %s/%d", venue.ErrPoolNotFound, req.Pair, req.Venue.Name, req.FeeTier)
	}
	if r.err != nil {
		return model.Quote{}, r.err
	}
	return model.NewQuote(req.Pair, req.Venue.Name, req.FeeTier, r.price, r.depth, f.Now)
}

var _ venue.Adapter = (*FakeAdapter)(nil)
