package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrVoidQuote is returned when a quote has a non-positive price or depth.
var ErrVoidQuote = errors.New("void quote")

// Quote is a validated per-venue price observation for one pair and fee tier.
// Price is quote-token units per one base-token unit, depth is in quote-token units.
type Quote struct {
	Pair      TokenPair       `json:"pair"`
	Venue     string          `json:"venue"`
	FeeTier   uint32          `json:"fee_tier"`
	Price     decimal.Decimal `json:"price"`
	Depth     decimal.Decimal `json:"depth"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NewQuote validates price and depth and builds a Quote.
func NewQuote(pair TokenPair, venue string, feeTier uint32, price, depth decimal.Decimal, fetchedAt time.Time) (Quote, error) {
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: %s %s/%d price %s", ErrVoidQuote, pair, venue, feeTier, price)
	}
	if !depth.IsPositive() {
		return Quote{}, fmt.Errorf("%w: %s %s/%d depth %s", ErrVoidQuote, pair, venue, feeTier, depth)
	}
	return Quote{
		Pair:      pair,
		Venue:     venue,
		FeeTier:   feeTier,
		Price:     price,
		Depth:     depth,
		FetchedAt: fetchedAt,
	}, nil
}

// Source identifies the (venue, fee tier) combination the quote came from.
func (q Quote) Source() string {
	return fmt.Sprintf("%s/%d", q.Venue, q.FeeTier)
}

// SameSource reports whether both quotes come from the same venue and fee tier.
func (q Quote) SameSource(other Quote) bool {
	return q.Venue == other.Venue && q.FeeTier == other.FeeTier
}

// QuoteSet holds the valid quotes of one scan cycle keyed by pair.
type QuoteSet map[TokenPair][]Quote

// Add appends a quote under its pair.
func (qs QuoteSet) Add(q Quote) {
	qs[q.Pair] = append(qs[q.Pair], q)
}

// Len returns the total number of quotes.
func (qs QuoteSet) Len() int {
	n := 0
	for _, quotes := range qs {
		n += len(quotes)
	}
	return n
}

// Failure records one failed venue call.
type Failure struct {
	Pair    TokenPair `json:"pair"`
	Venue   string    `json:"venue"`
	FeeTier uint32    `json:"fee_tier"`
	Err     error     `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s/%d: %v", f.Pair, f.Venue, f.FeeTier, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
