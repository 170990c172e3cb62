package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewQuoteRejectsNonPositive(t *testing.T) {
	pair := TokenPair{Base: "WETH", Quote: "USDC"}
	now := time.Unix(1700000000, 0)

	cases := []struct {
		name  string
		price decimal.Decimal
		depth decimal.Decimal
	}{
		{"zero price", decimal.Zero, decimal.NewFromInt(100)},
		{"negative price", decimal.NewFromInt(-1), decimal.NewFromInt(100)},
		{"zero depth", decimal.NewFromInt(3000), decimal.Zero},
		{"negative depth", decimal.NewFromInt(3000), decimal.NewFromInt(-5)},
	}
	for _, tc := range cases {
		if _, err := NewQuote(pair, "uniswap-v3", 500, tc.price, tc.depth, now); !errors.Is(err, ErrVoidQuote) {
			t.Fatalf("%s: expected ErrVoidQuote, got %v", tc.name, err)
		}
	}
}

func TestNewQuoteValid(t *testing.T) {
	pair := TokenPair{Base: "WETH", Quote: "USDC"}
	q, err := NewQuote(pair, "sushiswap", 3000, decimal.NewFromInt(3000), decimal.NewFromInt(50000), time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source() != "sushiswap/3000" {
		t.Fatalf("source mismatch: %s", q.Source())
	}

	qs := QuoteSet{}
	qs.Add(q)
	qs.Add(q)
	if qs.Len() != 2 || len(qs[pair]) != 2 {
		t.Fatalf("quote set mismatch: %+v", qs)
	}
}

func TestParsePair(t *testing.T) {
	pair, err := ParsePair(" WETH / USDC ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.Base != "WETH" || pair.Quote != "USDC" {
		t.Fatalf("pair mismatch: %+v", pair)
	}
	if pair.Reverse().String() != "USDC/WETH" {
		t.Fatalf("reverse mismatch: %s", pair.Reverse())
	}
	for _, bad := range []string{"WETH", "WETH/", "/USDC", "A/B/C"} {
		if _, err := ParsePair(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
