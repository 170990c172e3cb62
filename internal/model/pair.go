package model

import (
	"fmt"
	"strings"
)

// TokenPair is an ordered (base, quote) pair of token symbols.
type TokenPair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

func (p TokenPair) String() string {
	return p.Base + "/" + p.Quote
}

// Reverse returns the pair with base and quote swapped.
func (p TokenPair) Reverse() TokenPair {
	return TokenPair{Base: p.Quote, Quote: p.Base}
}

// ParsePair parses a "BASE/QUOTE" label.
func ParsePair(label string) (TokenPair, error) {
	parts := strings.Split(strings.TrimSpace(label), "/")
	if len(parts) != 2 {
		return TokenPair{}, fmt.Errorf("invalid pair %q: want BASE/QUOTE", label)
	}
	base := strings.TrimSpace(parts[0])
	quote := strings.TrimSpace(parts[1])
	if base == "" || quote == "" {
		return TokenPair{}, fmt.Errorf("invalid pair %q: empty token", label)
	}
	return TokenPair{Base: base, Quote: quote}, nil
}
