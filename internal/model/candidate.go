package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DirectCandidate is the best cross-venue spread of a single pair.
type DirectCandidate struct {
	Pair   TokenPair       `json:"pair"`
	Buy    Quote           `json:"buy"`
	Sell   Quote           `json:"sell"`
	Spread decimal.Decimal `json:"spread"`
}

// Hop is one leg of a triangular cycle, trading From into To.
// Rate is To units received per From unit. Inverted hops use a quote of the
// reversed pair at (1-fee)^2/price.
type Hop struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Quote    Quote           `json:"quote"`
	Inverted bool            `json:"inverted"`
	Rate     decimal.Decimal `json:"rate"`
}

// TriangularCandidate is a 3-hop cycle Tokens[0] -> Tokens[1] -> Tokens[2] -> Tokens[0].
type TriangularCandidate struct {
	Tokens     [3]string       `json:"tokens"`
	Hops       [3]Hop          `json:"hops"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Path renders the cycle as A->B->C->A.
func (c TriangularCandidate) Path() string {
	return strings.Join([]string{c.Tokens[0], c.Tokens[1], c.Tokens[2], c.Tokens[0]}, "->")
}
