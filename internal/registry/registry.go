package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"arbScope/internal/model"
)

// VenueKind selects the quoting protocol of a venue.
type VenueKind string

const (
	KindUniswapV3 VenueKind = "uniswap-v3"
	KindUniswapV2 VenueKind = "uniswap-v2"
)

// defaultMinCycleMultiplier applies when min-cycle-multiplier is unset.
var defaultMinCycleMultiplier = decimal.RequireFromString("1.001")

// ErrInvalidRegistry wraps every configuration problem found by New.
var ErrInvalidRegistry = errors.New("invalid registry")

// Token is a validated member of the token universe.
type Token struct {
	Symbol    string
	Address   common.Address
	Decimals  uint8
	Probe     decimal.Decimal
	USDPrice  decimal.Decimal
	FlashLoan bool
	Index     int
}

// Venue is a validated quoting venue.
type Venue struct {
	Name     string
	Kind     VenueKind
	Quoter   common.Address
	Router   common.Address
	Factory  common.Address
	FeeTiers []uint32
}

// Thresholds are the scoring parameters. USD amounts are converted into token
// units with each token's USD price.
type Thresholds struct {
	FlashLoanFeeRate   decimal.Decimal
	GasCostUSD         decimal.Decimal
	MinNetProfitUSD    decimal.Decimal
	MinNotionalUSD     decimal.Decimal
	MaxFlashLoanUSD    decimal.Decimal
	TargetNotionalUSD  decimal.Decimal
	MinLiquidityUSD    decimal.Decimal
	MinCycleMultiplier decimal.Decimal
}

// Registry is the read-only token, pair and venue configuration. It is shared
// by every component of a cycle and never mutated after New.
type Registry struct {
	tokens     []Token
	bySymbol   map[string]int
	pairs      []model.TokenPair
	pairSet    map[model.TokenPair]struct{}
	venues     []Venue
	thresholds Thresholds
}

// New validates a Spec and builds a Registry.
func New(spec Spec) (*Registry, error) {
	r := &Registry{
		bySymbol: make(map[string]int),
		pairSet:  make(map[model.TokenPair]struct{}),
	}

	if len(spec.Tokens) == 0 {
		return nil, invalid("no tokens configured")
	}
	for _, ts := range spec.Tokens {
		token, err := buildToken(ts, len(r.tokens))
		if err != nil {
			return nil, err
		}
		if _, dup := r.bySymbol[token.Symbol]; dup {
			return nil, invalid("duplicate token %s", token.Symbol)
		}
		r.bySymbol[token.Symbol] = token.Index
		r.tokens = append(r.tokens, token)
	}

	if len(spec.Pairs) == 0 {
		return nil, invalid("no pairs configured")
	}
	for _, label := range spec.Pairs {
		pair, err := model.ParsePair(label)
		if err != nil {
			return nil, invalid("%v", err)
		}
		if pair.Base == pair.Quote {
			return nil, invalid("pair %s trades a token against itself", pair)
		}
		for _, sym := range []string{pair.Base, pair.Quote} {
			if _, ok := r.bySymbol[sym]; !ok {
				return nil, invalid("pair %s references unknown token %s", pair, sym)
			}
		}
		if _, dup := r.pairSet[pair]; dup {
			return nil, invalid("duplicate pair %s", pair)
		}
		if _, dup := r.pairSet[pair.Reverse()]; dup {
			return nil, invalid("pair %s duplicates %s", pair, pair.Reverse())
		}
		r.pairSet[pair] = struct{}{}
		r.pairs = append(r.pairs, pair)
	}

	seenVenue := make(map[string]struct{})
	for _, vs := range spec.Venues {
		if vs.Disabled {
			continue
		}
		venue, err := buildVenue(vs)
		if err != nil {
			return nil, err
		}
		if _, dup := seenVenue[venue.Name]; dup {
			return nil, invalid("duplicate venue %s", venue.Name)
		}
		seenVenue[venue.Name] = struct{}{}
		r.venues = append(r.venues, venue)
	}
	if len(r.venues) == 0 {
		return nil, invalid("no enabled venues configured")
	}

	thresholds, err := buildThresholds(spec.Thresholds)
	if err != nil {
		return nil, err
	}
	r.thresholds = thresholds

	return r, nil
}

// Tokens returns the token universe in configuration order.
func (r *Registry) Tokens() []Token {
	return append([]Token(nil), r.tokens...)
}

// Token looks up a token by symbol.
func (r *Registry) Token(symbol string) (Token, bool) {
	idx, ok := r.bySymbol[symbol]
	if !ok {
		return Token{}, false
	}
	return r.tokens[idx], true
}

// Pairs returns the enabled pairs in configuration order.
func (r *Registry) Pairs() []model.TokenPair {
	return append([]model.TokenPair(nil), r.pairs...)
}

// HasPair reports whether the exact (base, quote) pair is registered.
func (r *Registry) HasPair(pair model.TokenPair) bool {
	_, ok := r.pairSet[pair]
	return ok
}

// Venues returns the enabled venues in configuration order.
func (r *Registry) Venues() []Venue {
	return append([]Venue(nil), r.venues...)
}

// Thresholds returns the scoring thresholds.
func (r *Registry) Thresholds() Thresholds {
	return r.thresholds
}

// JobCount is the number of (pair, venue, fee tier) combinations per cycle.
func (r *Registry) JobCount() int {
	tiers := 0
	for _, v := range r.venues {
		tiers += len(v.FeeTiers)
	}
	return tiers * len(r.pairs)
}

func buildToken(ts TokenSpec, index int) (Token, error) {
	symbol := strings.TrimSpace(ts.Symbol)
	if symbol == "" {
		return Token{}, invalid("token %d has no symbol", index)
	}
	if strings.Contains(symbol, "/") {
		return Token{}, invalid("token symbol %q must not contain '/'", symbol)
	}
	if !common.IsHexAddress(ts.Address) {
		return Token{}, invalid("token %s: invalid address %q", symbol, ts.Address)
	}
	probe, err := positiveDecimal(ts.Probe)
	if err != nil {
		return Token{}, invalid("token %s probe: %v", symbol, err)
	}
	usdPrice, err := positiveDecimal(ts.USDPrice)
	if err != nil {
		return Token{}, invalid("token %s usd-price: %v", symbol, err)
	}
	return Token{
		Symbol:    symbol,
		Address:   common.HexToAddress(ts.Address),
		Decimals:  ts.Decimals,
		Probe:     probe,
		USDPrice:  usdPrice,
		FlashLoan: ts.FlashLoan,
		Index:     index,
	}, nil
}

func buildVenue(vs VenueSpec) (Venue, error) {
	name := strings.TrimSpace(vs.Name)
	if name == "" {
		return Venue{}, invalid("venue has no name")
	}
	venue := Venue{Name: name, Kind: VenueKind(strings.ToLower(strings.TrimSpace(vs.Kind)))}

	switch venue.Kind {
	case KindUniswapV3:
		if !common.IsHexAddress(vs.Quoter) || !common.IsHexAddress(vs.Factory) {
			return Venue{}, invalid("venue %s: uniswap-v3 needs quoter and factory addresses", name)
		}
		venue.Quoter = common.HexToAddress(vs.Quoter)
	case KindUniswapV2:
		if !common.IsHexAddress(vs.Router) || !common.IsHexAddress(vs.Factory) {
			return Venue{}, invalid("venue %s: uniswap-v2 needs router and factory addresses", name)
		}
		venue.Router = common.HexToAddress(vs.Router)
	default:
		return Venue{}, invalid("venue %s: unsupported kind %q", name, vs.Kind)
	}
	venue.Factory = common.HexToAddress(vs.Factory)

	if len(vs.FeeTiers) == 0 {
		return Venue{}, invalid("venue %s has no fee tiers", name)
	}
	if venue.Kind == KindUniswapV2 && len(vs.FeeTiers) != 1 {
		return Venue{}, invalid("venue %s: uniswap-v2 has exactly one fee tier", name)
	}
	seen := make(map[uint32]struct{}, len(vs.FeeTiers))
	for _, tier := range vs.FeeTiers {
		if tier == 0 || tier >= 1_000_000 {
			return Venue{}, invalid("venue %s: fee tier %d out of range", name, tier)
		}
		if _, dup := seen[tier]; dup {
			return Venue{}, invalid("venue %s: duplicate fee tier %d", name, tier)
		}
		seen[tier] = struct{}{}
		venue.FeeTiers = append(venue.FeeTiers, tier)
	}
	return venue, nil
}

func buildThresholds(ts ThresholdSpec) (Thresholds, error) {
	var (
		t   Thresholds
		err error
	)
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"flash-loan-fee-rate", ts.FlashLoanFeeRate, &t.FlashLoanFeeRate},
		{"gas-cost-usd", ts.GasCostUSD, &t.GasCostUSD},
		{"min-net-profit-usd", ts.MinNetProfitUSD, &t.MinNetProfitUSD},
		{"min-notional-usd", ts.MinNotionalUSD, &t.MinNotionalUSD},
		{"max-flash-loan-usd", ts.MaxFlashLoanUSD, &t.MaxFlashLoanUSD},
		{"target-notional-usd", ts.TargetNotionalUSD, &t.TargetNotionalUSD},
		{"min-liquidity-usd", ts.MinLiquidityUSD, &t.MinLiquidityUSD},
		{"min-cycle-multiplier", ts.MinCycleMultiplier, &t.MinCycleMultiplier},
	}
	for _, f := range fields {
		if *f.dst, err = optionalDecimal(f.raw); err != nil {
			return Thresholds{}, invalid("%s: %v", f.name, err)
		}
		if f.dst.IsNegative() {
			return Thresholds{}, invalid("%s must not be negative", f.name)
		}
	}

	one := decimal.NewFromInt(1)
	if t.FlashLoanFeeRate.GreaterThanOrEqual(one) {
		return Thresholds{}, invalid("flash-loan-fee-rate must be below 1")
	}
	if !t.MaxFlashLoanUSD.IsPositive() {
		return Thresholds{}, invalid("max-flash-loan-usd must be positive")
	}
	if t.MinNotionalUSD.GreaterThan(t.MaxFlashLoanUSD) {
		return Thresholds{}, invalid("min-notional-usd %s exceeds max-flash-loan-usd %s", t.MinNotionalUSD, t.MaxFlashLoanUSD)
	}
	if t.TargetNotionalUSD.IsZero() {
		t.TargetNotionalUSD = t.MaxFlashLoanUSD
	}
	if t.TargetNotionalUSD.LessThan(t.MinNotionalUSD) {
		return Thresholds{}, invalid("target-notional-usd %s is below min-notional-usd %s", t.TargetNotionalUSD, t.MinNotionalUSD)
	}
	if t.MinCycleMultiplier.IsZero() {
		t.MinCycleMultiplier = defaultMinCycleMultiplier
	}
	if t.MinCycleMultiplier.LessThan(one) {
		return Thresholds{}, invalid("min-cycle-multiplier must be at least 1")
	}
	return t, nil
}

func positiveDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", raw, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func optionalDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", raw, err)
	}
	return d, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRegistry, fmt.Sprintf(format, args...))
}
