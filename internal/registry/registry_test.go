package registry_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"arbScope/internal/model"
	"arbScope/internal/registry"
	"arbScope/internal/registry/regtest"
)

func TestNewSampleRegistry(t *testing.T) {
	reg := regtest.New(t, regtest.Spec())

	if got := len(reg.Tokens()); got != 3 {
		t.Fatalf("tokens: %d", got)
	}
	if !reg.HasPair(model.TokenPair{Base: "WETH", Quote: "USDC"}) {
		t.Fatalf("missing WETH/USDC")
	}
	if reg.HasPair(model.TokenPair{Base: "USDC", Quote: "WETH"}) {
		t.Fatalf("reverse pair must not be registered")
	}
	if got := reg.JobCount(); got != 9 {
		t.Fatalf("job count: %d", got)
	}
	th := reg.Thresholds()
	if !th.TargetNotionalUSD.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("target notional should default to max loan: %s", th.TargetNotionalUSD)
	}
	arb, ok := reg.Token("ARB")
	if !ok || arb.Index != 2 || arb.FlashLoan {
		t.Fatalf("ARB token mismatch: %+v", arb)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := map[string]func(*registry.Spec){
		"no tokens":        func(s *registry.Spec) { s.Tokens = nil },
		"no pairs":         func(s *registry.Spec) { s.Pairs = nil },
		"unknown token":    func(s *registry.Spec) { s.Pairs = append(s.Pairs, "WBTC/USDC") },
		"self pair":        func(s *registry.Spec) { s.Pairs = append(s.Pairs, "USDC/USDC") },
		"duplicate pair":   func(s *registry.Spec) { s.Pairs = append(s.Pairs, "USDC/WETH") },
		"bad address":      func(s *registry.Spec) { s.Tokens[0].Address = "0x123" },
		"zero probe":       func(s *registry.Spec) { s.Tokens[0].Probe = "0" },
		"missing price":    func(s *registry.Spec) { s.Tokens[1].USDPrice = "" },
		"no venues":        func(s *registry.Spec) { s.Venues = nil },
		"all disabled":     func(s *registry.Spec) { s.Venues[0].Disabled = true; s.Venues[1].Disabled = true },
		"unknown kind":     func(s *registry.Spec) { s.Venues[0].Kind = "curve" },
		"no fee tiers":     func(s *registry.Spec) { s.Venues[0].FeeTiers = nil },
		"v2 two tiers":     func(s *registry.Spec) { s.Venues[1].FeeTiers = []uint32{3000, 500} },
		"fee rate of one":  func(s *registry.Spec) { s.Thresholds.FlashLoanFeeRate = "1" },
		"no max loan":      func(s *registry.Spec) { s.Thresholds.MaxFlashLoanUSD = "" },
		"floor above cap":  func(s *registry.Spec) { s.Thresholds.MinNotionalUSD = "2000000" },
		"target too small": func(s *registry.Spec) { s.Thresholds.TargetNotionalUSD = "10" },
		"multiplier < 1":   func(s *registry.Spec) { s.Thresholds.MinCycleMultiplier = "0.99" },
		"negative gas":     func(s *registry.Spec) { s.Thresholds.GasCostUSD = "-1" },
	}

	for name, mutate := range cases {
		spec := regtest.Spec()
		mutate(&spec)
		if _, err := registry.New(spec); !errors.Is(err, registry.ErrInvalidRegistry) {
			t.Fatalf("%s: expected ErrInvalidRegistry, got %v", name, err)
		}
	}
}

func TestNewDefaultsMinCycleMultiplier(t *testing.T) {
	spec := regtest.Spec()
	spec.Thresholds.MinCycleMultiplier = ""
	reg := regtest.New(t, spec)

	if got := reg.Thresholds().MinCycleMultiplier; !got.Equal(decimal.RequireFromString("1.001")) {
		t.Fatalf("min cycle multiplier should default to 1.001: %s", got)
	}
}
