// Package regtest builds small registries for tests.
package regtest

import (
	"testing"

	"arbScope/internal/registry"
)

// Addresses used by the sample registry.
const (
	WETH        = "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"
	USDC        = "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"
	ARB         = "0x912CE59144191C1204E64559FE8253a0e49E6548"
	V3Quoter    = "0x61fFE014bA17989E743c5F6cB21bF9697530B21e"
	V3Factory   = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
	V2Router    = "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"
	V2Factory   = "0xc35DADB65012eC5796536bD9864eD8773aBc74C4"
	UniswapV3   = "uniswap-v3"
	SushiswapV2 = "sushiswap"
)

// Spec returns a three-token registry spec: WETH, USDC and ARB with the pairs
// WETH/USDC, ARB/USDC and ARB/WETH, one V3 venue with two fee tiers and one V2
// venue. USD prices are 1 for every token so that USD and token amounts match.
func Spec() registry.Spec {
	return registry.Spec{
		Tokens: []registry.TokenSpec{
			{Symbol: "WETH", Address: WETH, Decimals: 18, Probe: "1", USDPrice: "1", FlashLoan: true},
			{Symbol: "USDC", Address: USDC, Decimals: 6, Probe: "1000", USDPrice: "1", FlashLoan: true},
			{Symbol: "ARB", Address: ARB, Decimals: 18, Probe: "100", USDPrice: "1"},
		},
		Pairs: []string{"WETH/USDC", "ARB/USDC", "ARB/WETH"},
		Venues: []registry.VenueSpec{
			{Name: UniswapV3, Kind: "uniswap-v3", Quoter: V3Quoter, Factory: V3Factory, FeeTiers: []uint32{500, 3000}},
			{Name: SushiswapV2, Kind: "uniswap-v2", Router: V2Router, Factory: V2Factory, FeeTiers: []uint32{3000}},
		},
		Thresholds: registry.ThresholdSpec{
			FlashLoanFeeRate:   "0.0005",
			GasCostUSD:         "1",
			MinNetProfitUSD:    "10",
			MinNotionalUSD:     "1000",
			MaxFlashLoanUSD:    "1000000",
			MinCycleMultiplier: "1.001",
		},
	}
}

// New builds a registry from spec or fails the test.
func New(t testing.TB, spec registry.Spec) *registry.Registry {
	t.Helper()
	reg, err := registry.New(spec)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}
