package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"arbScope/internal/registry"
)

const sampleYAML = `
rpc: https://arb1.example.org
cadence: 20s
cycle-deadline: 12s
workers: 4
jsonl-out: ./data/cycles.jsonl
registry:
  tokens:
    - symbol: WETH
      address: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"
      decimals: 18
      probe: "1"
      usd-price: 3000
      flash-loan: true
    - symbol: USDC
      address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"
      decimals: 6
      probe: "1000"
      usd-price: 1
      flash-loan: true
  pairs:
    - WETH/USDC
  venues:
    - name: uniswap-v3
      kind: uniswap-v3
      quoter: "0x61fFE014bA17989E743c5F6cB21bF9697530B21e"
      factory: "0x1F98431c8aD98523631AE4a59f267346ea31F984"
      fee-tiers: [500, 3000]
  thresholds:
    flash-loan-fee-rate: "0.0005"
    gas-cost-usd: "1.5"
    min-net-profit-usd: "10"
    min-notional-usd: "1000"
    max-flash-loan-usd: "1000000"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileAndRegistry(t *testing.T) {
	cfg, err := Load(writeConfig(t), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "https://arb1.example.org" {
		t.Fatalf("unexpected rpc: %s", cfg.RPCURL)
	}
	if cfg.Cadence != 20*time.Second || cfg.CycleDeadline != 12*time.Second {
		t.Fatalf("unexpected timing: %s %s", cfg.Cadence, cfg.CycleDeadline)
	}
	if cfg.CallTimeout != 3*time.Second {
		t.Fatalf("expected default call timeout, got %s", cfg.CallTimeout)
	}
	if cfg.Sinks.JSONLPath != "./data/cycles.jsonl" {
		t.Fatalf("unexpected jsonl path: %s", cfg.Sinks.JSONLPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	reg, err := registry.New(cfg.Registry)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	weth, ok := reg.Token("WETH")
	if !ok || weth.USDPrice.String() != "3000" || !weth.FlashLoan {
		t.Fatalf("unexpected WETH: %+v", weth)
	}
	if got := reg.JobCount(); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}
}

func TestLoadEnvAndFlagsOverride(t *testing.T) {
	t.Setenv("ARBSCOPE_WORKERS", "16")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("cycle-deadline", 0, "")
	if err := flags.Parse([]string{"--cycle-deadline=5s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(writeConfig(t), flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 16 {
		t.Fatalf("expected env workers 16, got %d", cfg.Workers)
	}
	if cfg.CycleDeadline != 5*time.Second {
		t.Fatalf("expected flag deadline 5s, got %s", cfg.CycleDeadline)
	}
}

func TestValidateRejects(t *testing.T) {
	base := Config{
		RPCURL:        "http://localhost:8545",
		Cadence:       10 * time.Second,
		CycleDeadline: 5 * time.Second,
		CallTimeout:   time.Second,
		Workers:       4,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	cases := map[string]func(*Config){
		"missing rpc":         func(c *Config) { c.RPCURL = "" },
		"zero workers":        func(c *Config) { c.Workers = 0 },
		"zero cadence":        func(c *Config) { c.Cadence = 0 },
		"zero deadline":       func(c *Config) { c.CycleDeadline = 0 },
		"deadline >= cadence": func(c *Config) { c.CycleDeadline = c.Cadence },
		"zero call timeout":   func(c *Config) { c.CallTimeout = 0 },
		"negative retries":    func(c *Config) { c.MaxRetries = -1 },
		"half telegram":       func(c *Config) { c.Sinks.TelegramToken = "t" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
