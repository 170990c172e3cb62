package registry

// Spec is the raw, file-level shape of the registry as decoded by viper.
// Decimal values are kept as strings so that they survive YAML/TOML/env
// decoding without float rounding.
type Spec struct {
	Tokens     []TokenSpec   `mapstructure:"tokens"`
	Pairs      []string      `mapstructure:"pairs"`
	Venues     []VenueSpec   `mapstructure:"venues"`
	Thresholds ThresholdSpec `mapstructure:"thresholds"`
}

// TokenSpec describes one token of the universe.
type TokenSpec struct {
	Symbol    string `mapstructure:"symbol"`
	Address   string `mapstructure:"address"`
	Decimals  uint8  `mapstructure:"decimals"`
	Probe     string `mapstructure:"probe"`
	USDPrice  string `mapstructure:"usd-price"`
	FlashLoan bool   `mapstructure:"flash-loan"`
}

// VenueSpec describes one quoting venue.
type VenueSpec struct {
	Name     string   `mapstructure:"name"`
	Kind     string   `mapstructure:"kind"`
	Quoter   string   `mapstructure:"quoter"`
	Router   string   `mapstructure:"router"`
	Factory  string   `mapstructure:"factory"`
	FeeTiers []uint32 `mapstructure:"fee-tiers"`
	Disabled bool     `mapstructure:"disabled"`
}

// ThresholdSpec holds the scoring thresholds.
type ThresholdSpec struct {
	FlashLoanFeeRate   string `mapstructure:"flash-loan-fee-rate"`
	GasCostUSD         string `mapstructure:"gas-cost-usd"`
	MinNetProfitUSD    string `mapstructure:"min-net-profit-usd"`
	MinNotionalUSD     string `mapstructure:"min-notional-usd"`
	MaxFlashLoanUSD    string `mapstructure:"max-flash-loan-usd"`
	TargetNotionalUSD  string `mapstructure:"target-notional-usd"`
	MinLiquidityUSD    string `mapstructure:"min-liquidity-usd"`
	MinCycleMultiplier string `mapstructure:"min-cycle-multiplier"`
}
