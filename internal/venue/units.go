package venue

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// priceScale is the number of fractional digits kept when dividing amounts.
const priceScale = 18

// ToUnits converts a raw integer token amount into whole-token units.
func ToUnits(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FromUnits converts a whole-token amount into the raw integer amount,
// truncating anything below the token's precision.
func FromUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).BigInt()
}

// NormalizedPrice returns output units per input unit, independent of each
// token's native decimals.
func NormalizedPrice(amountIn *big.Int, inDecimals uint8, amountOut *big.Int, outDecimals uint8) decimal.Decimal {
	in := ToUnits(amountIn, inDecimals)
	if !in.IsPositive() {
		return decimal.Zero
	}
	return ToUnits(amountOut, outDecimals).DivRound(in, priceScale)
}
