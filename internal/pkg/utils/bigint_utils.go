package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToUnits converts a raw smallest-unit amount into whole units. A nil amount is zero.
func ToUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// FormatBigInt renders a raw amount with the given decimals, trimming trailing zeros.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	if decimals <= 0 {
		return amount.String()
	}

	formatted := ToUnits(amount, decimals).StringFixed(decimals)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimSuffix(formatted, ".")
	}
	return formatted
}

// SumBigInts adds the non-nil values. The inputs are not modified.
func SumBigInts(values ...*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}
