package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent returns part/total*100, or zero when total is zero. The result is not rounded.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

// FormatPercent renders a percentage rounded to one decimal place, e.g. "10.0%".
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}

// FormatUSD renders a fiat amount as "$75,000.00 USD".
func FormatUSD(v decimal.Decimal) string {
	fixed := v.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if v.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	b.WriteString(groupThousands(intPart))
	b.WriteByte('.')
	b.WriteString(frac)
	b.WriteString(" USD")
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
