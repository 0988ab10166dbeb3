package configloader

import (
	"strings"

	"github.com/shopspring/decimal"
)

func parseDecimalOrZero(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

// ParsedPrice is a static table row with its amounts parsed.
type ParsedPrice struct {
	Price     decimal.Decimal
	Change24h decimal.Decimal
}

// StaticPrices returns the configured static table keyed by upper-case symbol.
// Rows were checked by Validate, so parse errors cannot occur here.
func (p PriceSourceConfig) StaticPrices() map[string]ParsedPrice {
	out := make(map[string]ParsedPrice, len(p.Static))
	for sym, row := range p.Static {
		price, _ := parseDecimalOrZero(row.Price)
		change, _ := parseDecimalOrZero(row.Change24h)
		out[strings.ToUpper(sym)] = ParsedPrice{Price: price, Change24h: change}
	}
	return out
}
