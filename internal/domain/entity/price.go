package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is the current USD price of an asset symbol.
type PriceQuote struct {
	Symbol      string          `json:"symbol"`
	PriceUSD    decimal.Decimal `json:"priceUSD"`
	Change24h   decimal.Decimal `json:"change24h"`
	LastUpdated time.Time       `json:"lastUpdated"`
}
