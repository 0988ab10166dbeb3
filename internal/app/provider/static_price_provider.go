package provider

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// StaticPrice is one row of a fixed price table.
type StaticPrice struct {
	Price     decimal.Decimal
	Change24h decimal.Decimal
}

// DefaultStaticPrices is the built-in table used when no live feed is configured.
func DefaultStaticPrices() map[string]StaticPrice {
	return map[string]StaticPrice{
		"BTC":  {Price: decimal.RequireFromString("97322.81"), Change24h: decimal.RequireFromString("1.2")},
		"ETH":  {Price: decimal.RequireFromString("1827.29"), Change24h: decimal.RequireFromString("-0.5")},
		"USDT": {Price: decimal.RequireFromString("1.00"), Change24h: decimal.Zero},
		"BNB":  {Price: decimal.RequireFromString("594.90"), Change24h: decimal.RequireFromString("0.8")},
		"SOL":  {Price: decimal.RequireFromString("145.42"), Change24h: decimal.RequireFromString("3.2")},
		"USD":  {Price: decimal.RequireFromString("1.00"), Change24h: decimal.Zero},
	}
}

type staticPriceProviderImpl struct {
	table    map[string]StaticPrice
	loadedAt time.Time
	logger   *zap.Logger
}

// NewStaticPriceProvider serves quotes from table. Keys are matched case-insensitively.
func NewStaticPriceProvider(table map[string]StaticPrice, logger *zap.Logger) port.PriceProvider {
	normalized := make(map[string]StaticPrice, len(table))
	for sym, p := range table {
		normalized[strings.ToUpper(sym)] = p
	}
	logger.Named("StaticPriceProvider").Info("Static price table loaded", zap.Int("symbols", len(normalized)))
	return &staticPriceProviderImpl{
		table:    normalized,
		loadedAt: time.Now().UTC(),
		logger:   logger.Named("StaticPriceProvider"),
	}
}

func (p *staticPriceProviderImpl) Name() string { return "static" }

// GetQuotes implements port.PriceProvider.
func (p *staticPriceProviderImpl) GetQuotes(_ context.Context, symbols []string) (map[string]entity.PriceQuote, error) {
	out := make(map[string]entity.PriceQuote, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(s)
		row, ok := p.table[sym]
		if !ok {
			continue
		}
		out[sym] = entity.PriceQuote{
			Symbol:      sym,
			PriceUSD:    row.Price,
			Change24h:   row.Change24h,
			LastUpdated: p.loadedAt,
		}
	}
	return out, nil
}
