package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// PriceProvider is an external price feed. Symbols without a quote are absent from the map.
type PriceProvider interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]entity.PriceQuote, error)
	Name() string
}

// PriceSource is what the aggregators consult. It never fails: a miss reports false.
type PriceSource interface {
	Quote(ctx context.Context, symbol string) (entity.PriceQuote, bool)
}

// TokenPriceService is a cached PriceSource that can be warmed up ahead of requests.
type TokenPriceService interface {
	PriceSource
	LoadAndCacheTokenPrices(ctx context.Context, symbols []string) error
}
