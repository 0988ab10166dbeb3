package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wallet_dashboard/internal/domain/entity"
)

type countingProvider struct {
	mu      sync.Mutex
	prices  map[string]decimal.Decimal
	fail    map[string]bool
	calls   int
	batches [][]string
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) GetQuotes(_ context.Context, symbols []string) (map[string]entity.PriceQuote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.batches = append(p.batches, symbols)
	out := map[string]entity.PriceQuote{}
	for _, s := range symbols {
		if p.fail[s] {
			return nil, errors.New("feed unavailable")
		}
		if price, ok := p.prices[s]; ok {
			out[s] = entity.PriceQuote{Symbol: s, PriceUSD: price}
		}
	}
	return out, nil
}

func TestTokenPriceService_QuoteIsCached(t *testing.T) {
	provider := &countingProvider{prices: map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50000)}}
	svc := NewTokenPriceService(provider, TokenPriceOptions{}, zap.NewNop())

	q, ok := svc.Quote(context.Background(), "btc")
	require.True(t, ok)
	assert.True(t, q.PriceUSD.Equal(decimal.NewFromInt(50000)))

	_, ok = svc.Quote(context.Background(), "BTC")
	assert.True(t, ok)
	assert.Equal(t, 1, provider.calls)
}

func TestTokenPriceService_MissesAndFailuresReportFalse(t *testing.T) {
	provider := &countingProvider{fail: map[string]bool{"ETH": true}}
	svc := NewTokenPriceService(provider, TokenPriceOptions{}, zap.NewNop())

	_, ok := svc.Quote(context.Background(), "DOGE")
	assert.False(t, ok)
	_, ok = svc.Quote(context.Background(), "ETH")
	assert.False(t, ok)
	_, ok = svc.Quote(context.Background(), " ")
	assert.False(t, ok)
}

func TestTokenPriceService_LoadAndCacheTokenPrices(t *testing.T) {
	provider := &countingProvider{
		prices: map[string]decimal.Decimal{"BTC": decimal.NewFromInt(1), "ETH": decimal.NewFromInt(2), "SOL": decimal.NewFromInt(3)},
		fail:   map[string]bool{"BAD": true},
	}
	svc := NewTokenPriceService(provider, TokenPriceOptions{BatchSize: 2, MaxConcurrent: 2}, zap.NewNop())

	err := svc.LoadAndCacheTokenPrices(context.Background(), []string{"btc", "eth", "sol", "bad", "BTC"})
	assert.Error(t, err)
	assert.Len(t, provider.batches, 2)

	calls := provider.calls
	_, ok := svc.Quote(context.Background(), "BTC")
	assert.True(t, ok)
	_, ok = svc.Quote(context.Background(), "ETH")
	assert.True(t, ok)
	assert.Equal(t, calls, provider.calls)
}
