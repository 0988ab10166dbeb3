package httpclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// BinanceOptions configures the Binance price provider.
type BinanceOptions struct {
	APIKey        string
	SecretKey     string
	BaseURL       string
	QuoteAsset    string   // USDT
	PeggedUSD     []string // symbols quoted at exactly 1
	MaxConcurrent int
}

// binanceClientImpl reads 24h ticker statistics from the Binance spot API.
type binanceClientImpl struct {
	client        *binance.Client
	quoteAsset    string
	pegged        map[string]struct{}
	maxConcurrent int
	logger        *zap.Logger
}

// NewBinanceClient creates a Binance backed port.PriceProvider. A symbol S is priced by the
// S+QuoteAsset ticker; the quote asset itself and pegged stablecoins are priced at 1.
func NewBinanceClient(opts BinanceOptions, logger *zap.Logger) port.PriceProvider {
	client := binance.NewClient(opts.APIKey, opts.SecretKey)
	if opts.BaseURL != "" {
		client.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	quote := strings.ToUpper(opts.QuoteAsset)
	if quote == "" {
		quote = "USDT"
	}
	pegged := map[string]struct{}{quote: {}}
	for _, s := range opts.PeggedUSD {
		pegged[strings.ToUpper(s)] = struct{}{}
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	return &binanceClientImpl{
		client:        client,
		quoteAsset:    quote,
		pegged:        pegged,
		maxConcurrent: opts.MaxConcurrent,
		logger:        logger.Named("BinanceClient"),
	}
}

func (c *binanceClientImpl) Name() string { return "binance" }

// GetQuotes implements port.PriceProvider. Unknown trading pairs are skipped; the call fails only
// when every ticker request failed for a reason other than an unknown pair.
func (c *binanceClientImpl) GetQuotes(ctx context.Context, symbols []string) (map[string]entity.PriceQuote, error) {
	out := make(map[string]entity.PriceQuote, len(symbols))
	var (
		mu       sync.Mutex
		failures []error
		asked    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for _, s := range symbols {
		sym := strings.ToUpper(s)
		if _, ok := c.pegged[sym]; ok {
			mu.Lock()
			out[sym] = entity.PriceQuote{Symbol: sym, PriceUSD: decimal.NewFromInt(1), LastUpdated: time.Now().UTC()}
			mu.Unlock()
			continue
		}
		asked++
		g.Go(func() error {
			quote, err := c.ticker(gctx, sym)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out[sym] = quote
			case isUnknownSymbol(err):
				c.logger.Debug("No Binance pair for symbol", zap.String("symbol", sym+c.quoteAsset))
			default:
				c.logger.Warn("Binance ticker request failed", zap.String("symbol", sym), zap.Error(err))
				failures = append(failures, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if asked > 0 && len(failures) == asked {
		return nil, fmt.Errorf("binance tickers: %w", errors.Join(failures...))
	}
	return out, nil
}

func (c *binanceClientImpl) ticker(ctx context.Context, sym string) (entity.PriceQuote, error) {
	stats, err := c.client.NewListPriceChangeStatsService().Symbol(sym + c.quoteAsset).Do(ctx)
	if err != nil {
		return entity.PriceQuote{}, err
	}
	if len(stats) == 0 {
		return entity.PriceQuote{}, fmt.Errorf("empty ticker for %s", sym)
	}
	st := stats[0]
	price, err := decimal.NewFromString(st.LastPrice)
	if err != nil {
		return entity.PriceQuote{}, fmt.Errorf("parse last price %q: %w", st.LastPrice, err)
	}
	change, err := decimal.NewFromString(st.PriceChangePercent)
	if err != nil {
		change = decimal.Zero
	}
	updated := time.Now().UTC()
	if st.CloseTime > 0 {
		updated = time.UnixMilli(st.CloseTime).UTC()
	}
	return entity.PriceQuote{Symbol: sym, PriceUSD: price, Change24h: change, LastUpdated: updated}, nil
}

// isUnknownSymbol matches Binance's "Invalid symbol" API error.
func isUnknownSymbol(err error) bool {
	var apiErr *common.APIError
	return errors.As(err, &apiErr) && apiErr.Code == -1121
}
