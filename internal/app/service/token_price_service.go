package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/metrics"
	"wallet_dashboard/internal/pkg/utils"
)

const (
	defaultPriceCacheTTL  = 60 * time.Second
	defaultPriceBatchSize = 25
)

// TokenPriceOptions tunes the quote cache.
type TokenPriceOptions struct {
	CacheTTL      time.Duration
	BatchSize     int
	MaxConcurrent int
}

// tokenPriceServiceImpl implements port.TokenPriceService
type tokenPriceServiceImpl struct {
	provider port.PriceProvider
	cache    *cache.Cache
	opts     TokenPriceOptions
	logger   *zap.Logger
}

// NewTokenPriceService wraps provider with a TTL cache.
func NewTokenPriceService(provider port.PriceProvider, opts TokenPriceOptions, logger *zap.Logger) port.TokenPriceService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultPriceCacheTTL
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultPriceBatchSize
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	s := &tokenPriceServiceImpl{
		provider: provider,
		cache:    cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		opts:     opts,
		logger:   logger.Named("TokenPriceService"),
	}
	s.logger.Info("TokenPriceService initialized",
		zap.String("provider", provider.Name()),
		zap.Duration("cacheTTL", opts.CacheTTL))
	return s
}

// Quote implements port.PriceSource. Any provider failure or unknown symbol reports false.
func (s *tokenPriceServiceImpl) Quote(ctx context.Context, symbol string) (entity.PriceQuote, bool) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return entity.PriceQuote{}, false
	}
	if cached, found := s.cache.Get(sym); found {
		metrics.PriceLookups.WithLabelValues("hit").Inc()
		return cached.(entity.PriceQuote), true
	}

	quotes, err := s.provider.GetQuotes(ctx, []string{sym})
	if err != nil {
		metrics.PriceLookups.WithLabelValues("unavailable").Inc()
		s.logger.Warn("Price lookup failed, using zero price",
			zap.String("symbol", sym),
			zap.String("provider", s.provider.Name()),
			zap.Error(err))
		return entity.PriceQuote{}, false
	}
	quote, ok := quotes[sym]
	if !ok {
		metrics.PriceLookups.WithLabelValues("miss").Inc()
		s.logger.Debug("No price for symbol", zap.String("symbol", sym))
		return entity.PriceQuote{}, false
	}

	metrics.PriceLookups.WithLabelValues("fetched").Inc()
	s.cache.Set(sym, quote, cache.DefaultExpiration)
	return quote, true
}

// LoadAndCacheTokenPrices fetches quotes for symbols in batches and stores them in the cache.
// A failing batch does not stop the others; the failures are returned joined.
func (s *tokenPriceServiceImpl) LoadAndCacheTokenPrices(ctx context.Context, symbols []string) error {
	unique := utils.UniqueUpper(symbols)
	if len(unique) == 0 {
		s.logger.Warn("No symbols to warm the price cache with")
		return nil
	}
	batches := utils.BatchStrings(unique, s.opts.BatchSize)
	s.logger.Info("Loading token prices",
		zap.Int("symbols", len(unique)),
		zap.Int("batches", len(batches)))

	var (
		mu       sync.Mutex
		errs     []error
		cached   int
		notFound int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrent)
	for i, batch := range batches {
		g.Go(func() error {
			quotes, err := s.provider.GetQuotes(gctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("price batch %d: %w", i, err))
				return nil
			}
			for _, sym := range batch {
				q, ok := quotes[sym]
				if !ok {
					notFound++
					continue
				}
				s.cache.Set(sym, q, cache.DefaultExpiration)
				cached++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Token prices cached",
		zap.Int("cached", cached),
		zap.Int("notFound", notFound),
		zap.Int("failedBatches", len(errs)))
	return errors.Join(errs...)
}
