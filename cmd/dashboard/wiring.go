package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/app/provider"
	"wallet_dashboard/internal/app/service"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/backend/postgres"
	"wallet_dashboard/internal/infrastructure/backend/restclient"
	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/infrastructure/httpclient"
)

// application holds the wired services of one process.
type application struct {
	backend   port.PortfolioBackend
	prices    port.TokenPriceService
	portfolio port.PortfolioService
	admin     port.WalletAdminService
	closers   []func() error
}

func (a *application) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			zapLogger.Warn("Failed to release resource", zap.Error(err))
		}
	}
}

func buildApplication(ctx context.Context, cfg *configloader.Config, logger *zap.Logger) (*application, error) {
	app := &application{}

	var restClient *restclient.Client
	if cfg.Backend.BaseURL != "" {
		restClient = restclient.New(restclient.Options{
			BaseURL:         cfg.Backend.BaseURL,
			Token:           cfg.Backend.Token,
			Timeout:         cfg.Backend.RequestTimeout(),
			RateLimit:       cfg.Backend.RateLimit,
			Burst:           cfg.Backend.BurstLimit,
			MaxConnsPerHost: cfg.Backend.MaxConnsPerHost,
		}, logger)
	}

	switch cfg.Backend.Driver {
	case configloader.BackendDriverPostgres:
		store, err := postgres.Open(ctx, cfg.Backend.Postgres.DSN, postgres.PoolOptions{
			MaxOpenConns:    cfg.Backend.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Backend.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Backend.Postgres.ConnMaxLifetime) * time.Minute,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.backend = store
		app.closers = append(app.closers, store.Close)
		logger.Info("Using Postgres read model")
	default:
		app.backend = restClient
		logger.Info("Using wallet backend REST API", zap.String("baseURL", cfg.Backend.BaseURL))
	}

	var adminBackend port.WalletAdminBackend = readOnlyAdmin{}
	if restClient != nil {
		adminBackend = restClient
	} else {
		logger.Warn("backend.baseURL not set, wallet administration is disabled")
	}

	priceProvider := newPriceProvider(cfg, logger)
	app.prices = service.NewTokenPriceService(priceProvider, service.TokenPriceOptions{
		CacheTTL:      cfg.PriceSource.CacheTTL(),
		BatchSize:     cfg.PriceSource.BatchSize,
		MaxConcurrent: cfg.PortfolioService.MaxConcurrentRequests,
	}, logger)
	logger.Info("TokenPriceService initialized", zap.String("provider", priceProvider.Name()))

	app.portfolio = service.NewPortfolioService(app.backend, app.prices, service.PortfolioOptions{
		MaxConcurrentRequests: cfg.PortfolioService.MaxConcurrentRequests,
		IncludePending:        cfg.PortfolioService.IncludePending,
	}, logger)
	app.admin = service.NewWalletAdminService(adminBackend, app.backend, app.backend, logger)
	return app, nil
}

func newPriceProvider(cfg *configloader.Config, logger *zap.Logger) port.PriceProvider {
	switch cfg.PriceSource.Provider {
	case configloader.PriceProviderCoinGecko:
		return httpclient.NewCoinGeckoClient(httpclient.CoinGeckoOptions{
			BaseURL:    cfg.CoinGecko.BaseURL,
			APIKey:     cfg.CoinGecko.APIKey,
			VsCurrency: cfg.CoinGecko.VsCurrency,
			Timeout:    time.Duration(cfg.CoinGecko.RequestTimeoutMillis) * time.Millisecond,
			SymbolIDs:  cfg.CoinGecko.SymbolIDs,
		}, logger)
	case configloader.PriceProviderBinance:
		return httpclient.NewBinanceClient(httpclient.BinanceOptions{
			APIKey:        cfg.Binance.APIKey,
			SecretKey:     cfg.Binance.SecretKey,
			BaseURL:       cfg.Binance.BaseURL,
			QuoteAsset:    cfg.Binance.QuoteAsset,
			PeggedUSD:     cfg.Binance.PeggedUSD,
			MaxConcurrent: cfg.PortfolioService.MaxConcurrentRequests,
		}, logger)
	default:
		table := provider.DefaultStaticPrices()
		for sym, p := range cfg.PriceSource.StaticPrices() {
			table[strings.ToUpper(sym)] = provider.StaticPrice{Price: p.Price, Change24h: p.Change24h}
		}
		return provider.NewStaticPriceProvider(table, logger)
	}
}

// warmupSymbols returns the configured symbols or, when none are set, every asset symbol.
func warmupSymbols(ctx context.Context, cfg *configloader.Config, assets port.AssetRepository) ([]string, error) {
	if len(cfg.PriceSource.WarmupSymbols) > 0 {
		return cfg.PriceSource.WarmupSymbols, nil
	}
	list, err := assets.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets for price warm-up: %w", err)
	}
	symbols := make([]string, 0, len(list))
	for _, a := range list {
		symbols = append(symbols, a.Symbol)
	}
	return symbols, nil
}

// readOnlyAdmin rejects administration when only the database read model is configured.
type readOnlyAdmin struct{}

var errAdminDisabled = fmt.Errorf("%w: wallet administration requires backend.baseURL", entity.ErrBackendUnavailable)

func (readOnlyAdmin) CreateWallet(context.Context, entity.CreateWalletRequest) (int64, error) {
	return 0, errAdminDisabled
}

func (readOnlyAdmin) CreateWalletAddress(context.Context, entity.CreateAddressRequest) (int64, error) {
	return 0, errAdminDisabled
}

func (readOnlyAdmin) ListWalletUsers(context.Context, int64) ([]entity.WalletUserMapping, error) {
	return nil, errAdminDisabled
}

func (readOnlyAdmin) AddWalletUser(context.Context, entity.WalletUserMapping) (int64, error) {
	return 0, errAdminDisabled
}

func (readOnlyAdmin) RemoveWalletUser(context.Context, int64) error {
	return errAdminDisabled
}
