package configloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  baseURL: http://backend.local/
portfolioService:
  includePending: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendDriverREST, cfg.Backend.Driver)
	assert.Equal(t, "http://backend.local", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.RequestTimeout())
	assert.Equal(t, PriceProviderStatic, cfg.PriceSource.Provider)
	assert.Equal(t, time.Minute, cfg.PriceSource.CacheTTL())
	assert.Equal(t, 10, cfg.PortfolioService.MaxConcurrentRequests)
	assert.True(t, cfg.PortfolioService.IncludePending)
	assert.Equal(t, "bitcoin", cfg.CoinGecko.SymbolIDs["BTC"])
	assert.Equal(t, "USDT", cfg.Binance.QuoteAsset)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_BACKEND_BASE_URL", "http://from-env")
	t.Setenv("DASHBOARD_PRICE_PROVIDER", "CoinGecko")
	t.Setenv("COINGECKO_API_KEY", "cg-key")

	cfg, err := Load(writeConfig(t, "backend:\n  baseURL: http://from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.Backend.BaseURL)
	assert.Equal(t, PriceProviderCoinGecko, cfg.PriceSource.Provider)
	assert.Equal(t, "cg-key", cfg.CoinGecko.APIKey)
}

func TestLoad_Validation(t *testing.T) {
	tests := map[string]string{
		"missing base url": "backend:\n  driver: rest\n",
		"missing dsn":      "backend:\n  driver: postgres\n",
		"unknown driver":   "backend:\n  driver: grpc\n  baseURL: http://x\n",
		"unknown provider": "backend:\n  baseURL: http://x\npriceSource:\n  provider: oracle\n",
		"bad static price": "backend:\n  baseURL: http://x\npriceSource:\n  static:\n    BTC:\n      price: lots\n",
		"bad server mode":  "server:\n  mode: turbo\nbackend:\n  baseURL: http://x\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestStaticPrices(t *testing.T) {
	cfg := PriceSourceConfig{Static: map[string]StaticPriceConfig{
		"btc": {Price: "50000", Change24h: "-1.5"},
	}}
	got := cfg.StaticPrices()
	require.Contains(t, got, "BTC")
	assert.Equal(t, "50000", got["BTC"].Price.String())
	assert.Equal(t, "-1.5", got["BTC"].Change24h.String())
}
