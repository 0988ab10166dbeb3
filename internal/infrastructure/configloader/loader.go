package configloader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	BackendDriverREST     = "rest"
	BackendDriverPostgres = "postgres"

	PriceProviderStatic    = "static"
	PriceProviderCoinGecko = "coingecko"
	PriceProviderBinance   = "binance"
)

// Config is the top-level configuration structure.
type Config struct {
	Server           ServerConfig           `yaml:"server"`
	Logging          LoggingConfig          `yaml:"logging"`
	Backend          BackendConfig          `yaml:"backend"`
	PriceSource      PriceSourceConfig      `yaml:"priceSource"`
	CoinGecko        CoinGeckoConfig        `yaml:"coinGecko"`
	Binance          BinanceConfig          `yaml:"binance"`
	PortfolioService PortfolioServiceConfig `yaml:"portfolioService"`
	Swagger          SwaggerConfig          `yaml:"swagger"`
	CORS             CORSConfig             `yaml:"cors"`
}

// ServerConfig holds the HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port            string `yaml:"port"`
	Mode            string `yaml:"mode"` // gin mode: debug, release, test
	ReadTimeout     int    `yaml:"readTimeout"`
	WriteTimeout    int    `yaml:"writeTimeout"`
	IdleTimeout     int    `yaml:"idleTimeout"`
	RequestTimeout  int    `yaml:"requestTimeout"`
	ShutdownTimeout int    `yaml:"shutdownTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`
}

// BackendConfig selects and configures the wallet backend.
type BackendConfig struct {
	Driver               string         `yaml:"driver"`
	BaseURL              string         `yaml:"baseURL"`
	Token                string         `yaml:"token"`
	RequestTimeoutMillis int64          `yaml:"requestTimeoutMillis"`
	RateLimit            float64        `yaml:"rateLimit"` // requests per second, 0 disables
	BurstLimit           int            `yaml:"burstLimit"`
	MaxConnsPerHost      int            `yaml:"maxConnsPerHost"`
	Postgres             PostgresConfig `yaml:"postgres"`
}

// PostgresConfig is used by the direct database read model.
type PostgresConfig struct {
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetimeMinutes"`
}

// StaticPriceConfig is one row of the static price table.
type StaticPriceConfig struct {
	Price     string `yaml:"price"`
	Change24h string `yaml:"change24h"`
}

// PriceSourceConfig selects the price provider and tunes the quote cache.
type PriceSourceConfig struct {
	Provider        string                       `yaml:"provider"`
	CacheTTLSeconds int                          `yaml:"cacheTTLSeconds"`
	BatchSize       int                          `yaml:"batchSize"`
	WarmupSymbols   []string                     `yaml:"warmupSymbols"`
	Static          map[string]StaticPriceConfig `yaml:"static"`
}

// CoinGeckoConfig holds the configuration for the CoinGecko client.
type CoinGeckoConfig struct {
	BaseURL              string            `yaml:"baseURL"`
	APIKey               string            `yaml:"apiKey"`
	VsCurrency           string            `yaml:"vsCurrency"`
	RequestTimeoutMillis int64             `yaml:"requestTimeoutMillis"`
	SymbolIDs            map[string]string `yaml:"symbolIds"` // BTC -> bitcoin
}

// BinanceConfig holds the configuration for the Binance ticker client.
type BinanceConfig struct {
	APIKey     string   `yaml:"apiKey"`
	SecretKey  string   `yaml:"secretKey"`
	BaseURL    string   `yaml:"baseURL"`
	QuoteAsset string   `yaml:"quoteAsset"`
	PeggedUSD  []string `yaml:"peggedUSD"`
}

// PortfolioServiceConfig holds configuration for the aggregation pipeline.
type PortfolioServiceConfig struct {
	MaxConcurrentRequests int  `yaml:"maxConcurrentRequests"`
	IncludePending        bool `yaml:"includePending"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"`
	MaxAgeHours  int      `yaml:"maxAgeHours"`
}

// RequestTimeout returns the backend request timeout.
func (b BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutMillis) * time.Millisecond
}

// CacheTTL returns the quote cache lifetime.
func (p PriceSourceConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// Load reads the YAML file at path, applies environment overrides and defaults, and validates
// the result. A .env file next to the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"DASHBOARD_BACKEND_BASE_URL", &cfg.Backend.BaseURL},
		{"DASHBOARD_BACKEND_TOKEN", &cfg.Backend.Token},
		{"DASHBOARD_POSTGRES_DSN", &cfg.Backend.Postgres.DSN},
		{"DASHBOARD_PRICE_PROVIDER", &cfg.PriceSource.Provider},
		{"COINGECKO_API_KEY", &cfg.CoinGecko.APIKey},
		{"BINANCE_API_KEY", &cfg.Binance.APIKey},
		{"BINANCE_SECRET_KEY", &cfg.Binance.SecretKey},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.target = v
			logrus.Infof("%s set from environment", o.env)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 20
		logrus.Infof("Server.RequestTimeout not set, defaulting to %d s", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 5
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	cfg.Backend.Driver = strings.ToLower(cfg.Backend.Driver)
	if cfg.Backend.Driver == "" {
		cfg.Backend.Driver = BackendDriverREST
		logrus.Infof("Backend.Driver not set, defaulting to %s", cfg.Backend.Driver)
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.RequestTimeoutMillis <= 0 {
		cfg.Backend.RequestTimeoutMillis = 10000
		logrus.Infof("Backend.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Backend.RequestTimeoutMillis)
	}
	if cfg.Backend.RateLimit > 0 && cfg.Backend.BurstLimit <= 0 {
		cfg.Backend.BurstLimit = int(cfg.Backend.RateLimit)
		if cfg.Backend.BurstLimit < 1 {
			cfg.Backend.BurstLimit = 1
		}
	}
	if cfg.Backend.MaxConnsPerHost <= 0 {
		cfg.Backend.MaxConnsPerHost = 64
	}
	if cfg.Backend.Postgres.MaxOpenConns <= 0 {
		cfg.Backend.Postgres.MaxOpenConns = 10
	}
	if cfg.Backend.Postgres.MaxIdleConns <= 0 {
		cfg.Backend.Postgres.MaxIdleConns = 5
	}
	if cfg.Backend.Postgres.ConnMaxLifetime <= 0 {
		cfg.Backend.Postgres.ConnMaxLifetime = 30
	}

	cfg.PriceSource.Provider = strings.ToLower(cfg.PriceSource.Provider)
	if cfg.PriceSource.Provider == "" {
		cfg.PriceSource.Provider = PriceProviderStatic
		logrus.Infof("PriceSource.Provider not set, defaulting to %s", cfg.PriceSource.Provider)
	}
	if cfg.PriceSource.CacheTTLSeconds <= 0 {
		cfg.PriceSource.CacheTTLSeconds = 60
		logrus.Infof("PriceSource.CacheTTLSeconds not set, defaulting to %d s", cfg.PriceSource.CacheTTLSeconds)
	}
	if cfg.PriceSource.BatchSize <= 0 {
		cfg.PriceSource.BatchSize = 25
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "usd"
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if len(cfg.CoinGecko.SymbolIDs) == 0 {
		cfg.CoinGecko.SymbolIDs = map[string]string{
			"BTC":  "bitcoin",
			"ETH":  "ethereum",
			"USDT": "tether",
			"BNB":  "binancecoin",
			"SOL":  "solana",
		}
	}

	if cfg.Binance.QuoteAsset == "" {
		cfg.Binance.QuoteAsset = "USDT"
	}
	if len(cfg.Binance.PeggedUSD) == 0 {
		cfg.Binance.PeggedUSD = []string{"USD", "USDT", "USDC", "DAI", "BUSD", "FDUSD"}
	}

	if cfg.PortfolioService.MaxConcurrentRequests <= 0 {
		cfg.PortfolioService.MaxConcurrentRequests = 10
		logrus.Infof("PortfolioService.MaxConcurrentRequests not set, defaulting to %d", cfg.PortfolioService.MaxConcurrentRequests)
	}

	if cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}
	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "docs/swagger.yaml"
	}
	if cfg.CORS.MaxAgeHours <= 0 {
		cfg.CORS.MaxAgeHours = 12
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend.Driver {
	case BackendDriverREST:
		if c.Backend.BaseURL == "" {
			errs = append(errs, errors.New("backend.baseURL is required for the rest driver"))
		}
	case BackendDriverPostgres:
		if c.Backend.Postgres.DSN == "" {
			errs = append(errs, errors.New("backend.postgres.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend.driver %q", c.Backend.Driver))
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("unknown server.mode %q", c.Server.Mode))
	}

	switch c.PriceSource.Provider {
	case PriceProviderStatic, PriceProviderCoinGecko, PriceProviderBinance:
	default:
		errs = append(errs, fmt.Errorf("unknown priceSource.provider %q", c.PriceSource.Provider))
	}
	for sym, row := range c.PriceSource.Static {
		if _, err := parseDecimalOrZero(row.Price); err != nil {
			errs = append(errs, fmt.Errorf("priceSource.static.%s.price: %w", sym, err))
		}
		if _, err := parseDecimalOrZero(row.Change24h); err != nil {
			errs = append(errs, fmt.Errorf("priceSource.static.%s.change24h: %w", sym, err))
		}
	}
	return errors.Join(errs...)
}
