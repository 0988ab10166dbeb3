package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CoinGeckoOptions configures the CoinGecko price provider.
type CoinGeckoOptions struct {
	BaseURL    string
	APIKey     string
	VsCurrency string
	Timeout    time.Duration
	SymbolIDs  map[string]string // BTC -> bitcoin
}

// coinGeckoClientImpl queries the simple/price endpoint.
type coinGeckoClientImpl struct {
	client     *fasthttp.Client
	baseURL    string
	apiKey     string
	vsCurrency string
	timeout    time.Duration
	ids        map[string]string
	logger     *zap.Logger
}

// NewCoinGeckoClient creates a CoinGecko backed port.PriceProvider. Symbols without an id
// mapping are never requested.
func NewCoinGeckoClient(opts CoinGeckoOptions, logger *zap.Logger) port.PriceProvider {
	ids := make(map[string]string, len(opts.SymbolIDs))
	for sym, id := range opts.SymbolIDs {
		ids[strings.ToUpper(sym)] = id
	}
	vs := strings.ToLower(opts.VsCurrency)
	if vs == "" {
		vs = "usd"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &coinGeckoClientImpl{
		client:     &fasthttp.Client{},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		vsCurrency: vs,
		timeout:    opts.Timeout,
		ids:        ids,
		logger:     logger.Named("CoinGeckoClient"),
	}
}

func (c *coinGeckoClientImpl) Name() string { return "coingecko" }

// GetQuotes implements port.PriceProvider.
func (c *coinGeckoClientImpl) GetQuotes(ctx context.Context, symbols []string) (map[string]entity.PriceQuote, error) {
	bySymbol := make(map[string]string, len(symbols))
	idList := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(s)
		id, ok := c.ids[sym]
		if !ok {
			c.logger.Debug("No CoinGecko id for symbol", zap.String("symbol", sym))
			continue
		}
		if _, seen := bySymbol[sym]; !seen {
			idList = append(idList, id)
		}
		bySymbol[sym] = id
	}
	out := make(map[string]entity.PriceQuote, len(bySymbol))
	if len(idList) == 0 {
		return out, nil
	}

	query := url.Values{}
	query.Set("ids", strings.Join(idList, ","))
	query.Set("vs_currencies", c.vsCurrency)
	query.Set("include_24hr_change", "true")
	query.Set("include_last_updated_at", "true")
	requestURL := c.baseURL + "/simple/price?" + query.Encode()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("coingecko request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("CoinGecko API request failed",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return nil, fmt.Errorf("coingecko request failed with status %d", resp.StatusCode())
	}

	var payload map[string]map[string]float64
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode coingecko response: %w", err)
	}

	changeKey := c.vsCurrency + "_24h_change"
	for sym, id := range bySymbol {
		row, ok := payload[id]
		if !ok {
			continue
		}
		price, ok := row[c.vsCurrency]
		if !ok {
			continue
		}
		updated := time.Now().UTC()
		if ts, ok := row["last_updated_at"]; ok && ts > 0 {
			updated = time.Unix(int64(ts), 0).UTC()
		}
		out[sym] = entity.PriceQuote{
			Symbol:      sym,
			PriceUSD:    decimal.NewFromFloat(price),
			Change24h:   decimal.NewFromFloat(row[changeKey]),
			LastUpdated: updated,
		}
	}
	c.logger.Debug("CoinGecko quotes fetched", zap.Int("requested", len(idList)), zap.Int("received", len(out)))
	return out, nil
}
