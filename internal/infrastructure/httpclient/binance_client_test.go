package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func binanceServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("symbol") {
		case "BTCUSDT":
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","priceChangePercent":"1.200","lastPrice":"97322.81000000","closeTime":1700000000000}`))
		case "ETHUSDT":
			_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","priceChangePercent":"-0.500","lastPrice":"1827.29000000","closeTime":1700000000000}`))
		case "BOOMUSDT":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":-1000,"msg":"An unknown error occurred."}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}
	}))
}

func TestBinanceClient_GetQuotes(t *testing.T) {
	srv := binanceServer(t)
	defer srv.Close()

	client := NewBinanceClient(BinanceOptions{BaseURL: srv.URL, PeggedUSD: []string{"usdc"}}, zap.NewNop())
	quotes, err := client.GetQuotes(context.Background(), []string{"btc", "ETH", "USDT", "USDC", "NOPE"})
	require.NoError(t, err)

	require.Len(t, quotes, 4)
	assert.Equal(t, "97322.81", quotes["BTC"].PriceUSD.String())
	assert.Equal(t, "1.2", quotes["BTC"].Change24h.String())
	assert.Equal(t, int64(1700000000), quotes["BTC"].LastUpdated.Unix())
	assert.Equal(t, "-0.5", quotes["ETH"].Change24h.String())
	assert.Equal(t, "1", quotes["USDT"].PriceUSD.String())
	assert.Equal(t, "1", quotes["USDC"].PriceUSD.String())
	assert.NotContains(t, quotes, "NOPE")
	assert.Equal(t, "binance", client.Name())
}

func TestBinanceClient_AllRequestsFailed(t *testing.T) {
	srv := binanceServer(t)
	defer srv.Close()

	client := NewBinanceClient(BinanceOptions{BaseURL: srv.URL}, zap.NewNop())
	_, err := client.GetQuotes(context.Background(), []string{"BOOM"})
	require.Error(t, err)
}

func TestBinanceClient_PartialFailureKeepsQuotes(t *testing.T) {
	srv := binanceServer(t)
	defer srv.Close()

	client := NewBinanceClient(BinanceOptions{BaseURL: srv.URL}, zap.NewNop())
	quotes, err := client.GetQuotes(context.Background(), []string{"BOOM", "BTC"})
	require.NoError(t, err)
	assert.Contains(t, quotes, "BTC")
	assert.NotContains(t, quotes, "BOOM")
}
