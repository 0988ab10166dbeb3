package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatBigInt(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		decimals int32
		want     string
	}{
		{"nil", nil, 8, "0"},
		{"zero", big.NewInt(0), 8, "0"},
		{"whole btc", big.NewInt(150_000_000), 8, "1.5"},
		{"no decimals", big.NewInt(42), 0, "42"},
		{"sub unit", big.NewInt(5), 6, "0.000005"},
		{"wei", mustBig("1234500000000000000"), 18, "1.2345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBigInt(tt.amount, tt.decimals))
		})
	}
}

func TestSumBigInts(t *testing.T) {
	a := big.NewInt(3)
	got := SumBigInts(a, nil, big.NewInt(4))
	assert.Equal(t, "7", got.String())
	assert.Equal(t, "3", a.String())
}

func TestPercent(t *testing.T) {
	total := decimal.NewFromInt(1000)
	assert.True(t, Percent(decimal.NewFromInt(100), total).Equal(decimal.NewFromInt(10)))
	assert.True(t, Percent(decimal.NewFromInt(700), total).Equal(decimal.NewFromInt(70)))
	assert.True(t, Percent(decimal.NewFromInt(5), decimal.Zero).IsZero())
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "10.0%", FormatPercent(decimal.NewFromInt(10)))
	assert.Equal(t, "33.3%", FormatPercent(decimal.RequireFromString("33.3333")))
	assert.Equal(t, "0.0%", FormatPercent(decimal.Zero))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$75,000.00 USD", FormatUSD(decimal.NewFromInt(75000)))
	assert.Equal(t, "$0.00 USD", FormatUSD(decimal.Zero))
	assert.Equal(t, "$999.50 USD", FormatUSD(decimal.RequireFromString("999.5")))
	assert.Equal(t, "$1,234,567.89 USD", FormatUSD(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-$12.00 USD", FormatUSD(decimal.NewFromInt(-12)))
}

func TestBatchStrings(t *testing.T) {
	assert.Equal(t, [][]string{}, BatchStrings(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, BatchStrings([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, BatchStrings([]string{"a", "b", "c"}, 0))
}

func TestUniqueUpper(t *testing.T) {
	assert.Equal(t, []string{"BTC", "ETH"}, UniqueUpper([]string{"btc", " ETH ", "", "Btc"}))
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}
