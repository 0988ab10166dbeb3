package restapi

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"
)

// Raw amounts are rendered as decimal strings so that browsers do not lose precision.

// BalanceResponse is an aggregated balance with display strings.
type BalanceResponse struct {
	ConfirmedRaw        string `json:"confirmedRaw"`
	PendingRaw          string `json:"pendingRaw"`
	Confirmed           string `json:"confirmed"`
	Pending             string `json:"pending"`
	FiatValue           string `json:"fiatValue"`
	FiatValueDisplay    string `json:"fiatValueDisplay"`
	AddressCount        int    `json:"addressCount,omitempty"`
	UnresolvedAddresses int    `json:"unresolvedAddresses,omitempty"`
}

// QuoteResponse is a price quote; Available is false when the price defaulted to zero.
type QuoteResponse struct {
	Symbol           string     `json:"symbol"`
	PriceUSD         string     `json:"priceUSD"`
	PriceDisplay     string     `json:"priceDisplay"`
	Change24h        string     `json:"change24h"`
	Change24hDisplay string     `json:"change24hDisplay"`
	Available        bool       `json:"available"`
	LastUpdated      *time.Time `json:"lastUpdated,omitempty"`
}

// PortfolioEntryResponse is one asset row of the portfolio page.
type PortfolioEntryResponse struct {
	Asset                   entity.Asset    `json:"asset"`
	Balance                 BalanceResponse `json:"balance"`
	Quote                   QuoteResponse   `json:"quote"`
	PortfolioPercent        string          `json:"portfolioPercent"`
	PortfolioPercentDisplay string          `json:"portfolioPercentDisplay"`
	WalletCount             int             `json:"walletCount"`
}

// PortfolioResponse is the portfolio page.
type PortfolioResponse struct {
	UserID                int64                    `json:"userId"`
	Entries               []PortfolioEntryResponse `json:"entries"`
	TotalFiatValue        string                   `json:"totalFiatValue"`
	TotalFiatValueDisplay string                   `json:"totalFiatValueDisplay"`
}

// WalletSummaryResponse is one wallet row of the asset page.
type WalletSummaryResponse struct {
	Wallet  entity.Wallet   `json:"wallet"`
	Balance BalanceResponse `json:"balance"`
}

// AssetWalletsResponse is the asset page.
type AssetWalletsResponse struct {
	UserID    int64                   `json:"userId"`
	Asset     entity.Asset            `json:"asset"`
	Quote     QuoteResponse           `json:"quote"`
	Wallets   []WalletSummaryResponse `json:"wallets"`
	Addresses []entity.Address        `json:"addresses"`
	Total     BalanceResponse         `json:"total"`
}

// WalletDetailResponse is the wallet detail page.
type WalletDetailResponse struct {
	Wallet       entity.Wallet        `json:"wallet"`
	Asset        entity.Asset         `json:"asset"`
	FormattedID  string               `json:"formattedId"`
	Addresses    []entity.Address     `json:"addresses"`
	Balance      BalanceResponse      `json:"balance"`
	Quote        QuoteResponse        `json:"quote"`
	Transactions []entity.Transaction `json:"transactions"`
}

func rawString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func presentBalance(confirmed, pending *big.Int, decimals int32, fiat decimal.Decimal) BalanceResponse {
	return BalanceResponse{
		ConfirmedRaw:     rawString(confirmed),
		PendingRaw:       rawString(pending),
		Confirmed:        utils.FormatBigInt(confirmed, decimals),
		Pending:          utils.FormatBigInt(pending, decimals),
		FiatValue:        fiat.StringFixed(2),
		FiatValueDisplay: utils.FormatUSD(fiat),
	}
}

func presentWalletBalance(b entity.WalletBalance, decimals int32) BalanceResponse {
	resp := presentBalance(b.ConfirmedRaw, b.PendingRaw, decimals, b.FiatValue)
	resp.AddressCount = b.AddressCount
	resp.UnresolvedAddresses = b.UnresolvedAddresses
	return resp
}

func presentQuote(symbol string, q entity.PriceQuote, available bool) QuoteResponse {
	resp := QuoteResponse{
		Symbol:           symbol,
		PriceUSD:         q.PriceUSD.String(),
		PriceDisplay:     utils.FormatUSD(q.PriceUSD),
		Change24h:        q.Change24h.String(),
		Change24hDisplay: utils.FormatPercent(q.Change24h),
		Available:        available,
	}
	if available && !q.LastUpdated.IsZero() {
		ts := q.LastUpdated
		resp.LastUpdated = &ts
	}
	return resp
}

// PresentPortfolio converts the aggregated view into its wire form.
func PresentPortfolio(v *entity.PortfolioView) PortfolioResponse {
	resp := PortfolioResponse{
		UserID:                v.UserID,
		Entries:               make([]PortfolioEntryResponse, 0, len(v.Entries)),
		TotalFiatValue:        v.TotalFiatValue.StringFixed(2),
		TotalFiatValueDisplay: utils.FormatUSD(v.TotalFiatValue),
	}
	for _, e := range v.Entries {
		resp.Entries = append(resp.Entries, PortfolioEntryResponse{
			Asset:                   e.Asset,
			Balance:                 presentBalance(e.ConfirmedRaw, e.PendingRaw, e.Asset.Decimals, e.FiatValue),
			Quote:                   presentQuote(e.Asset.Symbol, e.Quote, e.PriceAvailable),
			PortfolioPercent:        e.PortfolioPercent.String(),
			PortfolioPercentDisplay: utils.FormatPercent(e.PortfolioPercent),
			WalletCount:             e.WalletCount,
		})
	}
	return resp
}

// PresentAssetWallets converts the asset page view into its wire form.
func PresentAssetWallets(v *entity.AssetWalletsView) AssetWalletsResponse {
	resp := AssetWalletsResponse{
		UserID:    v.UserID,
		Asset:     v.Asset,
		Quote:     presentQuote(v.Asset.Symbol, v.Quote, v.PriceAvailable),
		Wallets:   make([]WalletSummaryResponse, 0, len(v.Wallets)),
		Addresses: v.Addresses,
		Total:     presentBalance(v.TotalConfirmedRaw, nil, v.Asset.Decimals, v.TotalFiatValue),
	}
	if resp.Addresses == nil {
		resp.Addresses = []entity.Address{}
	}
	for _, w := range v.Wallets {
		resp.Wallets = append(resp.Wallets, WalletSummaryResponse{
			Wallet:  w.Wallet,
			Balance: presentWalletBalance(w.Balance, v.Asset.Decimals),
		})
	}
	return resp
}

// PresentWalletDetail converts the wallet detail view into its wire form.
func PresentWalletDetail(v *entity.WalletDetailView) WalletDetailResponse {
	resp := WalletDetailResponse{
		Wallet:       v.Wallet,
		Asset:        v.Asset,
		FormattedID:  v.FormattedID,
		Addresses:    v.Addresses,
		Balance:      presentWalletBalance(v.Balance, v.Asset.Decimals),
		Quote:        presentQuote(v.Asset.Symbol, v.Quote, v.PriceAvailable),
		Transactions: v.Transactions,
	}
	if resp.Addresses == nil {
		resp.Addresses = []entity.Address{}
	}
	if resp.Transactions == nil {
		resp.Transactions = []entity.Transaction{}
	}
	return resp
}
