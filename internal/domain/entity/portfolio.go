package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// WalletBalance is the aggregated balance of one wallet for its asset.
type WalletBalance struct {
	WalletID     int64           `json:"walletId"`
	ConfirmedRaw *big.Int        `json:"confirmedRaw"`
	PendingRaw   *big.Int        `json:"pendingRaw"`
	FiatValue    decimal.Decimal `json:"fiatValue"`
	AddressCount int             `json:"addressCount"`
	// Addresses whose balance could not be resolved and were counted as zero.
	UnresolvedAddresses int `json:"unresolvedAddresses"`
}

// ZeroWalletBalance is the result for a wallet without addresses or balances.
func ZeroWalletBalance(walletID int64) WalletBalance {
	return WalletBalance{
		WalletID:     walletID,
		ConfirmedRaw: new(big.Int),
		PendingRaw:   new(big.Int),
		FiatValue:    decimal.Zero,
	}
}

// PortfolioEntry is the derived, per-asset line of a user portfolio.
type PortfolioEntry struct {
	Asset            Asset           `json:"asset"`
	ConfirmedRaw     *big.Int        `json:"confirmedRaw"`
	PendingRaw       *big.Int        `json:"pendingRaw"`
	Quote            PriceQuote      `json:"quote"`
	PriceAvailable   bool            `json:"priceAvailable"`
	FiatValue        decimal.Decimal `json:"fiatValue"`
	PortfolioPercent decimal.Decimal `json:"portfolioPercent"`
	WalletCount      int             `json:"walletCount"`
}

// PortfolioView is the fully resolved portfolio of one user.
type PortfolioView struct {
	UserID         int64            `json:"userId"`
	Entries        []PortfolioEntry `json:"entries"`
	TotalFiatValue decimal.Decimal  `json:"totalFiatValue"`
}

// WalletSummary pairs a wallet with its aggregated balance.
type WalletSummary struct {
	Wallet  Wallet        `json:"wallet"`
	Balance WalletBalance `json:"balance"`
}

// AssetWalletsView lists a user's wallets for one asset.
type AssetWalletsView struct {
	UserID            int64           `json:"userId"`
	Asset             Asset           `json:"asset"`
	Quote             PriceQuote      `json:"quote"`
	PriceAvailable    bool            `json:"priceAvailable"`
	Wallets           []WalletSummary `json:"wallets"`
	Addresses         []Address       `json:"addresses"`
	TotalConfirmedRaw *big.Int        `json:"totalConfirmedRaw"`
	TotalFiatValue    decimal.Decimal `json:"totalFiatValue"`
}

// WalletDetailView is everything the wallet detail page shows.
type WalletDetailView struct {
	Wallet         Wallet        `json:"wallet"`
	Asset          Asset         `json:"asset"`
	FormattedID    string        `json:"formattedId"`
	Addresses      []Address     `json:"addresses"`
	Balance        WalletBalance `json:"balance"`
	Quote          PriceQuote    `json:"quote"`
	PriceAvailable bool          `json:"priceAvailable"`
	Transactions   []Transaction `json:"transactions"`
}
