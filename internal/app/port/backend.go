package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// AssetRepository reads asset reference data.
type AssetRepository interface {
	ListAssets(ctx context.Context) ([]entity.Asset, error)
	GetAsset(ctx context.Context, assetID int64) (*entity.Asset, error)
}

// WalletRepository reads wallets.
type WalletRepository interface {
	// ListWallets returns wallets the user owns or is mapped to, narrowed by filter.AssetID.
	ListWallets(ctx context.Context, filter entity.WalletFilter) ([]entity.Wallet, error)
	GetWallet(ctx context.Context, walletID int64) (*entity.Wallet, error)
}

// AddressRepository reads wallet addresses.
type AddressRepository interface {
	// ListAddressesByWallet returns an empty slice, not an error, for a wallet without addresses.
	ListAddressesByWallet(ctx context.Context, walletID int64) ([]entity.Address, error)
}

// BalanceRepository reads the balance history of an address.
type BalanceRepository interface {
	ListBalancesByAddress(ctx context.Context, addressID int64) ([]entity.BalanceRecord, error)
}

// TransactionRepository reads wallet transactions.
type TransactionRepository interface {
	ListTransactionsByWallet(ctx context.Context, walletID int64) ([]entity.Transaction, error)
}

// PortfolioBackend is every read the aggregation pipeline needs.
type PortfolioBackend interface {
	AssetRepository
	WalletRepository
	AddressRepository
	BalanceRepository
	TransactionRepository
}

// WalletAdminBackend carries the write-side wallet operations.
type WalletAdminBackend interface {
	CreateWallet(ctx context.Context, req entity.CreateWalletRequest) (int64, error)
	CreateWalletAddress(ctx context.Context, req entity.CreateAddressRequest) (int64, error)
	ListWalletUsers(ctx context.Context, walletID int64) ([]entity.WalletUserMapping, error)
	AddWalletUser(ctx context.Context, mapping entity.WalletUserMapping) (int64, error)
	RemoveWalletUser(ctx context.Context, mappingID int64) error
}
