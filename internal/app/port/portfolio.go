package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// PortfolioService exposes one coarse, fully aggregated call per dashboard page.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, userID int64) (*entity.PortfolioView, error)
	GetAssetWallets(ctx context.Context, userID, assetID int64) (*entity.AssetWalletsView, error)
	GetWalletDetail(ctx context.Context, walletID int64) (*entity.WalletDetailView, error)
}

// WalletAdminService validates and forwards wallet administration requests.
type WalletAdminService interface {
	CreateWallet(ctx context.Context, req entity.CreateWalletRequest) (int64, error)
	CreateWalletAddress(ctx context.Context, req entity.CreateAddressRequest) (int64, error)
	ListWalletUsers(ctx context.Context, walletID int64) ([]entity.WalletUserMapping, error)
	AddWalletUser(ctx context.Context, actorUserID int64, mapping entity.WalletUserMapping) (int64, error)
	RemoveWalletUser(ctx context.Context, actorUserID, walletID, mappingID int64) error
}
