package entity

// WalletType is the custody class of a wallet.
type WalletType string

const (
	WalletTypeHot     WalletType = "Self-custody Hot"
	WalletTypeCold    WalletType = "Cold"
	WalletTypeTrading WalletType = "Trading"
)

// WalletProtocol is the signature protocol governing a wallet.
type WalletProtocol string

const (
	WalletProtocolMPC      WalletProtocol = "MPC"
	WalletProtocolMultisig WalletProtocol = "Multisig"
)

// WalletStatus is the lifecycle status of a wallet.
type WalletStatus string

const (
	WalletStatusActive   WalletStatus = "active"
	WalletStatusFrozen   WalletStatus = "frozen"
	WalletStatusArchived WalletStatus = "archived"
)

// Wallet belongs to exactly one asset and one owning user.
type Wallet struct {
	ID          int64          `json:"walNum"`
	Name        string         `json:"walName"`
	Type        WalletType     `json:"walType"`
	Protocol    WalletProtocol `json:"walProtocol"`
	Status      WalletStatus   `json:"walStatus"`
	OwnerUserID *int64         `json:"usiNum"`
	AssetID     int64          `json:"astId"`
	PolicyID    int64          `json:"polId"`
	Active      string         `json:"active,omitempty"`
}

// WalletFilter narrows a wallet listing. Zero fields are not applied.
type WalletFilter struct {
	UserID  int64
	AssetID int64
}

// Matches reports whether w satisfies the asset part of the filter.
func (f WalletFilter) Matches(w Wallet) bool {
	return f.AssetID == 0 || w.AssetID == f.AssetID
}

// CreateWalletRequest is the payload accepted by the backend for new wallets.
type CreateWalletRequest struct {
	Name        string         `json:"walName"`
	Type        WalletType     `json:"walType"`
	Protocol    WalletProtocol `json:"walProtocol"`
	Status      WalletStatus   `json:"walStatus"`
	OwnerUserID *int64         `json:"usiNum"`
	AssetID     int64          `json:"astId"`
	PolicyID    int64          `json:"polId"`
}
