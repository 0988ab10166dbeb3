package entity

// WalletRole is the capability a user holds on a wallet.
type WalletRole string

const (
	WalletRoleOwner  WalletRole = "owner"
	WalletRoleAdmin  WalletRole = "admin"
	WalletRoleSigner WalletRole = "signer"
	WalletRoleViewer WalletRole = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r WalletRole) Valid() bool {
	switch r {
	case WalletRoleOwner, WalletRoleAdmin, WalletRoleSigner, WalletRoleViewer:
		return true
	}
	return false
}

// CanManageUsers reports whether r may grant or revoke wallet access.
func (r WalletRole) CanManageUsers() bool {
	return r == WalletRoleOwner || r == WalletRoleAdmin
}

// WalletUserMapping grants a user a role on a wallet.
type WalletUserMapping struct {
	ID       int64      `json:"wumNum"`
	UserID   int64      `json:"usiNum"`
	WalletID int64      `json:"walNum"`
	Role     WalletRole `json:"wumRole"`
	Active   string     `json:"active,omitempty"`
}

// IsActive treats a missing flag as active.
func (m WalletUserMapping) IsActive() bool {
	return m.Active == "" || m.Active == "1"
}
