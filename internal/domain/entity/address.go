package entity

// Address is one on-chain address held by a wallet.
type Address struct {
	ID       int64  `json:"adrNum"`
	Address  string `json:"adrAddress"`
	Label    string `json:"adrLabel"`
	Type     string `json:"adrType"` // receive, change, cold
	Path     string `json:"adrPath"`
	WalletID int64  `json:"walId"`
	AssetID  int64  `json:"astId"`
	Active   string `json:"active,omitempty"`
}

// KeyInfo is the decoded form of an address key-info document.
type KeyInfo struct {
	Type           string   `json:"type"`
	PublicKeys     []string `json:"publicKeys,omitempty"`
	RequiredSigs   int      `json:"requiredSigs,omitempty"`
	TotalKeys      int      `json:"totalKeys,omitempty"`
	DerivationPath string   `json:"derivationPath,omitempty"`
	Xpub           string   `json:"xpub,omitempty"`
}

// CreateAddressRequest registers a new address under a wallet.
type CreateAddressRequest struct {
	WalletID   int64  `json:"walNum"`
	Address    string `json:"wadAddress"`
	KeyInfo    string `json:"wadKeyInfo"`
	ScriptInfo string `json:"wadScriptInfo,omitempty"`
}
