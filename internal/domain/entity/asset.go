package entity

// Asset is reference data owned by the external asset registry.
type Asset struct {
	ID       int64  `json:"astNum"`
	Name     string `json:"astName"`
	Symbol   string `json:"astSymbol"`
	Type     string `json:"astType"`    // coin, token
	Network  string `json:"astNetwork"` // mainnet, testnet, ethereum, ...
	Decimals int32  `json:"astDecimals"`
	Active   string `json:"active,omitempty"`
}
