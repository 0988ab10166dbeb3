package entity

import "strings"

var evmMarkers = []string{"ethereum", "erc-20", "erc20", "evm", "bsc", "bep-20", "polygon", "arbitrum"}

// IsEVM reports whether addresses of the asset are 20-byte hex EVM addresses.
func (a Asset) IsEVM() bool {
	for _, field := range []string{a.Network, a.Type, a.Name} {
		lower := strings.ToLower(field)
		for _, marker := range evmMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return strings.EqualFold(a.Symbol, "ETH")
}
