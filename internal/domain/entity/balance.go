package entity

import "math/big"

// BalanceRecord is one historical balance snapshot for an address/asset pair.
// Amounts are integers in the asset's smallest unit.
type BalanceRecord struct {
	ID        int64    `json:"balNum"`
	AddressID int64    `json:"adrId"`
	AssetID   int64    `json:"astId"`
	Before    *big.Int `json:"balBefore"`
	After     *big.Int `json:"balAfter"`
	Confirmed *big.Int `json:"balConfirmed"`
	Pending   *big.Int `json:"balPending"`
	CreatedBy int64    `json:"creusr,omitempty"`
	CreatedOn string   `json:"credat"` // YYYYMMDD
	CreatedAt string   `json:"cretim"` // HHMMSS
	Active    string   `json:"active,omitempty"`
}

// NewerThan reports whether r supersedes other as the current balance.
// Ordering is (CreatedOn, CreatedAt) compared as zero-padded strings, then ID.
func (r BalanceRecord) NewerThan(other BalanceRecord) bool {
	if r.CreatedOn != other.CreatedOn {
		return r.CreatedOn > other.CreatedOn
	}
	if r.CreatedAt != other.CreatedAt {
		return r.CreatedAt > other.CreatedAt
	}
	return r.ID > other.ID
}

// ConfirmedOrZero never returns nil.
func (r *BalanceRecord) ConfirmedOrZero() *big.Int {
	if r == nil || r.Confirmed == nil {
		return new(big.Int)
	}
	return r.Confirmed
}

// PendingOrZero never returns nil.
func (r *BalanceRecord) PendingOrZero() *big.Int {
	if r == nil || r.Pending == nil {
		return new(big.Int)
	}
	return r.Pending
}
