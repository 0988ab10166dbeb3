package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalanceRecord_NewerThan(t *testing.T) {
	base := BalanceRecord{ID: 5, CreatedOn: "20240101", CreatedAt: "120000"}
	tests := []struct {
		name  string
		other BalanceRecord
		want  bool
	}{
		{"later day", BalanceRecord{ID: 1, CreatedOn: "20240102", CreatedAt: "000000"}, true},
		{"earlier day", BalanceRecord{ID: 9, CreatedOn: "20231231", CreatedAt: "235959"}, false},
		{"later time", BalanceRecord{ID: 1, CreatedOn: "20240101", CreatedAt: "120001"}, true},
		{"same instant higher id", BalanceRecord{ID: 6, CreatedOn: "20240101", CreatedAt: "120000"}, true},
		{"same instant lower id", BalanceRecord{ID: 4, CreatedOn: "20240101", CreatedAt: "120000"}, false},
		{"identical", base, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.other.NewerThan(base))
		})
	}
}

func TestBalanceRecord_OrZero(t *testing.T) {
	var nilRecord *BalanceRecord
	assert.Equal(t, int64(0), nilRecord.ConfirmedOrZero().Int64())
	assert.Equal(t, int64(0), nilRecord.PendingOrZero().Int64())
	assert.Equal(t, int64(0), (&BalanceRecord{}).ConfirmedOrZero().Int64())
}

func TestRequireID(t *testing.T) {
	assert.NoError(t, RequireID("wallet", 1))
	for _, id := range []int64{0, -1} {
		err := RequireID("wallet", id)
		assert.True(t, errors.Is(err, ErrInvalidIdentifier))
	}
}

func TestValidationError(t *testing.T) {
	err := error(NewValidationError("walName", "must not be empty"))
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "invalid walName: must not be empty", err.Error())
}

func TestWalletRole(t *testing.T) {
	assert.True(t, WalletRoleOwner.Valid())
	assert.True(t, WalletRoleViewer.Valid())
	assert.False(t, WalletRole("root").Valid())
	assert.True(t, WalletRoleAdmin.CanManageUsers())
	assert.False(t, WalletRoleSigner.CanManageUsers())
}

func TestWalletUserMapping_IsActive(t *testing.T) {
	assert.True(t, WalletUserMapping{}.IsActive())
	assert.True(t, WalletUserMapping{Active: "1"}.IsActive())
	assert.False(t, WalletUserMapping{Active: "0"}.IsActive())
}

func TestWalletFilter_Matches(t *testing.T) {
	w := Wallet{AssetID: 3}
	assert.True(t, WalletFilter{}.Matches(w))
	assert.True(t, WalletFilter{AssetID: 3}.Matches(w))
	assert.False(t, WalletFilter{AssetID: 4}.Matches(w))
}

func TestAsset_IsEVM(t *testing.T) {
	tests := []struct {
		asset Asset
		want  bool
	}{
		{Asset{Symbol: "ETH", Network: "mainnet"}, true},
		{Asset{Symbol: "USDT", Type: "ERC-20"}, true},
		{Asset{Symbol: "XYZ", Network: "Ethereum"}, true},
		{Asset{Symbol: "BTC", Type: "coin", Network: "mainnet"}, false},
		{Asset{Symbol: "SOL", Network: "solana"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.asset.IsEVM(), tt.asset.Symbol)
	}
}
