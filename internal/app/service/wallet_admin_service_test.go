package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wallet_dashboard/internal/domain/entity"
)

func newAdminFixture() (*fakeBackend, *walletAdminServiceImpl) {
	backend := newFakeBackend()
	backend.assets = []entity.Asset{
		{ID: 1, Symbol: "BTC", Network: "bitcoin"},
		{ID: 2, Symbol: "USDT", Type: "ERC-20", Network: "ethereum"},
	}
	backend.wallets = []entity.Wallet{
		{ID: 10, AssetID: 1, OwnerUserID: ptr(1)},
		{ID: 20, AssetID: 2, OwnerUserID: ptr(1)},
	}
	backend.mappings = []entity.WalletUserMapping{
		{ID: 100, WalletID: 10, UserID: 1, Role: entity.WalletRoleOwner},
		{ID: 101, WalletID: 10, UserID: 2, Role: entity.WalletRoleAdmin},
		{ID: 102, WalletID: 10, UserID: 3, Role: entity.WalletRoleViewer},
		{ID: 103, WalletID: 10, UserID: 4, Role: entity.WalletRoleSigner, Active: "0"},
	}
	svc := NewWalletAdminService(backend, backend, backend, zap.NewNop()).(*walletAdminServiceImpl)
	return backend, svc
}

func TestCreateWallet_Validation(t *testing.T) {
	valid := entity.CreateWalletRequest{
		Name:     "Treasury",
		Type:     entity.WalletTypeCold,
		Protocol: entity.WalletProtocolMultisig,
		AssetID:  1,
	}
	tests := []struct {
		name   string
		mutate func(*entity.CreateWalletRequest)
		field  string
	}{
		{"blank name", func(r *entity.CreateWalletRequest) { r.Name = "  " }, "walName"},
		{"long name", func(r *entity.CreateWalletRequest) { r.Name = strings.Repeat("x", 101) }, "walName"},
		{"bad type", func(r *entity.CreateWalletRequest) { r.Type = "Paper" }, "walType"},
		{"bad protocol", func(r *entity.CreateWalletRequest) { r.Protocol = "TSS" }, "walProtocol"},
		{"bad status", func(r *entity.CreateWalletRequest) { r.Status = "deleted" }, "walStatus"},
		{"missing asset", func(r *entity.CreateWalletRequest) { r.AssetID = 0 }, "astId"},
		{"unknown asset", func(r *entity.CreateWalletRequest) { r.AssetID = 9 }, "astId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, svc := newAdminFixture()
			req := valid
			tt.mutate(&req)

			_, err := svc.CreateWallet(context.Background(), req)
			var verr *entity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Nil(t, backend.createdWallet)
		})
	}

	t.Run("valid defaults status", func(t *testing.T) {
		backend, svc := newAdminFixture()
		id, err := svc.CreateWallet(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, int64(501), id)
		require.NotNil(t, backend.createdWallet)
		assert.Equal(t, entity.WalletStatusActive, backend.createdWallet.Status)
	})
}

func TestCreateWalletAddress(t *testing.T) {
	keyInfo := `{"type":"multisig","requiredSigs":2,"totalKeys":3}`

	t.Run("evm wallet rejects non hex address", func(t *testing.T) {
		_, svc := newAdminFixture()
		_, err := svc.CreateWalletAddress(context.Background(), entity.CreateAddressRequest{WalletID: 20, Address: "bc1qxyz", KeyInfo: keyInfo})
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "wadAddress", verr.Field)
	})
	t.Run("evm wallet accepts hex address", func(t *testing.T) {
		backend, svc := newAdminFixture()
		id, err := svc.CreateWalletAddress(context.Background(), entity.CreateAddressRequest{
			WalletID: 20,
			Address:  " 0x52908400098527886E0F7030069857D2E4169EE7 ",
			KeyInfo:  keyInfo,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(601), id)
		assert.Equal(t, "0x52908400098527886E0F7030069857D2E4169EE7", backend.createdAddr.Address)
	})
	t.Run("evm address is stored with checksum casing", func(t *testing.T) {
		backend, svc := newAdminFixture()
		_, err := svc.CreateWalletAddress(context.Background(), entity.CreateAddressRequest{
			WalletID: 20,
			Address:  "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
			KeyInfo:  keyInfo,
		})
		require.NoError(t, err)
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", backend.createdAddr.Address)
	})
	t.Run("non evm wallet skips hex check", func(t *testing.T) {
		_, svc := newAdminFixture()
		_, err := svc.CreateWalletAddress(context.Background(), entity.CreateAddressRequest{WalletID: 10, Address: "bc1qxyz", KeyInfo: keyInfo})
		assert.NoError(t, err)
	})
	t.Run("key info must carry a type", func(t *testing.T) {
		_, svc := newAdminFixture()
		_, err := svc.CreateWalletAddress(context.Background(), entity.CreateAddressRequest{WalletID: 10, Address: "bc1qxyz", KeyInfo: `{"xpub":"x"}`})
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "wadKeyInfo", verr.Field)
	})
	t.Run("script info must be json", func(t *testing.T) {
		_, svc := newAdminFixture()
		_, err := svc.CreateWalletAddress(context.Background(), entity.CreateAddressRequest{WalletID: 10, Address: "bc1qxyz", KeyInfo: keyInfo, ScriptInfo: "{nope"})
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "wadScriptInfo", verr.Field)
	})
	t.Run("invalid wallet id", func(t *testing.T) {
		_, svc := newAdminFixture()
		_, err := svc.CreateWalletAddress(context.Background(), entity.CreateAddressRequest{WalletID: -1})
		assert.ErrorIs(t, err, entity.ErrInvalidIdentifier)
	})
}

func TestListWalletUsers_DropsInactive(t *testing.T) {
	_, svc := newAdminFixture()
	users, err := svc.ListWalletUsers(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestAddWalletUser_Permissions(t *testing.T) {
	tests := []struct {
		name    string
		actor   int64
		userID  int64
		role    entity.WalletRole
		wantErr error
	}{
		{"viewer cannot manage", 3, 9, entity.WalletRoleViewer, entity.ErrForbidden},
		{"admin cannot grant owner", 2, 9, entity.WalletRoleOwner, entity.ErrForbidden},
		{"stranger cannot manage", 77, 9, entity.WalletRoleViewer, entity.ErrForbidden},
		{"admin adds signer", 2, 9, entity.WalletRoleSigner, nil},
		{"owner grants owner", 1, 9, entity.WalletRoleOwner, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, svc := newAdminFixture()
			_, err := svc.AddWalletUser(context.Background(), tt.actor, entity.WalletUserMapping{WalletID: 10, UserID: tt.userID, Role: tt.role})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, backend.addedMapping)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, backend.addedMapping)
			assert.Equal(t, tt.role, backend.addedMapping.Role)
		})
	}
}

func TestAddWalletUser_RejectsDuplicatesAndBadRoles(t *testing.T) {
	_, svc := newAdminFixture()

	_, err := svc.AddWalletUser(context.Background(), 1, entity.WalletUserMapping{WalletID: 10, UserID: 3, Role: entity.WalletRoleSigner})
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.AddWalletUser(context.Background(), 1, entity.WalletUserMapping{WalletID: 10, UserID: 8, Role: "root"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "wumRole", verr.Field)
}

func TestAddWalletUser_WalletOwnerWithoutMapping(t *testing.T) {
	backend, svc := newAdminFixture()
	_, err := svc.AddWalletUser(context.Background(), 1, entity.WalletUserMapping{WalletID: 20, UserID: 5, Role: entity.WalletRoleViewer})
	require.NoError(t, err)
	assert.NotNil(t, backend.addedMapping)
}

func TestRemoveWalletUser(t *testing.T) {
	t.Run("admin removes viewer", func(t *testing.T) {
		backend, svc := newAdminFixture()
		require.NoError(t, svc.RemoveWalletUser(context.Background(), 2, 10, 102))
		assert.Equal(t, int64(102), backend.removedID)
	})
	t.Run("admin cannot remove owner", func(t *testing.T) {
		_, svc := newAdminFixture()
		assert.ErrorIs(t, svc.RemoveWalletUser(context.Background(), 2, 10, 100), entity.ErrForbidden)
	})
	t.Run("last owner stays", func(t *testing.T) {
		_, svc := newAdminFixture()
		var verr *entity.ValidationError
		assert.ErrorAs(t, svc.RemoveWalletUser(context.Background(), 1, 10, 100), &verr)
	})
	t.Run("unknown mapping", func(t *testing.T) {
		_, svc := newAdminFixture()
		assert.ErrorIs(t, svc.RemoveWalletUser(context.Background(), 1, 10, 555), entity.ErrNotFound)
	})
}
