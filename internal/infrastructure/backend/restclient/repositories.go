package restclient

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"

	"wallet_dashboard/internal/domain/entity"
)

// ListAssets implements port.AssetRepository.
func (c *Client) ListAssets(ctx context.Context) ([]entity.Asset, error) {
	var assets []entity.Asset
	if err := c.getJSON(ctx, "list_assets", "/api/assets", nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// GetAsset implements port.AssetRepository.
func (c *Client) GetAsset(ctx context.Context, assetID int64) (*entity.Asset, error) {
	var asset entity.Asset
	if err := c.getJSON(ctx, "get_asset", fmt.Sprintf("/api/assets/%d", assetID), nil, &asset); err != nil {
		return nil, err
	}
	if asset.ID == 0 {
		return nil, &BackendError{Op: "get_asset", Err: fmt.Errorf("%w: asset %d", entity.ErrNotFound, assetID)}
	}
	return &asset, nil
}

// ListWallets implements port.WalletRepository. The backend lists by user; the asset part of
// the filter is applied here.
func (c *Client) ListWallets(ctx context.Context, filter entity.WalletFilter) ([]entity.Wallet, error) {
	path := "/api/wallets"
	switch {
	case filter.UserID > 0:
		path = fmt.Sprintf("/api/wallets/user/%d", filter.UserID)
	case filter.AssetID > 0:
		path = fmt.Sprintf("/api/wallets/asset/%d", filter.AssetID)
	}

	var wallets []entity.Wallet
	if err := c.getJSON(ctx, "list_wallets", path, nil, &wallets); err != nil {
		return nil, err
	}
	out := make([]entity.Wallet, 0, len(wallets))
	for _, w := range wallets {
		if filter.Matches(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

// GetWallet implements port.WalletRepository.
func (c *Client) GetWallet(ctx context.Context, walletID int64) (*entity.Wallet, error) {
	var wallet entity.Wallet
	if err := c.getJSON(ctx, "get_wallet", fmt.Sprintf("/api/wallets/%d", walletID), nil, &wallet); err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, &BackendError{Op: "get_wallet", Err: fmt.Errorf("%w: wallet %d", entity.ErrNotFound, walletID)}
	}
	return &wallet, nil
}

// ListAddressesByWallet implements port.AddressRepository.
func (c *Client) ListAddressesByWallet(ctx context.Context, walletID int64) ([]entity.Address, error) {
	var addrs []entity.Address
	if err := c.getJSON(ctx, "list_addresses", fmt.Sprintf("/api/addresses/wallet/%d", walletID), nil, &addrs); err != nil {
		return nil, err
	}
	if addrs == nil {
		addrs = []entity.Address{}
	}
	return addrs, nil
}

// balanceDTO mirrors the backend balance row; amounts may arrive as numbers or strings.
type balanceDTO struct {
	ID        int64     `json:"balNum"`
	AddressID int64     `json:"adrId"`
	AssetID   int64     `json:"astId"`
	Before    rawAmount `json:"balBefore"`
	After     rawAmount `json:"balAfter"`
	Confirmed rawAmount `json:"balConfirmed"`
	Pending   rawAmount `json:"balPending"`
	CreatedBy int64     `json:"creusr"`
	CreatedOn string    `json:"credat"`
	CreatedAt string    `json:"cretim"`
	Active    string    `json:"active"`
}

// ListBalancesByAddress implements port.BalanceRepository.
func (c *Client) ListBalancesByAddress(ctx context.Context, addressID int64) ([]entity.BalanceRecord, error) {
	var rows []balanceDTO
	if err := c.getJSON(ctx, "list_balances", fmt.Sprintf("/api/balances/address/%d", addressID), nil, &rows); err != nil {
		return nil, err
	}
	out := make([]entity.BalanceRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.BalanceRecord{
			ID:        r.ID,
			AddressID: r.AddressID,
			AssetID:   r.AssetID,
			Before:    r.Before.v,
			After:     r.After.v,
			Confirmed: r.Confirmed.v,
			Pending:   r.Pending.v,
			CreatedBy: r.CreatedBy,
			CreatedOn: r.CreatedOn,
			CreatedAt: r.CreatedAt,
			Active:    r.Active,
		})
	}
	return out, nil
}

// ListTransactionsByWallet implements port.TransactionRepository.
func (c *Client) ListTransactionsByWallet(ctx context.Context, walletID int64) ([]entity.Transaction, error) {
	var txs []entity.Transaction
	if err := c.getJSON(ctx, "list_transactions", fmt.Sprintf("/api/transactions/wallet/%d", walletID), nil, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []entity.Transaction{}
	}
	return txs, nil
}

// CreateWallet implements port.WalletAdminBackend.
func (c *Client) CreateWallet(ctx context.Context, req entity.CreateWalletRequest) (int64, error) {
	return c.create(ctx, "create_wallet", "/api/wallets", "walNum", req)
}

// CreateWalletAddress implements port.WalletAdminBackend.
func (c *Client) CreateWalletAddress(ctx context.Context, req entity.CreateAddressRequest) (int64, error) {
	return c.create(ctx, "create_address", "/api/wad", "wadNum", req)
}

// ListWalletUsers implements port.WalletAdminBackend.
func (c *Client) ListWalletUsers(ctx context.Context, walletID int64) ([]entity.WalletUserMapping, error) {
	query := url.Values{"walNum": []string{strconv.FormatInt(walletID, 10)}}
	var mappings []entity.WalletUserMapping
	if err := c.getJSON(ctx, "list_wallet_users", "/api/wum/list", query, &mappings); err != nil {
		return nil, err
	}
	out := make([]entity.WalletUserMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.WalletID == walletID {
			out = append(out, m)
		}
	}
	return out, nil
}

// AddWalletUser implements port.WalletAdminBackend.
func (c *Client) AddWalletUser(ctx context.Context, mapping entity.WalletUserMapping) (int64, error) {
	return c.create(ctx, "add_wallet_user", "/api/wum", "wumNum", mapping)
}

// RemoveWalletUser implements port.WalletAdminBackend.
func (c *Client) RemoveWalletUser(ctx context.Context, mappingID int64) error {
	_, err := c.do(ctx, "remove_wallet_user", fasthttp.MethodDelete, fmt.Sprintf("/api/wum/%d", mappingID), nil, nil)
	return err
}

// rawAmount decodes an integer amount given as a JSON number or string. Fractions are truncated.
type rawAmount struct {
	v *big.Int
}

func (a *rawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		a.v = nil
		return nil
	}
	if v, ok := new(big.Int).SetString(string(data), 10); ok {
		a.v = v
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("amount %q: %w", data, err)
	}
	a.v = d.BigInt()
	return nil
}
