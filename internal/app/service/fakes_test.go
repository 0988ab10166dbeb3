package service

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"

	"wallet_dashboard/internal/domain/entity"
)

var errBackendDown = errors.New("backend down")

// fakeBackend is an in-memory PortfolioBackend and WalletAdminBackend.
type fakeBackend struct {
	mu sync.Mutex

	assets       []entity.Asset
	wallets      []entity.Wallet
	addresses    map[int64][]entity.Address
	balances     map[int64][]entity.BalanceRecord
	transactions map[int64][]entity.Transaction
	mappings     []entity.WalletUserMapping

	assetsErr       error
	walletsErr      error
	addressErr      map[int64]error
	balanceErr      map[int64]error
	transactionsErr error

	balanceCalls  int
	createdWallet *entity.CreateWalletRequest
	createdAddr   *entity.CreateAddressRequest
	addedMapping  *entity.WalletUserMapping
	removedID     int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		addresses:    map[int64][]entity.Address{},
		balances:     map[int64][]entity.BalanceRecord{},
		transactions: map[int64][]entity.Transaction{},
		addressErr:   map[int64]error{},
		balanceErr:   map[int64]error{},
	}
}

func (f *fakeBackend) ListAssets(context.Context) ([]entity.Asset, error) {
	if f.assetsErr != nil {
		return nil, f.assetsErr
	}
	return f.assets, nil
}

func (f *fakeBackend) GetAsset(_ context.Context, id int64) (*entity.Asset, error) {
	for _, a := range f.assets {
		if a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (f *fakeBackend) ListWallets(_ context.Context, filter entity.WalletFilter) ([]entity.Wallet, error) {
	if f.walletsErr != nil {
		return nil, f.walletsErr
	}
	var out []entity.Wallet
	for _, w := range f.wallets {
		if w.OwnerUserID != nil && *w.OwnerUserID == filter.UserID && filter.Matches(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetWallet(_ context.Context, id int64) (*entity.Wallet, error) {
	for _, w := range f.wallets {
		if w.ID == id {
			out := w
			return &out, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (f *fakeBackend) ListAddressesByWallet(_ context.Context, walletID int64) ([]entity.Address, error) {
	if err := f.addressErr[walletID]; err != nil {
		return nil, err
	}
	return f.addresses[walletID], nil
}

func (f *fakeBackend) ListBalancesByAddress(_ context.Context, addressID int64) ([]entity.BalanceRecord, error) {
	f.mu.Lock()
	f.balanceCalls++
	f.mu.Unlock()
	if err := f.balanceErr[addressID]; err != nil {
		return nil, err
	}
	return f.balances[addressID], nil
}

func (f *fakeBackend) ListTransactionsByWallet(_ context.Context, walletID int64) ([]entity.Transaction, error) {
	if f.transactionsErr != nil {
		return nil, f.transactionsErr
	}
	return f.transactions[walletID], nil
}

func (f *fakeBackend) CreateWallet(_ context.Context, req entity.CreateWalletRequest) (int64, error) {
	f.createdWallet = &req
	return 501, nil
}

func (f *fakeBackend) CreateWalletAddress(_ context.Context, req entity.CreateAddressRequest) (int64, error) {
	f.createdAddr = &req
	return 601, nil
}

func (f *fakeBackend) ListWalletUsers(_ context.Context, walletID int64) ([]entity.WalletUserMapping, error) {
	var out []entity.WalletUserMapping
	for _, m := range f.mappings {
		if m.WalletID == walletID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBackend) AddWalletUser(_ context.Context, m entity.WalletUserMapping) (int64, error) {
	f.addedMapping = &m
	return 701, nil
}

func (f *fakeBackend) RemoveWalletUser(_ context.Context, id int64) error {
	f.removedID = id
	return nil
}

// fakePrices is a fixed PriceSource.
type fakePrices map[string]decimal.Decimal

func (p fakePrices) Quote(_ context.Context, symbol string) (entity.PriceQuote, bool) {
	price, ok := p[symbol]
	if !ok {
		return entity.PriceQuote{}, false
	}
	return entity.PriceQuote{Symbol: symbol, PriceUSD: price}, true
}

func balance(id, addressID, assetID int64, confirmed int64, date, tm string) entity.BalanceRecord {
	return entity.BalanceRecord{
		ID:        id,
		AddressID: addressID,
		AssetID:   assetID,
		Confirmed: big.NewInt(confirmed),
		Pending:   big.NewInt(0),
		CreatedOn: date,
		CreatedAt: tm,
	}
}

func ptr(v int64) *int64 { return &v }
