package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// AddressEnumerator lists wallet addresses, one wallet at a time or across many.
type AddressEnumerator struct {
	addresses     port.AddressRepository
	logger        *zap.Logger
	maxConcurrent int
}

// NewAddressEnumerator creates an AddressEnumerator. maxConcurrent bounds the parallel fetches.
func NewAddressEnumerator(addresses port.AddressRepository, logger *zap.Logger, maxConcurrent int) *AddressEnumerator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &AddressEnumerator{
		addresses:     addresses,
		logger:        logger.Named("AddressEnumerator"),
		maxConcurrent: maxConcurrent,
	}
}

// AddressesForWallet returns the wallet's addresses. An empty wallet yields an empty slice;
// a fetch failure is returned as an error.
func (e *AddressEnumerator) AddressesForWallet(ctx context.Context, walletID int64) ([]entity.Address, error) {
	addrs, err := e.addresses.ListAddressesByWallet(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("list addresses of wallet %d: %w", walletID, err)
	}
	if addrs == nil {
		addrs = []entity.Address{}
	}
	return addrs, nil
}

// AddressesForAssetAcrossWallets fetches the addresses of every wallet concurrently and keeps
// those belonging to assetID. An address without an asset id inherits its wallet's.
func (e *AddressEnumerator) AddressesForAssetAcrossWallets(ctx context.Context, assetID int64, wallets []entity.Wallet) ([]entity.Address, error) {
	perWallet := make([][]entity.Address, len(wallets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, w := range wallets {
		g.Go(func() error {
			addrs, err := e.AddressesForWallet(gctx, w.ID)
			if err != nil {
				return err
			}
			matching := make([]entity.Address, 0, len(addrs))
			for _, a := range addrs {
				owner := a.AssetID
				if owner == 0 {
					owner = w.AssetID
				}
				if owner == assetID {
					matching = append(matching, a)
				}
			}
			perWallet[i] = matching
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []entity.Address
	for _, addrs := range perWallet {
		out = append(out, addrs...)
	}
	if out == nil {
		out = []entity.Address{}
	}
	e.logger.Debug("Enumerated addresses across wallets",
		zap.Int64("assetId", assetID),
		zap.Int("wallets", len(wallets)),
		zap.Int("addresses", len(out)))
	return out, nil
}
