package service

import (
	"context"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"
)

// WalletBalanceAggregator sums the latest balances of a wallet's addresses and values them in fiat.
type WalletBalanceAggregator struct {
	enumerator     *AddressEnumerator
	resolver       *BalanceResolver
	prices         port.PriceSource
	logger         *zap.Logger
	maxConcurrent  int
	includePending bool
}

// NewWalletBalanceAggregator creates a WalletBalanceAggregator. With includePending set the fiat
// value covers confirmed plus pending amounts; ConfirmedRaw is always confirmed only.
func NewWalletBalanceAggregator(
	enumerator *AddressEnumerator,
	resolver *BalanceResolver,
	prices port.PriceSource,
	logger *zap.Logger,
	maxConcurrent int,
	includePending bool,
) *WalletBalanceAggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &WalletBalanceAggregator{
		enumerator:     enumerator,
		resolver:       resolver,
		prices:         prices,
		logger:         logger.Named("WalletBalanceAggregator"),
		maxConcurrent:  maxConcurrent,
		includePending: includePending,
	}
}

// AggregateWalletBalance enumerates the wallet's addresses, resolves every balance in parallel
// and converts the sum to fiat. Only the address listing can fail.
func (a *WalletBalanceAggregator) AggregateWalletBalance(ctx context.Context, wallet entity.Wallet, asset entity.Asset) (entity.WalletBalance, error) {
	addrs, err := a.enumerator.AddressesForWallet(ctx, wallet.ID)
	if err != nil {
		return entity.WalletBalance{}, err
	}
	quote, ok := a.prices.Quote(ctx, asset.Symbol)
	return a.SumAddressBalances(ctx, wallet.ID, addrs, asset, quote, ok), nil
}

// SumAddressBalances resolves already enumerated addresses and values the total with quote.
// A missing quote (ok false) values the balance at zero.
func (a *WalletBalanceAggregator) SumAddressBalances(
	ctx context.Context,
	walletID int64,
	addrs []entity.Address,
	asset entity.Asset,
	quote entity.PriceQuote,
	ok bool,
) entity.WalletBalance {
	result := entity.ZeroWalletBalance(walletID)
	result.AddressCount = len(addrs)
	if len(addrs) == 0 {
		return result
	}

	confirmed := make([]*big.Int, len(addrs))
	pending := make([]*big.Int, len(addrs))
	var (
		mu         sync.Mutex
		unresolved int
	)

	var g errgroup.Group
	g.SetLimit(a.maxConcurrent)
	for i, addr := range addrs {
		g.Go(func() error {
			rec, err := a.resolver.resolve(ctx, addr.ID, asset.ID)
			if err != nil {
				mu.Lock()
				unresolved++
				mu.Unlock()
			}
			confirmed[i] = rec.ConfirmedOrZero()
			pending[i] = rec.PendingOrZero()
			return nil
		})
	}
	_ = g.Wait()

	result.ConfirmedRaw = utils.SumBigInts(confirmed...)
	result.PendingRaw = utils.SumBigInts(pending...)
	result.UnresolvedAddresses = unresolved

	valued := result.ConfirmedRaw
	if a.includePending {
		valued = new(big.Int).Add(result.ConfirmedRaw, result.PendingRaw)
	}
	if ok {
		result.FiatValue = FiatValue(valued, asset.Decimals, quote.PriceUSD)
	} else {
		a.logger.Debug("No price for asset, fiat value is zero",
			zap.String("symbol", asset.Symbol),
			zap.Int64("walletId", walletID))
	}

	if unresolved > 0 {
		a.logger.Warn("Wallet balance computed with unresolved addresses",
			zap.Int64("walletId", walletID),
			zap.Int("unresolved", unresolved),
			zap.Int("addresses", len(addrs)))
	}
	return result
}

// FiatValue is raw / 10^decimals * price.
func FiatValue(raw *big.Int, decimals int32, price decimal.Decimal) decimal.Decimal {
	return utils.ToUnits(raw, decimals).Mul(price)
}
