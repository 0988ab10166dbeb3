package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/metrics"
	"wallet_dashboard/internal/pkg/utils"
)

// PortfolioOptions configures the aggregation pipeline.
type PortfolioOptions struct {
	MaxConcurrentRequests int
	IncludePending        bool
}

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	backend     port.PortfolioBackend
	prices      port.PriceSource
	enumerator  *AddressEnumerator
	wallets     *WalletBalanceAggregator
	logger      *zap.Logger
	maxRoutines int
}

// NewPortfolioService wires the resolver, enumerator and aggregators over one backend.
func NewPortfolioService(
	backend port.PortfolioBackend,
	prices port.PriceSource,
	opts PortfolioOptions,
	logger *zap.Logger,
) *PortfolioServiceImpl {
	maxRoutines := opts.MaxConcurrentRequests
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	enumerator := NewAddressEnumerator(backend, logger, maxRoutines)
	resolver := NewBalanceResolver(backend, logger)
	return &PortfolioServiceImpl{
		backend:     backend,
		prices:      prices,
		enumerator:  enumerator,
		wallets:     NewWalletBalanceAggregator(enumerator, resolver, prices, logger, maxRoutines, opts.IncludePending),
		logger:      logger.Named("PortfolioService"),
		maxRoutines: maxRoutines,
	}
}

// GetPortfolio lists every asset and aggregates the user's holdings in each.
func (s *PortfolioServiceImpl) GetPortfolio(ctx context.Context, userID int64) (*entity.PortfolioView, error) {
	if err := entity.RequireID("user", userID); err != nil {
		return nil, err
	}
	defer metrics.ObserveSince(metrics.AggregationDuration.WithLabelValues("portfolio"), time.Now())

	assets, err := s.backend.ListAssets(ctx)
	if err != nil {
		s.logger.Error("Failed to list assets", zap.Int64("userId", userID), zap.Error(err))
		return nil, fmt.Errorf("list assets: %w", err)
	}

	entries, err := s.AggregatePortfolio(ctx, userID, assets)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.FiatValue)
	}
	s.logger.Info("Portfolio aggregated",
		zap.Int64("userId", userID),
		zap.Int("assets", len(entries)),
		zap.String("totalFiat", total.StringFixed(2)))
	return &entity.PortfolioView{UserID: userID, Entries: entries, TotalFiatValue: total}, nil
}

// AggregatePortfolio builds one entry per asset, in the order supplied, with each entry's share
// of the total fiat value. Wallet and address listing failures abort the whole result.
func (s *PortfolioServiceImpl) AggregatePortfolio(ctx context.Context, userID int64, assets []entity.Asset) ([]entity.PortfolioEntry, error) {
	entries := make([]entity.PortfolioEntry, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxRoutines)
	for i, asset := range assets {
		g.Go(func() error {
			entry, err := s.aggregateAsset(gctx, userID, asset)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Portfolio aggregation failed", zap.Int64("userId", userID), zap.Error(err))
		return nil, err
	}

	ApplyPortfolioPercentages(entries)
	return entries, nil
}

// ApplyPortfolioPercentages sets each entry's unrounded share of the summed fiat value.
// All shares are zero when the total is zero.
func ApplyPortfolioPercentages(entries []entity.PortfolioEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.FiatValue)
	}
	for i := range entries {
		entries[i].PortfolioPercent = utils.Percent(entries[i].FiatValue, total)
	}
	return total
}

func (s *PortfolioServiceImpl) aggregateAsset(ctx context.Context, userID int64, asset entity.Asset) (entity.PortfolioEntry, error) {
	wallets, err := s.backend.ListWallets(ctx, entity.WalletFilter{UserID: userID, AssetID: asset.ID})
	if err != nil {
		return entity.PortfolioEntry{}, fmt.Errorf("list wallets of user %d for asset %d: %w", userID, asset.ID, err)
	}

	quote, ok := s.prices.Quote(ctx, asset.Symbol)
	balances, err := s.walletBalances(ctx, wallets, asset, quote, ok)
	if err != nil {
		return entity.PortfolioEntry{}, err
	}

	entry := entity.PortfolioEntry{
		Asset:          asset,
		ConfirmedRaw:   new(big.Int),
		PendingRaw:     new(big.Int),
		Quote:          quote,
		PriceAvailable: ok,
		FiatValue:      decimal.Zero,
		WalletCount:    len(wallets),
	}
	for _, b := range balances {
		entry.ConfirmedRaw.Add(entry.ConfirmedRaw, b.ConfirmedRaw)
		entry.PendingRaw.Add(entry.PendingRaw, b.PendingRaw)
		entry.FiatValue = entry.FiatValue.Add(b.FiatValue)
	}
	return entry, nil
}

// walletBalances aggregates each wallet concurrently, keeping the input order.
func (s *PortfolioServiceImpl) walletBalances(
	ctx context.Context,
	wallets []entity.Wallet,
	asset entity.Asset,
	quote entity.PriceQuote,
	ok bool,
) ([]entity.WalletBalance, error) {
	balances := make([]entity.WalletBalance, len(wallets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxRoutines)
	for i, w := range wallets {
		g.Go(func() error {
			addrs, err := s.enumerator.AddressesForWallet(gctx, w.ID)
			if err != nil {
				return err
			}
			balances[i] = s.wallets.SumAddressBalances(gctx, w.ID, addrs, asset, quote, ok)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return balances, nil
}

// GetAssetWallets returns the user's wallets for one asset with their balances.
func (s *PortfolioServiceImpl) GetAssetWallets(ctx context.Context, userID, assetID int64) (*entity.AssetWalletsView, error) {
	if err := entity.RequireID("user", userID); err != nil {
		return nil, err
	}
	if err := entity.RequireID("asset", assetID); err != nil {
		return nil, err
	}
	defer metrics.ObserveSince(metrics.AggregationDuration.WithLabelValues("asset_wallets"), time.Now())

	asset, err := s.backend.GetAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset %d: %w", assetID, err)
	}
	wallets, err := s.backend.ListWallets(ctx, entity.WalletFilter{UserID: userID, AssetID: assetID})
	if err != nil {
		return nil, fmt.Errorf("list wallets of user %d for asset %d: %w", userID, assetID, err)
	}
	addrs, err := s.enumerator.AddressesForAssetAcrossWallets(ctx, assetID, wallets)
	if err != nil {
		return nil, err
	}

	byWallet := make(map[int64][]entity.Address, len(wallets))
	for _, a := range addrs {
		byWallet[a.WalletID] = append(byWallet[a.WalletID], a)
	}

	quote, ok := s.prices.Quote(ctx, asset.Symbol)
	summaries := make([]entity.WalletSummary, len(wallets))
	var g errgroup.Group
	g.SetLimit(s.maxRoutines)
	for i, w := range wallets {
		g.Go(func() error {
			summaries[i] = entity.WalletSummary{
				Wallet:  w,
				Balance: s.wallets.SumAddressBalances(ctx, w.ID, byWallet[w.ID], *asset, quote, ok),
			}
			return nil
		})
	}
	_ = g.Wait()

	view := &entity.AssetWalletsView{
		UserID:            userID,
		Asset:             *asset,
		Quote:             quote,
		PriceAvailable:    ok,
		Wallets:           summaries,
		Addresses:         addrs,
		TotalConfirmedRaw: new(big.Int),
		TotalFiatValue:    decimal.Zero,
	}
	for _, ws := range summaries {
		view.TotalConfirmedRaw.Add(view.TotalConfirmedRaw, ws.Balance.ConfirmedRaw)
		view.TotalFiatValue = view.TotalFiatValue.Add(ws.Balance.FiatValue)
	}
	return view, nil
}

// GetWalletDetail returns a wallet with its asset, addresses, balance and transactions.
// Transactions are best effort: a failed fetch yields an empty list.
func (s *PortfolioServiceImpl) GetWalletDetail(ctx context.Context, walletID int64) (*entity.WalletDetailView, error) {
	if err := entity.RequireID("wallet", walletID); err != nil {
		return nil, err
	}
	defer metrics.ObserveSince(metrics.AggregationDuration.WithLabelValues("wallet_detail"), time.Now())

	wallet, err := s.backend.GetWallet(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("get wallet %d: %w", walletID, err)
	}
	asset, err := s.backend.GetAsset(ctx, wallet.AssetID)
	if err != nil {
		return nil, fmt.Errorf("get asset %d of wallet %d: %w", wallet.AssetID, walletID, err)
	}

	var (
		addrs []entity.Address
		txs   []entity.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		addrs, err = s.enumerator.AddressesForWallet(gctx, walletID)
		return err
	})
	g.Go(func() error {
		list, err := s.backend.ListTransactionsByWallet(gctx, walletID)
		if err != nil {
			s.logger.Warn("Transaction fetch failed, showing none",
				zap.Int64("walletId", walletID),
				zap.Error(err))
			list = nil
		}
		if list == nil {
			list = []entity.Transaction{}
		}
		txs = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quote, ok := s.prices.Quote(ctx, asset.Symbol)
	return &entity.WalletDetailView{
		Wallet:         *wallet,
		Asset:          *asset,
		FormattedID:    FormatWalletID(*wallet),
		Addresses:      addrs,
		Balance:        s.wallets.SumAddressBalances(ctx, walletID, addrs, *asset, quote, ok),
		Quote:          quote,
		PriceAvailable: ok,
		Transactions:   txs,
	}, nil
}

// FormatWalletID renders wallet, owner, asset and policy ids as four 8-digit hex groups.
func FormatWalletID(w entity.Wallet) string {
	var owner int64
	if w.OwnerUserID != nil {
		owner = *w.OwnerUserID
	}
	return fmt.Sprintf("%08x%08x%08x%08x", uint32(w.ID), uint32(owner), uint32(w.AssetID), uint32(w.PolicyID))
}
