package service

import (
	"context"

	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/metrics"
)

// BalanceResolver picks the current balance of an address out of its balance history.
type BalanceResolver struct {
	balances port.BalanceRepository
	logger   *zap.Logger
}

// NewBalanceResolver creates a BalanceResolver.
func NewBalanceResolver(balances port.BalanceRepository, logger *zap.Logger) *BalanceResolver {
	return &BalanceResolver{
		balances: balances,
		logger:   logger.Named("BalanceResolver"),
	}
}

// ResolveLatestBalance returns the most recent record for the address and asset, or nil when
// there is none. Fetch failures are logged and also reported as nil.
func (r *BalanceResolver) ResolveLatestBalance(ctx context.Context, addressID, assetID int64) *entity.BalanceRecord {
	record, _ := r.resolve(ctx, addressID, assetID)
	return record
}

// resolve is ResolveLatestBalance with the fetch error kept, so aggregators can count it.
func (r *BalanceResolver) resolve(ctx context.Context, addressID, assetID int64) (*entity.BalanceRecord, error) {
	records, err := r.balances.ListBalancesByAddress(ctx, addressID)
	if err != nil {
		metrics.BalanceFetchFailures.Inc()
		r.logger.Warn("Balance fetch failed, treating as zero",
			zap.Int64("addressId", addressID),
			zap.Int64("assetId", assetID),
			zap.Error(err))
		return nil, err
	}

	latest := SelectLatestBalance(records, assetID)
	if latest == nil {
		r.logger.Debug("No balance record for asset",
			zap.Int64("addressId", addressID),
			zap.Int64("assetId", assetID),
			zap.Int("records", len(records)))
	}
	return latest, nil
}

// SelectLatestBalance returns the record of assetID with the greatest (credat, cretim).
// Equal timestamps go to the highest record id; a full tie keeps the first record seen.
func SelectLatestBalance(records []entity.BalanceRecord, assetID int64) *entity.BalanceRecord {
	var latest *entity.BalanceRecord
	for i := range records {
		rec := &records[i]
		if rec.AssetID != assetID {
			continue
		}
		if latest == nil || rec.NewerThan(*latest) {
			latest = rec
		}
	}
	if latest == nil {
		return nil
	}
	out := *latest
	return &out
}
