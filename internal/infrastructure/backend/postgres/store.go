// Package postgres is a read model over the wallet backend's database. It serves the
// dashboard's read ports without going through the backend's REST API.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/metrics"
)

// PoolOptions sizes the connection pool.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store implements the backend read ports on top of database/sql with the pgx driver.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string, opts PoolOptions, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", entity.ErrBackendUnavailable, err)
	}

	store := NewStore(db, logger)
	store.logger.Info("Database pool initialized", zap.Int("maxOpenConns", opts.MaxOpenConns))
	return store, nil
}

// NewStore wraps an existing pool.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("PostgresStore")}
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const activeClause = "COALESCE(%s.active, '1') = '1'"

// queryError classifies a database error for the op.
func (s *Store) queryError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Warn("Database query failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %v", op, entity.ErrBackendUnavailable, err)
}

func (s *Store) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ObserveSince(metrics.BackendRequestDuration.WithLabelValues("pg_"+op, result), start)
}

const assetColumns = `ast_num, ast_name, ast_symbol, COALESCE(ast_type, ''), COALESCE(ast_network, ''), ast_decimals, COALESCE(active, '1')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (entity.Asset, error) {
	var a entity.Asset
	err := row.Scan(&a.ID, &a.Name, &a.Symbol, &a.Type, &a.Network, &a.Decimals, &a.Active)
	return a, err
}

// ListAssets implements port.AssetRepository.
func (s *Store) ListAssets(ctx context.Context) (out []entity.Asset, err error) {
	defer func(start time.Time) { s.observe("list_assets", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE `+fmt.Sprintf(activeClause, "assets")+` ORDER BY ast_num`)
	if err != nil {
		return nil, s.queryError("list assets", err)
	}
	defer rows.Close()

	out = []entity.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, s.queryError("scan asset", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError("list assets", err)
	}
	return out, nil
}

// GetAsset implements port.AssetRepository.
func (s *Store) GetAsset(ctx context.Context, assetID int64) (_ *entity.Asset, err error) {
	defer func(start time.Time) { s.observe("get_asset", start, err) }(time.Now())

	a, err := scanAsset(s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE ast_num = $1`, assetID))
	if err != nil {
		return nil, s.queryError(fmt.Sprintf("get asset %d", assetID), err)
	}
	return &a, nil
}

const walletColumns = `w.wal_num, w.wal_name, w.wal_type, w.wal_protocol, COALESCE(w.wal_status, 'active'), w.usi_num, w.ast_id, COALESCE(w.pol_id, 0), COALESCE(w.active, '1')`

func scanWallet(row rowScanner) (entity.Wallet, error) {
	var (
		w     entity.Wallet
		owner sql.NullInt64
	)
	err := row.Scan(&w.ID, &w.Name, &w.Type, &w.Protocol, &w.Status, &owner, &w.AssetID, &w.PolicyID, &w.Active)
	if owner.Valid {
		id := owner.Int64
		w.OwnerUserID = &id
	}
	return w, err
}

// ListWallets implements port.WalletRepository. A user sees wallets they own and wallets they
// hold an active mapping on.
func (s *Store) ListWallets(ctx context.Context, filter entity.WalletFilter) (out []entity.Wallet, err error) {
	defer func(start time.Time) { s.observe("list_wallets", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+walletColumns+`
		FROM wallets w
		WHERE `+fmt.Sprintf(activeClause, "w")+`
		  AND ($1::bigint = 0 OR w.usi_num = $1 OR EXISTS (
		        SELECT 1 FROM wallet_user_mappings m
		        WHERE m.wal_num = w.wal_num AND m.usi_num = $1 AND `+fmt.Sprintf(activeClause, "m")+`))
		  AND ($2::bigint = 0 OR w.ast_id = $2)
		ORDER BY w.wal_num`, filter.UserID, filter.AssetID)
	if err != nil {
		return nil, s.queryError("list wallets", err)
	}
	defer rows.Close()

	out = []entity.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, s.queryError("scan wallet", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError("list wallets", err)
	}
	return out, nil
}

// GetWallet implements port.WalletRepository.
func (s *Store) GetWallet(ctx context.Context, walletID int64) (_ *entity.Wallet, err error) {
	defer func(start time.Time) { s.observe("get_wallet", start, err) }(time.Now())

	w, err := scanWallet(s.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets w WHERE w.wal_num = $1`, walletID))
	if err != nil {
		return nil, s.queryError(fmt.Sprintf("get wallet %d", walletID), err)
	}
	return &w, nil
}

// ListAddressesByWallet implements port.AddressRepository.
func (s *Store) ListAddressesByWallet(ctx context.Context, walletID int64) (out []entity.Address, err error) {
	defer func(start time.Time) { s.observe("list_addresses", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT adr_num, adr_address, COALESCE(adr_label, ''), COALESCE(adr_type, ''), COALESCE(adr_path, ''),
		       wal_id, ast_id, COALESCE(active, '1')
		FROM addresses a
		WHERE wal_id = $1 AND `+fmt.Sprintf(activeClause, "a")+`
		ORDER BY adr_num`, walletID)
	if err != nil {
		return nil, s.queryError("list addresses", err)
	}
	defer rows.Close()

	out = []entity.Address{}
	for rows.Next() {
		var a entity.Address
		if err := rows.Scan(&a.ID, &a.Address, &a.Label, &a.Type, &a.Path, &a.WalletID, &a.AssetID, &a.Active); err != nil {
			return nil, s.queryError("scan address", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError("list addresses", err)
	}
	return out, nil
}

// ListBalancesByAddress implements port.BalanceRepository. Amount columns are numeric and read as
// text so no precision is lost.
func (s *Store) ListBalancesByAddress(ctx context.Context, addressID int64) (out []entity.BalanceRecord, err error) {
	defer func(start time.Time) { s.observe("list_balances", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT bal_num, adr_id, ast_id,
		       bal_before::text, bal_after::text, bal_confirmed::text, bal_pending::text,
		       COALESCE(creusr, 0), COALESCE(credat, ''), COALESCE(cretim, ''), COALESCE(active, '1')
		FROM balances
		WHERE adr_id = $1
		ORDER BY bal_num`, addressID)
	if err != nil {
		return nil, s.queryError("list balances", err)
	}
	defer rows.Close()

	out = []entity.BalanceRecord{}
	for rows.Next() {
		var (
			r                                 entity.BalanceRecord
			before, after, confirmed, pending sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.AddressID, &r.AssetID, &before, &after, &confirmed, &pending,
			&r.CreatedBy, &r.CreatedOn, &r.CreatedAt, &r.Active); err != nil {
			return nil, s.queryError("scan balance", err)
		}
		for _, pair := range []struct {
			src sql.NullString
			dst **big.Int
		}{{before, &r.Before}, {after, &r.After}, {confirmed, &r.Confirmed}, {pending, &r.Pending}} {
			v, err := parseAmount(pair.src)
			if err != nil {
				return nil, fmt.Errorf("balance %d: %w", r.ID, err)
			}
			*pair.dst = v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError("list balances", err)
	}
	return out, nil
}

func parseAmount(v sql.NullString) (*big.Int, error) {
	if !v.Valid {
		return nil, nil
	}
	if n, ok := new(big.Int).SetString(v.String, 10); ok {
		return n, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", v.String, err)
	}
	return d.BigInt(), nil
}

// ListTransactionsByWallet implements port.TransactionRepository.
func (s *Store) ListTransactionsByWallet(ctx context.Context, walletID int64) (out []entity.Transaction, err error) {
	defer func(start time.Time) { s.observe("list_transactions", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT trx_num, COALESCE(trx_tx_id, ''), COALESCE(trx_to_addr, ''), trx_amount, trx_fee,
		       COALESCE(trx_status, ''), COALESCE(trx_confirmed_dat, ''), COALESCE(trx_confirmed_tim, ''),
		       wal_num, COALESCE(wad_num, 0), COALESCE(credat, ''), COALESCE(cretim, ''), COALESCE(active, '1')
		FROM transactions t
		WHERE wal_num = $1 AND `+fmt.Sprintf(activeClause, "t")+`
		ORDER BY credat DESC, cretim DESC, trx_num DESC`, walletID)
	if err != nil {
		return nil, s.queryError("list transactions", err)
	}
	defer rows.Close()

	out = []entity.Transaction{}
	for rows.Next() {
		var (
			t   entity.Transaction
			fee decimal.NullDecimal
		)
		if err := rows.Scan(&t.ID, &t.TxID, &t.ToAddress, &t.Amount, &fee, &t.Status, &t.ConfirmedOn, &t.ConfirmedAt,
			&t.WalletID, &t.AddressID, &t.CreatedOn, &t.CreatedAt, &t.Active); err != nil {
			return nil, s.queryError("scan transaction", err)
		}
		if fee.Valid {
			t.Fee = fee.Decimal
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError("list transactions", err)
	}
	return out, nil
}
