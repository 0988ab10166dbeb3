package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxWalletNameLength = 100

// walletAdminServiceImpl implements port.WalletAdminService.
type walletAdminServiceImpl struct {
	admin   port.WalletAdminBackend
	assets  port.AssetRepository
	wallets port.WalletRepository
	logger  *zap.Logger
}

// NewWalletAdminService creates a WalletAdminService. Every request is validated before it
// reaches the backend.
func NewWalletAdminService(
	admin port.WalletAdminBackend,
	assets port.AssetRepository,
	wallets port.WalletRepository,
	logger *zap.Logger,
) port.WalletAdminService {
	return &walletAdminServiceImpl{
		admin:   admin,
		assets:  assets,
		wallets: wallets,
		logger:  logger.Named("WalletAdminService"),
	}
}

// CreateWallet implements port.WalletAdminService.
func (s *walletAdminServiceImpl) CreateWallet(ctx context.Context, req entity.CreateWalletRequest) (int64, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return 0, entity.NewValidationError("walName", "name is required")
	}
	if utf8.RuneCountInString(req.Name) > maxWalletNameLength {
		return 0, entity.NewValidationError("walName", fmt.Sprintf("name exceeds %d characters", maxWalletNameLength))
	}
	switch req.Type {
	case entity.WalletTypeHot, entity.WalletTypeCold, entity.WalletTypeTrading:
	default:
		return 0, entity.NewValidationError("walType", fmt.Sprintf("unknown wallet type %q", req.Type))
	}
	switch req.Protocol {
	case entity.WalletProtocolMPC, entity.WalletProtocolMultisig:
	default:
		return 0, entity.NewValidationError("walProtocol", fmt.Sprintf("unknown protocol %q", req.Protocol))
	}
	switch req.Status {
	case "":
		req.Status = entity.WalletStatusActive
	case entity.WalletStatusActive, entity.WalletStatusFrozen, entity.WalletStatusArchived:
	default:
		return 0, entity.NewValidationError("walStatus", fmt.Sprintf("unknown status %q", req.Status))
	}
	if req.OwnerUserID != nil && *req.OwnerUserID <= 0 {
		return 0, entity.NewValidationError("usiNum", "owner user id must be positive")
	}
	if req.PolicyID < 0 {
		return 0, entity.NewValidationError("polId", "policy id must not be negative")
	}
	if req.AssetID <= 0 {
		return 0, entity.NewValidationError("astId", "asset is required")
	}
	if _, err := s.assets.GetAsset(ctx, req.AssetID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return 0, entity.NewValidationError("astId", fmt.Sprintf("asset %d does not exist", req.AssetID))
		}
		return 0, fmt.Errorf("get asset %d: %w", req.AssetID, err)
	}

	id, err := s.admin.CreateWallet(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("create wallet: %w", err)
	}
	s.logger.Info("Wallet created",
		zap.Int64("walletId", id),
		zap.Int64("assetId", req.AssetID),
		zap.String("type", string(req.Type)))
	return id, nil
}

// CreateWalletAddress implements port.WalletAdminService.
func (s *walletAdminServiceImpl) CreateWalletAddress(ctx context.Context, req entity.CreateAddressRequest) (int64, error) {
	if err := entity.RequireID("wallet", req.WalletID); err != nil {
		return 0, err
	}
	req.Address = strings.TrimSpace(req.Address)
	if req.Address == "" {
		return 0, entity.NewValidationError("wadAddress", "address is required")
	}
	if err := validateKeyInfo(req.KeyInfo); err != nil {
		return 0, err
	}
	if req.ScriptInfo != "" && !json.Valid([]byte(req.ScriptInfo)) {
		return 0, entity.NewValidationError("wadScriptInfo", "script info must be valid JSON")
	}

	wallet, err := s.wallets.GetWallet(ctx, req.WalletID)
	if err != nil {
		return 0, fmt.Errorf("get wallet %d: %w", req.WalletID, err)
	}
	asset, err := s.assets.GetAsset(ctx, wallet.AssetID)
	if err != nil {
		return 0, fmt.Errorf("get asset %d: %w", wallet.AssetID, err)
	}
	if asset.IsEVM() {
		if !common.IsHexAddress(req.Address) {
			return 0, entity.NewValidationError("wadAddress", fmt.Sprintf("%q is not a valid %s address", req.Address, asset.Symbol))
		}
		// EIP-55 checksum casing
		req.Address = common.HexToAddress(req.Address).Hex()
	}

	id, err := s.admin.CreateWalletAddress(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("create address for wallet %d: %w", req.WalletID, err)
	}
	s.logger.Info("Wallet address registered", zap.Int64("walletId", req.WalletID), zap.Int64("addressId", id))
	return id, nil
}

func validateKeyInfo(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return entity.NewValidationError("wadKeyInfo", "key info is required")
	}
	var info entity.KeyInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return entity.NewValidationError("wadKeyInfo", "key info must be a JSON object")
	}
	if strings.TrimSpace(info.Type) == "" {
		return entity.NewValidationError("wadKeyInfo", "key info type is required")
	}
	if info.RequiredSigs > 0 && info.TotalKeys > 0 && info.RequiredSigs > info.TotalKeys {
		return entity.NewValidationError("wadKeyInfo", "required signatures exceed total keys")
	}
	return nil
}

// ListWalletUsers implements port.WalletAdminService.
func (s *walletAdminServiceImpl) ListWalletUsers(ctx context.Context, walletID int64) ([]entity.WalletUserMapping, error) {
	if err := entity.RequireID("wallet", walletID); err != nil {
		return nil, err
	}
	all, err := s.admin.ListWalletUsers(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("list users of wallet %d: %w", walletID, err)
	}
	active := make([]entity.WalletUserMapping, 0, len(all))
	for _, m := range all {
		if m.WalletID == walletID && m.IsActive() {
			active = append(active, m)
		}
	}
	return active, nil
}

// AddWalletUser implements port.WalletAdminService.
func (s *walletAdminServiceImpl) AddWalletUser(ctx context.Context, actorUserID int64, mapping entity.WalletUserMapping) (int64, error) {
	if err := entity.RequireID("actor user", actorUserID); err != nil {
		return 0, err
	}
	if err := entity.RequireID("wallet", mapping.WalletID); err != nil {
		return 0, err
	}
	if err := entity.RequireID("user", mapping.UserID); err != nil {
		return 0, err
	}
	if !mapping.Role.Valid() {
		return 0, entity.NewValidationError("wumRole", fmt.Sprintf("unknown role %q", mapping.Role))
	}

	current, err := s.ListWalletUsers(ctx, mapping.WalletID)
	if err != nil {
		return 0, err
	}
	actorRole, err := s.actorRole(ctx, actorUserID, mapping.WalletID, current)
	if err != nil {
		return 0, err
	}
	if mapping.Role == entity.WalletRoleOwner && actorRole != entity.WalletRoleOwner {
		return 0, fmt.Errorf("%w: only an owner can grant the owner role", entity.ErrForbidden)
	}
	for _, m := range current {
		if m.UserID == mapping.UserID {
			return 0, entity.NewValidationError("usiNum", fmt.Sprintf("user %d already has access to wallet %d", mapping.UserID, mapping.WalletID))
		}
	}

	mapping.ID = 0
	mapping.Active = ""
	id, err := s.admin.AddWalletUser(ctx, mapping)
	if err != nil {
		return 0, fmt.Errorf("add user %d to wallet %d: %w", mapping.UserID, mapping.WalletID, err)
	}
	s.logger.Info("Wallet user added",
		zap.Int64("walletId", mapping.WalletID),
		zap.Int64("userId", mapping.UserID),
		zap.String("role", string(mapping.Role)),
		zap.Int64("actor", actorUserID))
	return id, nil
}

// RemoveWalletUser implements port.WalletAdminService.
func (s *walletAdminServiceImpl) RemoveWalletUser(ctx context.Context, actorUserID, walletID, mappingID int64) error {
	if err := entity.RequireID("actor user", actorUserID); err != nil {
		return err
	}
	if err := entity.RequireID("wallet", walletID); err != nil {
		return err
	}
	if err := entity.RequireID("mapping", mappingID); err != nil {
		return err
	}

	current, err := s.ListWalletUsers(ctx, walletID)
	if err != nil {
		return err
	}
	var target *entity.WalletUserMapping
	owners := 0
	for i := range current {
		if current[i].ID == mappingID {
			target = &current[i]
		}
		if current[i].Role == entity.WalletRoleOwner {
			owners++
		}
	}
	if target == nil {
		return fmt.Errorf("%w: mapping %d on wallet %d", entity.ErrNotFound, mappingID, walletID)
	}

	actorRole, err := s.actorRole(ctx, actorUserID, walletID, current)
	if err != nil {
		return err
	}
	if target.Role == entity.WalletRoleOwner {
		if actorRole != entity.WalletRoleOwner {
			return fmt.Errorf("%w: only an owner can remove an owner", entity.ErrForbidden)
		}
		if owners <= 1 {
			return entity.NewValidationError("wumNum", "cannot remove the last owner of a wallet")
		}
	}

	if err := s.admin.RemoveWalletUser(ctx, mappingID); err != nil {
		return fmt.Errorf("remove mapping %d: %w", mappingID, err)
	}
	s.logger.Info("Wallet user removed",
		zap.Int64("walletId", walletID),
		zap.Int64("mappingId", mappingID),
		zap.Int64("actor", actorUserID))
	return nil
}

// actorRole returns the actor's role on the wallet and fails with ErrForbidden unless it may
// manage users. The wallet's owning user is an owner even without a mapping.
func (s *walletAdminServiceImpl) actorRole(ctx context.Context, actorUserID, walletID int64, mappings []entity.WalletUserMapping) (entity.WalletRole, error) {
	var role entity.WalletRole
	for _, m := range mappings {
		if m.UserID == actorUserID {
			role = m.Role
			break
		}
	}
	if role != entity.WalletRoleOwner {
		wallet, err := s.wallets.GetWallet(ctx, walletID)
		if err != nil {
			return "", fmt.Errorf("get wallet %d: %w", walletID, err)
		}
		if wallet.OwnerUserID != nil && *wallet.OwnerUserID == actorUserID {
			role = entity.WalletRoleOwner
		}
	}
	if !role.CanManageUsers() {
		return "", fmt.Errorf("%w: user %d cannot manage users of wallet %d", entity.ErrForbidden, actorUserID, walletID)
	}
	return role, nil
}
