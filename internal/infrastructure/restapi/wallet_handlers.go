package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// WalletHandler serves wallet administration requests.
type WalletHandler struct {
	adminService port.WalletAdminService
	logger       *zap.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(as port.WalletAdminService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		adminService: as,
		logger:       logger.Named("WalletHandler"),
	}
}

// CreatedResponse carries the id assigned by the backend.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

type addWalletUserRequest struct {
	UserID int64             `json:"usiNum"`
	Role   entity.WalletRole `json:"wumRole"`
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return entity.NewValidationError("body", err.Error())
	}
	return nil
}

// CreateWalletHandler handles POST /wallets.
func (h *WalletHandler) CreateWalletHandler(c *gin.Context) {
	var req entity.CreateWalletRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, err := h.adminService.CreateWallet(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": CreatedResponse{ID: id}})
}

// CreateWalletAddressHandler handles POST /wallets/:walletId/addresses.
func (h *WalletHandler) CreateWalletAddressHandler(c *gin.Context) {
	walletID, err := parseIDParam(c, "walletId", "wallet")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req entity.CreateAddressRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	req.WalletID = walletID

	id, err := h.adminService.CreateWalletAddress(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": CreatedResponse{ID: id}})
}

// ListWalletUsersHandler handles GET /wallets/:walletId/users.
func (h *WalletHandler) ListWalletUsersHandler(c *gin.Context) {
	walletID, err := parseIDParam(c, "walletId", "wallet")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	users, err := h.adminService.ListWalletUsers(c.Request.Context(), walletID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []entity.WalletUserMapping{}
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// AddWalletUserHandler handles POST /wallets/:walletId/users.
func (h *WalletHandler) AddWalletUserHandler(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	walletID, err := parseIDParam(c, "walletId", "wallet")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var req addWalletUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, err := h.adminService.AddWalletUser(c.Request.Context(), actor, entity.WalletUserMapping{
		UserID:   req.UserID,
		WalletID: walletID,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": CreatedResponse{ID: id}})
}

// RemoveWalletUserHandler handles DELETE /wallets/:walletId/users/:mappingId.
func (h *WalletHandler) RemoveWalletUserHandler(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	walletID, err := parseIDParam(c, "walletId", "wallet")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	mappingID, err := parseIDParam(c, "mappingId", "mapping")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.adminService.RemoveWalletUser(c.Request.Context(), actor, walletID, mappingID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
