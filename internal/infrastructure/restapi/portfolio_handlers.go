package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
)

// PortfolioHandler serves the read-only dashboard pages.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	logger           *zap.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		logger:           logger.Named("PortfolioHandler"),
	}
}

// GetPortfolioHandler handles GET /users/:userId/portfolio.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	userID, err := parseIDParam(c, "userId", "user")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.portfolioService.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": PresentPortfolio(view)})
}

// GetAssetWalletsHandler handles GET /users/:userId/assets/:assetId/wallets.
func (h *PortfolioHandler) GetAssetWalletsHandler(c *gin.Context) {
	userID, err := parseIDParam(c, "userId", "user")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	assetID, err := parseIDParam(c, "assetId", "asset")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.portfolioService.GetAssetWallets(c.Request.Context(), userID, assetID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": PresentAssetWallets(view)})
}

// GetWalletDetailHandler handles GET /wallets/:walletId.
func (h *PortfolioHandler) GetWalletDetailHandler(c *gin.Context) {
	walletID, err := parseIDParam(c, "walletId", "wallet")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.portfolioService.GetWalletDetail(c.Request.Context(), walletID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": PresentWalletDetail(view)})
}
