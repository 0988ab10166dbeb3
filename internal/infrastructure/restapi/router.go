package restapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"wallet_dashboard/internal/infrastructure/configloader"
)

const openAPIRoute = "/docs/swagger.yaml"

// SetupRouter builds the gin engine with middleware, the API v1 routes and the operational endpoints.
func SetupRouter(
	cfg *configloader.Config,
	portfolioHandler *PortfolioHandler,
	walletHandler *WalletHandler,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(cors.New(corsConfig(cfg.CORS)))
	router.Use(RequestIDMiddleware())
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(MetricsMiddleware())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		router.StaticFile(openAPIRoute, cfg.Swagger.SpecFile)
		swaggerPath := strings.TrimRight(cfg.Swagger.Path, "/")
		router.GET(swaggerPath+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(openAPIRoute)))
		logger.Info("Swagger UI enabled", zap.String("path", swaggerPath+"/index.html"))
	}

	v1 := router.Group("/api/v1")
	v1.Use(TimeoutMiddleware(time.Duration(cfg.Server.RequestTimeout) * time.Second))
	{
		v1.GET("/users/:userId/portfolio", portfolioHandler.GetPortfolioHandler)
		v1.GET("/users/:userId/assets/:assetId/wallets", portfolioHandler.GetAssetWalletsHandler)
		v1.GET("/wallets/:walletId", portfolioHandler.GetWalletDetailHandler)

		v1.POST("/wallets", walletHandler.CreateWalletHandler)
		v1.POST("/wallets/:walletId/addresses", walletHandler.CreateWalletAddressHandler)
		v1.GET("/wallets/:walletId/users", walletHandler.ListWalletUsersHandler)
		v1.POST("/wallets/:walletId/users", walletHandler.AddWalletUserHandler)
		v1.DELETE("/wallets/:walletId/users/:mappingId", walletHandler.RemoveWalletUserHandler)
	}

	return router
}

func corsConfig(c configloader.CORSConfig) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(c.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = c.AllowOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", userIDHeader, requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	corsCfg.MaxAge = time.Duration(c.MaxAgeHours) * time.Hour
	return corsCfg
}
