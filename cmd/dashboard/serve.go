package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wallet_dashboard/internal/infrastructure/metrics"
	"wallet_dashboard/internal/infrastructure/restapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()

	app, err := buildApplication(ctx, cfg, zapLogger)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer app.Close()

	// Warm the quote cache in the background so that startup does not wait on the price feed.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		symbols, err := warmupSymbols(warmCtx, cfg, app.backend)
		if err != nil {
			zapLogger.Warn("Skipping price warm-up", zap.Error(err))
			return
		}
		if err := app.prices.LoadAndCacheTokenPrices(warmCtx, symbols); err != nil {
			zapLogger.Error("Failed to perform initial load and cache of token prices", zap.Error(err))
			return
		}
		zapLogger.Info("Initial token price loading and caching completed", zap.Int("symbols", len(symbols)))
	}()

	gin.SetMode(cfg.Server.Mode)
	portfolioHandler := restapi.NewPortfolioHandler(app.portfolio, zapLogger)
	walletHandler := restapi.NewWalletHandler(app.admin, zapLogger)
	router := restapi.SetupRouter(cfg, portfolioHandler, walletHandler, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	zapLogger.Info("Server exiting")
	return nil
}
