package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/pkg/logger"
)

const defaultConfigPath = "config/config.yml"

var (
	configPath string

	cfg       *configloader.Config
	zapLogger *zap.Logger

	rootCmd = &cobra.Command{
		Use:           "dashboard",
		Short:         "Wallet dashboard backend-for-frontend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := configloader.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded

			zl, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zapLogger = zl
			logger.InitSlog(zapLogger, cfg.Logging.Level)
			logger.Info("Configuration loaded", "path", configPath, "backend", cfg.Backend.Driver, "priceProvider", cfg.PriceSource.Provider)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if zapLogger != nil {
				_ = zapLogger.Sync()
			}
		},
	}
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = defaultConfigPath
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to the YAML configuration (env CONFIG_PATH)")

	rootCmd.AddCommand(serveCmd, portfolioCmd)
}
