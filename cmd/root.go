// Package cmd provides the command-line interface for reeltrend
package cmd

import (
	"context"
	"fmt"

	"github.com/kedare/reeltrend/internal/config"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel        string
	configPath      string
	backendOverride string
)

var rootCmd = &cobra.Command{
	Use:   "reeltrend",
	Short: "Track and serve trending movie searches",
	Long: `reeltrend records which search terms users type in the movie app and which
movie they landed on, and serves the most searched terms back as a trending list.

Analytics live in an Appwrite table (or a local SQLite/in-memory table for
development). Movie metadata comes from TMDB.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLevel(logLevel); err != nil {
			return fmt.Errorf("invalid log level '%s': %w", logLevel, err)
		}
		logger.Log.Debugf("Log level set to: %s", logLevel)

		return nil
	},
}

func Execute() error {
	return ExecuteContext(context.Background())
}

func ExecuteContext(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Log.Error(err)
	}

	return err
}

// loadConfig reads the configuration and applies --backend.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if backendOverride != "" {
		cfg.Backend = backendOverride
	}

	if cfg.File != "" {
		logger.Log.Debugf("Loaded configuration from %s", cfg.File)
	}

	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set the logging level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.reeltrend/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendOverride, "backend", "", "Analytics backend: appwrite, sqlite, memory")
}
