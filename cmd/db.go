package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/kedare/reeltrend/internal/config"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/spf13/cobra"
)

var errNotSQLite = errors.New("database maintenance needs the sqlite backend (use --backend sqlite)")

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local SQLite analytics database",
}

var dbOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize the SQLite database",
	Long: `Run database maintenance (VACUUM and ANALYZE) to reclaim disk space and update query statistics.

This is automatically run every 30 days, but can be run manually if needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openSQLiteApp()
		if err != nil {
			return err
		}
		defer closeApp(a)

		logger.Log.Info("Running database optimization...")

		result, err := a.backend.SQLite.Optimize(cmd.Context())
		if err != nil {
			return fmt.Errorf("optimization failed: %w", err)
		}

		logger.Log.Info("Database optimization completed")
		logger.Log.Infof("  Size before: %s", formatBytes(result.SizeBefore))
		logger.Log.Infof("  Size after:  %s", formatBytes(result.SizeAfter))

		saved := result.SpaceSaved()
		switch {
		case saved > 0:
			logger.Log.Infof("  Space saved: %s", formatBytes(saved))
		case saved == 0:
			logger.Log.Info("  Space saved: (no change)")
		default:
			logger.Log.Infof("  Size increased: %s", formatBytes(-saved))
		}

		logger.Log.Infof("  Duration:    %v", result.Duration.Round(time.Millisecond))

		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the SQLite database location and maintenance state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openSQLiteApp()
		if err != nil {
			return err
		}
		defer closeApp(a)

		store := a.backend.SQLite
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Path:           %s\n", store.Path())

		if last := store.LastOptimized(cmd.Context()); last.IsZero() {
			fmt.Fprintln(out, "Last Optimized: Never")
		} else {
			fmt.Fprintf(out, "Last Optimized: %s\n", last.Format(time.RFC3339))
		}

		fmt.Fprintf(out, "Needs Optimize: %t\n", store.NeedsOptimization(cmd.Context()))

		return nil
	},
}

func openSQLiteApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Backend != config.BackendSQLite {
		return nil, errNotSQLite
	}

	return openApp(nil)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbOptimizeCmd)
	dbCmd.AddCommand(dbStatusCmd)
}
