package sqlite

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kedare/reeltrend/internal/logger"
)

// OptimizationInterval is how often Open runs VACUUM/ANALYZE automatically.
const OptimizationInterval = 30 * 24 * time.Hour

// OptimizationResult reports the effect of an Optimize call.
type OptimizationResult struct {
	SizeBefore int64
	SizeAfter  int64
	Duration   time.Duration
}

// SpaceSaved returns the number of bytes reclaimed (negative if the file grew).
func (r OptimizationResult) SpaceSaved() int64 {
	return r.SizeBefore - r.SizeAfter
}

// Optimize reclaims free pages and refreshes planner statistics.
func (s *Store) Optimize(ctx context.Context) (*OptimizationResult, error) {
	start := s.now()
	result := &OptimizationResult{}

	if fi, err := os.Stat(s.dbPath); err == nil {
		result.SizeBefore = fi.Size()
	}

	if _, err := s.exec(ctx, "VACUUM"); err != nil {
		return nil, fmt.Errorf("failed to vacuum database: %w", err)
	}

	if _, err := s.exec(ctx, "ANALYZE"); err != nil {
		return nil, fmt.Errorf("failed to analyze database: %w", err)
	}

	if _, err := s.exec(ctx,
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('last_optimized', ?)`,
		s.now().UTC().Format(time.RFC3339),
	); err != nil {
		logger.Log.Warnf("Failed to record optimization time: %v", err)
	}

	if fi, err := os.Stat(s.dbPath); err == nil {
		result.SizeAfter = fi.Size()
	}

	result.Duration = s.now().Sub(start)
	logger.Log.Debugf("Row store optimization completed in %v", result.Duration)

	return result, nil
}

// LastOptimized returns the zero time when the store was never optimized.
func (s *Store) LastOptimized(ctx context.Context) time.Time {
	var value string

	if err := s.queryRow(ctx, `SELECT value FROM metadata WHERE key = 'last_optimized'`).Scan(&value); err != nil {
		return time.Time{}
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}

	return ts
}

// NeedsOptimization reports whether the automatic interval has elapsed.
func (s *Store) NeedsOptimization(ctx context.Context) bool {
	last := s.LastOptimized(ctx)

	return last.IsZero() || s.now().Sub(last) > OptimizationInterval
}

func (s *Store) maybeAutoOptimize() {
	ctx := context.Background()

	last := s.LastOptimized(ctx)
	if last.IsZero() {
		// Fresh databases have nothing to reclaim; start the clock instead.
		if _, err := s.exec(ctx,
			`INSERT OR REPLACE INTO metadata (key, value) VALUES ('last_optimized', ?)`,
			s.now().UTC().Format(time.RFC3339),
		); err != nil {
			logger.Log.Debugf("Failed to initialize optimization timestamp: %v", err)
		}

		return
	}

	if s.NeedsOptimization(ctx) {
		logger.Log.Debug("Running automatic row store optimization...")

		if _, err := s.Optimize(ctx); err != nil {
			logger.Log.Warnf("Automatic optimization failed: %v", err)
		}
	}
}
