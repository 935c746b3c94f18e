// Package backend opens the configured remote table implementation.
package backend

import (
	"fmt"

	"github.com/kedare/reeltrend/internal/config"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/metrics"
	"github.com/kedare/reeltrend/internal/tables"
	"github.com/kedare/reeltrend/internal/tables/appwrite"
	"github.com/kedare/reeltrend/internal/tables/memory"
	"github.com/kedare/reeltrend/internal/tables/sqlite"
)

// Backend is an opened table client together with its table coordinates.
type Backend struct {
	Client     tables.Client
	DatabaseID string
	TableID    string
	Kind       string

	// SQLite is set when Kind is sqlite.
	SQLite *sqlite.Store

	closer func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}

	return b.closer()
}

// Open validates cfg and builds the client it selects. When m is non-nil the
// client is instrumented.
func Open(cfg *config.Config, m *metrics.Metrics) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Backend{
		DatabaseID: cfg.DatabaseID(),
		TableID:    cfg.TableID(),
		Kind:       cfg.Backend,
	}

	var client tables.Client

	switch cfg.Backend {
	case config.BackendAppwrite:
		c, err := appwrite.NewClient(cfg.Appwrite.Endpoint, cfg.Appwrite.ProjectID,
			appwrite.WithAPIKey(cfg.Appwrite.APIKey),
			appwrite.WithTimeout(cfg.Appwrite.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Appwrite client: %w", err)
		}

		if cfg.Appwrite.APIKey == "" {
			logger.Log.Warn("No Appwrite API key configured, requests rely on table permissions")
		}

		client = c
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}

		b.SQLite = store
		b.closer = store.Close
		client = store
	case config.BackendMemory:
		logger.Log.Warn("Using the in-memory backend, searches are lost on exit")
		client = memory.New()
	}

	b.Client = metrics.Instrument(client, m)
	logger.Log.Debugf("Opened %s backend for table %s/%s", b.Kind, b.DatabaseID, b.TableID)

	return b, nil
}
