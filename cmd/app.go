package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kedare/reeltrend/internal/analytics"
	"github.com/kedare/reeltrend/internal/backend"
	"github.com/kedare/reeltrend/internal/config"
	"github.com/kedare/reeltrend/internal/metrics"
	"github.com/kedare/reeltrend/internal/probe"
	"github.com/kedare/reeltrend/internal/tmdb"
)

var errTMDBNotConfigured = errors.New("TMDB API key is not configured (set tmdb.api_key or EXPO_PUBLIC_MOVIE_API_KEY)")

// app bundles what a command needs, built from one configuration. The
// backend is opened on first use so commands that never touch the analytics
// table work without its settings.
type app struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	backend *backend.Backend
	store   *analytics.Store
	probe   *probe.Probe
}

// loadApp reads the configuration without opening the backend.
func loadApp(m *metrics.Metrics) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, metrics: m}, nil
}

// openApp loads the configuration and opens the backend.
func openApp(m *metrics.Metrics) (*app, error) {
	a, err := loadApp(m)
	if err != nil {
		return nil, err
	}

	if err := a.open(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *app) open() error {
	if a.backend != nil {
		return nil
	}

	b, err := backend.Open(a.cfg, a.metrics)
	if err != nil {
		return err
	}

	opts := []analytics.Option{
		analytics.WithLookupLimit(a.cfg.Analytics.LookupLimit),
		analytics.WithTrendingLimit(a.cfg.Analytics.TrendingLimit),
	}
	if a.metrics != nil {
		opts = append(opts, analytics.WithObserver(a.metrics))
	}

	a.backend = b
	a.store = analytics.NewStore(b.Client, b.DatabaseID, b.TableID, opts...)
	a.probe = probe.New(b.Client, b.DatabaseID, b.TableID)

	return nil
}

// analytics opens the backend if needed and returns the search store.
func (a *app) analytics() (*analytics.Store, error) {
	if err := a.open(); err != nil {
		return nil, err
	}

	return a.store, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}

// movies returns a TMDB client, or errTMDBNotConfigured without an API key.
func (a *app) movies() (*tmdb.Client, error) {
	if a.cfg.TMDB.APIKey == "" {
		return nil, errTMDBNotConfigured
	}

	client, err := tmdb.NewClient(a.cfg.TMDB.APIKey,
		tmdb.WithBaseURL(a.cfg.TMDB.BaseURL),
		tmdb.WithLanguage(a.cfg.TMDB.Language),
		tmdb.WithCacheTTL(a.cfg.TMDB.CacheTTL),
		tmdb.WithTimeout(a.cfg.TMDB.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create TMDB client: %w", err)
	}

	return client, nil
}

func closeApp(a *app) {
	_ = a.Close()
}

// firstMovie runs a TMDB search and returns the top result.
func firstMovie(ctx context.Context, client *tmdb.Client, query string) (*tmdb.Movie, error) {
	page, err := client.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}

	if len(page.Results) == 0 {
		return nil, fmt.Errorf("no movie matches %q", query)
	}

	return &page.Results[0], nil
}
