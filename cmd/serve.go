package cmd

import (
	"context"
	"errors"

	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/metrics"
	"github.com/kedare/reeltrend/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trending API for the mobile app",
	Long: `Start the HTTP API used by the mobile app:

  GET  /api/trending?limit=N   most searched terms
  POST /api/searches           record a search
  GET  /api/movies?query=      TMDB search (popular movies without a query)
  GET  /api/movies/{id}        TMDB movie details
  GET  /api/health             connectivity probe
  GET  /metrics                Prometheus metrics

A connectivity probe runs in the background at startup; its outcome is only logged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		m, err := metrics.New(registry)
		if err != nil {
			return err
		}

		a, err := openApp(m)
		if err != nil {
			return err
		}
		defer closeApp(a)

		ctx := cmd.Context()

		stopProbe := runInBackground(ctx, func(ctx context.Context) {
			a.probe.Run(ctx)
		})
		defer stopProbe()

		opts := []server.Option{server.WithMetrics(m)}

		movies, err := a.movies()
		switch {
		case err == nil:
			opts = append(opts, server.WithMovies(movies))
		case errors.Is(err, errTMDBNotConfigured):
			logger.Log.Warn("TMDB API key not configured, /api/movies is disabled")
		default:
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = a.cfg.Server.Addr
		}

		err = server.New(a.store, a.probe, opts...).Run(ctx, addr)
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	},
}

// runInBackground starts fn and returns a func that cancels it and waits for
// it to return.
func runInBackground(ctx context.Context, fn func(context.Context)) func() {
	ctx, cancel := context.WithCancel(ctx)

	var group errgroup.Group
	group.Go(func() error {
		fn(ctx)

		return nil
	})

	return func() {
		cancel()
		_ = group.Wait()
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}
