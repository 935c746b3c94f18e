// Package server exposes the analytics store to the mobile front-end as a
// small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kedare/reeltrend/internal/analytics"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/metrics"
	"github.com/kedare/reeltrend/internal/probe"
	"github.com/kedare/reeltrend/internal/tmdb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// MovieCatalog looks up movies for the search and details screens.
type MovieCatalog interface {
	Search(ctx context.Context, query string, page int) (*tmdb.Page, error)
	Details(ctx context.Context, id int64) (*tmdb.Details, error)
}

// Server wires the HTTP routes to the analytics store.
type Server struct {
	store   *analytics.Store
	probe   *probe.Probe
	movies  MovieCatalog
	metrics *metrics.Metrics
	router  chi.Router
}

// Option customizes a Server.
type Option func(*Server)

// WithMovies enables GET /api/movies and GET /api/movies/{id}.
func WithMovies(m MovieCatalog) Option {
	return func(s *Server) {
		s.movies = m
	}
}

// WithMetrics records request metrics and enables GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New builds the router.
func New(store *analytics.Store, p *probe.Probe, opts ...Option) *Server {
	s := &Server{store: store, probe: p}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Route("/api", func(r chi.Router) {
		r.Get("/trending", s.handleTrending)
		r.Post("/searches", s.handleRecordSearch)
		r.Get("/movies", s.handleMovies)
		r.Get("/movies/{id}", s.handleMovieDetails)
		r.Get("/health", s.handleHealth)
	})

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	s.router = r

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Log.Infof("Listening on %s", listener.Addr())

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Log.Debug("Shutting down HTTP server")

		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		logger.Log.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))

		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(route, r.Method, status, time.Since(start))
		}
	})
}
