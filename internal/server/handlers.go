package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kedare/reeltrend/internal/analytics"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/probe"
	"github.com/kedare/reeltrend/internal/tmdb"
)

const maxTrendingLimit = 100

type trendingResponse struct {
	Available bool                     `json:"available"`
	Searches  []analytics.SearchRecord `json:"searches"`
}

type recordSearchRequest struct {
	Query string          `json:"query"`
	Movie analytics.Movie `json:"movie"`
}

type healthResponse struct {
	OK     bool          `json:"ok"`
	Error  string        `json:"error,omitempty"`
	Report *probe.Report `json:"report,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxTrendingLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 0 and 100")

			return
		}

		limit = n
	}

	records, ok := s.store.TopSearches(r.Context(), limit)
	if records == nil {
		records = []analytics.SearchRecord{}
	}

	writeJSON(w, http.StatusOK, trendingResponse{Available: ok, Searches: records})
}

func (s *Server) handleRecordSearch(w http.ResponseWriter, r *http.Request) {
	var req recordSearchRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")

		return
	}

	err := s.store.RecordSearch(r.Context(), req.Query, req.Movie)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, analytics.ErrEmptyQuery), errors.Is(err, analytics.ErrInvalidMovie):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, "failed to record search")
	}
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	if s.movies == nil {
		writeError(w, http.StatusServiceUnavailable, "movie search is not configured")

		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")

			return
		}

		page = n
	}

	result, err := s.movies.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("query")), page)
	if err != nil {
		logger.Log.Errorf("Movie search failed: %v", err)
		writeError(w, http.StatusBadGateway, "movie search failed")

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	if s.movies == nil {
		writeError(w, http.StatusServiceUnavailable, "movie search is not configured")

		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "movie id must be a positive integer")

		return
	}

	details, err := s.movies.Details(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, details)
	case errors.Is(err, tmdb.ErrNotFound):
		writeError(w, http.StatusNotFound, "movie not found")
	default:
		logger.Log.Errorf("Movie details failed: %v", err)
		writeError(w, http.StatusBadGateway, "movie details failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, err := s.probe.Check(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{OK: false, Error: err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, healthResponse{OK: true, Report: report})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Debugf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
