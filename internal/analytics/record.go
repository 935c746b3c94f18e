// Package analytics records which search terms users type and serves the most
// searched ones back as the trending list.
package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kedare/reeltrend/internal/tables"
)

// Remote column names.
const (
	ColumnSearchTerm = "searchTerm"
	ColumnMovieID    = "movie_id"
	ColumnTitle      = "title"
	ColumnCount      = "count"
	ColumnPosterURL  = "poster_url"
)

// PosterBaseURL prefixes TMDB poster paths.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

var (
	ErrEmptyQuery   = errors.New("search query is empty")
	ErrInvalidMovie = errors.New("movie needs an id and a title")
	errInvalidRow   = errors.New("invalid search record")
)

// Movie is the part of a movie API result that analytics stores.
type Movie struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// Validate checks that the movie can be recorded.
func (m Movie) Validate() error {
	if m.ID == 0 || m.Title == "" {
		return ErrInvalidMovie
	}

	return nil
}

// SearchRecord is one counter row: how often a term was searched and which
// movie it first led to.
type SearchRecord struct {
	ID         string    `json:"id"`
	SearchTerm string    `json:"searchTerm"`
	MovieID    string    `json:"movie_id"`
	Title      string    `json:"title"`
	Count      int64     `json:"count"`
	PosterURL  string    `json:"poster_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PosterURL returns the w500 image URL for a poster path, or "" without one.
func PosterURL(path string) string {
	if path == "" {
		return ""
	}

	return PosterBaseURL + path
}

func newRowData(query string, movie Movie) map[string]any {
	return map[string]any{
		ColumnSearchTerm: query,
		ColumnMovieID:    strconv.FormatInt(movie.ID, 10),
		ColumnTitle:      movie.Title,
		ColumnCount:      1,
		ColumnPosterURL:  PosterURL(movie.PosterPath),
	}
}

func recordFromRow(row tables.Row) (SearchRecord, error) {
	term := row.String(ColumnSearchTerm)
	if term == "" {
		return SearchRecord{}, fmt.Errorf("%w: row %s has no %s", errInvalidRow, row.ID, ColumnSearchTerm)
	}

	count, ok := row.Int(ColumnCount)
	if !ok {
		return SearchRecord{}, fmt.Errorf("%w: row %s has a non-numeric %s", errInvalidRow, row.ID, ColumnCount)
	}

	movieID := row.String(ColumnMovieID)
	if movieID == "" {
		// Older rows stored the id as a number.
		if n, ok := row.Int(ColumnMovieID); ok {
			movieID = strconv.FormatInt(n, 10)
		}
	}

	return SearchRecord{
		ID:         row.ID,
		SearchTerm: term,
		MovieID:    movieID,
		Title:      row.String(ColumnTitle),
		Count:      count,
		PosterURL:  row.String(ColumnPosterURL),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
