// Package tmdb is a small client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kedare/reeltrend/internal/analytics"
	"github.com/kedare/reeltrend/internal/httplog"
	"github.com/kedare/reeltrend/internal/logger"
	"github.com/patrickmn/go-cache"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
	DefaultCacheTTL = 10 * time.Minute
	defaultTimeout  = 15 * time.Second
)

var (
	ErrAPIKeyRequired = errors.New("TMDB API key is required")
	ErrNotFound       = errors.New("movie not found")
)

// Movie is a TMDB movie summary.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language,omitempty"`
}

// Analytics returns the fields the analytics store records.
func (m Movie) Analytics() analytics.Movie {
	return analytics.Movie{ID: m.ID, Title: m.Title, PosterPath: m.PosterPath}
}

// Year returns the release year, or "" when unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}

	return m.ReleaseDate[:4]
}

// Details extends Movie with fields only the details endpoint returns.
type Details struct {
	Movie
	Runtime int     `json:"runtime"`
	Tagline string  `json:"tagline,omitempty"`
	Status  string  `json:"status,omitempty"`
	Genres  []Genre `json:"genres,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Page is one page of list results.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Code       int    `json:"status_code"`
	Message    string `json:"status_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	return nil
}

// Client queries TMDB with a read access token and caches responses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	cache      *cache.Cache
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithLanguage sets the language parameter sent with every request.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithCacheTTL sets how long responses are reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}

		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient uses a copy of client instead of the default logging client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			cp := *client
			c.httpClient = &cp
		}
	}
}

// NewClient builds a client authenticated with a v4 read access token.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &Client{
		httpClient: httplog.NewClient("TMDB", defaultTimeout),
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		language:   DefaultLanguage,
		cache:      cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Search finds movies whose title matches query.
func (c *Client) Search(ctx context.Context, query string, page int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Discover(ctx, page)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	setPage(params, page)

	var result Page
	if err := c.get(ctx, "/search/movie", params, &result); err != nil {
		return nil, fmt.Errorf("search movies %q: %w", query, err)
	}

	return &result, nil
}

// Discover lists movies by popularity.
func (c *Client) Discover(ctx context.Context, page int) (*Page, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	setPage(params, page)

	var result Page
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, fmt.Errorf("discover movies: %w", err)
	}

	return &result, nil
}

// Details fetches a single movie.
func (c *Client) Details(ctx context.Context, id int64) (*Details, error) {
	if id <= 0 {
		return nil, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}

	var result Details
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), url.Values{}, &result); err != nil {
		return nil, fmt.Errorf("movie %d: %w", id, err)
	}

	return &result, nil
}

func (c *Client) cacheSize() int {
	if c.cache == nil {
		return 0
	}

	return c.cache.ItemCount()
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("language", c.language)
	target := c.baseURL + path + "?" + params.Encode()

	if c.cache != nil {
		if cached, found := c.cache.Get(target); found {
			if data, ok := cached.([]byte); ok {
				logger.Log.Tracef("TMDB cache hit: %s", target)

				return json.Unmarshal(data, out)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}

		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(target, data, cache.DefaultExpiration)
	}

	return nil
}

func setPage(params url.Values, page int) {
	if page < 1 {
		page = 1
	}

	params.Set("page", strconv.Itoa(page))
}
