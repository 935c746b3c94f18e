// Package appwrite implements tables.Client against the Appwrite TablesDB REST API.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kedare/reeltrend/internal/httplog"
	"github.com/kedare/reeltrend/internal/tables"
)

const (
	// ResponseFormat pins the row payload shape.
	ResponseFormat = "1.8.0"
	defaultTimeout = 30 * time.Second
)

var (
	ErrEndpointRequired = errors.New("appwrite endpoint is required")
	ErrProjectRequired  = errors.New("appwrite project id is required")
)

// Client talks to one Appwrite project.
type Client struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
	apiKey     string
}

var _ tables.Client = (*Client)(nil)

// Option customizes a Client during construction.
type Option func(*Client)

// WithHTTPClient uses a copy of client instead of the default logging client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			cp := *client
			c.httpClient = &cp
		}
	}
}

// WithAPIKey authenticates requests with a server API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a client for endpoint (for example https://cloud.appwrite.io/v1).
func NewClient(endpoint, projectID string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid appwrite endpoint %q: %w", endpoint, err)
	}

	if strings.TrimSpace(projectID) == "" {
		return nil, ErrProjectRequired
	}

	c := &Client{
		httpClient: httplog.NewClient("Appwrite", defaultTimeout),
		endpoint:   endpoint,
		projectID:  projectID,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) ListRows(ctx context.Context, databaseID, tableID string, queries ...tables.Query) (*tables.RowList, error) {
	if err := tables.ValidateTable(databaseID, tableID); err != nil {
		return nil, err
	}

	values := url.Values{}
	for _, q := range queries {
		if err := q.Validate(); err != nil {
			return nil, err
		}

		values.Add("queries[]", q.String())
	}

	var payload struct {
		Total int               `json:"total"`
		Rows  []json.RawMessage `json:"rows"`
	}

	if err := c.do(ctx, http.MethodGet, rowsPath(databaseID, tableID), values, nil, &payload); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}

	result := &tables.RowList{Total: payload.Total, Rows: make([]tables.Row, 0, len(payload.Rows))}
	for _, raw := range payload.Rows {
		row, err := decodeRow(raw)
		if err != nil {
			return nil, fmt.Errorf("list rows: %w", err)
		}

		result.Rows = append(result.Rows, *row)
	}

	return result, nil
}

func (c *Client) CreateRow(ctx context.Context, databaseID, tableID, rowID string, data map[string]any) (*tables.Row, error) {
	if err := tables.ValidateTable(databaseID, tableID); err != nil {
		return nil, err
	}

	if rowID == "" {
		rowID = tables.UniqueID()
	}

	if data == nil {
		data = map[string]any{}
	}

	body := map[string]any{
		"rowId": rowID,
		"data":  data,
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, rowsPath(databaseID, tableID), nil, body, &raw); err != nil {
		return nil, fmt.Errorf("create row: %w", err)
	}

	row, err := decodeRow(raw)
	if err != nil {
		return nil, fmt.Errorf("create row: %w", err)
	}

	return row, nil
}

func (c *Client) IncrementRowColumn(ctx context.Context, databaseID, tableID, rowID, column string, value int64) (*tables.Row, error) {
	if err := tables.ValidateTable(databaseID, tableID); err != nil {
		return nil, err
	}

	if err := tables.ValidateColumn(column); err != nil {
		return nil, err
	}

	if rowID == "" {
		return nil, fmt.Errorf("increment %s: %w", column, tables.ErrRowNotFound)
	}

	path := rowsPath(databaseID, tableID) + "/" + url.PathEscape(rowID) + "/" + url.PathEscape(column) + "/increment"

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, path, nil, map[string]any{"value": value}, &raw); err != nil {
		return nil, fmt.Errorf("increment %s: %w", column, err)
	}

	row, err := decodeRow(raw)
	if err != nil {
		return nil, fmt.Errorf("increment %s: %w", column, err)
	}

	return row, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Response-Format", ResponseFormat)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &tables.APIError{StatusCode: resp.StatusCode, Message: resp.Status}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}

	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			apiErr.Message = payload.Message
		}

		apiErr.Type = payload.Type
	}

	return apiErr
}

func rowsPath(databaseID, tableID string) string {
	return "/tablesdb/" + url.PathEscape(databaseID) + "/tables/" + url.PathEscape(tableID) + "/rows"
}
