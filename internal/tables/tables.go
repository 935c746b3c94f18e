// Package tables defines the contract for a hosted, schema-flexible row store
// (Appwrite TablesDB and compatible local backends).
package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultListLimit is the page size backends apply when no limit query is given.
const DefaultListLimit = 25

var (
	ErrRowNotFound   = errors.New("row not found")
	ErrRowExists     = errors.New("row already exists")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrInvalidColumn = errors.New("invalid column")
	ErrTableRequired = errors.New("database and table identifiers are required")
)

// Client is the subset of the remote table API used by reeltrend.
type Client interface {
	// ListRows returns the rows matching queries together with the total
	// number of matching rows before the limit is applied.
	ListRows(ctx context.Context, databaseID, tableID string, queries ...Query) (*RowList, error)

	// CreateRow inserts a row. An empty rowID asks the backend to generate one.
	CreateRow(ctx context.Context, databaseID, tableID, rowID string, data map[string]any) (*Row, error)

	// IncrementRowColumn atomically adds value to a numeric column.
	IncrementRowColumn(ctx context.Context, databaseID, tableID, rowID, column string, value int64) (*Row, error)
}

// APIError is returned when the remote API rejects a request.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("remote table API error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}

	return fmt.Sprintf("remote table API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 404:
		return ErrRowNotFound
	case 409:
		return ErrRowExists
	case 400:
		if strings.Contains(e.Type, "query") {
			return ErrInvalidQuery
		}
	}

	return nil
}

// UniqueID returns a fresh row identifier. Valid Appwrite IDs are at most 36
// characters of [a-zA-Z0-9._-] and must not start with a special character.
func UniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidateTable checks the identifiers every call needs.
func ValidateTable(databaseID, tableID string) error {
	if strings.TrimSpace(databaseID) == "" || strings.TrimSpace(tableID) == "" {
		return ErrTableRequired
	}

	return nil
}

// ValidateColumn reports whether name can be used as a column or query attribute.
func ValidateColumn(name string) error {
	if name == "" || len(name) > 64 {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, name)
	}

	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case r == '$' && i == 0:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidColumn, name)
		}
	}

	return nil
}
