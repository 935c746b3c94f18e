package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/tables"

	_ "modernc.org/sqlite"
)

// Store is a tables.Client backed by one SQLite file.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

var _ tables.Client = (*Store)(nil)

// Open creates (if needed) and migrates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite serializes writers; one connection keeps increments strictly ordered.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()

		return nil, err
	}

	if err := migrate(db, path); err != nil {
		_ = db.Close()

		return nil, err
	}

	if err := os.Chmod(path, FilePermissions); err != nil {
		logger.Log.Debugf("Failed to restrict database permissions: %v", err)
	}

	logger.Log.Debugf("Opened local row store at %s", path)

	s := &Store{db: db, dbPath: path, now: time.Now}
	s.maybeAutoOptimize()

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	logSQL(query, args...)

	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	logSQL(query, args...)

	return s.db.QueryRowContext(ctx, query, args...)
}
