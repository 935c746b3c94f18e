// Package sqlite implements tables.Client on a local SQLite file. Rows are
// stored as JSON documents so the table stays schema-flexible like the remote
// service it stands in for.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/tables/sqlite/migrations"
)

// FilePermissions restricts the database and its backup to the owner.
const FilePermissions = 0o600

// Base schema (v1).
const (
	createMetadataTable = `
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`

	createRowsTable = `
		CREATE TABLE IF NOT EXISTS rows (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			database_id TEXT NOT NULL,
			table_id TEXT NOT NULL,
			id TEXT NOT NULL,
			data_json TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL,
			UNIQUE(database_id, table_id, id)
		)`

	createRowsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_rows_table ON rows(database_id, table_id)`
)

var whitespace = regexp.MustCompile(`\s+`)

// logSQL traces a statement on one line.
func logSQL(query string, args ...any) {
	compact := strings.TrimSpace(whitespace.ReplaceAllString(query, " "))
	if len(args) == 0 {
		logger.Log.Tracef("SQL: %s", compact)

		return
	}

	logger.Log.Tracef("SQL: %s %v", compact, args)
}

func initSchema(db *sql.DB) error {
	for _, stmt := range []string{createMetadataTable, createRowsTable, createRowsIndexes} {
		logSQL(stmt)

		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	logger.Log.Debug("Base row store schema initialized")

	return nil
}

// getSchemaVersion returns 0 for a database that has never been versioned.
func getSchemaVersion(db *sql.DB) (int, error) {
	var version int

	query := "SELECT value FROM metadata WHERE key = 'schema_version'"
	logSQL(query)

	err := db.QueryRow(query).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}

	return version, nil
}

func setSchemaVersion(db *sql.DB, version int) error {
	query := "INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)"
	logSQL(query, version)

	if _, err := db.Exec(query, version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

func backupDatabase(dbPath string) error {
	src, err := os.Open(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(dbPath+".bak", os.O_RDWR|os.O_CREATE|os.O_TRUNC, FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy database to backup: %w", err)
	}

	logger.Log.Debugf("Created database backup at %s.bak", dbPath)

	return nil
}

func removeBackup(dbPath string) {
	if err := os.Remove(dbPath + ".bak"); err != nil && !os.IsNotExist(err) {
		logger.Log.Debugf("Failed to remove backup file: %v", err)
	}
}

// migrate brings the schema to the latest version, backing the file up first
// when an existing database is upgraded.
func migrate(db *sql.DB, dbPath string) error {
	current, err := getSchemaVersion(db)
	if err != nil {
		return err
	}

	if current == 0 {
		for _, m := range migrations.All() {
			if err := m.Up(db); err != nil {
				return fmt.Errorf("migration v%d failed: %w", m.Version(), err)
			}
		}

		return setSchemaVersion(db, migrations.LatestVersion())
	}

	pending := migrations.GetPending(current)
	if len(pending) == 0 {
		return nil
	}

	logger.Log.Debugf("Migrating row store schema from version %d to %d", current, migrations.LatestVersion())

	if dbPath != "" {
		if err := backupDatabase(dbPath); err != nil {
			logger.Log.Warnf("Failed to create backup before migration: %v", err)
		}
	}

	for _, m := range pending {
		logger.Log.Debugf("Applying migration v%d: %s", m.Version(), m.Description())

		if err := m.Up(db); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.Version(), err)
		}
	}

	if err := setSchemaVersion(db, migrations.LatestVersion()); err != nil {
		return err
	}

	if dbPath != "" {
		removeBackup(dbPath)
	}

	return nil
}
