package migrations

import (
	"database/sql"
)

func init() {
	Register(&v2UpdatedAt{})
}

// v2UpdatedAt tracks the last write to a row so increments are visible.
type v2UpdatedAt struct{}

func (m *v2UpdatedAt) Version() int {
	return 2
}

func (m *v2UpdatedAt) Description() string {
	return "Add updated_at column to rows"
}

func (m *v2UpdatedAt) Up(db *sql.DB) error {
	if err := ExecStatements(db, []string{
		`ALTER TABLE rows ADD COLUMN updated_at INTEGER`,
	}); err != nil {
		return err
	}

	// Best effort backfill.
	_, _ = db.Exec(`UPDATE rows SET updated_at = created_at WHERE updated_at IS NULL`)

	return nil
}
