package migrations

import (
	"database/sql"
)

func init() {
	Register(&v3SearchIndexes{})
}

// v3SearchIndexes adds expression indexes for the search analytics access
// paths: equality on searchTerm and ordering by count.
type v3SearchIndexes struct{}

func (m *v3SearchIndexes) Version() int {
	return 3
}

func (m *v3SearchIndexes) Description() string {
	return "Add searchTerm and count expression indexes"
}

func (m *v3SearchIndexes) Up(db *sql.DB) error {
	return ExecStatements(db, []string{
		`CREATE INDEX IF NOT EXISTS idx_rows_search_term
			ON rows(database_id, table_id, json_extract(data_json, '$.searchTerm'))`,
		`CREATE INDEX IF NOT EXISTS idx_rows_count
			ON rows(database_id, table_id, json_extract(data_json, '$.count') DESC)`,
	})
}
