package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kedare/reeltrend/internal/tables"
)

const selectColumns = `seq, id, data_json, created_at, updated_at`

func (s *Store) ListRows(ctx context.Context, databaseID, tableID string, queries ...tables.Query) (*tables.RowList, error) {
	if err := tables.ValidateTable(databaseID, tableID); err != nil {
		return nil, err
	}

	plan, err := tables.NewPlan(queries)
	if err != nil {
		return nil, err
	}

	where, args := buildWhere(databaseID, tableID, plan.Filters)

	var total int
	countQuery := `SELECT COUNT(*) FROM rows WHERE ` + where
	if err := s.queryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	query := `SELECT ` + selectColumns + ` FROM rows WHERE ` + where + ` ORDER BY ` + buildOrder(plan.Orders) + ` LIMIT ?`

	listArgs := make([]any, 0, len(args)+1)
	listArgs = append(listArgs, args...)
	listArgs = append(listArgs, plan.Limit)

	logSQL(query, listArgs...)

	rows, err := s.db.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := &tables.RowList{Total: total}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}

		result.Rows = append(result.Rows, *row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return result, nil
}

func (s *Store) CreateRow(ctx context.Context, databaseID, tableID, rowID string, data map[string]any) (*tables.Row, error) {
	if err := tables.ValidateTable(databaseID, tableID); err != nil {
		return nil, err
	}

	for column := range data {
		if err := tables.ValidateColumn(column); err != nil {
			return nil, err
		}

		if strings.HasPrefix(column, "$") {
			return nil, fmt.Errorf("%w: %s is a system attribute", tables.ErrInvalidColumn, column)
		}
	}

	if data == nil {
		data = map[string]any{}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row data: %w", err)
	}

	if rowID == "" {
		rowID = tables.UniqueID()
	}

	now := s.now().UnixMilli()

	_, err = s.exec(ctx,
		`INSERT INTO rows (database_id, table_id, id, data_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		databaseID, tableID, rowID, string(payload), now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: %s", tables.ErrRowExists, rowID)
		}

		return nil, fmt.Errorf("failed to insert row: %w", err)
	}

	return s.getRow(ctx, databaseID, tableID, rowID)
}

// IncrementRowColumn applies the increment inside a single UPDATE so
// concurrent callers never lose counts. Missing columns start at zero.
func (s *Store) IncrementRowColumn(ctx context.Context, databaseID, tableID, rowID, column string, value int64) (*tables.Row, error) {
	if err := tables.ValidateTable(databaseID, tableID); err != nil {
		return nil, err
	}

	if err := tables.ValidateColumn(column); err != nil {
		return nil, err
	}

	path := jsonPath(column)

	result, err := s.exec(ctx, `
		UPDATE rows
		SET data_json = json_set(data_json, ?, COALESCE(json_extract(data_json, ?), 0) + ?),
			updated_at = ?
		WHERE database_id = ? AND table_id = ? AND id = ?
			AND COALESCE(json_type(data_json, ?), 'integer') IN ('integer', 'real')`,
		path, path, value, s.now().UnixMilli(), databaseID, tableID, rowID, path,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", column, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read increment result: %w", err)
	}

	if affected == 0 {
		if _, err := s.getRow(ctx, databaseID, tableID, rowID); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: column %s is not numeric", tables.ErrInvalidColumn, column)
	}

	return s.getRow(ctx, databaseID, tableID, rowID)
}

func (s *Store) getRow(ctx context.Context, databaseID, tableID, rowID string) (*tables.Row, error) {
	row := s.queryRow(ctx,
		`SELECT `+selectColumns+` FROM rows WHERE database_id = ? AND table_id = ? AND id = ?`,
		databaseID, tableID, rowID,
	)

	result, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", tables.ErrRowNotFound, rowID)
	}

	return result, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (*tables.Row, error) {
	var (
		row       tables.Row
		dataJSON  string
		createdAt int64
		updatedAt sql.NullInt64
	)

	if err := sc.Scan(&row.Sequence, &row.ID, &dataJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(dataJSON)))
	decoder.UseNumber()

	if err := decoder.Decode(&row.Data); err != nil {
		return nil, fmt.Errorf("failed to decode row %s: %w", row.ID, err)
	}

	if row.Data == nil {
		row.Data = map[string]any{}
	}

	row.CreatedAt = time.UnixMilli(createdAt).UTC()
	row.UpdatedAt = row.CreatedAt
	if updatedAt.Valid {
		row.UpdatedAt = time.UnixMilli(updatedAt.Int64).UTC()
	}

	return &row, nil
}

// attributeExpr maps a query attribute onto SQL. Attributes are validated
// identifiers, so the JSON path is inlined to match the expression indexes.
func attributeExpr(attribute string) string {
	switch attribute {
	case tables.AttrID:
		return "id"
	case tables.AttrSequence:
		return "seq"
	case tables.AttrCreatedAt:
		return "created_at"
	case tables.AttrUpdatedAt:
		return "updated_at"
	default:
		return fmt.Sprintf("json_extract(data_json, '$.%s')", attribute)
	}
}

func buildWhere(databaseID, tableID string, filters []tables.Query) (string, []any) {
	clauses := []string{"database_id = ?", "table_id = ?"}
	args := []any{databaseID, tableID}

	for _, f := range filters {
		placeholders := make([]string, len(f.Values))
		for i, v := range f.Values {
			placeholders[i] = "?"
			args = append(args, bindValue(v))
		}

		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", attributeExpr(f.Attribute), strings.Join(placeholders, ", ")))
	}

	return strings.Join(clauses, " AND "), args
}

func buildOrder(orders []tables.Query) string {
	parts := make([]string, 0, len(orders)+1)

	for _, o := range orders {
		direction := "ASC"
		if o.Method == tables.MethodOrderDesc {
			direction = "DESC"
		}

		parts = append(parts, attributeExpr(o.Attribute)+" "+direction)
	}

	// Insertion order settles ties deterministically.
	parts = append(parts, "seq ASC")

	return strings.Join(parts, ", ")
}

func bindValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}

		if f, err := n.Float64(); err == nil {
			return f
		}

		return n.String()
	case time.Time:
		return n.UnixMilli()
	default:
		return v
	}
}

func jsonPath(column string) string {
	return `$."` + column + `"`
}
