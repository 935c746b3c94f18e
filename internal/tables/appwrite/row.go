package appwrite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kedare/reeltrend/internal/tables"
)

// decodeRow splits the $-prefixed system attributes from the user columns.
func decodeRow(raw json.RawMessage) (*tables.Row, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}

	if fields == nil {
		return nil, fmt.Errorf("decode row: empty payload")
	}

	row := &tables.Row{Data: make(map[string]any, len(fields))}

	for key, value := range fields {
		switch key {
		case tables.AttrID:
			row.ID, _ = value.(string)
		case tables.AttrSequence:
			row.Sequence, _ = tables.AsInt(value)
		case tables.AttrCreatedAt:
			row.CreatedAt = parseTime(value)
		case tables.AttrUpdatedAt:
			row.UpdatedAt = parseTime(value)
		default:
			if strings.HasPrefix(key, "$") {
				continue
			}

			row.Data[key] = value
		}
	}

	if row.ID == "" {
		return nil, fmt.Errorf("decode row: missing %s", tables.AttrID)
	}

	return row, nil
}

func parseTime(value any) time.Time {
	s, ok := value.(string)
	if !ok {
		return time.Time{}
	}

	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}

	return ts
}
