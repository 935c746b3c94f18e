package tables

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// System attributes carried by every row.
const (
	AttrID        = "$id"
	AttrSequence  = "$sequence"
	AttrCreatedAt = "$createdAt"
	AttrUpdatedAt = "$updatedAt"
)

// Row is one loosely typed record. Data holds the user columns only.
type Row struct {
	ID        string
	Sequence  int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      map[string]any
}

// RowList is the result of ListRows.
type RowList struct {
	Total int
	Rows  []Row
}

// String returns the column as a string, or "" when absent or not a string.
func (r Row) String(column string) string {
	if v, ok := r.Data[column].(string); ok {
		return v
	}

	return ""
}

// Int returns the column as an integer when it holds a whole number.
func (r Row) Int(column string) (int64, bool) {
	v, ok := r.Data[column]
	if !ok {
		return 0, false
	}

	return AsInt(v)
}

// Value returns a column or system attribute by name.
func (r Row) Value(attribute string) (any, bool) {
	switch attribute {
	case AttrID:
		return r.ID, true
	case AttrSequence:
		return r.Sequence, true
	case AttrCreatedAt:
		return r.CreatedAt, true
	case AttrUpdatedAt:
		return r.UpdatedAt, true
	}

	v, ok := r.Data[attribute]

	return v, ok
}

// Clone returns a copy whose Data map can be mutated independently.
func (r Row) Clone() Row {
	clone := r
	clone.Data = make(map[string]any, len(r.Data))
	for k, v := range r.Data {
		clone.Data[k] = v
	}

	return clone
}

// AsInt converts the numeric shapes produced by JSON decoding and Go literals.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}

		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}

		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}

		return int64(f), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)

		return i, err == nil
	default:
		return 0, false
	}
}

// AsFloat converts numeric values for ordering comparisons.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

// Compare orders two attribute values: numbers numerically, times
// chronologically, everything else by its string form.
func Compare(a, b any) int {
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}

	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
