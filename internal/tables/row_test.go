package tables

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowAccessors(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := Row{
		ID:        "abc",
		Sequence:  4,
		CreatedAt: created,
		Data: map[string]any{
			"searchTerm": "batman",
			"count":      json.Number("3"),
			"ratio":      1.5,
		},
	}

	assert.Equal(t, "batman", row.String("searchTerm"))
	assert.Empty(t, row.String("count"))
	assert.Empty(t, row.String("missing"))

	n, ok := row.Int("count")
	require.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = row.Int("ratio")
	assert.False(t, ok)

	id, ok := row.Value(AttrID)
	require.True(t, ok)
	assert.Equal(t, "abc", id)

	ts, ok := row.Value(AttrCreatedAt)
	require.True(t, ok)
	assert.Equal(t, created, ts)
}

func TestRowClone(t *testing.T) {
	row := Row{ID: "a", Data: map[string]any{"count": 1}}
	clone := row.Clone()
	clone.Data["count"] = 2

	assert.Equal(t, 1, row.Data["count"])
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{1, 1, true},
		{int64(9), 9, true},
		{2.0, 2, true},
		{2.5, 0, false},
		{json.Number("12"), 12, true},
		{json.Number("4.0"), 4, true},
		{json.Number("4.2"), 0, false},
		{"15", 15, true},
		{"x", 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := AsInt(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare(1, json.Number("1")))
	assert.Equal(t, -1, Compare(1, 2.5))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, 0, Compare("batman", "batman"))

	early := time.Unix(100, 0)
	assert.Equal(t, -1, Compare(early, early.Add(time.Second)))
}

func TestAPIErrorUnwrap(t *testing.T) {
	notFound := &APIError{StatusCode: 404, Type: "row_not_found", Message: "Row not found"}
	assert.True(t, errors.Is(notFound, ErrRowNotFound))
	assert.Contains(t, notFound.Error(), "row_not_found")

	conflict := &APIError{StatusCode: 409, Message: "exists"}
	assert.True(t, errors.Is(conflict, ErrRowExists))

	badQuery := &APIError{StatusCode: 400, Type: "general_query_invalid"}
	assert.True(t, errors.Is(badQuery, ErrInvalidQuery))

	server := &APIError{StatusCode: 500, Message: "boom"}
	assert.False(t, errors.Is(server, ErrRowNotFound))
	assert.Equal(t, "remote table API error 500: boom", server.Error())
}

func TestUniqueID(t *testing.T) {
	a, b := UniqueID(), UniqueID()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
}

func TestValidateColumn(t *testing.T) {
	require.NoError(t, ValidateColumn("searchTerm"))
	require.NoError(t, ValidateColumn("poster_url"))
	require.NoError(t, ValidateColumn("$id"))
	require.ErrorIs(t, ValidateColumn(""), ErrInvalidColumn)
	require.ErrorIs(t, ValidateColumn("a.b"), ErrInvalidColumn)
	require.ErrorIs(t, ValidateColumn("a$"), ErrInvalidColumn)
}

func TestValidateTable(t *testing.T) {
	require.NoError(t, ValidateTable("db", "table"))
	require.ErrorIs(t, ValidateTable(" ", "table"), ErrTableRequired)
	require.ErrorIs(t, ValidateTable("db", ""), ErrTableRequired)
}
