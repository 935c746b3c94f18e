package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/kedare/reeltrend/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDB    = "db"
	testTable = "metrics"
)

func TestCreateListIncrement(t *testing.T) {
	ctx := context.Background()
	store := New()

	row, err := store.CreateRow(ctx, testDB, testTable, "", map[string]any{"searchTerm": "batman", "count": 1})
	require.NoError(t, err)
	require.NotEmpty(t, row.ID)

	updated, err := store.IncrementRowColumn(ctx, testDB, testTable, row.ID, "count", 2)
	require.NoError(t, err)

	count, ok := updated.Int("count")
	require.True(t, ok)
	assert.Equal(t, int64(3), count)

	list, err := store.ListRows(ctx, testDB, testTable, tables.Equal("searchTerm", "batman"))
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)

	count, _ = list.Rows[0].Int("count")
	assert.Equal(t, int64(3), count)
}

func TestListOrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	store := New()
	store.Seed(testDB, testTable,
		map[string]any{"searchTerm": "a", "count": 2},
		map[string]any{"searchTerm": "b", "count": 9},
		map[string]any{"searchTerm": "c", "count": 5},
	)

	list, err := store.ListRows(ctx, testDB, testTable, tables.OrderDesc("count"), tables.Limit(2))
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Rows, 2)
	assert.Equal(t, "b", list.Rows[0].String("searchTerm"))
	assert.Equal(t, "c", list.Rows[1].String("searchTerm"))
}

func TestReturnedRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := New()

	row, err := store.CreateRow(ctx, testDB, testTable, "r1", map[string]any{"count": 1})
	require.NoError(t, err)
	row.Data["count"] = 100

	stored := store.Rows(testDB, testTable)
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].Data["count"])
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.IncrementRowColumn(ctx, testDB, testTable, "missing", "count", 1)
	require.ErrorIs(t, err, tables.ErrRowNotFound)

	_, err = store.CreateRow(ctx, testDB, testTable, "r1", map[string]any{"title": "x"})
	require.NoError(t, err)

	_, err = store.CreateRow(ctx, testDB, testTable, "r1", nil)
	require.ErrorIs(t, err, tables.ErrRowExists)

	_, err = store.IncrementRowColumn(ctx, testDB, testTable, "r1", "title", 1)
	require.ErrorIs(t, err, tables.ErrInvalidColumn)

	_, err = store.ListRows(ctx, "", testTable)
	require.ErrorIs(t, err, tables.ErrTableRequired)
}

func TestFailInjection(t *testing.T) {
	ctx := context.Background()
	store := New()
	boom := errors.New("boom")

	store.Fail(boom, OpCreate)

	_, err := store.ListRows(ctx, testDB, testTable)
	require.NoError(t, err)

	_, err = store.CreateRow(ctx, testDB, testTable, "", nil)
	require.ErrorIs(t, err, boom)

	store.Fail(boom)
	_, err = store.ListRows(ctx, testDB, testTable)
	require.ErrorIs(t, err, boom)

	store.Fail(nil)
	_, err = store.CreateRow(ctx, testDB, testTable, "", nil)
	require.NoError(t, err)
}

func TestCallsRecorded(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, _ = store.ListRows(ctx, testDB, testTable)
	_, _ = store.CreateRow(ctx, testDB, testTable, "r1", nil)

	calls := store.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, OpList, calls[0].Method)
	assert.Equal(t, Call{Method: OpCreate, TableID: testTable, RowID: "r1"}, calls[1])

	store.ResetCalls()
	assert.Empty(t, store.Calls())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ListRows(ctx, testDB, testTable)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEqualIsTypeStrict(t *testing.T) {
	ctx := context.Background()
	store := New()
	store.Seed(testDB, testTable,
		map[string]any{"searchTerm": "batman", "movie_id": "1", "count": 3},
	)

	list, err := store.ListRows(ctx, testDB, testTable, tables.Equal("movie_id", 1))
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	list, err = store.ListRows(ctx, testDB, testTable, tables.Equal("movie_id", "1"))
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	list, err = store.ListRows(ctx, testDB, testTable, tables.Equal("count", 3.0))
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	list, err = store.ListRows(ctx, testDB, testTable, tables.Equal("count", "3"))
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCreateRejectsSystemColumns(t *testing.T) {
	store := New()

	_, err := store.CreateRow(context.Background(), testDB, testTable, "", map[string]any{"$id": "spoof"})
	require.ErrorIs(t, err, tables.ErrInvalidColumn)
	assert.Empty(t, store.Rows(testDB, testTable))
}
