package analytics

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kedare/reeltrend/internal/tables"
	"github.com/kedare/reeltrend/internal/tables/memory"
	"github.com/kedare/reeltrend/internal/tables/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDB    = "db"
	testTable = "metrics"
)

var batman = Movie{ID: 1, Title: "Batman", PosterPath: "/a.jpg"}

type recordingObserver struct {
	mu        sync.Mutex
	records   []string
	available []bool
}

func (o *recordingObserver) ObserveRecord(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, outcome)
}

func (o *recordingObserver) ObserveTrending(available bool, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.available = append(o.available, available)
}

func newMemoryStore(t *testing.T, opts ...Option) (*Store, *memory.Store) {
	t.Helper()

	backend := memory.New()

	return NewStore(backend, testDB, testTable, opts...), backend
}

func TestRecordSearchCreatesRow(t *testing.T) {
	store, backend := newMemoryStore(t)

	require.NoError(t, store.RecordSearch(context.Background(), "batman", batman))

	rows := backend.Rows(testDB, testTable)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Len(t, row.ID, 32)
	assert.Equal(t, "batman", row.String(ColumnSearchTerm))
	assert.Equal(t, "1", row.String(ColumnMovieID))
	assert.Equal(t, "Batman", row.String(ColumnTitle))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", row.String(ColumnPosterURL))

	count, ok := row.Int(ColumnCount)
	require.True(t, ok)
	assert.Equal(t, int64(1), count)
}

func TestRecordSearchIncrementsExistingRow(t *testing.T) {
	store, backend := newMemoryStore(t)
	backend.Seed(testDB, testTable, map[string]any{
		ColumnSearchTerm: "batman",
		ColumnMovieID:    "1",
		ColumnTitle:      "Batman",
		ColumnCount:      4,
		ColumnPosterURL:  PosterURL("/a.jpg"),
	})

	require.NoError(t, store.RecordSearch(context.Background(), "batman", Movie{ID: 99, Title: "Other"}))

	rows := backend.Rows(testDB, testTable)
	require.Len(t, rows, 1)

	count, _ := rows[0].Int(ColumnCount)
	assert.Equal(t, int64(5), count)
	assert.Equal(t, "Batman", rows[0].String(ColumnTitle), "existing movie data is kept")
}

func TestRecordSearchDoesOneReadAndOneWrite(t *testing.T) {
	store, backend := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordSearch(ctx, "batman", batman))

	calls := backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, memory.OpList, calls[0].Method)
	assert.Equal(t, memory.OpCreate, calls[1].Method)

	backend.ResetCalls()
	require.NoError(t, store.RecordSearch(ctx, "batman", batman))

	calls = backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, memory.OpList, calls[0].Method)
	assert.Equal(t, memory.OpIncrement, calls[1].Method)
}

func TestRecordSearchThreeTimes(t *testing.T) {
	store, backend := newMemoryStore(t)

	for range 3 {
		require.NoError(t, store.RecordSearch(context.Background(), "batman", batman))
	}

	rows := backend.Rows(testDB, testTable)
	require.Len(t, rows, 1)

	count, _ := rows[0].Int(ColumnCount)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", rows[0].String(ColumnPosterURL))
}

func TestRecordSearchUsesQueryVerbatim(t *testing.T) {
	store, backend := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordSearch(ctx, "Batman", batman))
	require.NoError(t, store.RecordSearch(ctx, " batman", batman))

	assert.Len(t, backend.Rows(testDB, testTable), 2)
}

func TestRecordSearchIncrementsFirstOfDuplicates(t *testing.T) {
	store, backend := newMemoryStore(t)
	backend.Seed(testDB, testTable,
		map[string]any{ColumnSearchTerm: "dup", ColumnCount: 1},
		map[string]any{ColumnSearchTerm: "dup", ColumnCount: 7},
	)

	require.NoError(t, store.RecordSearch(context.Background(), "dup", batman))

	rows := backend.Rows(testDB, testTable)
	first, _ := rows[0].Int(ColumnCount)
	second, _ := rows[1].Int(ColumnCount)
	assert.Equal(t, int64(2), first)
	assert.Equal(t, int64(7), second)
}

func TestRecordSearchValidation(t *testing.T) {
	observer := &recordingObserver{}
	store, backend := newMemoryStore(t, WithObserver(observer))
	ctx := context.Background()

	assert.ErrorIs(t, store.RecordSearch(ctx, "", batman), ErrEmptyQuery)
	assert.ErrorIs(t, store.RecordSearch(ctx, "batman", Movie{Title: "No ID"}), ErrInvalidMovie)
	assert.ErrorIs(t, store.RecordSearch(ctx, "batman", Movie{ID: 3}), ErrInvalidMovie)

	assert.Empty(t, backend.Calls())
	assert.Equal(t, []string{OutcomeRejected, OutcomeRejected, OutcomeRejected}, observer.records)
}

func TestRecordSearchPropagatesRemoteErrors(t *testing.T) {
	boom := errors.New("network down")

	tests := []struct {
		name string
		op   string
		seed bool
	}{
		{name: "lookup", op: memory.OpList},
		{name: "create", op: memory.OpCreate},
		{name: "increment", op: memory.OpIncrement, seed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &recordingObserver{}
			store, backend := newMemoryStore(t, WithObserver(observer))
			if tt.seed {
				backend.Seed(testDB, testTable, map[string]any{ColumnSearchTerm: "batman", ColumnCount: 1})
			}
			backend.Fail(boom, tt.op)

			err := store.RecordSearch(context.Background(), "batman", batman)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), "batman")
			assert.Equal(t, []string{OutcomeFailed}, observer.records)
		})
	}
}

func TestRecordSearchHonoursLookupLimit(t *testing.T) {
	var seen []tables.Query
	client := &spyClient{Client: memory.New(), onList: func(q []tables.Query) { seen = q }}

	store := NewStore(client, testDB, testTable, WithLookupLimit(2))
	require.NoError(t, store.RecordSearch(context.Background(), "batman", batman))

	require.Len(t, seen, 2)
	assert.Equal(t, tables.Equal(ColumnSearchTerm, "batman"), seen[0])
	n, ok := seen[1].LimitValue()
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestTopSearchesOrdersByCount(t *testing.T) {
	store, backend := newMemoryStore(t)
	for term, count := range map[string]int{"a": 3, "b": 10, "c": 1, "d": 7, "e": 5, "f": 2} {
		backend.Seed(testDB, testTable, map[string]any{ColumnSearchTerm: term, ColumnCount: count})
	}

	records, ok := store.TopSearches(context.Background(), 3)
	require.True(t, ok)
	require.Len(t, records, 3)

	assert.Equal(t, "b", records[0].SearchTerm)
	assert.Equal(t, "d", records[1].SearchTerm)
	assert.Equal(t, "e", records[2].SearchTerm)
}

func TestTopSearchesDefaultLimit(t *testing.T) {
	store, backend := newMemoryStore(t)
	for i := range 8 {
		backend.Seed(testDB, testTable, map[string]any{ColumnSearchTerm: string(rune('a' + i)), ColumnCount: i + 1})
	}

	records, ok := store.TopSearches(context.Background(), 0)
	require.True(t, ok)
	assert.Len(t, records, DefaultTrendingLimit)

	records, ok = store.TopSearches(context.Background(), -4)
	require.True(t, ok)
	assert.Len(t, records, DefaultTrendingLimit)

	custom := NewStore(backend, testDB, testTable, WithTrendingLimit(2))
	records, ok = custom.TopSearches(context.Background(), 0)
	require.True(t, ok)
	assert.Len(t, records, 2)
}

func TestTopSearchesEmptyTable(t *testing.T) {
	store, _ := newMemoryStore(t)

	records, ok := store.TopSearches(context.Background(), 5)
	assert.True(t, ok)
	assert.Empty(t, records)
}

func TestTopSearchesAfterTwoSearches(t *testing.T) {
	store, _ := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordSearch(ctx, "batman", batman))
	require.NoError(t, store.RecordSearch(ctx, "superman", Movie{ID: 2, Title: "Superman"}))

	records, ok := store.TopSearches(ctx, 5)
	require.True(t, ok)
	require.Len(t, records, 2)

	terms := []string{records[0].SearchTerm, records[1].SearchTerm}
	assert.ElementsMatch(t, []string{"batman", "superman"}, terms)
	for _, r := range records {
		assert.Equal(t, int64(1), r.Count)
	}
}

func TestTopSearchesSwallowsRemoteErrors(t *testing.T) {
	observer := &recordingObserver{}
	store, backend := newMemoryStore(t, WithObserver(observer))
	backend.Fail(errors.New("unauthorized"))

	records, ok := store.TopSearches(context.Background(), 5)
	assert.False(t, ok)
	assert.Nil(t, records)
	assert.Equal(t, []bool{false}, observer.available)
}

func TestTopSearchesSkipsMalformedRows(t *testing.T) {
	store, backend := newMemoryStore(t)
	backend.Seed(testDB, testTable,
		map[string]any{ColumnSearchTerm: "good", ColumnCount: 3, ColumnMovieID: 12},
		map[string]any{ColumnCount: 9},
		map[string]any{ColumnSearchTerm: "bad-count", ColumnCount: "many"},
	)

	records, ok := store.TopSearches(context.Background(), 5)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].SearchTerm)
	assert.Equal(t, "12", records[0].MovieID)
}

func TestRemoteAlwaysFailing(t *testing.T) {
	store, backend := newMemoryStore(t)
	backend.Fail(errors.New("503"))

	_, ok := store.TopSearches(context.Background(), 5)
	assert.False(t, ok)
	assert.Error(t, store.RecordSearch(context.Background(), "batman", batman))
}

func TestStoreAgainstSQLite(t *testing.T) {
	backend, err := sqlite.Open(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	store := NewStore(backend, testDB, testTable)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, store.RecordSearch(ctx, "batman", batman))
	}
	require.NoError(t, store.RecordSearch(ctx, "superman", Movie{ID: 2, Title: "Superman", PosterPath: "/s.jpg"}))

	records, ok := store.TopSearches(ctx, 5)
	require.True(t, ok)
	require.Len(t, records, 2)

	assert.Equal(t, "batman", records[0].SearchTerm)
	assert.Equal(t, int64(3), records[0].Count)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", records[0].PosterURL)
	assert.Equal(t, "superman", records[1].SearchTerm)
	assert.Equal(t, int64(1), records[1].Count)
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/x.jpg", PosterURL("/x.jpg"))
	assert.Empty(t, PosterURL(""))
}

type spyClient struct {
	tables.Client
	onList func([]tables.Query)
}

func (s *spyClient) ListRows(ctx context.Context, databaseID, tableID string, queries ...tables.Query) (*tables.RowList, error) {
	s.onList(queries)

	return s.Client.ListRows(ctx, databaseID, tableID, queries...)
}
