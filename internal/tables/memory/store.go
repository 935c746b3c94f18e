// Package memory implements tables.Client in process memory. It backs the
// "memory" backend and doubles as the fake store in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kedare/reeltrend/internal/tables"
)

// Call records one invocation against the store.
type Call struct {
	Method  string
	TableID string
	RowID   string
}

// Store keeps rows per database/table pair in insertion order.
type Store struct {
	mu     sync.Mutex
	tables map[string][]tables.Row
	seq    int64
	calls  []Call
	fail   map[string]error
	now    func() time.Time
}

// Operation names used by Fail and Calls.
const (
	OpList      = "ListRows"
	OpCreate    = "CreateRow"
	OpIncrement = "IncrementRowColumn"
)

var _ tables.Client = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		tables: make(map[string][]tables.Row),
		fail:   make(map[string]error),
		now:    time.Now,
	}
}

// Fail makes every subsequent call to the named operations return err.
// With no operations it applies to all of them. A nil err clears the failure.
func (s *Store) Fail(err error, ops ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ops) == 0 {
		ops = []string{OpList, OpCreate, OpIncrement}
	}

	for _, op := range ops {
		if err == nil {
			delete(s.fail, op)
			continue
		}

		s.fail[op] = err
	}
}

// Calls returns the operations executed so far.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}

// ResetCalls clears the call log.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// Rows returns a copy of every row in a table in insertion order.
func (s *Store) Rows(databaseID, tableID string) []tables.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[key(databaseID, tableID)]
	out := make([]tables.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Clone())
	}

	return out
}

// Seed inserts rows directly, bypassing failure injection and the call log.
func (s *Store) Seed(databaseID, tableID string, data ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range data {
		s.insertLocked(key(databaseID, tableID), tables.UniqueID(), d)
	}
}

func (s *Store) ListRows(ctx context.Context, databaseID, tableID string, queries ...tables.Query) (*tables.RowList, error) {
	if err := s.begin(ctx, OpList, databaseID, tableID, ""); err != nil {
		return nil, err
	}

	plan, err := tables.NewPlan(queries)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []tables.Row
	for _, row := range s.tables[key(databaseID, tableID)] {
		if matches(row, plan.Filters) {
			matched = append(matched, row.Clone())
		}
	}

	if len(plan.Orders) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return less(matched[i], matched[j], plan.Orders)
		})
	}

	total := len(matched)
	if plan.Limit < len(matched) {
		matched = matched[:plan.Limit]
	}

	return &tables.RowList{Total: total, Rows: matched}, nil
}

func (s *Store) CreateRow(ctx context.Context, databaseID, tableID, rowID string, data map[string]any) (*tables.Row, error) {
	if err := s.begin(ctx, OpCreate, databaseID, tableID, rowID); err != nil {
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

	if rowID == "" {
		rowID = tables.UniqueID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(databaseID, tableID)
	for _, row := range s.tables[k] {
		if row.ID == rowID {
			return nil, fmt.Errorf("%w: %s", tables.ErrRowExists, rowID)
		}
	}

	row := s.insertLocked(k, rowID, data)

	return &row, nil
}

func (s *Store) IncrementRowColumn(ctx context.Context, databaseID, tableID, rowID, column string, value int64) (*tables.Row, error) {
	if err := s.begin(ctx, OpIncrement, databaseID, tableID, rowID); err != nil {
		return nil, err
	}

	if err := tables.ValidateColumn(column); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[key(databaseID, tableID)]
	for i := range rows {
		if rows[i].ID != rowID {
			continue
		}

		current := int64(0)
		if existing, ok := rows[i].Data[column]; ok {
			n, isInt := tables.AsInt(existing)
			if !isInt {
				return nil, fmt.Errorf("%w: column %s is not numeric", tables.ErrInvalidColumn, column)
			}

			current = n
		}

		rows[i].Data[column] = current + value
		rows[i].UpdatedAt = s.now()
		row := rows[i].Clone()

		return &row, nil
	}

	return nil, fmt.Errorf("%w: %s", tables.ErrRowNotFound, rowID)
}

func (s *Store) begin(ctx context.Context, op, databaseID, tableID, rowID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Method: op, TableID: tableID, RowID: rowID})

	if err := s.fail[op]; err != nil {
		return err
	}

	return tables.ValidateTable(databaseID, tableID)
}

func (s *Store) insertLocked(k, rowID string, data map[string]any) tables.Row {
	s.seq++
	now := s.now()

	row := tables.Row{
		ID:        rowID,
		Sequence:  s.seq,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      make(map[string]any, len(data)),
	}
	for column, v := range data {
		row.Data[column] = v
	}

	s.tables[k] = append(s.tables[k], row)

	return row.Clone()
}

func matches(row tables.Row, filters []tables.Query) bool {
	for _, f := range filters {
		v, ok := row.Value(f.Attribute)
		if !ok {
			return false
		}

		hit := false
		for _, want := range f.Values {
			if equal(v, want) {
				hit = true
				break
			}
		}

		if !hit {
			return false
		}
	}

	return true
}

// equal compares like a typed store does: numbers by value, everything else
// only against the same type.
func equal(a, b any) bool {
	if af, ok := tables.AsFloat(a); ok {
		bf, ok := tables.AsFloat(b)

		return ok && af == bf
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)

		return ok && av == bv
	case bool:
		bv, ok := b.(bool)

		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)

		return ok && av.Equal(bv)
	default:
		return false
	}
}

func less(a, b tables.Row, orders []tables.Query) bool {
	for _, o := range orders {
		av, _ := a.Value(o.Attribute)
		bv, _ := b.Value(o.Attribute)

		c := tables.Compare(av, bv)
		if c == 0 {
			continue
		}

		if o.Method == tables.MethodOrderDesc {
			return c > 0
		}

		return c < 0
	}

	return false
}

func key(databaseID, tableID string) string {
	return databaseID + "/" + tableID
}
