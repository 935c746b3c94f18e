package metrics

import (
	"context"
	"time"

	"github.com/kedare/reeltrend/internal/tables"
)

// Operation label values.
const (
	OpListRows  = "list_rows"
	OpCreateRow = "create_row"
	OpIncrement = "increment_row_column"
)

// InstrumentedClient records every call made through the wrapped client.
type InstrumentedClient struct {
	next    tables.Client
	metrics *Metrics
}

var _ tables.Client = (*InstrumentedClient)(nil)

// Instrument wraps next. A nil Metrics returns next unchanged.
func Instrument(next tables.Client, m *Metrics) tables.Client {
	if m == nil {
		return next
	}

	return &InstrumentedClient{next: next, metrics: m}
}

func (c *InstrumentedClient) ListRows(ctx context.Context, databaseID, tableID string, queries ...tables.Query) (*tables.RowList, error) {
	start := time.Now()
	result, err := c.next.ListRows(ctx, databaseID, tableID, queries...)
	c.metrics.RecordTableOperation(OpListRows, time.Since(start), err)

	return result, err
}

func (c *InstrumentedClient) CreateRow(ctx context.Context, databaseID, tableID, rowID string, data map[string]any) (*tables.Row, error) {
	start := time.Now()
	row, err := c.next.CreateRow(ctx, databaseID, tableID, rowID, data)
	c.metrics.RecordTableOperation(OpCreateRow, time.Since(start), err)

	return row, err
}

func (c *InstrumentedClient) IncrementRowColumn(ctx context.Context, databaseID, tableID, rowID, column string, value int64) (*tables.Row, error) {
	start := time.Now()
	row, err := c.next.IncrementRowColumn(ctx, databaseID, tableID, rowID, column, value)
	c.metrics.RecordTableOperation(OpIncrement, time.Since(start), err)

	return row, err
}
