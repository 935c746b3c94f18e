// Package probe checks at startup that the analytics table is reachable.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/tables"
)

// PreviewLimit bounds the read the probe performs.
const PreviewLimit = 5

const (
	termColumn  = "searchTerm"
	countColumn = "count"
)

// Report describes a successful probe.
type Report struct {
	Database string        `json:"database"`
	Table    string        `json:"table"`
	Total    int           `json:"total"`
	Preview  []string      `json:"preview"`
	Latency  time.Duration `json:"latency"`
}

// Probe performs a bounded read against one table.
type Probe struct {
	client     tables.Client
	databaseID string
	tableID    string
}

// New returns a probe for the given table.
func New(client tables.Client, databaseID, tableID string) *Probe {
	return &Probe{client: client, databaseID: databaseID, tableID: tableID}
}

// Check reads up to PreviewLimit rows and summarizes them.
func (p *Probe) Check(ctx context.Context) (*Report, error) {
	start := time.Now()

	result, err := p.client.ListRows(ctx, p.databaseID, p.tableID, tables.Limit(PreviewLimit))
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", p.databaseID, p.tableID, err)
	}

	report := &Report{
		Database: p.databaseID,
		Table:    p.tableID,
		Total:    result.Total,
		Preview:  make([]string, 0, len(result.Rows)),
		Latency:  time.Since(start),
	}

	for _, row := range result.Rows {
		report.Preview = append(report.Preview, previewLine(row))
	}

	return report, nil
}

// Run logs the outcome of Check and reports whether it succeeded.
func (p *Probe) Run(ctx context.Context) bool {
	logger.Log.Debugf("Testing connection to table %s in database %s", p.tableID, p.databaseID)

	report, err := p.Check(ctx)
	if err != nil {
		logger.Log.Errorf("Remote table connection failed: %v", err)

		return false
	}

	logger.Log.Infof("Remote table connection OK: %d rows in %s (%s)", report.Total, report.Table, report.Latency.Round(time.Millisecond))
	for _, line := range report.Preview {
		logger.Log.Infof("  %s", line)
	}

	return true
}

func previewLine(row tables.Row) string {
	term := row.String(termColumn)
	if term == "" {
		term = "<" + row.ID + ">"
	}

	if count, ok := row.Int(countColumn); ok {
		return fmt.Sprintf("%s (%d)", term, count)
	}

	return fmt.Sprintf("%s (?)", term)
}
