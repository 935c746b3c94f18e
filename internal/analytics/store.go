package analytics

import (
	"context"
	"fmt"

	"github.com/kedare/reeltrend/internal/logger"
	"github.com/kedare/reeltrend/internal/tables"
)

const (
	DefaultTrendingLimit = 5
	DefaultLookupLimit   = 5
)

// Outcomes reported to an Observer.
const (
	OutcomeCreated     = "created"
	OutcomeIncremented = "incremented"
	OutcomeRejected    = "rejected"
	OutcomeFailed      = "failed"
)

// Observer receives the result of every store operation.
type Observer interface {
	ObserveRecord(outcome string)
	ObserveTrending(available bool, returned int)
}

// Store implements the search analytics operations on top of a remote table.
// It holds no mutable state; concurrent use is safe as long as the client is.
type Store struct {
	client     tables.Client
	databaseID string
	tableID    string

	lookupLimit   int
	trendingLimit int
	observer      Observer
}

// Option customizes a Store.
type Option func(*Store)

// WithLookupLimit bounds the equality lookup done by RecordSearch.
func WithLookupLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.lookupLimit = n
		}
	}
}

// WithTrendingLimit sets the limit TopSearches uses when given zero.
func WithTrendingLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.trendingLimit = n
		}
	}
}

// WithObserver reports operation outcomes, typically to metrics.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// NewStore binds a store to one database table.
func NewStore(client tables.Client, databaseID, tableID string, opts ...Option) *Store {
	s := &Store{
		client:        client,
		databaseID:    databaseID,
		tableID:       tableID,
		lookupLimit:   DefaultLookupLimit,
		trendingLimit: DefaultTrendingLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RecordSearch counts one occurrence of query. The first row whose searchTerm
// equals query is incremented; when none exists a row is created with count 1.
//
// The lookup and the write are separate calls, so two concurrent first
// searches of the same term can both create a row.
func (s *Store) RecordSearch(ctx context.Context, query string, movie Movie) error {
	if query == "" {
		s.observeRecord(OutcomeRejected)

		return ErrEmptyQuery
	}

	if err := movie.Validate(); err != nil {
		s.observeRecord(OutcomeRejected)

		return fmt.Errorf("record search %q: %w", query, err)
	}

	existing, err := s.client.ListRows(ctx, s.databaseID, s.tableID,
		tables.Equal(ColumnSearchTerm, query),
		tables.Limit(s.lookupLimit),
	)
	if err != nil {
		logger.Log.Errorf("Failed to look up search term %q: %v", query, err)
		s.observeRecord(OutcomeFailed)

		return fmt.Errorf("look up search term %q: %w", query, err)
	}

	if len(existing.Rows) > 0 {
		row := existing.Rows[0]

		updated, err := s.client.IncrementRowColumn(ctx, s.databaseID, s.tableID, row.ID, ColumnCount, 1)
		if err != nil {
			logger.Log.Errorf("Failed to increment search count for %q: %v", query, err)
			s.observeRecord(OutcomeFailed)

			return fmt.Errorf("increment search count for %q: %w", query, err)
		}

		count, _ := updated.Int(ColumnCount)
		logger.Log.Debugf("Search term %q now counted %d times (row %s)", query, count, row.ID)
		s.observeRecord(OutcomeIncremented)

		return nil
	}

	created, err := s.client.CreateRow(ctx, s.databaseID, s.tableID, tables.UniqueID(), newRowData(query, movie))
	if err != nil {
		logger.Log.Errorf("Failed to create search record for %q: %v", query, err)
		s.observeRecord(OutcomeFailed)

		return fmt.Errorf("create search record for %q: %w", query, err)
	}

	logger.Log.Debugf("Created search record %s for %q (movie %d)", created.ID, query, movie.ID)
	s.observeRecord(OutcomeCreated)

	return nil
}

// TopSearches returns up to limit records ordered by count, highest first.
// A limit of zero or less uses the store default. The boolean is false when
// the table could not be read; the failure is logged, not returned.
func (s *Store) TopSearches(ctx context.Context, limit int) ([]SearchRecord, bool) {
	if limit <= 0 {
		limit = s.trendingLimit
	}

	result, err := s.client.ListRows(ctx, s.databaseID, s.tableID,
		tables.Limit(limit),
		tables.OrderDesc(ColumnCount),
	)
	if err != nil {
		logger.Log.Errorf("Failed to fetch trending searches: %v", err)
		s.observeTrending(false, 0)

		return nil, false
	}

	records := make([]SearchRecord, 0, len(result.Rows))
	for _, row := range result.Rows {
		record, err := recordFromRow(row)
		if err != nil {
			logger.Log.Warnf("Skipping trending row: %v", err)

			continue
		}

		records = append(records, record)
	}

	s.observeTrending(true, len(records))

	return records, true
}

func (s *Store) observeRecord(outcome string) {
	if s.observer != nil {
		s.observer.ObserveRecord(outcome)
	}
}

func (s *Store) observeTrending(available bool, returned int) {
	if s.observer != nil {
		s.observer.ObserveTrending(available, returned)
	}
}
