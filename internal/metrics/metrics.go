// Package metrics provides Prometheus collectors for remote table calls,
// search analytics outcomes and the HTTP API.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/kedare/reeltrend/internal/tables"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reeltrend"

// Metrics holds every reeltrend collector.
type Metrics struct {
	registry *prometheus.Registry

	tableOperationsTotal  *prometheus.CounterVec
	tableOperationSeconds *prometheus.HistogramVec

	searchesRecordedTotal *prometheus.CounterVec
	trendingReadsTotal    *prometheus.CounterVec
	trendingReturned      prometheus.Histogram

	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()

	if err := registry.Register(m); err != nil {
		return nil, err
	}

	return m, nil
}

// Registry returns the registry the collectors belong to.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) initMetrics() {
	m.tableOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_operations_total",
			Help:      "Total number of remote table operations",
		},
		[]string{"operation", "status"}, // status: success, not_found, conflict, invalid, error
	)

	m.tableOperationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_operation_duration_seconds",
			Help:      "Time taken by remote table operations",
			// 5ms to ~10s
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"operation"},
	)

	m.searchesRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_recorded_total",
			Help:      "Total number of RecordSearch calls by outcome",
		},
		[]string{"outcome"}, // outcome: created, incremented, rejected, failed
	)

	m.trendingReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trending_reads_total",
			Help:      "Total number of trending list reads",
		},
		[]string{"available"},
	)

	m.trendingReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trending_records_returned",
			Help:      "Number of records returned by successful trending reads",
			Buckets:   prometheus.LinearBuckets(0, 5, 6),
		},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of API requests served",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve API requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.tableOperationsTotal.Describe(ch)
	m.tableOperationSeconds.Describe(ch)
	m.searchesRecordedTotal.Describe(ch)
	m.trendingReadsTotal.Describe(ch)
	m.trendingReturned.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestSeconds.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.tableOperationsTotal.Collect(ch)
	m.tableOperationSeconds.Collect(ch)
	m.searchesRecordedTotal.Collect(ch)
	m.trendingReadsTotal.Collect(ch)
	m.trendingReturned.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestSeconds.Collect(ch)
}

// RecordTableOperation counts one remote table call.
func (m *Metrics) RecordTableOperation(operation string, duration time.Duration, err error) {
	m.tableOperationsTotal.WithLabelValues(operation, errorStatus(err)).Inc()
	m.tableOperationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRecord implements analytics.Observer.
func (m *Metrics) ObserveRecord(outcome string) {
	m.searchesRecordedTotal.WithLabelValues(outcome).Inc()
}

// ObserveTrending implements analytics.Observer.
func (m *Metrics) ObserveTrending(available bool, returned int) {
	m.trendingReadsTotal.WithLabelValues(strconv.FormatBool(available)).Inc()
	if available {
		m.trendingReturned.Observe(float64(returned))
	}
}

// RecordHTTPRequest counts one served API request.
func (m *Metrics) RecordHTTPRequest(route, method string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	m.httpRequestSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

func errorStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, tables.ErrRowNotFound):
		return "not_found"
	case errors.Is(err, tables.ErrRowExists):
		return "conflict"
	case errors.Is(err, tables.ErrInvalidQuery), errors.Is(err, tables.ErrInvalidColumn), errors.Is(err, tables.ErrTableRequired):
		return "invalid"
	default:
		return "error"
	}
}
