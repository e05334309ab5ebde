package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"ordersdash/pkg/contracts/domain"
)

// PipelineMetrics records reconciliation and source-loading metrics
type PipelineMetrics struct {
	runsTotal          metric.Int64Counter
	runDuration        metric.Float64Histogram
	rowsTotal          metric.Int64Counter
	dateParseFailures  metric.Int64Counter
	sourceCacheLookups metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of reconciliation runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Reconciliation run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsTotal, err := meter.Int64Counter(
		"pipeline_rows_total",
		metric.WithDescription("Rows seen by reconciliation, by stage"),
	)
	if err != nil {
		return nil, err
	}

	dateParseFailures, err := meter.Int64Counter(
		"pipeline_date_parse_failures_total",
		metric.WithDescription("Non-blank date values that could not be parsed"),
	)
	if err != nil {
		return nil, err
	}

	sourceCacheLookups, err := meter.Int64Counter(
		"source_cache_hits_total",
		metric.WithDescription("Source cache lookups, labelled by hit or miss"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		runsTotal:          runsTotal,
		runDuration:        runDuration,
		rowsTotal:          rowsTotal,
		dateParseFailures:  dateParseFailures,
		sourceCacheLookups: sourceCacheLookups,
	}, nil
}

// RecordRun records one pipeline run. diag may be nil when the run failed early.
func (m *PipelineMetrics) RecordRun(ctx context.Context, diag *domain.Diagnostics, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	status := attribute.String("status", "success")
	if err != nil {
		status = attribute.String("status", "failure")
	}
	attrs := []attribute.KeyValue{status}
	if err != nil {
		attrs = append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
	}

	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(status))

	if diag == nil {
		return
	}

	stages := map[string]int{
		"primary":              diag.PrimaryRows,
		"secondary":            diag.SecondaryRows,
		"secondary_aggregated": diag.AggregatedSecondaryRows,
		"joined":               diag.JoinedRows,
	}
	for stage, n := range stages {
		m.rowsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
	}

	for _, f := range diag.DateFields {
		if f.Missing == 0 {
			continue
		}
		m.dateParseFailures.Add(ctx, int64(f.Missing), metric.WithAttributes(
			attribute.String("source", f.Source),
			attribute.String("column", f.Column),
		))
	}
}

// RecordCacheLookup counts a source cache hit or miss
func (m *PipelineMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.sourceCacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// HTTPMetrics records request counts and latencies
type HTTPMetrics struct {
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
	activeRequests  metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		activeRequests:  activeRequests,
	}, nil
}

// Begin marks a request as in flight and returns the function that completes it
func (m *HTTPMetrics) Begin(ctx context.Context) func(route, method string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	start := time.Now()
	m.activeRequests.Add(ctx, 1)

	return func(route, method string, status int) {
		m.activeRequests.Add(ctx, -1)
		attrs := metric.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.method", method),
			attribute.Int("http.status_code", status),
		)
		m.requestsTotal.Add(ctx, 1, attrs)
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
