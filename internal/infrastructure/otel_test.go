package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersdash/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestInitializeOTel(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   ServiceName,
		Environment:   "test",
		EnableTracing: true,
		TraceExporter: "none",
		EnableMetrics: true,
		SampleRatio:   1,
	}, discardLogger())
	require.NoError(t, err)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "reconcile")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	assert.Equal(t, TraceIDFromContext(ctx), GetTraceID(ctx))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "jaeger"}, discardLogger())
	assert.Error(t, err)
}

func TestPipelineMetrics_Exported(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName, EnableMetrics: true}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRun(ctx, &domain.Diagnostics{
		PrimaryRows: 100,
		JoinedRows:  100,
		DateFields:  []domain.DateFieldStats{{Source: "secondary", Column: "Order Date", Missing: 2}},
	}, 150*time.Millisecond, nil)
	metrics.RecordRun(ctx, nil, time.Millisecond, errors.New("boom"))
	metrics.RecordCacheLookup(ctx, true)
	metrics.RecordCacheLookup(ctx, false)

	body := scrape(t, providers.PrometheusHTTP)
	assert.Contains(t, body, "pipeline_runs_total")
	assert.Contains(t, body, "pipeline_run_duration_seconds")
	assert.Contains(t, body, "pipeline_rows_total")
	assert.Contains(t, body, "pipeline_date_parse_failures_total")
	assert.Contains(t, body, "source_cache_hits_total")
	assert.Contains(t, body, `status="failure"`)
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), nil, time.Second, nil)
		m.RecordCacheLookup(context.Background(), true)
	})

	var h *HTTPMetrics
	assert.NotPanics(t, func() {
		h.Begin(context.Background())("/api/health", http.MethodGet, 200)
	})
}
