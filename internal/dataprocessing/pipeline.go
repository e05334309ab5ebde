package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "ordersdash/internal/errors"
	"ordersdash/pkg/contracts/domain"
)

const tracerName = "ordersdash/dataprocessing"

// RunRecorder receives the outcome of every pipeline run
type RunRecorder interface {
	RecordRun(ctx context.Context, diag *domain.Diagnostics, elapsed time.Duration, err error)
}

// Options controls one pipeline run
type Options struct {
	// JoinKeys are matched against canonical column names. Empty means
	// User + Order Date, or User alone when the secondary has no order date.
	JoinKeys        []string
	JoinMode        JoinMode
	DateColumns     []string
	Fields          []FieldSpec
	PrimarySuffix   string
	SecondarySuffix string
}

// DefaultOptions returns the options used by the dashboard
func DefaultOptions() Options {
	return Options{
		JoinMode:        JoinLeft,
		DateColumns:     []string{OrderDateColumn},
		Fields:          DefaultFieldSpecs(),
		PrimarySuffix:   DefaultPrimarySuffix,
		SecondarySuffix: DefaultSecondarySuffix,
	}
}

// Result is the canonical table of a run and its diagnostics
type Result struct {
	Table       domain.Table
	Diagnostics domain.Diagnostics
}

// Pipeline turns a primary and a secondary table into one canonical table.
// It holds no per-run state and may be shared between goroutines.
type Pipeline struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder RunRecorder
	dates    *DateParser
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithTracer sets the tracer used for stage spans
func WithTracer(t trace.Tracer) PipelineOption {
	return func(p *Pipeline) { p.tracer = t }
}

// WithRecorder sets the run recorder, usually the pipeline metrics
func WithRecorder(r RunRecorder) PipelineOption {
	return func(p *Pipeline) { p.recorder = r }
}

// WithDateParser replaces the default date strategies
func WithDateParser(d *DateParser) PipelineOption {
	return func(p *Pipeline) { p.dates = d }
}

// NewPipeline creates a pipeline
func NewPipeline(logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger: logger.With(slog.String("component", "pipeline")),
		tracer: otel.Tracer(tracerName),
		dates:  defaultDateParser,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reconciles primary and secondary. The inputs are not modified.
func (p *Pipeline) Run(ctx context.Context, primary, secondary domain.Table, opts Options) (res *Result, err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.Int("rows.primary", primary.Len()),
		attribute.Int("rows.secondary", secondary.Len()),
	))
	defer func() {
		var diag *domain.Diagnostics
		if res != nil {
			diag = &res.Diagnostics
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if p.recorder != nil {
			p.recorder.RecordRun(ctx, diag, time.Since(start), err)
		}
	}()

	if primary.Len() == 0 && secondary.Len() == 0 {
		return nil, &apperrors.EmptyInputError{PrimaryRows: primary.Len(), SecondaryRows: secondary.Len()}
	}
	if opts.JoinMode == "" {
		opts.JoinMode = JoinLeft
	}

	diag := domain.Diagnostics{
		JoinMode:      string(opts.JoinMode),
		PrimaryRows:   primary.Len(),
		SecondaryRows: secondary.Len(),
	}

	// normalize
	var pc, sc []domain.HeaderCollision
	p.stage(ctx, "pipeline.normalize_columns", func(context.Context) {
		primary, pc = NormalizeColumns(primary)
		secondary, sc = NormalizeColumns(secondary)
	})
	diag.HeaderCollisions = append(tagCollisions(domain.SourcePrimary, pc), tagCollisions(domain.SourceSecondary, sc)...)

	keys := resolveJoinKeys(opts.JoinKeys, secondary)
	diag.JoinKeys = keys
	span.SetAttributes(attribute.StringSlice("join.keys", keys), attribute.String("join.mode", diag.JoinMode))
	if err := ValidateJoinKeys(primary, secondary, keys); err != nil {
		p.logger.WarnContext(ctx, "join keys missing", slog.Any("error", err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// dates and key values
	dateColumns := canonicalNames(opts.DateColumns)
	p.stage(ctx, "pipeline.parse_dates", func(context.Context) {
		diag.DateFields = append(diag.DateFields, p.parseDates(domain.SourcePrimary, &primary, dateColumns)...)
		diag.DateFields = append(diag.DateFields, p.parseDates(domain.SourceSecondary, &secondary, dateColumns)...)
		for _, k := range keys {
			if slices.Contains(dateColumns, k) {
				continue
			}
			normalizeKeyColumn(&primary, k)
			normalizeKeyColumn(&secondary, k)
		}
	})
	diag.KeyAnomalies = append(keyAnomalies(domain.SourcePrimary, primary, keys), keyAnomalies(domain.SourceSecondary, secondary, keys)...)

	// aggregate
	var aggregated domain.Table
	var aggErr error
	p.stage(ctx, "pipeline.aggregate_secondary", func(context.Context) {
		aggregated, aggErr = AggregateSecondary(secondary, keys)
	})
	if aggErr != nil {
		return nil, aggErr
	}
	diag.AggregatedSecondaryRows = aggregated.Len()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// reconcile
	var joined *ReconcileResult
	var joinErr error
	p.stage(ctx, "pipeline.reconcile", func(context.Context) {
		joined, joinErr = Reconcile(primary, aggregated, keys, ReconcileOptions{
			Mode:            opts.JoinMode,
			PrimarySuffix:   opts.PrimarySuffix,
			SecondarySuffix: opts.SecondarySuffix,
			Fields:          opts.Fields,
		})
	})
	if joinErr != nil {
		return nil, fmt.Errorf("reconcile: %w", joinErr)
	}
	diag.MatchedRows = joined.Matched
	diag.UnmatchedPrimaryRows = joined.UnmatchedPrimary
	diag.UnmatchedSecondaryGroups = joined.UnmatchedSecondary
	diag.UnmatchedKeySamples = joined.UnmatchedSamples
	diag.UnifiedColumns = joined.Unified
	diag.SynthesizedColumns = joined.Synthesized

	// spans
	out := joined.Table
	p.stage(ctx, "pipeline.compute_spans", func(context.Context) {
		diag.Span = applySpans(&out)
	})
	diag.JoinedRows = out.Len()

	logDiagnostics(ctx, p.logger, &diag)
	return &Result{Table: out, Diagnostics: diag}, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := p.tracer.Start(ctx, name)
	defer span.End()
	fn(ctx)
}

func (p *Pipeline) parseDates(source string, t *domain.Table, columns []string) []domain.DateFieldStats {
	var stats []domain.DateFieldStats
	for _, c := range columns {
		values := t.ColumnValues(c)
		if values == nil {
			continue
		}
		res := p.dates.ParseColumn(values)
		for i, row := range t.Rows {
			row[c] = res.Values[i]
		}
		stats = append(stats, dateFieldStats(source, c, res))
	}
	return stats
}

func normalizeKeyColumn(t *domain.Table, key string) {
	if !t.HasColumn(key) {
		return
	}
	for _, row := range t.Rows {
		row[key] = NormalizeKeyValue(row[key])
	}
}

// resolveJoinKeys canonicalizes explicit keys or picks the default tuple
func resolveJoinKeys(explicit []string, secondary domain.Table) []string {
	if keys := canonicalNames(explicit); len(keys) > 0 {
		return keys
	}
	if secondary.HasColumn(OrderDateColumn) {
		return DefaultJoinKeys()
	}
	return []string{UserColumn}
}

// canonicalNames returns the distinct canonical names of names, blanks dropped
func canonicalNames(names []string) []string {
	var out []string
	for _, n := range names {
		c := CanonicalColumnName(n)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
