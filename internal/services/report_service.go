package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"ordersdash/internal/config"
	"ordersdash/internal/dataprocessing"
	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/exporter"
	"ordersdash/pkg/contracts/domain"
)

// DefaultDatasetID names the dataset backed by the configured source files
const DefaultDatasetID = "default"

// Dataset is a registered pair of sources
type Dataset struct {
	ID            string    `json:"dataset_id"`
	PrimaryName   string    `json:"primary_name"`
	SecondaryName string    `json:"secondary_name"`
	PrimaryRows   int       `json:"primary_rows"`
	SecondaryRows int       `json:"secondary_rows"`
	CreatedAt     time.Time `json:"created_at"`

	primary   Source
	secondary Source
}

// ReportService runs the reconciliation pipeline over registered datasets
// and turns the canonical table into reports and exports.
type ReportService struct {
	cfg      *config.Config
	pipeline *dataprocessing.Pipeline
	cache    *SourceCache
	exporter *exporter.Exporter
	datasets *lru.Cache[string, *Dataset]
	logger   *slog.Logger
}

// NewReportService creates a report service. Uploaded datasets beyond
// cfg.Server.MaxDatasets evict the least recently used one.
func NewReportService(cfg *config.Config, pipeline *dataprocessing.Pipeline, cache *SourceCache, logger *slog.Logger) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	maxDatasets := cfg.Server.MaxDatasets
	if maxDatasets < 1 {
		maxDatasets = config.DefaultMaxDatasets
	}
	datasets, err := lru.New[string, *Dataset](maxDatasets)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset registry: %w", err)
	}

	logger = logger.With(slog.String("component", "report_service"))
	logger.Info("ReportService initialized",
		slog.String("primary_path", cfg.Sources.PrimaryPath),
		slog.String("secondary_path", cfg.Sources.SecondaryPath),
		slog.Int("max_datasets", maxDatasets))

	return &ReportService{
		cfg:      cfg,
		pipeline: pipeline,
		cache:    cache,
		exporter: exporter.New(logger, exporter.Options{BOM: cfg.Export.BOM, SheetName: cfg.Export.SheetName}),
		datasets: datasets,
		logger:   logger,
	}, nil
}

// RegisterUpload loads both sources and registers them as a new dataset
func (s *ReportService) RegisterUpload(ctx context.Context, primary, secondary Source) (*Dataset, error) {
	for _, src := range []Source{primary, secondary} {
		if src.Path == "" && len(src.Data) == 0 {
			return nil, apperrors.NewAppValidationError("uploaded source is empty").WithContext("name", src.Name)
		}
	}

	p, sec, err := s.loadPair(ctx, primary, secondary)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		ID:            uuid.NewString(),
		PrimaryName:   primary.Name,
		SecondaryName: secondary.Name,
		PrimaryRows:   p.Len(),
		SecondaryRows: sec.Len(),
		CreatedAt:     time.Now().UTC(),
		primary:       primary,
		secondary:     secondary,
	}
	if evicted := s.datasets.Add(ds.ID, ds); evicted {
		s.logger.InfoContext(ctx, "dataset registry full, oldest dataset evicted")
	}

	s.logger.InfoContext(ctx, "dataset registered",
		slog.String("dataset_id", ds.ID),
		slog.Int("primary_rows", ds.PrimaryRows),
		slog.Int("secondary_rows", ds.SecondaryRows))
	return ds, nil
}

// Dataset returns a registered dataset, or the configured default
func (s *ReportService) Dataset(id string) (*Dataset, error) {
	if id == DefaultDatasetID {
		src := s.cfg.Sources
		return &Dataset{
			ID:            DefaultDatasetID,
			PrimaryName:   src.PrimaryPath,
			SecondaryName: src.SecondaryPath,
			primary:       FileSource(src.PrimaryPath, src.PrimarySheet),
			secondary:     FileSource(src.SecondaryPath, src.SecondarySheet),
		}, nil
	}
	ds, ok := s.datasets.Get(id)
	if !ok {
		return nil, apperrors.DatasetNotFoundError(id)
	}
	return ds, nil
}

// DatasetCount returns the number of uploaded datasets held in memory
func (s *ReportService) DatasetCount() int {
	return s.datasets.Len()
}

// BuildReport reconciles a dataset and applies the request's filters,
// column selection and row limit.
func (s *ReportService) BuildReport(ctx context.Context, id string, req domain.ReportRequest) (*domain.Report, error) {
	v, err := s.compute(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return s.newReport(id, req, v), nil
}

// ExportTarget is one file the filtered table is written to
type ExportTarget struct {
	Format domain.ExportFormat
	Path   string
}

// BuildReportWithExports builds the report like BuildReport and writes the
// whole filtered table to every target, all from a single pipeline run.
func (s *ReportService) BuildReportWithExports(ctx context.Context, id string, req domain.ReportRequest, targets []ExportTarget) (*domain.Report, error) {
	for _, target := range targets {
		if !target.Format.Valid() {
			return nil, apperrors.ErrValidation("format", fmt.Sprintf("unsupported export format %q", target.Format))
		}
	}
	v, err := s.compute(ctx, id, req)
	if err != nil {
		return nil, err
	}
	for _, target := range targets {
		if err := s.exporter.ExportFile(target.Path, target.Format, v.table); err != nil {
			return nil, fmt.Errorf("export %s: %w", target.Format, err)
		}
	}
	return s.newReport(id, req, v), nil
}

func (s *ReportService) newReport(id string, req domain.ReportRequest, v *reportView) *domain.Report {
	limit := req.Limit
	if limit == 0 {
		limit = s.cfg.Pipeline.PreviewRows
	}

	return &domain.Report{
		DatasetID:     id,
		Columns:       v.table.Columns,
		Rows:          dataprocessing.DisplayRows(v.table, limit),
		TotalRows:     v.table.Len(),
		KPIs:          v.kpis,
		Diagnostics:   v.diagnostics,
		FilterOptions: v.options,
		FilterState:   v.state,
		GeneratedAt:   time.Now().UTC(),
	}
}

// Export writes the filtered table of a dataset to w. The row limit of
// req does not apply: exports hold every matching row.
func (s *ReportService) Export(ctx context.Context, id string, req domain.ReportRequest, format domain.ExportFormat, w io.Writer) error {
	if !format.Valid() {
		return apperrors.ErrValidation("format", fmt.Sprintf("unsupported export format %q", format))
	}
	v, err := s.compute(ctx, id, req)
	if err != nil {
		return err
	}
	return s.exporter.Export(w, format, v.table)
}

// ExportFileName returns the download name configured for format
func (s *ReportService) ExportFileName(format domain.ExportFormat) string {
	if format == domain.ExportFormatXLSX {
		return s.cfg.Export.XLSXFileName
	}
	return s.cfg.Export.CSVFileName
}

type reportView struct {
	table       domain.Table
	kpis        domain.KPIs
	diagnostics domain.Diagnostics
	options     []domain.FilterOption
	state       domain.FilterState
}

func (s *ReportService) compute(ctx context.Context, id string, req domain.ReportRequest) (*reportView, error) {
	ds, err := s.Dataset(id)
	if err != nil {
		return nil, err
	}
	opts, err := s.pipelineOptions(req)
	if err != nil {
		return nil, err
	}

	primary, secondary, err := s.loadPair(ctx, ds.primary, ds.secondary)
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.Run(ctx, primary, secondary, opts)
	if err != nil {
		return nil, err
	}

	filtered, state := dataprocessing.ApplyFilters(res.Table, req.FilterState())
	view := dataprocessing.SelectColumns(filtered, dataprocessing.FinalColumnOrder(), state.Columns)

	return &reportView{
		table:       view,
		kpis:        dataprocessing.ComputeKPIs(filtered),
		diagnostics: res.Diagnostics,
		options:     dataprocessing.FilterOptions(res.Table, dataprocessing.FilterFields()),
		state:       state,
	}, nil
}

func (s *ReportService) pipelineOptions(req domain.ReportRequest) (dataprocessing.Options, error) {
	pc := s.cfg.Pipeline
	opts := dataprocessing.DefaultOptions()
	opts.JoinKeys = pc.JoinKeys
	if len(pc.DateColumns) > 0 {
		opts.DateColumns = pc.DateColumns
	}
	if pc.PrimarySuffix != "" {
		opts.PrimarySuffix = pc.PrimarySuffix
	}
	if pc.SecondarySuffix != "" {
		opts.SecondarySuffix = pc.SecondarySuffix
	}
	if len(req.JoinKeys) > 0 {
		opts.JoinKeys = req.JoinKeys
	}

	mode := pc.JoinMode
	if req.JoinMode != "" {
		mode = req.JoinMode
	}
	m, err := dataprocessing.ParseJoinMode(mode)
	if err != nil {
		return opts, apperrors.ErrValidation("join_mode", err.Error())
	}
	opts.JoinMode = m
	return opts, nil
}

// loadPair loads both sources concurrently
func (s *ReportService) loadPair(ctx context.Context, primary, secondary Source) (domain.Table, domain.Table, error) {
	var p, sec domain.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.cache.Load(gctx, primary)
		if err != nil {
			return fmt.Errorf("primary source: %w", err)
		}
		p = t
		return nil
	})
	g.Go(func() error {
		t, err := s.cache.Load(gctx, secondary)
		if err != nil {
			return fmt.Errorf("secondary source: %w", err)
		}
		sec = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Table{}, domain.Table{}, err
	}
	return p, sec, nil
}
