package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"ordersdash/internal/dataprocessing"
	"ordersdash/internal/files"
	"ordersdash/internal/infrastructure"
	"ordersdash/internal/services"
	"ordersdash/internal/validation"
	"ordersdash/pkg/contracts/domain"
)

type reportOptions struct {
	dir            string
	primary        string
	primarySheet   string
	secondary      string
	secondarySheet string
	keys           []string
	join           string
	filters        []string
	columns        []string
	limit          int
	csvOut         string
	xlsxOut        string
	asJSON         bool
}

func newReportCommand() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reconcile the sources and print a report",
		Long: `Load the Summary and Secondary sources, join them, apply filters and
print a preview table with KPIs and diagnostics. Exports hold every
matching row regardless of --limit.`,
		Example: `  # Report over the configured files
  ordersdash report

  # Filter and export
  ordersdash report --primary Summary.xlsx --secondary Secondary.xlsx \
    --filter Region=North,South --columns User,Beat,Ghee --csv out.csv

  # Newest Summary*/Secondary* files of a directory
  ordersdash report --dir ~/Downloads

  # Outer join on User only, as JSON
  ordersdash report --key User --join outer --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", "", "pick the newest Summary* and Secondary* sources of this directory")
	f.StringVar(&opts.primary, "primary", "", "Summary source file (.xlsx, .xlsm, .csv)")
	f.StringVar(&opts.primarySheet, "primary-sheet", "", "worksheet of the Summary workbook")
	f.StringVar(&opts.secondary, "secondary", "", "Secondary source file (.xlsx, .xlsm, .csv)")
	f.StringVar(&opts.secondarySheet, "secondary-sheet", "", "worksheet of the Secondary workbook")
	f.StringSliceVar(&opts.keys, "key", nil, "join key column, repeatable (default: User + Order Date)")
	f.StringVar(&opts.join, "join", "", "join mode: left or outer (default from config)")
	f.StringArrayVar(&opts.filters, "filter", nil, "filter as Field=v1,v2, repeatable")
	f.StringSliceVar(&opts.columns, "columns", nil, "columns to show and export, in canonical order")
	f.IntVar(&opts.limit, "limit", 20, "preview rows to print")
	f.StringVar(&opts.csvOut, "csv", "", "write the filtered table as CSV to this path")
	f.StringVar(&opts.xlsxOut, "xlsx", "", "write the filtered table as an Excel workbook to this path")
	f.BoolVar(&opts.asJSON, "json", false, "print the report as JSON")

	_ = cmd.RegisterFlagCompletionFunc("join", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"left", "outer"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("filter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		fields := dataprocessing.FilterFields()
		out := make([]string, len(fields))
		for i, field := range fields {
			out[i] = field + "="
		}
		return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOptions) error {
	ctx := infrastructure.EnsureTraceID(cmd.Context())
	e := getEnv(ctx)

	if err := resolveSources(e, opts); err != nil {
		return err
	}
	if opts.primary != "" {
		e.cfg.Sources.PrimaryPath = opts.primary
	}
	if opts.primarySheet != "" {
		e.cfg.Sources.PrimarySheet = opts.primarySheet
	}
	if opts.secondary != "" {
		e.cfg.Sources.SecondaryPath = opts.secondary
	}
	if opts.secondarySheet != "" {
		e.cfg.Sources.SecondarySheet = opts.secondarySheet
	}

	filterState, err := parseFilters(opts.filters)
	if err != nil {
		return err
	}
	if opts.limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", opts.limit)
	}
	validator := validation.NewFileValidator(e.logger)
	for _, path := range []string{e.cfg.Sources.PrimaryPath, e.cfg.Sources.SecondaryPath} {
		if err := validator.ValidateSourceFile(path); err != nil {
			return err
		}
	}
	if opts.csvOut != "" {
		if err := validator.ValidateExportPath(opts.csvOut, domain.ExportFormatCSV); err != nil {
			return err
		}
	}
	if opts.xlsxOut != "" {
		if err := validator.ValidateExportPath(opts.xlsxOut, domain.ExportFormatXLSX); err != nil {
			return err
		}
	}

	req := domain.ReportRequest{
		JoinKeys: opts.keys,
		JoinMode: opts.join,
		Filters:  filterState.Selections,
		Columns:  opts.columns,
		Limit:    opts.limit,
	}

	svc, err := newReportService(e)
	if err != nil {
		return err
	}

	var targets []services.ExportTarget
	if opts.csvOut != "" {
		targets = append(targets, services.ExportTarget{Format: domain.ExportFormatCSV, Path: opts.csvOut})
	}
	if opts.xlsxOut != "" {
		targets = append(targets, services.ExportTarget{Format: domain.ExportFormatXLSX, Path: opts.xlsxOut})
	}

	report, err := svc.BuildReportWithExports(ctx, services.DefaultDatasetID, req, targets)
	if err != nil {
		return err
	}
	for _, target := range targets {
		e.logger.InfoContext(ctx, "export written",
			slog.String("format", string(target.Format)),
			slog.String("path", target.Path),
			slog.Int("rows", report.TotalRows))
		if !opts.asJSON {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", target.Path)
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return renderReport(cmd.OutOrStdout(), report)
}

// resolveSources fills --primary and --secondary from --dir when they are not given
func resolveSources(e *env, opts *reportOptions) error {
	if opts.dir == "" {
		return nil
	}
	discovery := files.NewDiscovery(e.paths.BaseDir, e.logger)
	for _, s := range []struct {
		prefix string
		target *string
	}{
		{"Summary", &opts.primary},
		{"Secondary", &opts.secondary},
	} {
		if *s.target != "" {
			continue
		}
		f, err := discovery.Latest(opts.dir, s.prefix)
		if err != nil {
			return err
		}
		*s.target = f.Path
		e.logger.Info("source discovered",
			slog.String("prefix", s.prefix),
			slog.String("path", f.Path),
			slog.Time("modified", f.ModTime))
	}
	return nil
}

// newReportService builds the same service stack the server uses, without telemetry
func newReportService(e *env) (*services.ReportService, error) {
	cache, err := services.NewSourceCache(e.cfg.Sources.CacheEntries, nil, e.logger)
	if err != nil {
		return nil, err
	}
	pipeline := dataprocessing.NewPipeline(e.logger)
	return services.NewReportService(e.cfg, pipeline, cache, e.logger)
}

// parseFilters turns Field=v1,v2 arguments into filter selections. A field
// given twice accumulates values.
func parseFilters(args []string) (domain.FilterState, error) {
	var state domain.FilterState
	for _, arg := range args {
		field, raw, ok := strings.Cut(arg, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return domain.FilterState{}, fmt.Errorf("invalid --filter %q: want Field=value[,value...]", arg)
		}
		values := slices.Clone(state.Selections[field])
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == len(state.Selections[field]) {
			return domain.FilterState{}, fmt.Errorf("invalid --filter %q: no values", arg)
		}
		state = state.With(field, values...)
	}
	return state, nil
}
