// Package dataprocessing reconciles the Summary (primary) and Secondary order
// sources into one canonical table.
//
// # Architecture
//
// A run moves through these stages, each its own file:
//
//  1. Loader (parser.go): reads .xlsx and .csv sources into raw tables
//  2. Column normalizer (columns.go): canonical header names and a lookup index
//  3. Date parser (dates.go): ordered layout strategies, spreadsheet serials,
//     a best-effort fallback
//  4. Secondary aggregator (aggregate.go): one row per join key tuple
//  5. Reconciler (reconcile.go): left or outer join, suffix unification and
//     field synthesis
//  6. Time-span calculator (timespan.go): First Call to Last Call as HH:MM
//
// Pipeline (pipeline.go) wires the stages together and fills
// domain.Diagnostics. Filtering, column selection and KPIs (filter.go, kpi.go)
// work on the canonical table afterwards.
//
// # Usage
//
//	primary, err := dataprocessing.LoadFile("Summary.xlsx", dataprocessing.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	secondary, err := dataprocessing.LoadFile("Secondary.xlsx", dataprocessing.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//
//	p := dataprocessing.NewPipeline(logger)
//	res, err := p.Run(ctx, primary, secondary, dataprocessing.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
//	filtered, state := dataprocessing.ApplyFilters(res.Table, domain.FilterState{}.With("Region", "North"))
//	view := dataprocessing.SelectColumns(filtered, dataprocessing.FinalColumnOrder(), state.Columns)
//
// Unparseable dates never fail a run. They become missing values and are
// counted in the diagnostics. Missing join key columns fail with
// errors.MergeKeyError, two empty sources with errors.EmptyInputError.
package dataprocessing
