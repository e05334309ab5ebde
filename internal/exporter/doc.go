// Package exporter writes canonical tables as CSV and as spreadsheet workbooks.
//
// WriteCSV produces UTF-8 CSV with an optional byte order mark for Excel.
// WriteXLSX streams a single sheet through excelize with a bold header row.
// Exporter dispatches on domain.ExportFormat and logs each export:
//
//	exp := exporter.New(logger, exporter.DefaultOptions())
//	if err := exp.ExportFile("out/filtered_export.xlsx", domain.ExportFormatXLSX, table); err != nil {
//	    return err
//	}
//
// Both formats are lossless for the canonical table: every row and column
// is written, dates as YYYY-MM-DD.
package exporter
