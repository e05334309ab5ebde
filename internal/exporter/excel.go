package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ordersdash/pkg/contracts/domain"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes t as a single-sheet workbook: a bold header row, one row
// per table row, columns sized to their content.
func WriteXLSX(w io.Writer, t domain.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	// widths must be set before the first row is streamed
	for i, col := range t.Columns {
		rendered := make([]string, len(t.Rows))
		for r, row := range t.Rows {
			rendered[r] = formatCell(row[col])
		}
		if err := sw.SetColWidth(i+1, i+1, columnWidth(col, rendered)); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: col}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for r, row := range t.Rows {
		values := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			values[i] = sheetValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
