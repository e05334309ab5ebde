package exporter

import (
	"time"
	"unicode/utf8"

	"ordersdash/internal/dataprocessing"
)

const (
	minColumnWidth = 8.0
	maxColumnWidth = 60.0
)

// formatCell renders a value for CSV output. Dates use YYYY-MM-DD, integral
// numbers carry no decimal point, missing values are empty.
func formatCell(v any) string {
	return dataprocessing.FormatValue(v)
}

// sheetValue converts a value for a spreadsheet cell. Numbers and booleans
// stay typed; dates are written as ISO text so they survive any locale.
func sheetValue(v any) any {
	if dataprocessing.IsMissing(v) {
		return nil
	}
	switch x := v.(type) {
	case float64, bool:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case time.Time:
		return dataprocessing.FormatValue(x)
	}
	return formatCell(v)
}

// columnWidth sizes a column to its longest rendered value
func columnWidth(header string, values []string) float64 {
	width := utf8.RuneCountInString(header)
	for _, v := range values {
		if n := utf8.RuneCountInString(v); n > width {
			width = n
		}
	}
	w := float64(width) + 2
	switch {
	case w < minColumnWidth:
		return minColumnWidth
	case w > maxColumnWidth:
		return maxColumnWidth
	}
	return w
}
