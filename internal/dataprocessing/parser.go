package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "ordersdash/internal/errors"
	"ordersdash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions selects what to read from a source file
type LoadOptions struct {
	// Sheet names the worksheet of a workbook. Empty means the first sheet.
	Sheet string
}

// LoadFile reads a workbook (.xlsx, .xlsm) or a .csv file into a raw table
func LoadFile(path string, opts LoadOptions) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Table{}, apperrors.NewNotFoundError("source file " + path)
		}
		return domain.Table{}, apperrors.NewParsingError("failed to open source", err).
			WithContext("path", path)
	}
	defer f.Close()

	t, err := LoadReader(filepath.Base(path), f, opts)
	if err != nil {
		return domain.Table{}, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// LoadReader reads a source from r. The format is chosen by the extension of name.
func LoadReader(name string, r io.Reader, opts LoadOptions) (domain.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return loadWorkbook(r, opts.Sheet)
	case ".csv":
		return loadCSV(r)
	default:
		return domain.Table{}, apperrors.NewAppValidationError(fmt.Sprintf("unsupported source format %q", ext)).
			WithContext("name", name)
	}
}

func loadWorkbook(r io.Reader, sheet string) (domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Table{}, apperrors.NewParsingError("workbook has no sheets", nil)
	}
	if sheet == "" {
		sheet = sheets[0]
	}

	// Raw values keep dates and times as spreadsheet serial numbers
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError("failed to read sheet", err).
			WithContext("sheet", sheet)
	}
	return buildTable(rows), nil
}

func loadCSV(r io.Reader) (domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError("failed to read csv", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError("failed to parse csv", err)
	}
	return buildTable(records), nil
}

// buildTable treats the first row holding a non-blank cell as the header.
// Short rows are padded with missing values, long rows truncated, and fully
// blank rows after the header skipped.
func buildTable(records [][]string) domain.Table {
	start := -1
	for i, rec := range records {
		if !blankRecord(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return domain.NewTable()
	}

	header := headerNames(records[start])
	t := domain.NewTable(header...)
	for _, rec := range records[start+1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(domain.Row, len(header))
		for i, col := range header {
			var cell string
			if i < len(rec) {
				cell = rec[i]
			}
			row[col] = inferCell(cell)
		}
		t.Append(row)
	}
	return t
}

// headerNames fills blank headers with "Unnamed: N" and renames repeats to
// "X.1", "X.2" so every raw column survives loading.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// inferCell maps blank text to nil and numeric text to float64
func inferCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, ok := parseNumber(s); ok {
		return f
	}
	return s
}
