package domain

import (
	"slices"
)

// Row maps a column name to a cell value. A nil or absent entry is a missing value.
// Values are nil, string, float64, bool or time.Time.
type Row map[string]any

// Table is an ordered set of rows sharing one ordered list of columns.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...string) Table {
	return Table{
		Columns: slices.Clone(columns),
		Rows:    []Row{},
	}
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns
func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// ColumnValues returns the values of one column in row order.
// It returns nil when the column does not exist.
func (t Table) ColumnValues(name string) []any {
	if !t.HasColumn(name) {
		return nil
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// Append adds a row to the table
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// AddColumn appends a column name if it is not already present
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Head returns a table holding at most n leading rows. Rows are shared with t.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		n = len(t.Rows)
	}
	return Table{
		Columns: slices.Clone(t.Columns),
		Rows:    t.Rows[:n],
	}
}
