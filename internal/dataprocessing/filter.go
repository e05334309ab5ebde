package dataprocessing

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"ordersdash/pkg/contracts/domain"
)

// FilterOptions lists the distinct values offered for each field, in field
// order. Fields that match no column are returned with Available false.
func FilterOptions(t domain.Table, fields []string) []domain.FilterOption {
	idx := NewColumnIndex(t.Columns)
	options := make([]domain.FilterOption, 0, len(fields))
	for _, field := range fields {
		col, ok := idx.Resolve(field)
		if !ok {
			options = append(options, domain.FilterOption{Field: field})
			continue
		}
		options = append(options, domain.FilterOption{
			Field:     field,
			Column:    col,
			Available: true,
			Values:    distinctValues(t, col),
		})
	}
	return options
}

// distinctValues returns the display forms of the non-missing values of col
// ordered by value: numbers numerically, dates chronologically, text lexically.
func distinctValues(t domain.Table, col string) []string {
	seen := make(map[string]bool)
	var values []any
	for _, row := range t.Rows {
		v := row[col]
		if IsMissing(v) {
			continue
		}
		s := FormatValue(v)
		if seen[s] {
			continue
		}
		seen[s] = true
		values = append(values, v)
	}
	slices.SortStableFunc(values, compareCells)

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatValue(v)
	}
	return out
}

// compareCells orders numbers before dates before text
func compareCells(a, b any) int {
	ra, rb := cellRank(a), cellRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 0:
		fa, _ := asNumber(a)
		fb, _ := asNumber(b)
		return cmp.Compare(fa, fb)
	case 1:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

func cellRank(v any) int {
	if _, ok := asNumber(v); ok {
		return 0
	}
	if _, ok := v.(time.Time); ok {
		return 1
	}
	return 2
}

// ApplyFilters keeps the rows matching every non-empty selection of state.
// Selection fields are resolved through the column index. The returned state
// is keyed by resolved column name and lists the fields that matched no column.
func ApplyFilters(t domain.Table, state domain.FilterState) (domain.Table, domain.FilterState) {
	idx := NewColumnIndex(t.Columns)
	effective := domain.FilterState{Columns: slices.Clone(state.Columns)}

	fields := make([]string, 0, len(state.Selections))
	for field := range state.Selections {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	type selection struct {
		column string
		values map[string]bool
	}
	var active []selection
	for _, field := range fields {
		values := cleanSelection(state.Selections[field])
		if len(values) == 0 {
			continue
		}
		col, ok := idx.Resolve(field)
		if !ok {
			effective.Unresolved = append(effective.Unresolved, field)
			continue
		}
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v] = true
		}
		active = append(active, selection{column: col, values: set})
		if effective.Selections == nil {
			effective.Selections = make(map[string][]string)
		}
		effective.Selections[col] = append(effective.Selections[col], values...)
	}

	out := domain.Table{Columns: slices.Clone(t.Columns), Rows: make([]domain.Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		keep := true
		for _, sel := range active {
			if !sel.values[FormatValue(row[sel.column])] {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, effective
}

func cleanSelection(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// SelectColumns projects t onto the columns of order that t has, in that
// order. A non-empty visible list restricts the result further; its names
// are resolved through the column index. A nil order keeps t's own order.
func SelectColumns(t domain.Table, order, visible []string) domain.Table {
	if order == nil {
		order = t.Columns
	}
	var columns []string
	for _, c := range order {
		if t.HasColumn(c) && !slices.Contains(columns, c) {
			columns = append(columns, c)
		}
	}

	if len(visible) > 0 {
		idx := NewColumnIndex(columns)
		wanted := make(map[string]bool, len(visible))
		for _, v := range visible {
			if c, ok := idx.Resolve(v); ok {
				wanted[c] = true
			}
		}
		columns = slices.DeleteFunc(columns, func(c string) bool { return !wanted[c] })
	}

	out := domain.Table{Columns: columns, Rows: make([]domain.Row, len(t.Rows))}
	for i, row := range t.Rows {
		next := make(domain.Row, len(columns))
		for _, c := range columns {
			next[c] = row[c]
		}
		out.Rows[i] = next
	}
	return out
}

// DisplayRows converts at most limit rows into JSON-ready maps.
// A limit of zero or less returns every row.
func DisplayRows(t domain.Table, limit int) []map[string]any {
	head := t
	if limit > 0 {
		head = t.Head(limit)
	}
	out := make([]map[string]any, len(head.Rows))
	for i, row := range head.Rows {
		m := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			m[c] = JSONValue(row[c])
		}
		out[i] = m
	}
	return out
}
