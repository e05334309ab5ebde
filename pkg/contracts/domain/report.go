package domain

import (
	"maps"
	"slices"
	"time"
)

// FilterState holds the active field selections and visible columns.
// The zero value means "no filters, all columns".
type FilterState struct {
	Selections map[string][]string `json:"selections,omitempty"`
	Columns    []string            `json:"columns,omitempty"`
	// Unresolved lists selection fields that matched no column
	Unresolved []string `json:"unresolved,omitempty"`
}

// With returns a copy of s with field restricted to values.
// Empty values clear the field.
func (s FilterState) With(field string, values ...string) FilterState {
	out := FilterState{
		Selections: maps.Clone(s.Selections),
		Columns:    slices.Clone(s.Columns),
	}
	if out.Selections == nil {
		out.Selections = map[string][]string{}
	}
	if len(values) == 0 {
		delete(out.Selections, field)
	} else {
		out.Selections[field] = slices.Clone(values)
	}
	return out
}

// IsEmpty reports whether no selection and no column restriction is active
func (s FilterState) IsEmpty() bool {
	for _, v := range s.Selections {
		if len(v) > 0 {
			return false
		}
	}
	return len(s.Columns) == 0
}

// FilterOption lists the selectable values of one filter field
type FilterOption struct {
	Field     string   `json:"field"`
	Column    string   `json:"column,omitempty"`
	Available bool     `json:"available"`
	Values    []string `json:"values,omitempty"`
}

// KPIs are the headline figures of a filtered table
type KPIs struct {
	Rows        int `json:"rows"`
	UniqueUsers int `json:"unique_users"`
	Outlets     int `json:"outlets"`
	Territories int `json:"territories"`
}

// ReportRequest describes one report or export
type ReportRequest struct {
	JoinKeys []string            `json:"join_keys,omitempty" validate:"omitempty,max=4,dive,required"`
	JoinMode string              `json:"join_mode,omitempty" validate:"omitempty,oneof=left outer"`
	Filters  map[string][]string `json:"filters,omitempty"`
	Columns  []string            `json:"columns,omitempty"`
	Limit    int                 `json:"limit,omitempty" validate:"gte=0,lte=100000"`
}

// FilterState converts the request filters into a FilterState.
// Fields with no values are dropped.
func (r ReportRequest) FilterState() FilterState {
	state := FilterState{Columns: slices.Clone(r.Columns)}
	for _, field := range slices.Sorted(maps.Keys(r.Filters)) {
		state = state.With(field, r.Filters[field]...)
	}
	return state
}

// Report is the response of a report request
type Report struct {
	DatasetID     string           `json:"dataset_id"`
	Columns       []string         `json:"columns"`
	Rows          []map[string]any `json:"rows"`
	TotalRows     int              `json:"total_rows"`
	KPIs          KPIs             `json:"kpis"`
	Diagnostics   Diagnostics      `json:"diagnostics"`
	FilterOptions []FilterOption   `json:"filter_options"`
	FilterState   FilterState      `json:"filter_state"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// ExportFormat names a downloadable format
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// Valid reports whether the format is supported
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatXLSX
}

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	if f == ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
