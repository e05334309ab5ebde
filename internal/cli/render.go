package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ordersdash/internal/dataprocessing"
	"ordersdash/pkg/contracts/domain"
)

// renderReport prints the preview rows, the KPIs and a diagnostics summary
func renderReport(w io.Writer, r *domain.Report) error {
	renderRows(w, r)
	_, _ = fmt.Fprintln(w)
	renderKPIs(w, r.KPIs)
	_, _ = fmt.Fprintln(w)
	renderDiagnostics(w, r.Diagnostics, r.FilterState)
	return nil
}

func renderRows(w io.Writer, r *domain.Report) {
	if len(r.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(r.Columns))
	for i, col := range r.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range r.Rows {
		out := make(table.Row, len(r.Columns))
		for i, col := range r.Columns {
			out[i] = dataprocessing.FormatValue(row[col])
		}
		t.AppendRow(out)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(r.Rows), r.TotalRows)
}

func renderKPIs(w io.Writer, k domain.KPIs) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("KPIs")
	t.AppendHeader(table.Row{"Rows", "Unique Users", "Outlets", "Territories"})
	t.AppendRow(table.Row{k.Rows, k.UniqueUsers, k.Outlets, k.Territories})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

func renderDiagnostics(w io.Writer, d domain.Diagnostics, state domain.FilterState) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Diagnostics")
	t.AppendRows([]table.Row{
		{"join keys", strings.Join(d.JoinKeys, " + ")},
		{"join mode", d.JoinMode},
		{"primary rows", d.PrimaryRows},
		{"secondary rows", fmt.Sprintf("%d (%d groups)", d.SecondaryRows, d.AggregatedSecondaryRows)},
		{"joined rows", d.JoinedRows},
		{"matched", d.MatchedRows},
		{"unmatched primary", d.UnmatchedPrimaryRows},
		{"unmatched secondary groups", d.UnmatchedSecondaryGroups},
		{"date parse failures", d.ParseFailures()},
		{"spans computed / clamped / defaulted", fmt.Sprintf("%d / %d / %d", d.Span.Computed, d.Span.Clamped, d.Span.Defaulted)},
	})
	for _, a := range d.KeyAnomalies {
		t.AppendRow(table.Row{fmt.Sprintf("missing %s (%s)", a.Key, a.Source), a.MissingValues})
	}
	for _, c := range d.HeaderCollisions {
		t.AppendRow(table.Row{fmt.Sprintf("header collision (%s)", c.Source), fmt.Sprintf("%s <- %s", c.Canonical, strings.Join(c.Raw, ", "))})
	}
	if len(d.UnmatchedKeySamples) > 0 {
		t.AppendRow(table.Row{"unmatched samples", strings.Join(d.UnmatchedKeySamples, "; ")})
	}
	if len(state.Unresolved) > 0 {
		t.AppendRow(table.Row{"filters without a column", strings.Join(state.Unresolved, ", ")})
	}
	t.Render()
}
