package testutil

import (
	"fmt"
	"time"

	"ordersdash/pkg/contracts/domain"
)

// Date returns the canonical date value for y-m-d
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TableFromRecords builds a table from a header and positional records.
// Records shorter than the header leave the remaining cells missing.
func TableFromRecords(header []string, records ...[]any) domain.Table {
	t := domain.NewTable(header...)
	for _, rec := range records {
		row := make(domain.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = nil
			}
		}
		t.Append(row)
	}
	return t
}

// SummaryTable returns a small primary source with raw, unnormalized headers
func SummaryTable() domain.Table {
	return TableFromRecords(
		[]string{"order_date", "REGION", "territory", "l4position_user", "user", "TC", "first call", "last call"},
		[]any{"01-09-2025", "North", "T1", "Lead A", "U1", 10.0, "09:00", "17:45"},
		[]any{"2025-09-01", "North", "T1", "Lead A", "U2", 7.0, "10:15", "12:00"},
		[]any{"02-Sep-2025", "South", "T2", "Lead B", "U1", 3.0, "09:00", "08:30"},
		[]any{45901.0, "South", "T3", "Lead B", "U3", 1.0, nil, "11:00"},
	)
}

// SecondaryTable returns order lines that aggregate onto SummaryTable
func SecondaryTable() domain.Table {
	return TableFromRecords(
		[]string{"User", "Order Date", "Outlet Name", "Region", "Ghee", "Smp"},
		[]any{"U1", "2025-09-01", "Outlet 1", nil, 2.0, 1.5},
		[]any{"U1", "01/09/2025", "Outlet 2", "North-East", 3.0, 0.5},
		[]any{"U2", "2025-09-01", "Outlet 3", "North", 1.0, nil},
		[]any{"U9", "2025-09-05", "Outlet 9", "West", 4.0, 4.0},
	)
}

// GeneratedTables builds a primary table with primaryRows rows spread over users
// and a secondary table with secondaryRows order lines over the first groups
// distinct (user, date) pairs of the primary table.
func GeneratedTables(primaryRows, secondaryRows, groups int) (domain.Table, domain.Table) {
	base := Date(2025, time.September, 1)
	primary := domain.NewTable("User", "Order Date", "Region", "Tc")
	for i := 0; i < primaryRows; i++ {
		primary.Append(domain.Row{
			"User":       fmt.Sprintf("U%03d", i),
			"Order Date": base.AddDate(0, 0, i%7).Format("2006-01-02"),
			"Region":     "North",
			"Tc":         float64(i),
		})
	}

	secondary := domain.NewTable("User", "Order Date", "Ghee", "Outlet Name")
	for i := 0; i < secondaryRows; i++ {
		g := i % groups
		secondary.Append(domain.Row{
			"User":        fmt.Sprintf("U%03d", g),
			"Order Date":  base.AddDate(0, 0, g%7).Format("02-01-2006"),
			"Ghee":        1.0,
			"Outlet Name": fmt.Sprintf("Outlet %d", i),
		})
	}
	return primary, secondary
}
