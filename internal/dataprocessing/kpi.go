package dataprocessing

import (
	"ordersdash/pkg/contracts/domain"
)

// ComputeKPIs counts rows and the distinct non-missing users, outlets and
// territories of t. Absent columns count zero.
func ComputeKPIs(t domain.Table) domain.KPIs {
	return domain.KPIs{
		Rows:        t.Len(),
		UniqueUsers: countDistinct(t, UserColumn),
		Outlets:     countDistinct(t, OutletColumn),
		Territories: countDistinct(t, TerritoryColumn),
	}
}

func countDistinct(t domain.Table, col string) int {
	if !t.HasColumn(col) {
		return 0
	}
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		if v := row[col]; !IsMissing(v) {
			seen[FormatValue(v)] = struct{}{}
		}
	}
	return len(seen)
}
