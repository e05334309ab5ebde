package dataprocessing

import (
	"ordersdash/pkg/contracts/domain"
)

const (
	UserColumn      = "User"
	OrderDateColumn = "Order Date"
	OutletColumn    = "Outlet Name"
	TerritoryColumn = "Territory"
	RegionColumn    = "Region"
)

// FieldKind decides the placeholder of a synthesized field
type FieldKind string

const (
	KindNumber FieldKind = "number"
	KindText   FieldKind = "text"
	KindDate   FieldKind = "date"
	KindTime   FieldKind = "time"
)

// FieldSpec declares a column every canonical table carries. Missing columns
// are added with Default, or with the zero value of Kind when Default is nil:
// 0 for numbers, missing for text, dates and times.
type FieldSpec struct {
	Name    string
	Kind    FieldKind
	Default any
}

// Placeholder returns the value used to fill a synthesized column
func (f FieldSpec) Placeholder() any {
	if f.Default != nil {
		return f.Default
	}
	if f.Kind == KindNumber {
		return 0.0
	}
	return nil
}

// DefaultFieldSpecs lists the call metrics and product volumes expected in
// every report. The span column is not declared: the pipeline always
// computes it after the join.
func DefaultFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{Name: "Tc", Kind: KindNumber},
		{Name: "Pc", Kind: KindNumber},
		{Name: "Ovc", Kind: KindNumber},
		{Name: FirstCallColumn, Kind: KindTime},
		{Name: LastCallColumn, Kind: KindTime},
		{Name: "Ghee", Kind: KindNumber},
		{Name: "Dw Primary Packs", Kind: KindNumber},
		{Name: "Dw Consu", Kind: KindNumber},
		{Name: "Dw Bulk", Kind: KindNumber},
		{Name: "36 No", Kind: KindNumber},
		{Name: "Smp", Kind: KindNumber},
		{Name: "Gjm", Kind: KindNumber},
		{Name: "Cream", Kind: KindNumber},
		{Name: "Uht Milk", Kind: KindNumber},
		{Name: "Flavored Milk", Kind: KindNumber},
	}
}

// DefaultJoinKeys is used when the secondary source has an order date
func DefaultJoinKeys() []string {
	return []string{UserColumn, OrderDateColumn}
}

// FilterFields are the fields offered for filtering, in display order
func FilterFields() []string {
	return []string{
		OrderDateColumn,
		RegionColumn,
		TerritoryColumn,
		"L4Position User",
		"L3Position User",
		"L2Position User",
		"Reporting Manager",
		"Primary Category",
		UserColumn,
	}
}

// FinalColumnOrder is the locked layout of report and export columns
func FinalColumnOrder() []string {
	return []string{
		OrderDateColumn, RegionColumn, TerritoryColumn,
		"L4Position User", "L3Position User", "L2Position User",
		"Reporting Manager", "Primary Category",
		"Distributor", "Beat", OutletColumn, "Address", "Market", "Product",
		UserColumn,
		"Tc", "Pc", "Ovc",
		FirstCallColumn, LastCallColumn, SpanColumn,
		"Ghee", "Dw Primary Packs", "Dw Consu", "Dw Bulk", "36 No",
		"Smp", "Gjm", "Cream", "Uht Milk", "Flavored Milk",
	}
}

// SynthesizeFields appends every declared field missing from t and returns
// the names it added. Rows of t are modified in place.
func SynthesizeFields(t *domain.Table, fields []FieldSpec) []string {
	var added []string
	for _, f := range fields {
		if f.Name == "" || t.HasColumn(f.Name) {
			continue
		}
		t.AddColumn(f.Name)
		value := f.Placeholder()
		for _, row := range t.Rows {
			row[f.Name] = value
		}
		added = append(added, f.Name)
	}
	return added
}
