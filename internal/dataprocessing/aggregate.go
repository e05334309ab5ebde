package dataprocessing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "ordersdash/internal/errors"
	"ordersdash/pkg/contracts/domain"
)

// keySeparator cannot occur in an encoded key part
const keySeparator = "\x1f"

// encodeKey builds a type-tagged identity for a key tuple. Missing values
// share one encoding, so rows with missing keys group (and join) together.
func encodeKey(row domain.Row, keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(keySeparator)
		}
		v := row[k]
		switch x := v.(type) {
		case nil:
			b.WriteString("∅")
		case time.Time:
			b.WriteString("d:")
			b.WriteString(x.UTC().Format(time.RFC3339Nano))
		case string:
			if IsMissing(x) {
				b.WriteString("∅")
				continue
			}
			b.WriteString("s:")
			b.WriteString(strings.ReplaceAll(x, keySeparator, " "))
		default:
			if IsMissing(v) {
				b.WriteString("∅")
				continue
			}
			if f, ok := asNumber(v); ok {
				b.WriteString("n:")
				b.WriteString(formatNumber(f))
				continue
			}
			b.WriteString("v:")
			b.WriteString(FormatValue(v))
		}
	}
	return b.String()
}

// NormalizeKeyValue prepares a user-like key value for matching: text is
// trimmed with inner whitespace collapsed, and numbers become their text
// form so 1042.0 on one side matches "1042" on the other. Blank text is missing.
func NormalizeKeyValue(v any) any {
	switch x := v.(type) {
	case nil, time.Time, bool:
		return v
	case string:
		s := collapseSpaces(x)
		if s == "" {
			return nil
		}
		return s
	}
	if f, ok := asNumber(v); ok {
		return formatNumber(f)
	}
	if IsMissing(v) {
		return nil
	}
	return v
}

// isNumericColumn holds when at least one value is present and every
// present value is a number.
func isNumericColumn(t domain.Table, col string) bool {
	seen := false
	for _, row := range t.Rows {
		v := row[col]
		if IsMissing(v) {
			continue
		}
		if _, ok := asNumber(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

type aggregateGroup struct {
	first  int
	sums   map[string]decimal.Decimal
	firsts map[string]any
}

// AggregateSecondary collapses t to one row per distinct key tuple, in order
// of first appearance. Numeric columns are summed exactly; a group with no
// present value sums to 0. Other columns keep the first present value in
// row order.
func AggregateSecondary(t domain.Table, keys []string) (domain.Table, error) {
	var missing []string
	for _, k := range keys {
		if !t.HasColumn(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return domain.Table{}, apperrors.NewMergeKeyError(keys, map[string][]string{domain.SourceSecondary: missing})
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var numeric, other []string
	for _, c := range t.Columns {
		switch {
		case isKey[c]:
		case isNumericColumn(t, c):
			numeric = append(numeric, c)
		default:
			other = append(other, c)
		}
	}

	groups := make(map[string]*aggregateGroup)
	var order []*aggregateGroup
	for i, row := range t.Rows {
		id := encodeKey(row, keys)
		g, ok := groups[id]
		if !ok {
			g = &aggregateGroup{
				first:  i,
				sums:   make(map[string]decimal.Decimal, len(numeric)),
				firsts: make(map[string]any, len(other)),
			}
			groups[id] = g
			order = append(order, g)
		}
		for _, c := range numeric {
			if f, ok := asNumber(row[c]); ok {
				g.sums[c] = g.sums[c].Add(decimal.NewFromFloat(f))
			}
		}
		for _, c := range other {
			if _, done := g.firsts[c]; done {
				continue
			}
			if v := row[c]; !IsMissing(v) {
				g.firsts[c] = v
			}
		}
	}

	out := domain.Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]domain.Row, 0, len(order)),
	}
	for _, g := range order {
		src := t.Rows[g.first]
		row := make(domain.Row, len(t.Columns))
		for _, k := range keys {
			row[k] = src[k]
		}
		for _, c := range numeric {
			f, _ := g.sums[c].Float64()
			row[c] = f
		}
		for _, c := range other {
			row[c] = g.firsts[c]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
