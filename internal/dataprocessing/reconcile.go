package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "ordersdash/internal/errors"
	"ordersdash/pkg/contracts/domain"
)

// JoinMode selects which unmatched rows survive the join
type JoinMode string

const (
	// JoinLeft keeps every primary row and only those
	JoinLeft JoinMode = "left"
	// JoinOuter also appends secondary groups without a primary match
	JoinOuter JoinMode = "outer"
)

// ParseJoinMode maps "", "left" and "outer" to a JoinMode
func ParseJoinMode(s string) (JoinMode, error) {
	switch JoinMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", JoinLeft:
		return JoinLeft, nil
	case JoinOuter:
		return JoinOuter, nil
	}
	return "", fmt.Errorf("unknown join mode %q", s)
}

const (
	DefaultPrimarySuffix   = "_Sum"
	DefaultSecondarySuffix = "_Sec"

	maxUnmatchedSamples = 20
)

// ReconcileOptions configures Reconcile
type ReconcileOptions struct {
	Mode            JoinMode
	PrimarySuffix   string
	SecondarySuffix string
	Fields          []FieldSpec
}

func (o ReconcileOptions) withDefaults() ReconcileOptions {
	if o.Mode == "" {
		o.Mode = JoinLeft
	}
	if o.PrimarySuffix == "" {
		o.PrimarySuffix = DefaultPrimarySuffix
	}
	if o.SecondarySuffix == "" {
		o.SecondarySuffix = DefaultSecondarySuffix
	}
	return o
}

// ReconcileResult is the joined table plus what happened on the way
type ReconcileResult struct {
	Table              domain.Table
	Matched            int
	UnmatchedPrimary   int
	UnmatchedSecondary int
	UnmatchedSamples   []string
	Unified            []string
	Synthesized        []string
}

// ValidateJoinKeys returns a MergeKeyError naming every key absent from
// either table, or nil.
func ValidateJoinKeys(primary, secondary domain.Table, keys []string) error {
	missing := map[string][]string{}
	for _, k := range keys {
		if !primary.HasColumn(k) {
			missing[domain.SourcePrimary] = append(missing[domain.SourcePrimary], k)
		}
		if !secondary.HasColumn(k) {
			missing[domain.SourceSecondary] = append(missing[domain.SourceSecondary], k)
		}
	}
	if err := apperrors.NewMergeKeyError(keys, missing); err != nil {
		return err
	}
	return nil
}

// Reconcile joins primary with the aggregated secondary table on keys,
// collapses suffixed column pairs and adds the declared fields.
// Neither input is modified.
func Reconcile(primary, aggregated domain.Table, keys []string, opts ReconcileOptions) (*ReconcileResult, error) {
	opts = opts.withDefaults()
	if len(keys) == 0 {
		return nil, fmt.Errorf("reconcile: no join keys")
	}
	if err := ValidateJoinKeys(primary, aggregated, keys); err != nil {
		return nil, err
	}

	res := joinTables(primary, aggregated, keys, opts)
	res.Unified = UnifySuffixedColumns(&res.Table, opts.PrimarySuffix, opts.SecondarySuffix)
	res.Synthesized = SynthesizeFields(&res.Table, opts.Fields)
	return res, nil
}

// joinTables lays out keys, then primary columns, then secondary-only
// columns. Non-key columns present on both sides get the side's suffix.
func joinTables(primary, secondary domain.Table, keys []string, opts ReconcileOptions) *ReconcileResult {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	inPrimary := make(map[string]bool, len(primary.Columns))
	for _, c := range primary.Columns {
		inPrimary[c] = true
	}
	overlap := make(map[string]bool)
	for _, c := range secondary.Columns {
		if !isKey[c] && inPrimary[c] {
			overlap[c] = true
		}
	}

	primaryName := func(c string) string {
		if overlap[c] {
			return c + opts.PrimarySuffix
		}
		return c
	}
	secondaryName := func(c string) string {
		if overlap[c] {
			return c + opts.SecondarySuffix
		}
		return c
	}

	var primaryCols, secondaryCols []string
	for _, c := range primary.Columns {
		if !isKey[c] {
			primaryCols = append(primaryCols, c)
		}
	}
	for _, c := range secondary.Columns {
		if !isKey[c] {
			secondaryCols = append(secondaryCols, c)
		}
	}

	columns := append([]string(nil), keys...)
	for _, c := range primaryCols {
		columns = append(columns, primaryName(c))
	}
	for _, c := range secondaryCols {
		columns = append(columns, secondaryName(c))
	}

	index := make(map[string]int, len(secondary.Rows))
	for i, row := range secondary.Rows {
		id := encodeKey(row, keys)
		if _, dup := index[id]; !dup {
			index[id] = i
		}
	}

	res := &ReconcileResult{Table: domain.Table{Columns: columns}}
	res.Table.Rows = make([]domain.Row, 0, len(primary.Rows))
	used := make([]bool, len(secondary.Rows))

	for _, prow := range primary.Rows {
		row := make(domain.Row, len(columns))
		for _, k := range keys {
			row[k] = prow[k]
		}
		for _, c := range primaryCols {
			row[primaryName(c)] = prow[c]
		}

		id := encodeKey(prow, keys)
		if si, ok := index[id]; ok {
			srow := secondary.Rows[si]
			for _, c := range secondaryCols {
				row[secondaryName(c)] = srow[c]
			}
			used[si] = true
			res.Matched++
		} else {
			for _, c := range secondaryCols {
				row[secondaryName(c)] = nil
			}
			res.UnmatchedPrimary++
			if len(res.UnmatchedSamples) < maxUnmatchedSamples {
				res.UnmatchedSamples = append(res.UnmatchedSamples, describeKey(prow, keys))
			}
		}
		res.Table.Rows = append(res.Table.Rows, row)
	}

	for si, srow := range secondary.Rows {
		if used[si] {
			continue
		}
		res.UnmatchedSecondary++
		if opts.Mode != JoinOuter {
			continue
		}
		row := make(domain.Row, len(columns))
		for _, k := range keys {
			row[k] = srow[k]
		}
		for _, c := range primaryCols {
			row[primaryName(c)] = nil
		}
		for _, c := range secondaryCols {
			row[secondaryName(c)] = srow[c]
		}
		res.Table.Rows = append(res.Table.Rows, row)
	}
	return res
}

// UnifySuffixedColumns replaces every <name><primarySuffix> / <name><secondarySuffix>
// pair with <name>: the primary value, or the secondary value where the
// primary one is missing. The unified column takes the primary column's
// position. It returns the unified names.
func UnifySuffixedColumns(t *domain.Table, primarySuffix, secondarySuffix string) []string {
	var unified []string
	drop := make(map[string]bool)
	rename := make(map[string]string)

	for _, c := range t.Columns {
		if !strings.HasSuffix(c, primarySuffix) {
			continue
		}
		base := strings.TrimSuffix(c, primarySuffix)
		sec := base + secondarySuffix
		if base == "" || !t.HasColumn(sec) {
			continue
		}
		for _, row := range t.Rows {
			v := row[c]
			if IsMissing(v) {
				v = row[sec]
			}
			delete(row, c)
			delete(row, sec)
			row[base] = v
		}
		rename[c] = base
		drop[sec] = true
		unified = append(unified, base)
	}
	if len(unified) == 0 {
		return nil
	}

	columns := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		switch {
		case drop[c]:
		case rename[c] != "":
			columns = append(columns, rename[c])
		default:
			columns = append(columns, c)
		}
	}
	t.Columns = columns
	return unified
}

func describeKey(row domain.Row, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, FormatValue(row[k]))
	}
	return strings.Join(parts, ", ")
}
