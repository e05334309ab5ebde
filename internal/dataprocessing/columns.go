package dataprocessing

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"ordersdash/pkg/contracts/domain"
)

var separatorRun = regexp.MustCompile(`[_\s\p{Z}]+`)

// CanonicalColumnName maps a raw header to its canonical form: NFC-normalized,
// underscore and whitespace runs collapsed to one space, trimmed, then title-cased.
// The function is idempotent.
func CanonicalColumnName(raw string) string {
	s := norm.NFC.String(raw)
	s = separatorRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return titleCase(strings.TrimSpace(s))
}

// titleCase upper-cases every cased letter that follows an uncased character
// and lower-cases the rest, so digits and punctuation start a new word:
// "l4position user" -> "L4Position User", "time(hh:mm)" -> "Time(Hh:Mm)".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && !prevCased:
			b.WriteRune(unicode.ToTitle(r))
		case cased:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}

// NormalizeColumns returns a copy of t with canonical column names. When two
// raw headers share a canonical name the later column's values win, the
// column keeps the position of its first occurrence, and the clash is reported.
func NormalizeColumns(t domain.Table) (domain.Table, []domain.HeaderCollision) {
	canonical := make([]string, len(t.Columns))
	rawByName := make(map[string][]string, len(t.Columns))
	out := domain.Table{Columns: make([]string, 0, len(t.Columns))}

	for i, raw := range t.Columns {
		name := CanonicalColumnName(raw)
		canonical[i] = name
		if _, seen := rawByName[name]; !seen {
			out.Columns = append(out.Columns, name)
		}
		rawByName[name] = append(rawByName[name], raw)
	}

	out.Rows = make([]domain.Row, len(t.Rows))
	for r, row := range t.Rows {
		next := make(domain.Row, len(out.Columns))
		for i, raw := range t.Columns {
			next[canonical[i]] = row[raw]
		}
		out.Rows[r] = next
	}

	var collisions []domain.HeaderCollision
	for _, name := range out.Columns {
		if raws := rawByName[name]; len(raws) > 1 {
			collisions = append(collisions, domain.HeaderCollision{Canonical: name, Raw: raws})
		}
	}
	return out, collisions
}

// lookupKey folds case and drops spaces, underscores and hyphens, so
// "L4Position User", "l4position_user" and "L4-POSITION-USER" share one key.
func lookupKey(name string) string {
	folded := cases.Fold().String(norm.NFC.String(name))
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// ColumnIndex resolves loosely spelled field names to the columns of a table.
// It is built once per table and is safe for concurrent reads.
type ColumnIndex struct {
	byKey map[string]string
}

// NewColumnIndex indexes columns. On key clashes the first column wins.
func NewColumnIndex(columns []string) *ColumnIndex {
	idx := &ColumnIndex{byKey: make(map[string]string, len(columns))}
	for _, c := range columns {
		k := lookupKey(c)
		if _, exists := idx.byKey[k]; !exists {
			idx.byKey[k] = c
		}
	}
	return idx
}

// Resolve returns the column matching name
func (idx *ColumnIndex) Resolve(name string) (string, bool) {
	c, ok := idx.byKey[lookupKey(name)]
	return c, ok
}
