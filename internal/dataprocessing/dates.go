package dataprocessing

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Spreadsheet serial dates count days from this epoch (the 1900 date system
// with its leap-year quirk folded in).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31
const maxSerial = 2958465

// DateStrategy recognizes one textual date format
type DateStrategy interface {
	Name() string
	TryParse(text string) (time.Time, bool)
}

type layoutStrategy struct {
	name   string
	layout string
}

func (s layoutStrategy) Name() string { return s.name }

func (s layoutStrategy) TryParse(text string) (time.Time, bool) {
	t, err := time.Parse(s.layout, text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LayoutStrategy builds a strategy from a time.Parse layout
func LayoutStrategy(name, layout string) DateStrategy {
	return layoutStrategy{name: name, layout: layout}
}

// DefaultDateStrategies returns the explicit formats in precedence order.
// Day-first formats are tried before month-first ones, so 01/02/2025 is 1 February.
func DefaultDateStrategies() []DateStrategy {
	return []DateStrategy{
		LayoutStrategy("YYYY-MM-DD", "2006-1-2"),
		LayoutStrategy("DD-MM-YYYY", "2-1-2006"),
		LayoutStrategy("DD/MM/YYYY", "2/1/2006"),
		LayoutStrategy("YYYY/MM/DD", "2006/1/2"),
		LayoutStrategy("DD-Mon-YYYY", "2-Jan-2006"),
		LayoutStrategy("DD Mon YYYY", "2 Jan 2006"),
		LayoutStrategy("MM/DD/YYYY", "1/2/2006"),
		LayoutStrategy("DD.MM.YYYY", "2.1.2006"),
		LayoutStrategy("DD-MM-YY", "2-1-06"),
		LayoutStrategy("DD/MM/YY", "2/1/06"),
		LayoutStrategy("YYYY-MM-DD HH:MM:SS", "2006-1-2 15:04:05"),
	}
}

var dashVariants = strings.NewReplacer(
	"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-",
	"\u2014", "-", "\u2015", "-", "\u2212", "-", "\ufe58", "-",
	"\ufe63", "-", "\uff0d", "-",
)

// normalizeDateText trims, collapses whitespace and unifies dash characters
func normalizeDateText(s string) string {
	return collapseSpaces(dashVariants.Replace(s))
}

// DateParser converts heterogeneous date cells into canonical dates.
// A value is tried against the explicit strategies, then as a spreadsheet
// serial number, then with a best-effort generic parser. It never fails:
// unrecognized values are reported as not ok.
type DateParser struct {
	strategies []DateStrategy
	fallback   func(text string) (time.Time, error)
}

// NewDateParser builds a parser; with no strategies the defaults are used
func NewDateParser(strategies ...DateStrategy) *DateParser {
	if len(strategies) == 0 {
		strategies = DefaultDateStrategies()
	}
	return &DateParser{strategies: strategies, fallback: parseAnyUTC}
}

var defaultDateParser = NewDateParser()

// Parse returns the UTC-midnight date represented by v
func (p *DateParser) Parse(v any) (time.Time, bool) {
	if IsMissing(v) {
		return time.Time{}, false
	}

	var text string
	switch x := v.(type) {
	case time.Time:
		return truncateToDate(x), true
	case string:
		text = normalizeDateText(x)
	default:
		f, ok := asNumber(v)
		if !ok {
			return time.Time{}, false
		}
		text = formatNumber(f)
	}

	for _, s := range p.strategies {
		if t, ok := s.TryParse(text); ok {
			return truncateToDate(t), true
		}
	}

	if f, ok := parseNumber(text); ok {
		if t, ok := serialToDate(f); ok {
			return t, true
		}
	}

	if t, ok := safeParse(p.fallback, text); ok {
		return truncateToDate(t), true
	}
	return time.Time{}, false
}

// serialToDate interprets f as days since the spreadsheet epoch, so 0 is
// 1899-12-30. The fractional time of day is dropped. Negative days and days
// past 9999-12-31 are not serials.
func serialToDate(f float64) (time.Time, bool) {
	days := math.Floor(f)
	if days < 0 || days > maxSerial {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(days)), true
}

func parseAnyUTC(text string) (time.Time, error) {
	return dateparse.ParseIn(text, time.UTC)
}

// genericParse is the last resort for dates and clock times
func genericParse(text string) (time.Time, bool) {
	return safeParse(parseAnyUTC, text)
}

// safeParse runs parse and treats a panic as a failed parse. dateparse has
// panicked on malformed input in past releases.
func safeParse(parse func(string) (time.Time, error), text string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := parse(text)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateColumnResult is the outcome of parsing one column
type DateColumnResult struct {
	Values []any
	// Parsed counts recognized values, Missing non-blank values that could
	// not be parsed, Blank absent inputs.
	Parsed  int
	Missing int
	Blank   int
}

// ParseColumn parses every value of a column
func (p *DateParser) ParseColumn(values []any) DateColumnResult {
	res := DateColumnResult{Values: make([]any, len(values))}
	for i, v := range values {
		if IsMissing(v) {
			res.Blank++
			continue
		}
		if t, ok := p.Parse(v); ok {
			res.Values[i] = t
			res.Parsed++
		} else {
			res.Missing++
		}
	}
	return res
}

// ParseDateColumn parses values with the default strategies
func ParseDateColumn(values []any) DateColumnResult {
	return defaultDateParser.ParseColumn(values)
}
