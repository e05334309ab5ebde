package dataprocessing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ordersdash/pkg/contracts/domain"
)

const (
	FirstCallColumn = "First Call"
	LastCallColumn  = "Last Call"
	SpanColumn      = "Total Retail Time(Hh:Mm)"

	zeroSpan = "00:00"
)

// clock layouts tried by the generic pass, after upper-casing the text
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"15:04:05.999999999",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"3:04:05PM",
}

type clockValue struct {
	t        time.Time
	timeOnly bool
	ok       bool
}

// secondsOfDay ignores the date part
func (c clockValue) secondsOfDay() int {
	return c.t.Hour()*3600 + c.t.Minute()*60 + c.t.Second()
}

// SpanResult holds one HH:MM value per row
type SpanResult struct {
	Values    []string
	Computed  int
	Clamped   int
	Defaulted int
}

// ComputeSpans derives the elapsed time from first to last for rows rows.
// A nil first or last means the column is absent and every span is "00:00".
func ComputeSpans(rows int, first, last []any) SpanResult {
	res := SpanResult{Values: make([]string, rows)}
	if first == nil || last == nil {
		for i := range res.Values {
			res.Values[i] = zeroSpan
		}
		res.Defaulted = rows
		return res
	}

	fc := parseClockColumn(first)
	lc := parseClockColumn(last)
	for i := 0; i < rows; i++ {
		if i >= len(fc) || i >= len(lc) || !fc[i].ok || !lc[i].ok {
			res.Values[i] = zeroSpan
			res.Defaulted++
			continue
		}
		minutes := spanMinutes(fc[i], lc[i])
		if minutes <= 0 {
			if minutes < 0 {
				res.Clamped++
			}
			minutes = 0
		}
		res.Values[i] = FormatSpan(minutes)
		res.Computed++
	}
	return res
}

// FormatSpan renders minutes as HH:MM. Hours are not capped at 24.
func FormatSpan(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// spanMinutes truncates to whole minutes. When either side carries no date
// only the clock times are compared.
func spanMinutes(first, last clockValue) int {
	if first.timeOnly || last.timeOnly {
		return (last.secondsOfDay() - first.secondsOfDay()) / 60
	}
	return int(last.t.Sub(first.t) / time.Minute)
}

// parseClockColumn tries the strict H:MM form on every value; a column where
// nothing parses strictly is parsed again with the generic rules.
func parseClockColumn(values []any) []clockValue {
	out := make([]clockValue, len(values))
	strict := 0
	for i, v := range values {
		s, isText := v.(string)
		if !isText {
			continue
		}
		if t, err := time.Parse("15:04", strings.TrimSpace(s)); err == nil {
			out[i] = clockValue{t: t, timeOnly: true, ok: true}
			strict++
		}
	}
	if strict > 0 {
		return out
	}

	for i, v := range values {
		out[i] = parseClockGeneric(v)
	}
	return out
}

func parseClockGeneric(v any) clockValue {
	if IsMissing(v) {
		return clockValue{}
	}
	switch x := v.(type) {
	case time.Time:
		return clockValue{t: x, timeOnly: x.Year() == 0, ok: true}
	case string:
		text := strings.ToUpper(collapseSpaces(x))
		for _, layout := range clockLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return clockValue{t: t, timeOnly: true, ok: true}
			}
		}
		if f, ok := parseNumber(text); ok {
			return clockFromNumber(f)
		}
		if t, ok := genericParse(collapseSpaces(x)); ok {
			return clockValue{t: t, ok: true}
		}
		return clockValue{}
	}
	if f, ok := asNumber(v); ok {
		return clockFromNumber(f)
	}
	return clockValue{}
}

// clockFromNumber reads spreadsheet time values: a fraction below one is a
// time of day, anything larger a serial date-time.
func clockFromNumber(f float64) clockValue {
	switch {
	case f < 0:
		return clockValue{}
	case f < 1:
		d := time.Duration(f*86400+0.5) * time.Second
		return clockValue{t: time.Time{}.Add(d), timeOnly: true, ok: true}
	case f < maxSerial+1:
		days := math.Floor(f)
		d := time.Duration((f-days)*86400+0.5) * time.Second
		return clockValue{t: serialEpoch.AddDate(0, 0, int(days)).Add(d), ok: true}
	}
	return clockValue{}
}

// applySpans writes the span column into t, replacing any existing values
func applySpans(t *domain.Table) domain.SpanStats {
	res := ComputeSpans(t.Len(), t.ColumnValues(FirstCallColumn), t.ColumnValues(LastCallColumn))
	t.AddColumn(SpanColumn)
	for i, row := range t.Rows {
		row[SpanColumn] = res.Values[i]
	}
	return domain.SpanStats{
		Column:        SpanColumn,
		SourcePresent: t.HasColumn(FirstCallColumn) && t.HasColumn(LastCallColumn),
		Computed:      res.Computed,
		Clamped:       res.Clamped,
		Defaulted:     res.Defaulted,
	}
}
