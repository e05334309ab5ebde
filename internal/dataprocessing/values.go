package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// IsMissing reports whether v counts as an absent value: nil, NaN or a
// blank string.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case time.Time:
		return x.IsZero()
	}
	return false
}

// asNumber returns v as float64 when v is a native number
func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	}
	return 0, false
}

// coerceNumber accepts native numbers and numeric text
func coerceNumber(v any) (float64, bool) {
	if f, ok := asNumber(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	return parseNumber(s)
}

// parseNumber parses finite decimal text. NaN and Inf spellings are rejected.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatValue renders a cell for display, filtering and CSV output.
// Missing values render as the empty string, dates as YYYY-MM-DD.
func FormatValue(v any) string {
	if IsMissing(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(isoDate)
		}
		return x.Format("2006-01-02 15:04:05")
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := asNumber(v); ok {
		return formatNumber(f)
	}
	return ""
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// JSONValue converts a cell into a JSON-friendly value: dates become ISO
// strings, missing values null.
func JSONValue(v any) any {
	if IsMissing(v) {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		return FormatValue(t)
	}
	return v
}

// collapseSpaces trims s and reduces every run of whitespace to one space
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
