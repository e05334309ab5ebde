package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersdash/internal/shared/testutil"
)

func TestDateParser_Parse(t *testing.T) {
	sep1 := testutil.Date(2025, time.September, 1)

	tests := []struct {
		name  string
		input any
		want  time.Time
		ok    bool
	}{
		{"iso", "2025-09-01", sep1, true},
		{"day first dashes", "01-09-2025", sep1, true},
		{"day first slashes", "01/09/2025", sep1, true},
		{"year first slashes", "2025/09/01", sep1, true},
		{"month abbreviation", "01-Sep-2025", sep1, true},
		{"month abbreviation spaced", "01 Sep 2025", sep1, true},
		{"month first when day first is impossible", "12/31/2025", testutil.Date(2025, time.December, 31), true},
		{"dotted", "01.09.2025", sep1, true},
		{"two digit year", "01-09-25", sep1, true},
		{"two digit year slashes", "01/09/25", sep1, true},
		{"iso with time", "2025-09-01 14:30:00", sep1, true},
		{"unicode dashes", "01\u201309\u20132025", sep1, true},
		{"padded", "  2025-09-01  ", sep1, true},
		{"single digits", "1-9-2025", sep1, true},
		{"serial number", 45000.0, testutil.Date(2023, time.March, 15), true},
		{"serial text", "45000", testutil.Date(2023, time.March, 15), true},
		{"serial with time of day", 45901.75, sep1, true},
		{"serial zero is the epoch", 0.0, testutil.Date(1899, time.December, 30), true},
		{"time value", time.Date(2025, time.September, 1, 13, 45, 0, 0, time.UTC), sep1, true},
		{"nil", nil, time.Time{}, false},
		{"blank", "   ", time.Time{}, false},
		{"garbage", "pending", time.Time{}, false},
		{"unsupported type", true, time.Time{}, false},
	}

	p := NewDateParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDateParser_RoundTrip(t *testing.T) {
	for _, in := range []string{"2025-09-01", "01-09-2025", "01-Sep-2025"} {
		got, ok := NewDateParser().Parse(in)
		require.True(t, ok, in)
		assert.Equal(t, "2025-09-01", FormatValue(got), in)
	}
}

func TestDateParser_SerialEpoch(t *testing.T) {
	got, ok := NewDateParser().Parse(45000.0)
	require.True(t, ok)
	assert.Equal(t, time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 45000), got)
	assert.Equal(t, time.UTC, got.Location())
}

// These inputs match no explicit layout and are not serials, so only the
// generic parser can resolve them.
func TestDateParser_GenericFallback(t *testing.T) {
	sep1 := testutil.Date(2025, time.September, 1)

	tests := []struct {
		name  string
		input any
	}{
		{"rfc3339", "2025-09-01T10:00:00Z"},
		{"long month name", "September 1, 2025"},
		{"abbreviated month first", "Sep 1, 2025"},
		{"compact number beyond serial range", 20250901.0},
	}

	p := NewDateParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.input)
			require.True(t, ok)
			assert.Equal(t, sep1, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	t.Run("explicit layouts never reach the fallback", func(t *testing.T) {
		called := false
		p := NewDateParser()
		p.fallback = func(string) (time.Time, error) {
			called = true
			return time.Time{}, nil
		}
		_, ok := p.Parse("01-Sep-2025")
		assert.True(t, ok)
		assert.False(t, called)
	})

	t.Run("panicking fallback is a failed parse", func(t *testing.T) {
		p := NewDateParser()
		p.fallback = func(string) (time.Time, error) { panic("malformed input") }

		var got time.Time
		var ok bool
		assert.NotPanics(t, func() { got, ok = p.Parse("September 1, 2025") })
		assert.False(t, ok)
		assert.True(t, got.IsZero())

		res := p.ParseColumn([]any{"September 1, 2025", "2025-09-01"})
		assert.Equal(t, 1, res.Parsed)
		assert.Equal(t, 1, res.Missing)
	})
}

func TestDateParser_CustomStrategies(t *testing.T) {
	// month first only
	p := NewDateParser(LayoutStrategy("MM/DD/YYYY", "1/2/2006"))

	got, ok := p.Parse("02/01/2025")
	require.True(t, ok)
	assert.Equal(t, testutil.Date(2025, time.February, 1), got)
}

func TestParseDateColumn(t *testing.T) {
	res := ParseDateColumn([]any{"2025-09-01", nil, "", "nonsense", 45901.0, "02-Sep-2025"})

	assert.Equal(t, 3, res.Parsed)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, 2, res.Blank)
	require.Len(t, res.Values, 6)
	assert.Nil(t, res.Values[1])
	assert.Nil(t, res.Values[3])
	assert.Equal(t, testutil.Date(2025, time.September, 1), res.Values[4])
	assert.Equal(t, testutil.Date(2025, time.September, 2), res.Values[5])
}
