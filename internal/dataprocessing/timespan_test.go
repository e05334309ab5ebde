package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersdash/internal/shared/testutil"
)

func TestComputeSpans(t *testing.T) {
	t.Run("strict clock times", func(t *testing.T) {
		res := ComputeSpans(4,
			[]any{"09:00", "09:00", "9:05", nil},
			[]any{"17:45", "08:30", "9:05", "11:00"},
		)

		assert.Equal(t, []string{"08:45", "00:00", "00:00", "00:00"}, res.Values)
		assert.Equal(t, 3, res.Computed)
		assert.Equal(t, 1, res.Clamped)
		assert.Equal(t, 1, res.Defaulted)
	})

	t.Run("absent column", func(t *testing.T) {
		res := ComputeSpans(2, nil, []any{"10:00", "11:00"})

		assert.Equal(t, []string{"00:00", "00:00"}, res.Values)
		assert.Equal(t, 2, res.Defaulted)
		assert.Zero(t, res.Computed)
	})

	t.Run("generic pass when nothing parses strictly", func(t *testing.T) {
		res := ComputeSpans(3,
			[]any{"9:00 am", "08:15:30", 0.375},
			[]any{"5:30 PM", "10:00:00", 0.5},
		)

		assert.Equal(t, []string{"08:30", "01:44", "03:00"}, res.Values)
		assert.Equal(t, 3, res.Computed)
	})

	t.Run("serial date-times span midnight", func(t *testing.T) {
		// 2025-09-01 22:00 to 2025-09-02 01:30
		res := ComputeSpans(1,
			[]any{45901.0 + 22.0/24},
			[]any{45902.0 + 1.5/24},
		)

		assert.Equal(t, []string{"03:30"}, res.Values)
	})

	t.Run("hours are not capped", func(t *testing.T) {
		res := ComputeSpans(1, []any{45901.0}, []any{45902.0 + 3.25/24})

		assert.Equal(t, []string{"27:15"}, res.Values)
	})

	t.Run("unparseable values default", func(t *testing.T) {
		res := ComputeSpans(2, []any{"09:00", "soon"}, []any{"10:00", "later"})

		assert.Equal(t, []string{"01:00", "00:00"}, res.Values)
		assert.Equal(t, 1, res.Defaulted)
	})
}

func TestFormatSpan(t *testing.T) {
	assert.Equal(t, "00:00", FormatSpan(0))
	assert.Equal(t, "08:45", FormatSpan(525))
	assert.Equal(t, "27:15", FormatSpan(27*60+15))
	assert.Equal(t, "00:00", FormatSpan(-30))
}

func TestApplySpans(t *testing.T) {
	table := testutil.TableFromRecords(
		[]string{FirstCallColumn, LastCallColumn, SpanColumn},
		[]any{"09:00", "17:45", "stale"},
	)

	stats := applySpans(&table)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "08:45", table.Rows[0][SpanColumn])
	assert.True(t, stats.SourcePresent)
	assert.Equal(t, 1, stats.Computed)
	assert.Equal(t, SpanColumn, stats.Column)
}
