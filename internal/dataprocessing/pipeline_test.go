package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/shared/testutil"
	"ordersdash/pkg/contracts/domain"
)

type recordedRun struct {
	diag *domain.Diagnostics
	err  error
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []recordedRun
}

func (r *fakeRecorder) RecordRun(_ context.Context, diag *domain.Diagnostics, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, recordedRun{diag: diag, err: err})
}

func TestPipeline_Run(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	recorder := &fakeRecorder{}
	p := NewPipeline(logger, WithRecorder(recorder))

	primary, secondary := testutil.SummaryTable(), testutil.SecondaryTable()
	res, err := p.Run(context.Background(), primary, secondary, DefaultOptions())
	require.NoError(t, err)

	sep1 := testutil.Date(2025, time.September, 1)
	sep2 := testutil.Date(2025, time.September, 2)

	t.Run("columns", func(t *testing.T) {
		assert.Equal(t, []string{
			"User", "Order Date",
			"Region", "Territory", "L4Position User", "Tc", FirstCallColumn, LastCallColumn,
			OutletColumn, "Ghee", "Smp",
			"Pc", "Ovc", "Dw Primary Packs", "Dw Consu", "Dw Bulk",
			"36 No", "Gjm", "Cream", "Uht Milk", "Flavored Milk", SpanColumn,
		}, res.Table.Columns)
	})

	t.Run("rows", func(t *testing.T) {
		rows := res.Table.Rows
		require.Len(t, rows, 4)

		assert.Equal(t, "U1", rows[0]["User"])
		assert.Equal(t, sep1, rows[0]["Order Date"])
		assert.Equal(t, "North", rows[0]["Region"])
		assert.Equal(t, "Outlet 1", rows[0][OutletColumn])
		assert.Equal(t, 5.0, rows[0]["Ghee"])
		assert.Equal(t, 2.0, rows[0]["Smp"])
		assert.Equal(t, "08:45", rows[0][SpanColumn])
		assert.Equal(t, 0.0, rows[0]["Pc"])

		assert.Equal(t, 1.0, rows[1]["Ghee"])
		assert.Equal(t, 0.0, rows[1]["Smp"])
		assert.Equal(t, "01:45", rows[1][SpanColumn])

		assert.Equal(t, sep2, rows[2]["Order Date"])
		assert.Equal(t, "South", rows[2]["Region"])
		assert.Nil(t, rows[2]["Ghee"])
		assert.Equal(t, "00:00", rows[2][SpanColumn])

		assert.Equal(t, sep1, rows[3]["Order Date"])
		assert.Equal(t, "00:00", rows[3][SpanColumn])
	})

	t.Run("diagnostics", func(t *testing.T) {
		d := res.Diagnostics
		assert.Equal(t, []string{"User", "Order Date"}, d.JoinKeys)
		assert.Equal(t, "left", d.JoinMode)
		assert.Equal(t, 4, d.PrimaryRows)
		assert.Equal(t, 4, d.SecondaryRows)
		assert.Equal(t, 3, d.AggregatedSecondaryRows)
		assert.Equal(t, 4, d.JoinedRows)
		assert.Equal(t, 2, d.MatchedRows)
		assert.Equal(t, 2, d.UnmatchedPrimaryRows)
		assert.Equal(t, 1, d.UnmatchedSecondaryGroups)
		assert.Len(t, d.UnmatchedKeySamples, 2)
		assert.Equal(t, []string{"Region"}, d.UnifiedColumns)
		assert.Contains(t, d.SynthesizedColumns, "Pc")
		assert.NotContains(t, d.SynthesizedColumns, SpanColumn)
		assert.Empty(t, d.KeyAnomalies)
		assert.Empty(t, d.HeaderCollisions)

		assert.Equal(t, []domain.DateFieldStats{
			{Source: domain.SourcePrimary, Column: "Order Date", Total: 4, Parsed: 4},
			{Source: domain.SourceSecondary, Column: "Order Date", Total: 4, Parsed: 4},
		}, d.DateFields)
		assert.Zero(t, d.ParseFailures())

		assert.Equal(t, domain.SpanStats{
			Column: SpanColumn, SourcePresent: true, Computed: 3, Clamped: 1, Defaulted: 1,
		}, d.Span)
	})

	t.Run("inputs untouched", func(t *testing.T) {
		assert.Equal(t, testutil.SummaryTable(), primary)
		assert.Equal(t, testutil.SecondaryTable(), secondary)
	})

	t.Run("recorder and logs", func(t *testing.T) {
		require.Len(t, recorder.runs, 1)
		assert.NoError(t, recorder.runs[0].err)
		assert.Equal(t, 4, recorder.runs[0].diag.JoinedRows)

		testutil.AssertLogContains(t, logs, slog.LevelInfo, "reconciliation finished")
		testutil.AssertNoErrors(t, logs)
	})
}

func TestPipeline_Scenario(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	primary, secondary := testutil.GeneratedTables(100, 150, 20)

	res, err := NewPipeline(logger).Run(context.Background(), primary, secondary, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 20, res.Diagnostics.AggregatedSecondaryRows)
	assert.Len(t, res.Table.Rows, 100)
	assert.Equal(t, 20, res.Diagnostics.MatchedRows)
	assert.Equal(t, 80, res.Diagnostics.UnmatchedPrimaryRows)

	// 150 lines over 20 groups: group 0 holds lines 0, 20, ..., 140
	assert.Equal(t, 8.0, res.Table.Rows[0]["Ghee"])
	assert.Equal(t, 0.0, res.Table.Rows[0]["Tc"])
}

func TestPipeline_Errors(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("empty input", func(t *testing.T) {
		recorder := &fakeRecorder{}
		p := NewPipeline(logger, WithRecorder(recorder))

		_, err := p.Run(context.Background(), domain.NewTable("User"), domain.NewTable("User"), DefaultOptions())

		assert.True(t, errors.Is(err, apperrors.ErrEmptyInput))
		require.Len(t, recorder.runs, 1)
		assert.Nil(t, recorder.runs[0].diag)
		assert.Error(t, recorder.runs[0].err)
	})

	t.Run("explicit key missing from both", func(t *testing.T) {
		opts := DefaultOptions()
		opts.JoinKeys = []string{"outlet_code"}

		_, err := NewPipeline(logger).Run(context.Background(), testutil.SummaryTable(), testutil.SecondaryTable(), opts)

		var mke *apperrors.MergeKeyError
		require.True(t, errors.As(err, &mke))
		assert.Equal(t, []string{"Outlet Code"}, mke.MissingColumns())
		assert.Len(t, mke.Missing, 2)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewPipeline(logger).Run(ctx, testutil.SummaryTable(), testutil.SecondaryTable(), DefaultOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPipeline_KeyResolution(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("falls back to user when secondary has no order date", func(t *testing.T) {
		secondary := testutil.TableFromRecords([]string{"user", "ghee"},
			[]any{"U1", 1.0}, []any{"U1", 2.0}, []any{"U2", 4.0})

		res, err := NewPipeline(logger).Run(context.Background(), testutil.SummaryTable(), secondary, DefaultOptions())
		require.NoError(t, err)

		assert.Equal(t, []string{"User"}, res.Diagnostics.JoinKeys)
		assert.Equal(t, 3.0, res.Table.Rows[0]["Ghee"])
		assert.Equal(t, 3.0, res.Table.Rows[2]["Ghee"])
	})

	t.Run("numeric user ids match text ids", func(t *testing.T) {
		primary := testutil.TableFromRecords([]string{"User", "Tc"}, []any{" 1042 ", 1.0})
		secondary := testutil.TableFromRecords([]string{"User", "Ghee"}, []any{1042.0, 6.0})

		opts := DefaultOptions()
		opts.JoinKeys = []string{"user"}
		res, err := NewPipeline(logger).Run(context.Background(), primary, secondary, opts)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Diagnostics.MatchedRows)
		assert.Equal(t, 6.0, res.Table.Rows[0]["Ghee"])
	})

	t.Run("unparseable dates and blank keys are reported", func(t *testing.T) {
		primary := testutil.TableFromRecords([]string{"User", "Order Date"},
			[]any{"U1", "unknown"}, []any{nil, "2025-09-01"})
		secondary := testutil.TableFromRecords([]string{"User", "Order Date", "Ghee"},
			[]any{"U1", "2025-09-01", 1.0})

		res, err := NewPipeline(logger).Run(context.Background(), primary, secondary, DefaultOptions())
		require.NoError(t, err)

		assert.Equal(t, 1, res.Diagnostics.ParseFailures())
		assert.ElementsMatch(t, []domain.KeyAnomaly{
			{Source: domain.SourcePrimary, Key: "User", MissingValues: 1},
			{Source: domain.SourcePrimary, Key: "Order Date", MissingValues: 1},
		}, res.Diagnostics.KeyAnomalies)
		assert.Len(t, res.Table.Rows, 2)
	})

	t.Run("outer join appends unmatched groups", func(t *testing.T) {
		opts := DefaultOptions()
		opts.JoinMode = JoinOuter

		res, err := NewPipeline(logger).Run(context.Background(), testutil.SummaryTable(), testutil.SecondaryTable(), opts)
		require.NoError(t, err)

		require.Len(t, res.Table.Rows, 5)
		last := res.Table.Rows[4]
		assert.Equal(t, "U9", last["User"])
		assert.Equal(t, "West", last["Region"])
		assert.Equal(t, "00:00", last[SpanColumn])
	})
}
