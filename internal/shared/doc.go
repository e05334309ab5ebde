// Package shared holds helpers used across packages that belong to no single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on log
// output and table fixtures for the reconciliation pipeline:
//
//	logger, logs := testutil.NewTestLogger(t)
//	primary, secondary := testutil.SummaryTable(), testutil.SecondaryTable()
package shared
