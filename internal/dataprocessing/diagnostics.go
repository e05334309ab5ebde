package dataprocessing

import (
	"context"
	"log/slog"

	"ordersdash/pkg/contracts/domain"
)

// keyAnomalies counts, per key, the rows of t whose key value is missing.
// Keys without a missing value are left out.
func keyAnomalies(source string, t domain.Table, keys []string) []domain.KeyAnomaly {
	var out []domain.KeyAnomaly
	for _, k := range keys {
		n := 0
		for _, row := range t.Rows {
			if IsMissing(row[k]) {
				n++
			}
		}
		if n > 0 {
			out = append(out, domain.KeyAnomaly{Source: source, Key: k, MissingValues: n})
		}
	}
	return out
}

func dateFieldStats(source, column string, res DateColumnResult) domain.DateFieldStats {
	return domain.DateFieldStats{
		Source:  source,
		Column:  column,
		Total:   len(res.Values),
		Parsed:  res.Parsed,
		Missing: res.Missing,
		Blank:   res.Blank,
	}
}

func tagCollisions(source string, collisions []domain.HeaderCollision) []domain.HeaderCollision {
	for i := range collisions {
		collisions[i].Source = source
	}
	return collisions
}

// logDiagnostics writes one summary record and a warning per anomaly class
func logDiagnostics(ctx context.Context, logger *slog.Logger, d *domain.Diagnostics) {
	logger.InfoContext(ctx, "reconciliation finished",
		slog.Any("join_keys", d.JoinKeys),
		slog.String("join_mode", d.JoinMode),
		slog.Int("primary_rows", d.PrimaryRows),
		slog.Int("secondary_rows", d.SecondaryRows),
		slog.Int("aggregated_secondary_rows", d.AggregatedSecondaryRows),
		slog.Int("joined_rows", d.JoinedRows),
		slog.Int("matched_rows", d.MatchedRows),
		slog.Int("unmatched_primary_rows", d.UnmatchedPrimaryRows),
		slog.Int("unmatched_secondary_groups", d.UnmatchedSecondaryGroups),
	)

	if n := d.ParseFailures(); n > 0 {
		logger.WarnContext(ctx, "unparseable dates treated as missing", slog.Int("count", n))
	}
	for _, a := range d.KeyAnomalies {
		logger.WarnContext(ctx, "rows with missing join key",
			slog.String("source", a.Source),
			slog.String("key", a.Key),
			slog.Int("rows", a.MissingValues))
	}
	for _, c := range d.HeaderCollisions {
		logger.WarnContext(ctx, "header collision",
			slog.String("source", c.Source),
			slog.String("canonical", c.Canonical),
			slog.Any("raw", c.Raw))
	}
	if d.Span.Clamped > 0 {
		logger.DebugContext(ctx, "negative spans clamped", slog.Int("count", d.Span.Clamped))
	}
}
