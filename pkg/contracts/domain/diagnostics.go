package domain

// Source names used throughout diagnostics
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
)

// Diagnostics summarizes one reconciliation run
type Diagnostics struct {
	JoinKeys []string `json:"join_keys"`
	JoinMode string   `json:"join_mode"`

	PrimaryRows             int `json:"primary_rows"`
	SecondaryRows           int `json:"secondary_rows"`
	AggregatedSecondaryRows int `json:"aggregated_secondary_rows"`
	JoinedRows              int `json:"joined_rows"`

	MatchedRows              int `json:"matched_rows"`
	UnmatchedPrimaryRows     int `json:"unmatched_primary_rows"`
	UnmatchedSecondaryGroups int `json:"unmatched_secondary_groups"`

	DateFields   []DateFieldStats `json:"date_fields,omitempty"`
	Span         SpanStats        `json:"span"`
	KeyAnomalies []KeyAnomaly     `json:"key_anomalies,omitempty"`

	// UnmatchedKeySamples lists a few primary key tuples that found no secondary group
	UnmatchedKeySamples []string `json:"unmatched_key_samples,omitempty"`

	UnifiedColumns     []string          `json:"unified_columns,omitempty"`
	SynthesizedColumns []string          `json:"synthesized_columns,omitempty"`
	HeaderCollisions   []HeaderCollision `json:"header_collisions,omitempty"`
}

// DateFieldStats counts the outcome of date parsing for one column of one source
type DateFieldStats struct {
	Source  string `json:"source"`
	Column  string `json:"column"`
	Total   int    `json:"total"`
	Parsed  int    `json:"parsed"`
	Missing int    `json:"missing"`
	Blank   int    `json:"blank"`
}

// SpanStats counts elapsed-span computations
type SpanStats struct {
	Column        string `json:"column"`
	SourcePresent bool   `json:"source_present"`
	Computed      int    `json:"computed"`
	// Clamped counts computed spans that were negative and reported as zero
	Clamped   int `json:"clamped"`
	Defaulted int `json:"defaulted"`
}

// KeyAnomaly counts rows of a source whose key value is missing
type KeyAnomaly struct {
	Source        string `json:"source"`
	Key           string `json:"key"`
	MissingValues int    `json:"missing_values"`
}

// HeaderCollision records raw headers that normalized to the same canonical name.
// The last raw header in Raw wins.
type HeaderCollision struct {
	Source    string   `json:"source"`
	Canonical string   `json:"canonical"`
	Raw       []string `json:"raw"`
}

// ParseFailures returns the number of non-blank date values that could not be parsed
func (d Diagnostics) ParseFailures() int {
	total := 0
	for _, f := range d.DateFields {
		total += f.Missing
	}
	return total
}
