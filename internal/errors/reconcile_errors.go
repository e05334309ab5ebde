package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ErrEmptyInput is matched by every EmptyInputError through errors.Is
var ErrEmptyInput = errors.New("both sources are empty")

// MergeKeyError reports join keys that are absent from a source.
// Missing maps a source name to the keys it lacks, in key order.
type MergeKeyError struct {
	Keys    []string
	Missing map[string][]string
}

// NewMergeKeyError returns nil when no key is missing
func NewMergeKeyError(keys []string, missing map[string][]string) *MergeKeyError {
	n := 0
	for _, m := range missing {
		n += len(m)
	}
	if n == 0 {
		return nil
	}
	return &MergeKeyError{Keys: keys, Missing: missing}
}

// Error implements the error interface
func (e *MergeKeyError) Error() string {
	sources := make([]string, 0, len(e.Missing))
	for source, keys := range e.Missing {
		if len(keys) > 0 {
			sources = append(sources, source)
		}
	}
	sort.Strings(sources)

	parts := make([]string, 0, len(sources))
	for _, source := range sources {
		parts = append(parts, fmt.Sprintf("%s lacks %s", source, strings.Join(quoteAll(e.Missing[source]), ", ")))
	}
	return fmt.Sprintf("join keys %s not found: %s", strings.Join(quoteAll(e.Keys), ", "), strings.Join(parts, "; "))
}

// MissingColumns returns every missing key once, in key order
func (e *MergeKeyError) MissingColumns() []string {
	seen := make(map[string]bool)
	for _, keys := range e.Missing {
		for _, k := range keys {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for _, k := range e.Keys {
		if seen[k] {
			out = append(out, k)
			delete(seen, k)
		}
	}
	return out
}

// EmptyInputError is returned when neither source holds a row
type EmptyInputError struct {
	PrimaryRows   int
	SecondaryRows int
}

// Error implements the error interface
func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s (primary rows: %d, secondary rows: %d)", ErrEmptyInput, e.PrimaryRows, e.SecondaryRows)
}

// Is makes errors.Is(err, ErrEmptyInput) hold
func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// LogValue makes MergeKeyError render as a group in structured logs
func (e *MergeKeyError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.Missing)+1)
	attrs = append(attrs, slog.Any("keys", e.Keys))
	for source, keys := range e.Missing {
		attrs = append(attrs, slog.Any(source, keys))
	}
	return slog.GroupValue(attrs...)
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
