package domain

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from an input table. It is
// fatal for the stage that raises it.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// DataParseError reports a column whose values cannot be coerced to the
// required type. It is fatal for the whole run, not per-row, so aggregates
// are never silently corrupted.
type DataParseError struct {
	Column string
	Value  string
	Row    int
}

func (e *DataParseError) Error() string {
	return fmt.Sprintf("column %s: cannot parse %q at row %d", e.Column, e.Value, e.Row)
}

// ModelNotFoundError reports a missing trained-model artifact. Fatal: the
// model-gated stages have no rule-based fallback.
type ModelNotFoundError struct {
	Path string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model artifact not found: %s", e.Path)
}

// FeatureMismatchError reports inference-time features that don't match the
// model's training contract. Unseen categorical values are not an error
// (they encode to all-zero); missing numeric columns are.
type FeatureMismatchError struct {
	Missing []string
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature columns missing from input: %s", strings.Join(e.Missing, ", "))
}

// InsufficientDataError reports a forecast grouping key with too little
// history. Soft: the key is skipped and the pipeline continues.
type InsufficientDataError struct {
	Key    string
	Points int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough data points for %q: %d", e.Key, e.Points)
}
