// Package model implements the trained-model layer of the pipeline: feature
// encoding, CART decision trees for classification and regression, and JSON
// model artifacts. Models are loaded once at stage start and never mutated
// during a run.
package model

import (
	"fmt"
	"sort"
)

// OneHotEncoder encodes categorical fields into binary indicator columns.
// Transform always aligns its output to the column set seen at fit time:
// values unseen during fitting encode to all-zero, and columns absent from
// new data are filled with 0.
type OneHotEncoder struct {
	Fields  []string `json:"fields"`
	Columns []string `json:"columns"`

	index map[string]int
}

// NewOneHotEncoder creates an encoder over the given categorical fields.
func NewOneHotEncoder(fields ...string) *OneHotEncoder {
	return &OneHotEncoder{Fields: fields}
}

// Fit collects the indicator columns from the training rows. Column order
// is deterministic: fields in declaration order, values sorted within each.
func (e *OneHotEncoder) Fit(rows []map[string]string) {
	e.Columns = e.Columns[:0]
	for _, field := range e.Fields {
		seen := make(map[string]struct{})
		for _, row := range rows {
			if v, ok := row[field]; ok && v != "" {
				seen[v] = struct{}{}
			}
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		for _, v := range values {
			e.Columns = append(e.Columns, indicatorColumn(field, v))
		}
	}
	e.buildIndex()
}

func (e *OneHotEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Columns))
	for i, c := range e.Columns {
		e.index[c] = i
	}
}

// Transform encodes one row, reindexed to the fitted columns.
func (e *OneHotEncoder) Transform(row map[string]string) []float64 {
	if e.index == nil {
		e.buildIndex()
	}
	out := make([]float64, len(e.Columns))
	for _, field := range e.Fields {
		v, ok := row[field]
		if !ok || v == "" {
			continue
		}
		if i, ok := e.index[indicatorColumn(field, v)]; ok {
			out[i] = 1
		}
	}
	return out
}

func indicatorColumn(field, value string) string {
	return field + "=" + value
}

// LabelEncoder maps categorical target labels to integer codes using a
// fixed, caller-supplied ordering.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// NewLabelEncoder creates an encoder with the given fixed class ordering.
func NewLabelEncoder(classes []string) *LabelEncoder {
	return &LabelEncoder{Classes: append([]string(nil), classes...)}
}

// Encode returns the code for a label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	for i, c := range e.Classes {
		if c == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("label %q not in encoder classes", label)
}

// Decode returns the label for a code, or "" for an out-of-range code.
func (e *LabelEncoder) Decode(code int) string {
	if code < 0 || code >= len(e.Classes) {
		return ""
	}
	return e.Classes[code]
}
