// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema        = errors.New("cannot resolve transfer columns")
	ErrInvalidRecord = errors.New("invalid transfer record")
)

// SchemaError reports why a header could not be mapped to from/to columns.
// Headers is the header exactly as seen so the caller can show it back.
type SchemaError struct {
	Headers  []string
	Missing  []string
	Unknown  []string
	Conflict string
}

func (e *SchemaError) Error() string {
	var reasons []string
	if len(e.Missing) > 0 {
		reasons = append(reasons, "no "+strings.Join(e.Missing, " or ")+" column")
	}
	if len(e.Unknown) > 0 {
		reasons = append(reasons, "unknown column "+quoteList(e.Unknown))
	}
	if e.Conflict != "" {
		reasons = append(reasons, fmt.Sprintf("column %q selected as both from and to", e.Conflict))
	}
	return fmt.Sprintf("%s: %s (headers seen: %s)", ErrSchema, strings.Join(reasons, "; "), quoteList(e.Headers))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// InvalidRecordError describes a row excluded from aggregation. Row is 1-based
// and left at zero when the error comes straight from a Normalizer.
type InvalidRecordError struct {
	Row    int
	Reason string
}

func (e *InvalidRecordError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return e.Reason
}

func (e *InvalidRecordError) Unwrap() error {
	return ErrInvalidRecord
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
