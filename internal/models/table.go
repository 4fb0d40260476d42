// Package models defines the core data structures shared by the ingestion pipeline.
// It includes the decoded table, the canonical transfer record and the graph summary.
package models

// RawTable is a decoded table as handed over by a decoder. Header preserves the
// original column order; each Row maps a column name to its raw cell value
// (string, json.Number, float64, int, nil, ...). The engine never mutates it.
type RawTable struct {
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
}

type Row map[string]any

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Cell returns the raw value stored under column. The second result is false
// when the column is absent from the row.
func (r Row) Cell(column string) (any, bool) {
	if r == nil || column == "" {
		return nil, false
	}
	v, ok := r[column]
	return v, ok
}
