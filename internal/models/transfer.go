// Package models defines the core data structures shared by the ingestion pipeline.
// It includes the decoded table, the canonical transfer record and the graph summary.
package models

import "github.com/shopspring/decimal"

// EntityID is an account identity: trimmed, non-empty, compared as an exact string.
type EntityID string

// ColumnMapping records which header columns carry the source, destination and
// (optionally) amount of a transfer. From and To are always set and distinct.
type ColumnMapping struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount,omitempty"`
}

// HasAmount reports whether an amount column was resolved.
func (m ColumnMapping) HasAmount() bool {
	return m.Amount != ""
}

type TransferRecord struct {
	From   EntityID        `json:"from"`
	To     EntityID        `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}
