// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/transfergraph/core/internal/models"
	"golang.org/x/text/cases"
)

// UnitWeight is the amount given to a transfer whose amount is unknown:
// no amount column, an empty cell or an unparseable cell. Such a transfer
// still counts once.
var UnitWeight = decimal.NewFromInt(1)

type NormalizerConfig struct {
	// DefaultAmount replaces unknown amounts. Left invalid, UnitWeight is used.
	DefaultAmount decimal.NullDecimal

	// FoldEntityCase makes "Alice" and "ALICE" the same entity. Off by
	// default: identity is the exact string after trimming.
	FoldEntityCase bool
}

func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		DefaultAmount: decimal.NewNullDecimal(UnitWeight),
	}
}

// AmountSource tells where a record's amount came from.
type AmountSource int

const (
	AmountParsed AmountSource = iota
	AmountUnmapped
	AmountEmpty
	AmountUnparseable
)

func (s AmountSource) String() string {
	switch s {
	case AmountParsed:
		return "parsed"
	case AmountUnmapped:
		return "unmapped"
	case AmountEmpty:
		return "empty"
	case AmountUnparseable:
		return "unparseable"
	default:
		return "unknown"
	}
}

// Fallback reports whether a mapped amount cell had to be replaced by the
// default amount.
func (s AmountSource) Fallback() bool {
	return s == AmountEmpty || s == AmountUnparseable
}

type Normalized struct {
	Record       models.TransferRecord
	AmountSource AmountSource
}

// Normalizer turns raw rows into TransferRecords.
type Normalizer struct {
	defaultAmount decimal.Decimal
	foldCase      bool
}

func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	def := UnitWeight
	if cfg.DefaultAmount.Valid {
		def = cfg.DefaultAmount.Decimal
	}
	return &Normalizer{defaultAmount: def, foldCase: cfg.FoldEntityCase}
}

// Normalize converts one row. It fails with *InvalidRecordError only when the
// from or to identity is missing; amount problems fall back to the default.
func (n *Normalizer) Normalize(row models.Row, m models.ColumnMapping) (Normalized, error) {
	from := n.entity(row[m.From])
	to := n.entity(row[m.To])

	switch {
	case from == "" && to == "":
		return Normalized{}, &InvalidRecordError{Reason: "empty from and to"}
	case from == "":
		return Normalized{}, &InvalidRecordError{Reason: "empty from"}
	case to == "":
		return Normalized{}, &InvalidRecordError{Reason: "empty to"}
	}

	amount, source := n.amount(row, m)
	return Normalized{
		Record: models.TransferRecord{
			From:   from,
			To:     to,
			Amount: amount,
		},
		AmountSource: source,
	}, nil
}

func (n *Normalizer) amount(row models.Row, m models.ColumnMapping) (decimal.Decimal, AmountSource) {
	if !m.HasAmount() {
		return n.defaultAmount, AmountUnmapped
	}
	raw, ok := row.Cell(m.Amount)
	if !ok || isBlank(raw) {
		return n.defaultAmount, AmountEmpty
	}
	if d, ok := ParseAmount(raw); ok {
		return d, AmountParsed
	}
	return n.defaultAmount, AmountUnparseable
}

func (n *Normalizer) entity(v any) models.EntityID {
	s := strings.TrimSpace(cellText(v))
	if n.foldCase && s != "" {
		s = cases.Fold().String(s)
	}
	return models.EntityID(s)
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case json.Number:
		return strings.TrimSpace(string(x)) == ""
	default:
		return false
	}
}

// cellText renders an identifier cell. Numeric account numbers coming from
// spreadsheets are printed without a trailing ".0".
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return numberText(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// numberText prints a JSON number the way a float64 cell of the same value is
// printed, so 1234, 1234.0 and 1234.00 name one account. Anything that is not a
// plain decimal literal is kept verbatim.
func numberText(n json.Number) string {
	s := strings.TrimSpace(string(n))
	if !plainAmount.MatchString(s) {
		return string(n)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return string(n)
	}
	return d.String()
}
