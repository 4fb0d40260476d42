// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"slices"
	"strings"
	"unicode"

	"github.com/transfergraph/core/internal/models"
	"golang.org/x/text/cases"
)

// Synonyms lists the header names accepted for each role. Entries are
// compared after canonicalization, so "From Account" and "from_account" are
// the same synonym.
type Synonyms struct {
	From   []string
	To     []string
	Amount []string
}

func DefaultSynonyms() Synonyms {
	return Synonyms{
		From: []string{
			"from", "source", "sender", "payer", "from_account", "source_account",
			"sender_account", "payer_account", "debtor", "originator", "origin",
		},
		To: []string{
			"to", "destination", "receiver", "recipient", "payee", "to_account",
			"destination_account", "receiver_account", "recipient_account",
			"payee_account", "beneficiary", "creditor", "target",
		},
		Amount: []string{
			"amount", "amt", "value", "sum", "total", "total_amount",
			"transfer_amount", "transaction_amount",
		},
	}
}

// Extend returns a copy of s with extra appended after the existing entries.
func (s Synonyms) Extend(extra Synonyms) Synonyms {
	return Synonyms{
		From:   append(slices.Clone(s.From), extra.From...),
		To:     append(slices.Clone(s.To), extra.To...),
		Amount: append(slices.Clone(s.Amount), extra.Amount...),
	}
}

type synonymSet struct {
	exact map[string]struct{}
	list  []string
}

func newSynonymSet(names []string) synonymSet {
	set := synonymSet{exact: make(map[string]struct{}, len(names))}
	for _, name := range names {
		key := canonicalHeader(name)
		if key == "" {
			continue
		}
		if _, dup := set.exact[key]; dup {
			continue
		}
		set.exact[key] = struct{}{}
		set.list = append(set.list, key)
	}
	return set
}

// containsTokens reports whether a synonym appears in key as a whole run of
// '_' separated tokens ("sender" in "sender_iban", but "to" not in "total").
func (s synonymSet) containsTokens(key string) bool {
	padded := "_" + key + "_"
	for _, syn := range s.list {
		if strings.Contains(padded, "_"+syn+"_") {
			return true
		}
	}
	return false
}

// Resolver maps a table header to a ColumnMapping.
//
// Matching runs in two passes over the header: an exact pass on the
// canonical header and, only if that finds nothing, a token pass. Within a
// pass the first header in header order wins, so the result depends only on
// the header and the synonym sets.
type Resolver struct {
	from   synonymSet
	to     synonymSet
	amount synonymSet
}

func NewResolver(syn Synonyms) *Resolver {
	return &Resolver{
		from:   newSynonymSet(syn.From),
		to:     newSynonymSet(syn.To),
		amount: newSynonymSet(syn.Amount),
	}
}

// Resolve detects the from, to and amount columns. A missing amount column is
// not an error.
func (r *Resolver) Resolve(header []string) (models.ColumnMapping, error) {
	return r.ResolveOverride(header, models.ColumnMapping{})
}

// ResolveOverride is Resolve with caller supplied column names. Non-empty
// fields of override must name a header column; empty fields are detected.
func (r *Resolver) ResolveOverride(header []string, override models.ColumnMapping) (models.ColumnMapping, error) {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = canonicalHeader(h)
	}

	schemaErr := &SchemaError{Headers: slices.Clone(header)}

	pick := func(role, name string, set synonymSet, taken ...int) int {
		if name != "" {
			idx := lookupColumn(header, keys, name)
			if idx < 0 {
				schemaErr.Unknown = append(schemaErr.Unknown, name)
			}
			return idx
		}
		idx := matchColumn(keys, set, taken)
		if idx < 0 && role != "amount" {
			schemaErr.Missing = append(schemaErr.Missing, role)
		}
		return idx
	}

	from := pick("from", override.From, r.from)
	to := pick("to", override.To, r.to)
	if len(schemaErr.Missing) > 0 || len(schemaErr.Unknown) > 0 {
		return models.ColumnMapping{}, schemaErr
	}
	if from == to || header[from] == header[to] {
		schemaErr.Conflict = header[from]
		return models.ColumnMapping{}, schemaErr
	}

	mapping := models.ColumnMapping{From: header[from], To: header[to]}
	if amount := pick("amount", override.Amount, r.amount, from, to); amount >= 0 {
		mapping.Amount = header[amount]
	} else if len(schemaErr.Unknown) > 0 {
		return models.ColumnMapping{}, schemaErr
	}
	return mapping, nil
}

func matchColumn(keys []string, set synonymSet, taken []int) int {
	for i, key := range keys {
		if key == "" || slices.Contains(taken, i) {
			continue
		}
		if _, ok := set.exact[key]; ok {
			return i
		}
	}
	for i, key := range keys {
		if key == "" || slices.Contains(taken, i) {
			continue
		}
		if set.containsTokens(key) {
			return i
		}
	}
	return -1
}

// lookupColumn finds an explicitly named column, verbatim first and then
// by canonical form.
func lookupColumn(header, keys []string, name string) int {
	if idx := slices.Index(header, name); idx >= 0 {
		return idx
	}
	want := canonicalHeader(name)
	if want == "" {
		return -1
	}
	return slices.Index(keys, want)
}

// canonicalHeader trims and case-folds a header and collapses every run of
// non letter/digit runes into a single '_'.
func canonicalHeader(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))

	var b strings.Builder
	pending := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('_')
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}
