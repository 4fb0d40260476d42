// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/transfergraph/core/internal/models"
)

// Options configures Ingest. Start from DefaultOptions; a zero Options has no
// synonyms and resolves nothing.
type Options struct {
	Synonyms   Synonyms
	Override   models.ColumnMapping
	Normalizer NormalizerConfig

	// Shards > 1 enables parallel folding for tables with at least
	// ShardThreshold rows.
	Shards         int
	ShardThreshold int

	// MaxInvalidSamples caps the excluded rows listed in the summary. The
	// excluded count itself is always exact.
	MaxInvalidSamples int

	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Synonyms:          DefaultSynonyms(),
		Normalizer:        DefaultNormalizerConfig(),
		Shards:            1,
		ShardThreshold:    50000,
		MaxInvalidSamples: 100,
	}
}

type ingestShard struct {
	acc       *Accumulator
	invalid   int
	fallbacks int
	samples   []models.InvalidRow
}

func newIngestShard() *ingestShard {
	return &ingestShard{acc: NewAccumulator()}
}

// Ingest resolves the table's columns, normalizes every row and folds the
// valid ones into a GraphSummary. A *SchemaError aborts the table; invalid
// rows are skipped and counted.
func Ingest(ctx context.Context, table *models.RawTable, opts Options) (*models.GraphSummary, error) {
	if table == nil {
		return nil, fmt.Errorf("ingest: nil table")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mapping, err := NewResolver(opts.Synonyms).ResolveOverride(table.Header, opts.Override)
	if err != nil {
		logger.Warn("column resolution failed", "headers", table.Header, "error", err)
		return nil, err
	}

	ingestID := uuid.NewString()
	logger = logger.With("ingest_id", ingestID)

	shards := 1
	if opts.Shards > 1 && table.Len() >= opts.ShardThreshold {
		shards = opts.Shards
	}

	normalizer := NewNormalizer(opts.Normalizer)
	parts, err := foldShards(ctx, table.Len(), shards, newIngestShard, func(s *ingestShard, lo, hi int) error {
		for i := lo; i < hi; i++ {
			row := table.Rows[i]
			n, err := normalizer.Normalize(row, mapping)
			if err != nil {
				var invalid *InvalidRecordError
				if !errors.As(err, &invalid) {
					return err
				}
				invalid.Row = i + 1
				s.invalid++
				if len(s.samples) < opts.MaxInvalidSamples {
					s.samples = append(s.samples, models.InvalidRow{Row: invalid.Row, Reason: invalid.Reason})
				}
				logger.Debug("row excluded", "row", invalid.Row, "reason", invalid.Reason)
				continue
			}
			if n.AmountSource.Fallback() {
				s.fallbacks++
				if n.AmountSource == AmountUnparseable {
					logger.Debug("amount defaulted", "row", i+1, "column", mapping.Amount, "value", row[mapping.Amount])
				}
			}
			s.acc.Add(n.Record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	stats := models.IngestStats{IngestID: ingestID, Mapping: mapping}
	acc := parts[0].acc
	for i, p := range parts {
		if i > 0 {
			acc.Merge(p.acc)
		}
		stats.InvalidRecords += p.invalid
		stats.AmountFallbacks += p.fallbacks
		for _, sample := range p.samples {
			if len(stats.InvalidSamples) < opts.MaxInvalidSamples {
				stats.InvalidSamples = append(stats.InvalidSamples, sample)
			}
		}
	}

	summary := acc.Summary(stats)
	logger.Info("table ingested",
		"from", mapping.From,
		"to", mapping.To,
		"amount", mapping.Amount,
		"rows", table.Len(),
		"valid", acc.Records(),
		"invalid", stats.InvalidRecords,
		"amount_fallbacks", stats.AmountFallbacks,
		"nodes", summary.NodeCount(),
		"edges", summary.EdgeCount(),
		"shards", shards,
	)
	return summary, nil
}
