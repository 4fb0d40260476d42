// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/transfergraph/core/internal/models"
	"golang.org/x/sync/errgroup"
)

type pairKey struct {
	from models.EntityID
	to   models.EntityID
}

type edgeTotals struct {
	count  int
	amount decimal.Decimal
}

type nodeTotals struct {
	inCount   int
	outCount  int
	inAmount  decimal.Decimal
	outAmount decimal.Decimal
}

// Accumulator folds TransferRecords into per-pair and per-entity totals.
// It remembers first-seen order so the materialized graph is stable for a
// given input order. An Accumulator is not safe for concurrent use; shards
// each own one and are combined with Merge.
type Accumulator struct {
	edges     map[pairKey]*edgeTotals
	edgeOrder []pairKey
	nodes     map[models.EntityID]*nodeTotals
	nodeOrder []models.EntityID
	records   int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		edges: make(map[pairKey]*edgeTotals),
		nodes: make(map[models.EntityID]*nodeTotals),
	}
}

func (a *Accumulator) Add(rec models.TransferRecord) {
	key := pairKey{from: rec.From, to: rec.To}
	e := a.edge(key)
	e.count++
	e.amount = e.amount.Add(rec.Amount)

	src := a.node(rec.From)
	src.outCount++
	src.outAmount = src.outAmount.Add(rec.Amount)

	dst := a.node(rec.To)
	dst.inCount++
	dst.inAmount = dst.inAmount.Add(rec.Amount)

	a.records++
}

// Merge adds other's totals into a. Keys new to a are appended in other's
// first-seen order, so merging contiguous shards left to right reproduces the
// order of a single pass.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for _, key := range other.edgeOrder {
		src := other.edges[key]
		e := a.edge(key)
		e.count += src.count
		e.amount = e.amount.Add(src.amount)
	}
	for _, id := range other.nodeOrder {
		src := other.nodes[id]
		n := a.node(id)
		n.inCount += src.inCount
		n.outCount += src.outCount
		n.inAmount = n.inAmount.Add(src.inAmount)
		n.outAmount = n.outAmount.Add(src.outAmount)
	}
	a.records += other.records
}

// Records returns the number of records added, including merged ones.
func (a *Accumulator) Records() int {
	return a.records
}

// Summary materializes the graph. stats.ValidRecords is overwritten with the
// accumulator's record count.
func (a *Accumulator) Summary(stats models.IngestStats) *models.GraphSummary {
	nodes := make([]models.Node, 0, len(a.nodeOrder))
	for _, id := range a.nodeOrder {
		t := a.nodes[id]
		nodes = append(nodes, models.Node{
			ID:             id,
			InboundCount:   t.inCount,
			OutboundCount:  t.outCount,
			InboundAmount:  t.inAmount,
			OutboundAmount: t.outAmount,
		})
	}

	edges := make([]models.Edge, 0, len(a.edgeOrder))
	for _, key := range a.edgeOrder {
		t := a.edges[key]
		edges = append(edges, models.Edge{
			From:        key.from,
			To:          key.to,
			Count:       t.count,
			TotalAmount: t.amount,
		})
	}

	stats.ValidRecords = a.records
	return models.NewGraphSummary(nodes, edges, stats)
}

func (a *Accumulator) edge(key pairKey) *edgeTotals {
	e, ok := a.edges[key]
	if !ok {
		e = &edgeTotals{amount: decimal.Zero}
		a.edges[key] = e
		a.edgeOrder = append(a.edgeOrder, key)
	}
	return e
}

func (a *Accumulator) node(id models.EntityID) *nodeTotals {
	n, ok := a.nodes[id]
	if !ok {
		n = &nodeTotals{inAmount: decimal.Zero, outAmount: decimal.Zero}
		a.nodes[id] = n
		a.nodeOrder = append(a.nodeOrder, id)
	}
	return n
}

// Aggregate folds records in a single pass.
func Aggregate(records []models.TransferRecord) *models.GraphSummary {
	acc := NewAccumulator()
	for _, rec := range records {
		acc.Add(rec)
	}
	return acc.Summary(models.IngestStats{})
}

// AggregateSharded splits records into contiguous shards, folds each shard
// on its own goroutine and merges the results in shard order. The summary is
// identical to Aggregate's.
func AggregateSharded(ctx context.Context, records []models.TransferRecord, shards int) (*models.GraphSummary, error) {
	parts, err := foldShards(ctx, len(records), shards, NewAccumulator, func(acc *Accumulator, lo, hi int) error {
		for _, rec := range records[lo:hi] {
			acc.Add(rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := parts[0]
	for _, p := range parts[1:] {
		total.Merge(p)
	}
	return total.Summary(models.IngestStats{}), nil
}

// foldShards runs fold over [0, n) split into at most shards contiguous
// ranges and returns the per-shard states in range order.
func foldShards[S any](ctx context.Context, n, shards int, newShard func() S, fold func(s S, lo, hi int) error) ([]S, error) {
	shards = max(1, min(shards, n))
	size := (n + shards - 1) / shards

	parts := make([]S, shards)
	g, gctx := errgroup.WithContext(ctx)
	for i := range shards {
		lo := min(i*size, n)
		hi := min(lo+size, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := newShard()
			if err := fold(s, lo, hi); err != nil {
				return err
			}
			parts[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}
