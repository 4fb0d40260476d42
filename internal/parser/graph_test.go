// Package parser provides utilities for parsing and transforming input data.
// It handles data normalization, validation, and conversion between formats.
package parser

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transfergraph/core/internal/models"
)

func rec(from, to string, amount string) models.TransferRecord {
	return models.TransferRecord{
		From:   models.EntityID(from),
		To:     models.EntityID(to),
		Amount: decimal.RequireFromString(amount),
	}
}

// canonical renders a summary as order-free strings so that summaries can be
// compared without depending on decimal internals or display order.
func canonical(g *models.GraphSummary) ([]string, []string) {
	var nodes, edges []string
	for _, n := range g.Nodes() {
		nodes = append(nodes, fmt.Sprintf("%s in=%d/%s out=%d/%s",
			n.ID, n.InboundCount, n.InboundAmount.String(), n.OutboundCount, n.OutboundAmount.String()))
	}
	for _, e := range g.Edges() {
		edges = append(edges, fmt.Sprintf("%s->%s %d/%s", e.From, e.To, e.Count, e.TotalAmount.String()))
	}
	slices.Sort(nodes)
	slices.Sort(edges)
	return nodes, edges
}

func randomRecords(r *rand.Rand, n int) []models.TransferRecord {
	entities := []string{"A", "B", "C", "D", "E", "alice", "Alice"}
	out := make([]models.TransferRecord, n)
	for i := range out {
		cents := r.IntN(1_000_000)
		out[i] = rec(
			entities[r.IntN(len(entities))],
			entities[r.IntN(len(entities))],
			decimal.New(int64(cents), -2).String(),
		)
	}
	return out
}

func TestAggregate(t *testing.T) {
	t.Run("empty input returns empty graph", func(t *testing.T) {
		g := Aggregate(nil)

		assert.NotNil(t, g)
		assert.Empty(t, g.Nodes())
		assert.Empty(t, g.Edges())
		assert.Equal(t, 0, g.Stats().ValidRecords)
	})

	t.Run("worked example", func(t *testing.T) {
		g := Aggregate([]models.TransferRecord{
			rec("A", "B", "10"),
			rec("A", "B", "5"),
			rec("B", "A", "3"),
		})

		edges := g.Edges()
		require.Len(t, edges, 2)
		assert.Equal(t, models.EntityID("A"), edges[0].From)
		assert.Equal(t, models.EntityID("B"), edges[0].To)
		assert.Equal(t, 2, edges[0].Count)
		assert.Equal(t, "15", edges[0].TotalAmount.String())
		assert.Equal(t, models.EntityID("B"), edges[1].From)
		assert.Equal(t, 1, edges[1].Count)
		assert.Equal(t, "3", edges[1].TotalAmount.String())

		a, ok := g.Node("A")
		require.True(t, ok)
		assert.Equal(t, 2, a.OutboundCount)
		assert.Equal(t, "15", a.OutboundAmount.String())
		assert.Equal(t, 1, a.InboundCount)
		assert.Equal(t, "3", a.InboundAmount.String())

		b, ok := g.Node("B")
		require.True(t, ok)
		assert.Equal(t, 2, b.InboundCount)
		assert.Equal(t, "15", b.InboundAmount.String())
		assert.Equal(t, 1, b.OutboundCount)
		assert.Equal(t, "3", b.OutboundAmount.String())

		assert.Equal(t, 3, g.Stats().ValidRecords)
	})

	t.Run("opposite directions are distinct edges", func(t *testing.T) {
		g := Aggregate([]models.TransferRecord{rec("A", "B", "1"), rec("B", "A", "1")})

		assert.Len(t, g.Edges(), 2)
		assert.Len(t, g.Nodes(), 2)
	})

	t.Run("self transfer counts both directions on one node", func(t *testing.T) {
		g := Aggregate([]models.TransferRecord{rec("A", "A", "7")})

		require.Len(t, g.Nodes(), 1)
		n := g.Nodes()[0]
		assert.Equal(t, 1, n.InboundCount)
		assert.Equal(t, 1, n.OutboundCount)
		assert.Equal(t, "7", n.InboundAmount.String())
		assert.Equal(t, "7", n.OutboundAmount.String())
	})

	t.Run("first seen order", func(t *testing.T) {
		g := Aggregate([]models.TransferRecord{
			rec("C", "A", "1"),
			rec("B", "C", "1"),
			rec("C", "A", "1"),
			rec("A", "D", "1"),
		})

		var ids []models.EntityID
		for _, n := range g.Nodes() {
			ids = append(ids, n.ID)
		}
		assert.Equal(t, []models.EntityID{"C", "A", "B", "D"}, ids)

		var pairs []string
		for _, e := range g.Edges() {
			pairs = append(pairs, string(e.From)+string(e.To))
		}
		assert.Equal(t, []string{"CA", "BC", "AD"}, pairs)
	})

	t.Run("no floating point drift", func(t *testing.T) {
		records := make([]models.TransferRecord, 1000)
		for i := range records {
			records[i] = rec("A", "B", "0.1")
		}

		g := Aggregate(records)

		assert.Equal(t, "100", g.Edges()[0].TotalAmount.String())
	})
}

func TestAggregateProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for round := range 20 {
		records := randomRecords(r, 1+r.IntN(400))

		t.Run(fmt.Sprintf("round %d", round), func(t *testing.T) {
			g := Aggregate(records)

			total := decimal.Zero
			for _, record := range records {
				total = total.Add(record.Amount)
			}

			count := 0
			for _, e := range g.Edges() {
				assert.GreaterOrEqual(t, e.Count, 1)
				count += e.Count
			}
			assert.Equal(t, len(records), count, "edge counts conserve records")
			assert.True(t, total.Equal(g.TotalAmount()), "edge totals conserve amount")

			for _, n := range g.Nodes() {
				in, out := 0, 0
				inAmt, outAmt := decimal.Zero, decimal.Zero
				for _, e := range g.Edges() {
					if e.From == n.ID {
						out += e.Count
						outAmt = outAmt.Add(e.TotalAmount)
					}
					if e.To == n.ID {
						in += e.Count
						inAmt = inAmt.Add(e.TotalAmount)
					}
				}
				assert.Equal(t, out, n.OutboundCount, "node %s outbound", n.ID)
				assert.Equal(t, in, n.InboundCount, "node %s inbound", n.ID)
				assert.True(t, outAmt.Equal(n.OutboundAmount), "node %s outbound amount", n.ID)
				assert.True(t, inAmt.Equal(n.InboundAmount), "node %s inbound amount", n.ID)
			}

			shuffled := slices.Clone(records)
			r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			wantNodes, wantEdges := canonical(g)
			gotNodes, gotEdges := canonical(Aggregate(shuffled))
			assert.Equal(t, wantNodes, gotNodes, "permutation changes nodes")
			assert.Equal(t, wantEdges, gotEdges, "permutation changes edges")
		})
	}
}

func TestAggregateSharded(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	records := randomRecords(r, 997)
	single := Aggregate(records)

	for _, shards := range []int{0, 1, 2, 3, 8, 997, 2000} {
		t.Run(fmt.Sprintf("%d shards", shards), func(t *testing.T) {
			g, err := AggregateSharded(context.Background(), records, shards)
			require.NoError(t, err)

			assert.Equal(t, single.Stats().ValidRecords, g.Stats().ValidRecords)

			wantNodes, wantEdges := canonical(single)
			gotNodes, gotEdges := canonical(g)
			assert.Equal(t, wantNodes, gotNodes)
			assert.Equal(t, wantEdges, gotEdges)

			// Contiguous shards merged in order keep single-pass display order.
			var wantOrder, gotOrder []models.EntityID
			for _, n := range single.Nodes() {
				wantOrder = append(wantOrder, n.ID)
			}
			for _, n := range g.Nodes() {
				gotOrder = append(gotOrder, n.ID)
			}
			assert.Equal(t, wantOrder, gotOrder)
		})
	}

	t.Run("empty input", func(t *testing.T) {
		g, err := AggregateSharded(context.Background(), nil, 4)

		require.NoError(t, err)
		assert.Empty(t, g.Edges())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := AggregateSharded(ctx, records, 4)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAccumulatorMerge(t *testing.T) {
	t.Run("merge order does not change totals", func(t *testing.T) {
		left := NewAccumulator()
		left.Add(rec("A", "B", "1.5"))
		left.Add(rec("B", "C", "2"))

		right := NewAccumulator()
		right.Add(rec("A", "B", "0.5"))
		right.Add(rec("C", "A", "4"))

		lr := NewAccumulator()
		lr.Merge(left)
		lr.Merge(right)

		rl := NewAccumulator()
		rl.Merge(right)
		rl.Merge(left)

		n1, e1 := canonical(lr.Summary(models.IngestStats{}))
		n2, e2 := canonical(rl.Summary(models.IngestStats{}))
		assert.Equal(t, n1, n2)
		assert.Equal(t, e1, e2)
		assert.Equal(t, 4, lr.Records())
		assert.Contains(t, e1, "A->B 2/2")
	})

	t.Run("merge nil is a no-op", func(t *testing.T) {
		acc := NewAccumulator()
		acc.Add(rec("A", "B", "1"))
		acc.Merge(nil)

		assert.Equal(t, 1, acc.Records())
	})

	t.Run("summary keeps ingest stats", func(t *testing.T) {
		acc := NewAccumulator()
		acc.Add(rec("A", "B", "1"))

		g := acc.Summary(models.IngestStats{InvalidRecords: 2, ValidRecords: 99})

		assert.Equal(t, 1, g.Stats().ValidRecords)
		assert.Equal(t, 2, g.Stats().InvalidRecords)
	})
}
