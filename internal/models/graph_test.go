// Package models defines the core data structures shared by the ingestion pipeline.
// It includes the decoded table, the canonical transfer record and the graph summary.
package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *GraphSummary {
	nodes := []Node{
		{ID: "A", OutboundCount: 2, OutboundAmount: decimal.NewFromInt(15), InboundCount: 1, InboundAmount: decimal.NewFromInt(3)},
		{ID: "B", OutboundCount: 1, OutboundAmount: decimal.NewFromInt(3), InboundCount: 2, InboundAmount: decimal.NewFromInt(15)},
	}
	edges := []Edge{
		{From: "A", To: "B", Count: 2, TotalAmount: decimal.NewFromInt(15)},
		{From: "B", To: "A", Count: 1, TotalAmount: decimal.NewFromInt(3)},
	}
	return NewGraphSummary(nodes, edges, IngestStats{
		Mapping:        ColumnMapping{From: "from", To: "to", Amount: "amount"},
		ValidRecords:   3,
		InvalidRecords: 1,
		InvalidSamples: []InvalidRow{{Row: 4, Reason: "empty to"}},
	})
}

func TestGraphSummary(t *testing.T) {
	t.Run("accessors preserve order", func(t *testing.T) {
		g := sampleSummary()

		require.Len(t, g.Nodes(), 2)
		require.Len(t, g.Edges(), 2)
		assert.Equal(t, EntityID("A"), g.Nodes()[0].ID)
		assert.Equal(t, EntityID("B"), g.Edges()[1].From)
		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 2, g.EdgeCount())
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		g := sampleSummary()

		nodes := g.Nodes()
		nodes[0].OutboundCount = 99
		edges := g.Edges()
		edges[0].Count = 99
		stats := g.Stats()
		stats.InvalidSamples[0].Row = 99

		assert.Equal(t, 2, g.Nodes()[0].OutboundCount)
		assert.Equal(t, 2, g.Edges()[0].Count)
		assert.Equal(t, 4, g.Stats().InvalidSamples[0].Row)
	})

	t.Run("node lookup", func(t *testing.T) {
		g := sampleSummary()

		n, ok := g.Node("B")
		require.True(t, ok)
		assert.Equal(t, 3, n.Degree())

		_, ok = g.Node("C")
		assert.False(t, ok)
	})

	t.Run("total amount sums edges", func(t *testing.T) {
		g := sampleSummary()

		assert.True(t, decimal.NewFromInt(18).Equal(g.TotalAmount()))
	})

	t.Run("empty summary", func(t *testing.T) {
		g := NewGraphSummary(nil, nil, IngestStats{})

		assert.Empty(t, g.Nodes())
		assert.Empty(t, g.Edges())
		assert.True(t, g.TotalAmount().IsZero())
	})

	t.Run("mapping is exposed", func(t *testing.T) {
		g := sampleSummary()

		assert.Equal(t, "amount", g.Mapping().Amount)
		assert.True(t, g.Mapping().HasAmount())
	})
}

func TestRawTable(t *testing.T) {
	t.Run("cell lookup", func(t *testing.T) {
		row := Row{"from": "A", "amount": nil}

		v, ok := row.Cell("from")
		assert.True(t, ok)
		assert.Equal(t, "A", v)

		v, ok = row.Cell("amount")
		assert.True(t, ok)
		assert.Nil(t, v)

		_, ok = row.Cell("to")
		assert.False(t, ok)

		_, ok = row.Cell("")
		assert.False(t, ok)
	})

	t.Run("len of nil table", func(t *testing.T) {
		var table *RawTable
		assert.Equal(t, 0, table.Len())
	})

	t.Run("unmarshal keeps header order", func(t *testing.T) {
		data := `{"header": ["Sender", "Recipient"], "rows": [{"Sender": "A", "Recipient": "B"}]}`

		var table RawTable
		require.NoError(t, json.Unmarshal([]byte(data), &table))

		assert.Equal(t, []string{"Sender", "Recipient"}, table.Header)
		assert.Equal(t, 1, table.Len())
	})
}

func TestEdgeMarshal(t *testing.T) {
	edge := Edge{From: "A", To: "B", Count: 2, TotalAmount: decimal.RequireFromString("15.50")}

	data, err := json.Marshal(edge)
	require.NoError(t, err)

	assert.JSONEq(t, `{"from":"A","to":"B","count":2,"total_amount":"15.5"}`, string(data))
}
