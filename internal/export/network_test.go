package export

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transfergraph/core/internal/models"
	"github.com/transfergraph/core/internal/parser"
)

func ingest(t *testing.T, header []string, rows ...models.Row) *models.GraphSummary {
	t.Helper()
	g, err := parser.Ingest(context.Background(), &models.RawTable{Header: header, Rows: rows}, parser.DefaultOptions())
	require.NoError(t, err)
	return g
}

func TestFromSummary(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		g := ingest(t, []string{"from", "to", "amount"},
			models.Row{"from": "A", "to": "B", "amount": "10"},
			models.Row{"from": "A", "to": "B", "amount": "5"},
			models.Row{"from": "B", "to": "A", "amount": "3"},
		)

		network, err := FromSummary(g)
		require.NoError(t, err)

		require.Len(t, network.Nodes, 2)
		a := network.Nodes[0]
		assert.Equal(t, "A", a.ID)
		assert.Equal(t, "A", a.Label)
		assert.Equal(t, "A", a.Title)
		assert.Equal(t, "dot", a.Shape)
		assert.Equal(t, 3, a.Value)

		require.Len(t, network.Edges, 2)
		ab := network.Edges[0]
		assert.Equal(t, "A", ab.From)
		assert.Equal(t, "B", ab.To)
		assert.Equal(t, "to", ab.Arrows)
		assert.Equal(t, 2, ab.Weight)
		assert.Equal(t, "From: A->To: B; Transfers: 2; Total amount: 15.00", ab.Title)
		assert.Equal(t, "15", ab.TotalAmount.String())

		assert.Equal(t, 2, network.Stats.TotalNodes)
		assert.Equal(t, 2, network.Stats.TotalEdges)
		assert.Equal(t, "18", network.Stats.TotalAmount.String())
		assert.Equal(t, 3, network.Stats.ValidRecords)
		assert.Equal(t, g.Stats().IngestID, network.Stats.IngestID)
	})

	t.Run("title omits amount without amount column", func(t *testing.T) {
		g := ingest(t, []string{"Sender", "Recipient"}, models.Row{"Sender": "A", "Recipient": "B"})

		network, err := FromSummary(g)
		require.NoError(t, err)

		assert.Equal(t, "From: A->To: B; Transfers: 1", network.Edges[0].Title)
	})

	t.Run("reports excluded rows", func(t *testing.T) {
		g := ingest(t, []string{"from", "to"},
			models.Row{"from": "A", "to": "B"},
			models.Row{"from": "A", "to": ""},
		)

		network, err := FromSummary(g)
		require.NoError(t, err)

		assert.Equal(t, 1, network.Stats.InvalidRecords)
		assert.Equal(t, []models.InvalidRow{{Row: 2, Reason: "empty to"}}, network.Stats.InvalidSamples)
	})

	t.Run("empty graph is refused", func(t *testing.T) {
		g := ingest(t, []string{"from", "to"}, models.Row{"from": "", "to": ""})

		_, err := FromSummary(g)
		assert.ErrorIs(t, err, ErrEmptyGraph)

		_, err = FromSummary(nil)
		assert.ErrorIs(t, err, ErrEmptyGraph)
	})

	t.Run("amounts encode as exact strings", func(t *testing.T) {
		g := models.NewGraphSummary(
			[]models.Node{{ID: "A"}, {ID: "B"}},
			[]models.Edge{{From: "A", To: "B", Count: 1, TotalAmount: decimal.RequireFromString("0.30")}},
			models.IngestStats{Mapping: models.ColumnMapping{From: "f", To: "t", Amount: "a"}},
		)

		network, err := FromSummary(g)
		require.NoError(t, err)

		data, err := json.Marshal(network.Edges[0])
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"from": "A",
			"to": "B",
			"arrows": "to",
			"weight": 1,
			"title": "From: A->To: B; Transfers: 1; Total amount: 0.30",
			"count": 1,
			"total_amount": "0.3"
		}`, string(data))
	})
}
