// Package export converts aggregated transfer graphs into the network
// document consumed by renderers.
package export

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/transfergraph/core/internal/models"
)

var ErrEmptyGraph = errors.New("no transfers to render")

type Network struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
	Stats Stats         `json:"stats"`
}

type NetworkNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Shape string `json:"shape"`
	// Value is the weighted degree: transfers in plus transfers out.
	Value int `json:"value"`

	InboundCount   int             `json:"inbound_count"`
	OutboundCount  int             `json:"outbound_count"`
	InboundAmount  decimal.Decimal `json:"inbound_amount"`
	OutboundAmount decimal.Decimal `json:"outbound_amount"`
}

type NetworkEdge struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Arrows      string          `json:"arrows"`
	Weight      int             `json:"weight"`
	Title       string          `json:"title"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Stats struct {
	IngestID        string               `json:"ingest_id,omitempty"`
	Mapping         models.ColumnMapping `json:"mapping"`
	TotalNodes      int                  `json:"total_nodes"`
	TotalEdges      int                  `json:"total_edges"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	ValidRecords    int                  `json:"valid_records"`
	InvalidRecords  int                  `json:"invalid_records"`
	AmountFallbacks int                  `json:"amount_fallbacks"`
	InvalidSamples  []models.InvalidRow  `json:"invalid_samples,omitempty"`
}

// FromSummary builds the network document for a summary. Display order
// follows the summary's first-seen order. A summary without edges has
// nothing to draw and yields ErrEmptyGraph.
func FromSummary(summary *models.GraphSummary) (*Network, error) {
	if summary == nil || summary.EdgeCount() == 0 {
		return nil, ErrEmptyGraph
	}

	withAmount := summary.Mapping().HasAmount()
	nodes := summary.Nodes()
	edges := summary.Edges()

	network := &Network{
		Nodes: make([]NetworkNode, 0, len(nodes)),
		Edges: make([]NetworkEdge, 0, len(edges)),
	}

	for _, n := range nodes {
		id := string(n.ID)
		network.Nodes = append(network.Nodes, NetworkNode{
			ID:             id,
			Label:          id,
			Title:          id,
			Shape:          "dot",
			Value:          n.Degree(),
			InboundCount:   n.InboundCount,
			OutboundCount:  n.OutboundCount,
			InboundAmount:  n.InboundAmount,
			OutboundAmount: n.OutboundAmount,
		})
	}

	for _, e := range edges {
		network.Edges = append(network.Edges, NetworkEdge{
			From:        string(e.From),
			To:          string(e.To),
			Arrows:      "to",
			Weight:      e.Count,
			Title:       edgeTitle(e, withAmount),
			Count:       e.Count,
			TotalAmount: e.TotalAmount,
		})
	}

	stats := summary.Stats()
	network.Stats = Stats{
		IngestID:        stats.IngestID,
		Mapping:         stats.Mapping,
		TotalNodes:      len(network.Nodes),
		TotalEdges:      len(network.Edges),
		TotalAmount:     summary.TotalAmount(),
		ValidRecords:    stats.ValidRecords,
		InvalidRecords:  stats.InvalidRecords,
		AmountFallbacks: stats.AmountFallbacks,
		InvalidSamples:  stats.InvalidSamples,
	}
	return network, nil
}

func edgeTitle(e models.Edge, withAmount bool) string {
	title := fmt.Sprintf("From: %s->To: %s; Transfers: %d", e.From, e.To, e.Count)
	if withAmount {
		title += "; Total amount: " + e.TotalAmount.StringFixed(2)
	}
	return title
}
