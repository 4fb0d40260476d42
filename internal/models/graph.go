// Package models defines the core data structures shared by the ingestion pipeline.
// It includes the decoded table, the canonical transfer record and the graph summary.
package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

type Node struct {
	ID             EntityID        `json:"id"`
	InboundCount   int             `json:"inbound_count"`
	OutboundCount  int             `json:"outbound_count"`
	InboundAmount  decimal.Decimal `json:"inbound_amount"`
	OutboundAmount decimal.Decimal `json:"outbound_amount"`
}

// Degree is the transfer-count weighted degree of the node.
func (n Node) Degree() int {
	return n.InboundCount + n.OutboundCount
}

// Edge aggregates every transfer for one ordered (From, To) pair.
type Edge struct {
	From        EntityID        `json:"from"`
	To          EntityID        `json:"to"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// InvalidRow identifies a data row that was excluded from aggregation.
// Row is 1-based and does not count the header.
type InvalidRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// IngestStats is the diagnostic metadata reported alongside a graph.
type IngestStats struct {
	IngestID        string        `json:"ingest_id,omitempty"`
	Mapping         ColumnMapping `json:"mapping"`
	ValidRecords    int           `json:"valid_records"`
	InvalidRecords  int           `json:"invalid_records"`
	AmountFallbacks int           `json:"amount_fallbacks"`
	InvalidSamples  []InvalidRow  `json:"invalid_samples,omitempty"`
}

// GraphSummary is the write-once result of aggregating one table. Nodes and
// edges are kept in first-seen order; accessors hand out copies.
type GraphSummary struct {
	nodes []Node
	edges []Edge
	index map[EntityID]int
	stats IngestStats
}

func NewGraphSummary(nodes []Node, edges []Edge, stats IngestStats) *GraphSummary {
	index := make(map[EntityID]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	stats.InvalidSamples = slices.Clone(stats.InvalidSamples)
	return &GraphSummary{
		nodes: slices.Clone(nodes),
		edges: slices.Clone(edges),
		index: index,
		stats: stats,
	}
}

func (g *GraphSummary) Nodes() []Node {
	return slices.Clone(g.nodes)
}

func (g *GraphSummary) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Node looks up a single entity.
func (g *GraphSummary) Node(id EntityID) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

func (g *GraphSummary) NodeCount() int { return len(g.nodes) }

func (g *GraphSummary) EdgeCount() int { return len(g.edges) }

func (g *GraphSummary) Stats() IngestStats {
	s := g.stats
	s.InvalidSamples = slices.Clone(g.stats.InvalidSamples)
	return s
}

func (g *GraphSummary) Mapping() ColumnMapping {
	return g.stats.Mapping
}

// TotalAmount is the sum of every edge's total amount.
func (g *GraphSummary) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, e := range g.edges {
		total = total.Add(e.TotalAmount)
	}
	return total
}
