package aggregate

import (
	"epidash/domain/cases"
	"epidash/domain/charts"
)

// Graph builds the network projection: one node per distinct region, then one
// per distinct country, each in first-seen order, and one edge per record
// from its country to its region weighted by that record's total cases.
// Edges are not merged, so a country listed for several years has parallel
// edges.
func Graph(records []cases.Record) charts.Graph {
	g := charts.Graph{
		Nodes: []charts.GraphNode{},
		Links: make([]charts.GraphLink, 0, len(records)),
	}

	seenRegion := make(map[string]bool)
	seenCountry := make(map[string]bool)
	countries := make([]charts.GraphNode, 0)

	for _, r := range records {
		if !seenRegion[r.Region] {
			seenRegion[r.Region] = true
			g.Nodes = append(g.Nodes, newGraphNode(r.Region, charts.NodeRegion))
		}
		if !seenCountry[r.Country] {
			seenCountry[r.Country] = true
			countries = append(countries, newGraphNode(r.Country, charts.NodeCountry))
		}
		g.Links = append(g.Links, charts.GraphLink{
			Source: r.Country,
			Target: r.Region,
			Value:  r.TotalCases.OrZero(),
		})
	}

	g.Nodes = append(g.Nodes, countries...)
	return g
}

func newGraphNode(id string, t charts.NodeType) charts.GraphNode {
	return charts.GraphNode{ID: id, Type: t, Color: NodeColor(t)}
}
