package aggregate

import (
	"epidash/domain/cases"
	"epidash/domain/charts"
)

// RegionHierarchy builds the root → region → country tree used by the
// sunburst. A leaf holds the summed total cases of its (region, country)
// records; a region holds the sum of its leaves.
func RegionHierarchy(records []cases.Record) charts.Hierarchy {
	root := charts.Node{Name: charts.RootName, Children: []charts.Node{}}

	for _, rg := range groupByRegionCountry(records) {
		region := charts.Node{Name: rg.name, Children: make([]charts.Node, 0, len(rg.countries))}
		for _, cg := range rg.countries {
			leaf := charts.Node{Name: cg.name, Value: sum(cg.totals)}
			region.Value += leaf.Value
			region.Children = append(region.Children, leaf)
		}
		root.Value += region.Value
		root.Children = append(root.Children, region)
	}
	return root
}

// Treemap builds the treemap projection. Grouping and sums match
// RegionHierarchy exactly.
//
// Population, recovery rate and economic impact on each leaf are copied from
// the first record seen for that country, not aggregated. A country whose
// values differ across years only shows the first year's figures.
func Treemap(records []cases.Record) charts.Treemap {
	tm := charts.Treemap{Name: charts.RootName, Children: []charts.TreemapRegion{}}

	for _, rg := range groupByRegionCountry(records) {
		region := charts.TreemapRegion{Name: rg.name, Children: make([]charts.TreemapLeaf, 0, len(rg.countries))}
		for _, cg := range rg.countries {
			leaf := charts.TreemapLeaf{
				Name:           cg.name,
				Value:          sum(cg.totals),
				Population:     cg.first.TotalPopulation,
				RecoveryRate:   cg.first.RecoveryRate,
				EconomicImpact: cg.first.EconomicImpact,
			}
			region.Value += leaf.Value
			region.Children = append(region.Children, leaf)
		}
		tm.Value += region.Value
		tm.Children = append(tm.Children, region)
	}
	return tm
}
