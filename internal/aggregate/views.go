package aggregate

import (
	"epidash/domain/cases"
	"epidash/domain/charts"
)

// Views computes every projection of the same filtered record set
func Views(records []cases.Record) charts.Views {
	return charts.Views{
		Sunburst: RegionHierarchy(records),
		Treemap:  Treemap(records),
		Network:  Graph(records),
		Timeline: TimeSeries(records),
		Map:      Choropleth(records),
	}
}

// View computes a single projection by name
func View(records []cases.Record, name charts.ViewName) (any, error) {
	switch name {
	case charts.ViewSunburst:
		return RegionHierarchy(records), nil
	case charts.ViewTreemap:
		return Treemap(records), nil
	case charts.ViewNetwork:
		return Graph(records), nil
	case charts.ViewTimeline:
		return TimeSeries(records), nil
	case charts.ViewMap:
		return Choropleth(records), nil
	default:
		return charts.Views{}.Get(name)
	}
}
