package aggregate

import (
	"math"
	"sort"
	"strconv"
	"testing"

	"epidash/domain/cases"
	"epidash/domain/charts"
	"epidash/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measure(raw string) cases.Measure {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return cases.Measure{Raw: raw, Value: v, Valid: true}
	}
	return cases.MissingMeasure(raw)
}

func record(region, country, year, total, recovery string) cases.Record {
	return cases.Record{
		Region:       region,
		Country:      country,
		Year:         cases.ParseYear(year),
		TotalCases:   measure(total),
		RecoveryRate: measure(recovery),
	}
}

func exampleRecords() []cases.Record {
	return []cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Africa", "Kenya", "2021", "150", "85"),
		record("Asia", "India", "2020", "500", "70"),
	}
}

func mixedRecords() []cases.Record {
	return []cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Asia", "India", "2020", "", "x"),
		record("Africa", "Nigeria", "2021", "40", ""),
		record("Africa", "Kenya", "2021", "150", "85"),
		record("Europe", "France", "2019", "abc", "90"),
		record("Asia", "India", "2021", "500", "70"),
		record("Asia", "Japan", "bad", "7", "99"),
	}
}

func TestExampleTimeSeries(t *testing.T) {
	points := TimeSeries(exampleRecords())

	require.Len(t, points, 2)
	assert.Equal(t, 2020, points[0].Year)
	assert.Equal(t, 600.0, points[0].TotalCases)
	assert.Equal(t, 2021, points[1].Year)
	assert.Equal(t, 150.0, points[1].TotalCases)
	assert.InDelta(t, 75.0, float64(points[0].RecoveryRate), 1e-9)
	assert.Equal(t, 2, points[0].Records)
}

func TestExampleRegionHierarchy(t *testing.T) {
	root := RegionHierarchy(exampleRecords())

	assert.Equal(t, charts.RootName, root.Name)
	assert.Equal(t, 750.0, root.Value)
	assert.Equal(t, []charts.Triple{
		{Region: "Africa", Country: "Kenya", Value: 250},
		{Region: "Asia", Country: "India", Value: 500},
	}, root.Triples())
	assert.Equal(t, 250.0, root.Children[0].Value)
}

func TestTimeSeriesConservesTotals(t *testing.T) {
	undated := []cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Asia", "Japan", "", "7", "99"),
	}
	for _, records := range [][]cases.Record{exampleRecords(), mixedRecords(), undated, nil} {
		var expected float64
		for _, r := range records {
			expected += r.TotalCases.OrZero()
		}

		var got float64
		for _, p := range TimeSeries(records) {
			got += p.TotalCases
		}
		assert.InDelta(t, expected, got, 1e-9)
	}
}

func TestTimeSeriesUndatedBucketTrails(t *testing.T) {
	points := TimeSeries([]cases.Record{
		record("Asia", "Japan", "", "7", "99"),
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Asia", "Nepal", "twenty", "3", ""),
	})
	require.Len(t, points, 2)

	assert.Equal(t, charts.YearPoint{
		Year: 2020, Label: "2020", Valid: true,
		TotalCases: 100, RecoveryRate: 80, Records: 1,
	}, points[0])

	last := points[1]
	assert.False(t, last.Valid)
	assert.Equal(t, charts.UnknownYearLabel, last.Label)
	assert.Equal(t, 10.0, last.TotalCases)
	assert.Equal(t, 99.0, float64(last.RecoveryRate))
	assert.Equal(t, 2, last.Records)
}

func TestTimeSeriesSkipsInvalidInMeanAndYieldsNaN(t *testing.T) {
	records := []cases.Record{
		record("Africa", "Kenya", "2020", "", "80"),
		record("Africa", "Uganda", "2020", "10", ""),
		record("Africa", "Chad", "2021", "5", "n/a"),
	}

	points := TimeSeries(records)
	require.Len(t, points, 2)

	assert.Equal(t, 10.0, points[0].TotalCases)
	assert.Equal(t, 80.0, float64(points[0].RecoveryRate))
	assert.True(t, points[1].RecoveryRate.IsNaN())
}

func TestTimeSeriesAscending(t *testing.T) {
	points := TimeSeries(mixedRecords())
	require.Len(t, points, 4)

	years := make([]int, 0, len(points))
	for _, p := range points[:3] {
		assert.True(t, p.Valid)
		years = append(years, p.Year)
	}
	assert.True(t, sort.IntsAreSorted(years))
	assert.Equal(t, []int{2019, 2020, 2021}, years)
	assert.Equal(t, charts.UnknownYearLabel, points[3].Label)
	assert.False(t, points[3].Valid)
}

func TestHierarchyAndTreemapAgree(t *testing.T) {
	for _, records := range [][]cases.Record{exampleRecords(), mixedRecords(), {}} {
		for _, region := range []string{"", "Africa", "Asia"} {
			subset := filter.Apply(records, filter.Filters{cases.FacetRegion: region})
			h := RegionHierarchy(subset)
			tm := Treemap(subset)

			assert.ElementsMatch(t, h.Triples(), tm.Triples())
			assert.Equal(t, h.Value, tm.Value)
		}
	}
}

func TestHierarchyFirstSeenOrder(t *testing.T) {
	root := RegionHierarchy(mixedRecords())

	names := make([]string, 0, len(root.Children))
	for _, c := range root.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Africa", "Asia", "Europe"}, names)
	assert.Equal(t, "Kenya", root.Children[0].Children[0].Name)
	assert.Equal(t, "Nigeria", root.Children[0].Children[1].Name)

	// empty and non-numeric totals count as zero
	assert.Equal(t, 500.0, root.Children[1].Children[0].Value)
	assert.Equal(t, 0.0, root.Children[2].Value)
}

func TestTreemapSamplesFirstRecord(t *testing.T) {
	records := []cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Africa", "Kenya", "2021", "150", "90"),
	}
	records[0].TotalPopulation = measure("1000")
	records[0].EconomicImpact = "low"
	records[1].TotalPopulation = measure("2000")
	records[1].EconomicImpact = "high"

	tm := Treemap(records)
	leaf := tm.Children[0].Children[0]

	assert.Equal(t, 250.0, leaf.Value)
	assert.Equal(t, 1000.0, leaf.Population.Value)
	assert.Equal(t, 80.0, leaf.RecoveryRate.Value)
	assert.Equal(t, "low", leaf.EconomicImpact)
}

func TestGraph(t *testing.T) {
	g := Graph(exampleRecords())

	assert.Equal(t, []charts.GraphNode{
		{ID: "Africa", Type: charts.NodeRegion, Color: "#FF6B6B"},
		{ID: "Asia", Type: charts.NodeRegion, Color: "#FF6B6B"},
		{ID: "Kenya", Type: charts.NodeCountry, Color: "#4ECDC4"},
		{ID: "India", Type: charts.NodeCountry, Color: "#4ECDC4"},
	}, g.Nodes)

	// one edge per record, parallel edges kept
	require.Len(t, g.Links, 3)
	assert.Equal(t, charts.GraphLink{Source: "Kenya", Target: "Africa", Value: 100}, g.Links[0])
	assert.Equal(t, charts.GraphLink{Source: "Kenya", Target: "Africa", Value: 150}, g.Links[1])
}

func TestChoropleth(t *testing.T) {
	m := Choropleth(exampleRecords())

	assert.Equal(t, 500.0, m.MaxCases)
	require.Len(t, m.Countries, 2)

	kenya, ok := m.Lookup("Kenya")
	require.True(t, ok)
	assert.Equal(t, 100.0, kenya.TotalCases.Value)
	assert.InDelta(t, 0.2, kenya.Fill, 1e-9)

	_, ok = m.Lookup("Peru")
	assert.False(t, ok)
}

func TestEmptyInputIsRenderable(t *testing.T) {
	v := Views(nil)

	assert.Equal(t, charts.RootName, v.Sunburst.Name)
	assert.Empty(t, v.Sunburst.Children)
	assert.Empty(t, v.Treemap.Children)
	assert.Empty(t, v.Network.Nodes)
	assert.Empty(t, v.Network.Links)
	assert.Empty(t, v.Timeline)
	assert.Equal(t, 0.0, v.Map.MaxCases)
}

func TestAggregatorsDoNotMutateInput(t *testing.T) {
	records := mixedRecords()
	before := append([]cases.Record(nil), records...)

	_ = Views(records)
	assert.Equal(t, before, records)
}

func TestView(t *testing.T) {
	got, err := View(exampleRecords(), charts.ViewTimeline)
	require.NoError(t, err)
	assert.Len(t, got.([]charts.YearPoint), 2)

	_, err = View(exampleRecords(), charts.ViewName("pie"))
	assert.Error(t, err)
}

func TestPalette(t *testing.T) {
	assert.Equal(t, []string{"#FF6B6B", "#4ECDC4"}, Palette(2))
	assert.Len(t, Palette(20), 8)
	assert.Empty(t, Palette(0))

	assert.Equal(t, "#FF6B6B", NodeColor(charts.NodeRegion))
	assert.Equal(t, "#4ECDC4", NodeColor(charts.NodeCountry))
}

func TestFillColor(t *testing.T) {
	assert.Equal(t, ScaleLowColor, FillColor(0))
	assert.Equal(t, ScaleHighColor, FillColor(1))
	assert.Equal(t, ScaleHighColor, FillColor(3))
	assert.Equal(t, NoDataColor, FillColor(math.NaN()))
}
