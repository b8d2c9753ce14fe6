package charts

import (
	"encoding/json"
	"math"
	"strings"

	"epidash/domain/cases"
	"epidash/domain/core"
)

// ViewName identifies one of the dashboard projections
type ViewName string

const (
	ViewSunburst ViewName = "sunburst"
	ViewTreemap  ViewName = "treemap"
	ViewNetwork  ViewName = "network"
	ViewTimeline ViewName = "timeline"
	ViewMap      ViewName = "map"
)

// ViewNames lists every projection in dashboard order
var ViewNames = []ViewName{ViewMap, ViewSunburst, ViewNetwork, ViewTimeline, ViewTreemap}

// ParseViewName validates a view name
func ParseViewName(s string) (ViewName, error) {
	name := ViewName(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range ViewNames {
		if v == name {
			return name, nil
		}
	}
	return "", core.NewUnknownViewError(s)
}

// RootName labels the root of both region hierarchies
const RootName = "TB Cases"

// NullableFloat is a float that encodes NaN as JSON null. Means over an empty
// group are NaN and renderers must tolerate them.
type NullableFloat float64

// IsNaN reports whether the value is undefined
func (f NullableFloat) IsNaN() bool {
	return math.IsNaN(float64(f))
}

func (f NullableFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *NullableFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}

// Node is a region/country hierarchy node used by the sunburst.
// Leaves are countries; Value on inner nodes is the sum of their children.
type Node struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Children []Node  `json:"children,omitempty"`
}

// Hierarchy is the root of a region → country tree
type Hierarchy = Node

// UnknownYearLabel labels the bucket of records whose year does not parse
const UnknownYearLabel = "n/a"

// YearPoint is one timeline sample. Valid is false for the trailing bucket
// that collects records without a parseable year; its Year is 0.
type YearPoint struct {
	Year         int           `json:"year"`
	Label        string        `json:"label"`
	Valid        bool          `json:"valid"`
	TotalCases   float64       `json:"total_cases"`
	RecoveryRate NullableFloat `json:"recovery_rate"`
	Records      int           `json:"records"`
}

// NodeType tags graph nodes
type NodeType string

const (
	NodeRegion  NodeType = "region"
	NodeCountry NodeType = "country"
)

// GraphNode is a force-graph vertex
type GraphNode struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Color string   `json:"color"`
}

// GraphLink is a force-graph edge from a country to its region
type GraphLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// Graph is the network projection
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// TreemapLeaf is a country cell. Population, RecoveryRate and EconomicImpact
// are sampled from a single representative record, not aggregated.
type TreemapLeaf struct {
	Name           string        `json:"name"`
	Value          float64       `json:"value"`
	Population     cases.Measure `json:"population"`
	RecoveryRate   cases.Measure `json:"recovery_rate"`
	EconomicImpact string        `json:"economic_impact"`
}

// TreemapRegion groups country cells
type TreemapRegion struct {
	Name     string        `json:"name"`
	Value    float64       `json:"value"`
	Children []TreemapLeaf `json:"children"`
}

// Treemap is the treemap projection
type Treemap struct {
	Name     string          `json:"name"`
	Value    float64         `json:"value"`
	Children []TreemapRegion `json:"children"`
}

// CountryEntry is the map tooltip/fill data for one country
type CountryEntry struct {
	Country        string        `json:"country"`
	Region         string        `json:"region"`
	Fill           float64       `json:"fill"`
	TotalCases     cases.Measure `json:"total_cases"`
	CasesPer100k   cases.Measure `json:"cases_per_100k"`
	RecoveryRate   cases.Measure `json:"recovery_rate"`
	EconomicImpact string        `json:"economic_impact"`
	CaseSeverity   string        `json:"case_severity"`
}

// Choropleth is the map projection. The colour domain is [0, MaxCases].
type Choropleth struct {
	MaxCases  float64        `json:"max_cases"`
	Countries []CountryEntry `json:"countries"`
}

// Lookup returns the entry for a country, if present
func (c Choropleth) Lookup(country string) (CountryEntry, bool) {
	for _, e := range c.Countries {
		if e.Country == country {
			return e, true
		}
	}
	return CountryEntry{}, false
}

// Views bundles every projection of one filtered record set
type Views struct {
	Sunburst Hierarchy   `json:"sunburst"`
	Treemap  Treemap     `json:"treemap"`
	Network  Graph       `json:"network"`
	Timeline []YearPoint `json:"timeline"`
	Map      Choropleth  `json:"map"`
}

// Get returns a single projection by name
func (v Views) Get(name ViewName) (any, error) {
	switch name {
	case ViewSunburst:
		return v.Sunburst, nil
	case ViewTreemap:
		return v.Treemap, nil
	case ViewNetwork:
		return v.Network, nil
	case ViewTimeline:
		return v.Timeline, nil
	case ViewMap:
		return v.Map, nil
	default:
		return nil, core.NewUnknownViewError(string(name))
	}
}

// Triple is a flattened (region, country, value) leaf used to compare hierarchies
type Triple struct {
	Region  string
	Country string
	Value   float64
}

// Triples flattens a sunburst hierarchy
func (n Node) Triples() []Triple {
	var out []Triple
	for _, region := range n.Children {
		for _, country := range region.Children {
			out = append(out, Triple{Region: region.Name, Country: country.Name, Value: country.Value})
		}
	}
	return out
}

// Triples flattens a treemap
func (t Treemap) Triples() []Triple {
	var out []Triple
	for _, region := range t.Children {
		for _, leaf := range region.Children {
			out = append(out, Triple{Region: region.Name, Country: leaf.Name, Value: leaf.Value})
		}
	}
	return out
}
