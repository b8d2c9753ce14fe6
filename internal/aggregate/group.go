// Package aggregate projects a filtered record set into chart-ready shapes.
// Every projection is pure: the input is only read and each call returns a
// fresh structure.
package aggregate

import (
	"math"

	"epidash/domain/cases"

	"github.com/montanaflynn/stats"
)

// countryGroup collects the records of one (region, country) pair
type countryGroup struct {
	name   string
	first  cases.Record
	totals []float64
}

// regionGroup collects the countries of one region in first-seen order
type regionGroup struct {
	name      string
	countries []*countryGroup
	index     map[string]*countryGroup
}

// groupByRegionCountry groups records by region then country, keeping
// first-appearance order at both levels
func groupByRegionCountry(records []cases.Record) []*regionGroup {
	groups := make([]*regionGroup, 0)
	index := make(map[string]*regionGroup)

	for _, r := range records {
		rg, ok := index[r.Region]
		if !ok {
			rg = &regionGroup{name: r.Region, index: make(map[string]*countryGroup)}
			index[r.Region] = rg
			groups = append(groups, rg)
		}
		cg, ok := rg.index[r.Country]
		if !ok {
			cg = &countryGroup{name: r.Country, first: r}
			rg.index[r.Country] = cg
			rg.countries = append(rg.countries, cg)
		}
		cg.totals = append(cg.totals, r.TotalCases.OrZero())
	}
	return groups
}

// sum adds values; an empty input sums to 0
func sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total, err := stats.Sum(values)
	if err != nil {
		return 0
	}
	return total
}

// mean averages values; an empty input has no mean and yields NaN
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m, err := stats.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return m
}

// maximum returns the largest value, or 0 for an empty input
func maximum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Max(values)
	if err != nil {
		return 0
	}
	return m
}
