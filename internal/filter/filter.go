// Package filter narrows the record set by the active facet selection.
package filter

import (
	"sort"
	"strconv"
	"strings"

	"epidash/domain/cases"
	"epidash/domain/core"
)

// Filters maps a facet to its selected value. An absent or empty value
// imposes no constraint.
type Filters map[cases.Facet]string

// ParseFacet validates a facet name
func ParseFacet(s string) (cases.Facet, error) {
	facet := cases.Facet(strings.ToLower(strings.TrimSpace(s)))
	if !facet.Valid() {
		return "", core.NewUnknownFacetError(s)
	}
	return facet, nil
}

// Apply returns the records matching every non-empty filter, in input order.
// The input slice is never modified; with no active constraint the result is
// a copy equal to the input.
func Apply(records []cases.Record, filters Filters) []cases.Record {
	active := make([]constraint, 0, len(filters))
	for facet, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" || !facet.Valid() {
			continue
		}
		active = append(active, newConstraint(facet, value))
	}

	out := make([]cases.Record, 0, len(records))
	for _, r := range records {
		pass := true
		for _, c := range active {
			if !c.matches(r) {
				pass = false
				break
			}
		}
		if pass {
			out = append(out, r)
		}
	}
	return out
}

type constraint struct {
	facet   cases.Facet
	value   string
	year    int
	numeric bool
}

func newConstraint(facet cases.Facet, value string) constraint {
	c := constraint{facet: facet, value: value}
	if facet == cases.FacetYear {
		if y := cases.ParseYear(value); y.Valid {
			c.year = y.Value
			c.numeric = true
		}
	}
	return c
}

func (c constraint) matches(r cases.Record) bool {
	switch c.facet {
	case cases.FacetRegion:
		return r.Region == c.value
	case cases.FacetYear:
		// integers compare numerically ("2020" == "2020.0"); otherwise fall back to text
		if c.numeric && r.Year.Valid {
			return r.Year.Value == c.year
		}
		return strings.TrimSpace(r.Year.Raw) == c.value
	default:
		return false
	}
}

// DistinctValues lists the unique non-empty values of a facet. Years sort
// ascending numerically with unparseable years after them; regions sort
// alphabetically.
func DistinctValues(records []cases.Record, facet cases.Facet) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, r := range records {
		v := strings.TrimSpace(r.Field(facet))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	if facet == cases.FacetYear {
		sort.SliceStable(values, func(i, j int) bool {
			a, aErr := strconv.Atoi(values[i])
			b, bErr := strconv.Atoi(values[j])
			switch {
			case aErr == nil && bErr == nil:
				return a < b
			case aErr == nil:
				return true
			case bErr == nil:
				return false
			default:
				return values[i] < values[j]
			}
		})
		return values
	}

	sort.Strings(values)
	return values
}
