package cases

import (
	"math"
	"strconv"
	"strings"
)

// Facet names a filterable record field
type Facet string

const (
	FacetRegion Facet = "region"
	FacetYear   Facet = "year"
)

// Facets lists every filterable facet in display order
var Facets = []Facet{FacetRegion, FacetYear}

// Valid reports whether the facet is one the filter engine understands
func (f Facet) Valid() bool {
	return f == FacetRegion || f == FacetYear
}

// Column names of the input resource
const (
	ColumnRegion          = "region"
	ColumnCountry         = "country"
	ColumnYear            = "year"
	ColumnTotalCases      = "total_cases"
	ColumnCasesPer100k    = "cases_per_100k"
	ColumnTotalPopulation = "total_population"
	ColumnRecoveryRate    = "recovery_rate"
	ColumnEconomicImpact  = "economic_impact"
	ColumnCaseSeverity    = "case_severity"
)

// Columns lists the input columns in their canonical order
var Columns = []string{
	ColumnRegion,
	ColumnCountry,
	ColumnYear,
	ColumnTotalCases,
	ColumnCasesPer100k,
	ColumnTotalPopulation,
	ColumnRecoveryRate,
	ColumnEconomicImpact,
	ColumnCaseSeverity,
}

// Measure is a numeric field parsed from text. Raw keeps the original cell so
// display layers can show exactly what was loaded.
type Measure struct {
	Raw   string  `json:"raw"`
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// NewMeasure builds a valid measure from a number
func NewMeasure(v float64) Measure {
	return Measure{Raw: strconv.FormatFloat(v, 'f', -1, 64), Value: v, Valid: true}
}

// MissingMeasure builds an invalid measure that remembers its raw text
func MissingMeasure(raw string) Measure {
	return Measure{Raw: raw}
}

// OrZero returns the value, or 0 when the measure did not parse.
// Summation contexts use this; mean contexts check Valid instead.
func (m Measure) OrZero() float64 {
	if !m.Valid {
		return 0
	}
	return m.Value
}

// Year is the record year: the raw text and, when it parses, the integer
type Year struct {
	Raw   string `json:"raw"`
	Value int    `json:"value"`
	Valid bool   `json:"valid"`
}

// ParseYear parses a year cell. Whole-number floats ("2020.0") are accepted
// since spreadsheets often export years that way.
func ParseYear(raw string) Year {
	trimmed := strings.TrimSpace(raw)
	if v, err := strconv.Atoi(trimmed); err == nil {
		return Year{Raw: raw, Value: v, Valid: true}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return Year{Raw: raw, Value: int(f), Valid: true}
	}
	return Year{Raw: raw}
}

// String returns the canonical text form: the integer when valid, otherwise the trimmed raw text
func (y Year) String() string {
	if y.Valid {
		return strconv.Itoa(y.Value)
	}
	return strings.TrimSpace(y.Raw)
}

// Record is one row of the input dataset. Records are immutable once loaded.
type Record struct {
	Region          string  `json:"region"`
	Country         string  `json:"country"`
	Year            Year    `json:"year"`
	TotalCases      Measure `json:"total_cases"`
	CasesPer100k    Measure `json:"cases_per_100k"`
	TotalPopulation Measure `json:"total_population"`
	RecoveryRate    Measure `json:"recovery_rate"`
	EconomicImpact  string  `json:"economic_impact"`
	CaseSeverity    string  `json:"case_severity"`
}

// Field returns the textual value of a facet for this record
func (r Record) Field(f Facet) string {
	switch f {
	case FacetRegion:
		return r.Region
	case FacetYear:
		return r.Year.String()
	default:
		return ""
	}
}

// Key returns the natural (country, year) key. It is not guaranteed unique.
func (r Record) Key() string {
	return r.Country + "|" + r.Year.String()
}
