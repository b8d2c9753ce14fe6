package filter

import (
	"strconv"
	"testing"

	"epidash/domain/cases"
	"epidash/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(region, country, year, total string) cases.Record {
	m := cases.MissingMeasure(total)
	if v, err := strconv.ParseFloat(total, 64); err == nil {
		m = cases.Measure{Raw: total, Value: v, Valid: true}
	}
	return cases.Record{
		Region:     region,
		Country:    country,
		Year:       cases.ParseYear(year),
		TotalCases: m,
	}
}

func exampleRecords() []cases.Record {
	return []cases.Record{
		record("Africa", "Kenya", "2020", "100"),
		record("Africa", "Kenya", "2021", "150"),
		record("Asia", "India", "2020", "500"),
	}
}

func TestApplyExample(t *testing.T) {
	got := Apply(exampleRecords(), Filters{cases.FacetYear: "2020"})

	require.Len(t, got, 2)
	assert.Equal(t, "Kenya", got[0].Country)
	assert.Equal(t, "India", got[1].Country)
}

func TestApplyEmptyFiltersIsIdentity(t *testing.T) {
	records := exampleRecords()

	assert.Equal(t, records, Apply(records, Filters{}))
	assert.Equal(t, records, Apply(records, nil))
	assert.Equal(t, records, Apply(records, Filters{cases.FacetRegion: "", cases.FacetYear: "  "}))
}

func TestApplyConjunction(t *testing.T) {
	records := exampleRecords()
	regions := []string{"", "Africa", "Asia", "Europe"}
	years := []string{"", "2020", "2021", "1999"}

	for _, r := range regions {
		for _, y := range years {
			got := Apply(records, Filters{cases.FacetRegion: r, cases.FacetYear: y})
			for _, rec := range got {
				if r != "" {
					assert.Equal(t, r, rec.Region)
				}
				if y != "" {
					assert.Equal(t, y, rec.Year.String())
				}
			}

			expected := 0
			for _, rec := range records {
				if (r == "" || rec.Region == r) && (y == "" || rec.Year.String() == y) {
					expected++
				}
			}
			assert.Len(t, got, expected, "region=%q year=%q", r, y)
		}
	}
}

func TestApplyYearComparesAsInteger(t *testing.T) {
	records := []cases.Record{
		record("Africa", "Kenya", "2020.0", "1"),
		record("Africa", "Uganda", " 2020", "1"),
		record("Africa", "Chad", "unknown", "1"),
	}

	got := Apply(records, Filters{cases.FacetYear: "2020"})
	require.Len(t, got, 2)

	got = Apply(records, Filters{cases.FacetYear: "unknown"})
	require.Len(t, got, 1)
	assert.Equal(t, "Chad", got[0].Country)
}

func TestApplyKeepsUnparseableFieldsWhenNotFiltered(t *testing.T) {
	records := []cases.Record{
		record("Africa", "Kenya", "", ""),
		record("Africa", "Uganda", "2020", "x"),
	}

	got := Apply(records, Filters{cases.FacetRegion: "Africa"})
	assert.Len(t, got, 2)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := exampleRecords()
	before := append([]cases.Record(nil), records...)

	got := Apply(records, Filters{cases.FacetRegion: "Asia"})
	require.Len(t, got, 1)
	got[0].Country = "changed"

	assert.Equal(t, before, records)
}

func TestDistinctValuesYear(t *testing.T) {
	records := append(exampleRecords(),
		record("Europe", "France", "2019", "1"),
		record("Europe", "Spain", "", "1"),
		record("Europe", "Italy", "n/a", "1"),
		record("Europe", "Italy", "2020", "1"),
	)

	assert.Equal(t, []string{"2019", "2020", "2021", "n/a"}, DistinctValues(records, cases.FacetYear))
}

func TestDistinctValuesRegion(t *testing.T) {
	records := append(exampleRecords(), record("", "Nowhere", "2020", "1"), record("Americas", "Peru", "2020", "1"))

	assert.Equal(t, []string{"Africa", "Americas", "Asia"}, DistinctValues(records, cases.FacetRegion))
	assert.Empty(t, DistinctValues(nil, cases.FacetRegion))
}

func TestParseFacet(t *testing.T) {
	f, err := ParseFacet(" Region ")
	require.NoError(t, err)
	assert.Equal(t, cases.FacetRegion, f)

	_, err = ParseFacet("country")
	assert.ErrorIs(t, err, core.ErrUnknownFacet)
}
