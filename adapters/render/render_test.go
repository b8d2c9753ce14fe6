package render

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"epidash/domain/cases"
	"epidash/domain/charts"
	"epidash/domain/core"
	"epidash/internal/aggregate"

	geojson "github.com/paulmach/go.geojson"
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

func sampleViews() charts.Views {
	return aggregate.Views([]cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Africa", "Kenya", "2021", "150", "85"),
		record("Asia", "India", "2020", "500", "70"),
		record("Asia", "Nepal", "2021", "", ""),
	})
}

func TestTimelineSVG(t *testing.T) {
	var buf bytes.Buffer
	r := NewTimelineSVG()

	require.NoError(t, r.Render(context.Background(), sampleViews(), &buf))
	assert.Equal(t, "image/svg+xml", r.ContentType())
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Total cases")
}

func TestTimelineSVGNeedsTwoYears(t *testing.T) {
	views := aggregate.Views([]cases.Record{record("Africa", "Kenya", "2020", "100", "80")})

	err := NewTimelineSVG().Render(context.Background(), views, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrNotEnoughData)

	err = NewTimelineSVG().Render(context.Background(), charts.Views{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrNotEnoughData)
}

func TestTimelineSVGIgnoresUndatedBucket(t *testing.T) {
	views := aggregate.Views([]cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Asia", "Japan", "", "7", "99"),
	})
	require.Len(t, views.Timeline, 2)

	err := NewTimelineSVG().Render(context.Background(), views, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrNotEnoughData)

	views = aggregate.Views([]cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Africa", "Kenya", "2021", "150", "85"),
		record("Asia", "Japan", "", "7", "99"),
	})
	var buf bytes.Buffer
	require.NoError(t, NewTimelineSVG().Render(context.Background(), views, &buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestTimelineSVGConstantCases(t *testing.T) {
	views := aggregate.Views([]cases.Record{
		record("Africa", "Kenya", "2020", "0", ""),
		record("Africa", "Kenya", "2021", "0", ""),
	})

	var buf bytes.Buffer
	require.NoError(t, NewTimelineSVG().Render(context.Background(), views, &buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestMapGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMapGeoJSON().Render(context.Background(), sampleViews(), &buf))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	kenya := fc.Features[0]
	assert.Equal(t, "Kenya", kenya.Properties["country"])
	assert.Equal(t, "Africa", kenya.Properties["region"])
	assert.InDelta(t, 0.2, kenya.Properties["fill"], 1e-9)
	assert.Equal(t, aggregate.FillColor(0.2), kenya.Properties["fill_color"])
	assert.Equal(t, 100.0, kenya.Properties["total_cases"])
	assert.Nil(t, kenya.Geometry)

	nepal := fc.Features[2]
	assert.Equal(t, "Nepal", nepal.Properties["country"])
	assert.Nil(t, nepal.Properties["total_cases"])
	assert.Equal(t, aggregate.NoDataColor, nepal.Properties["fill_color"])
}

func TestMapGeoJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMapGeoJSON().Render(context.Background(), aggregate.Views(nil), &buf))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestReport(t *testing.T) {
	r := NewReport()

	md := r.Markdown(sampleViews())
	assert.Contains(t, md, "750 total cases across 2 region(s) and 3 country(ies)")
	assert.Contains(t, md, "| Africa | 1 | 250 |")
	assert.Contains(t, md, "| 2021 | 150 | 85.0 |")

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), sampleViews(), &buf))
	html := buf.String()
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "Asia")
}

func TestReportListsUndatedRecords(t *testing.T) {
	md := NewReport().Markdown(aggregate.Views([]cases.Record{
		record("Africa", "Kenya", "2020", "100", "80"),
		record("Asia", "Japan", "", "7", "99"),
	}))
	assert.Contains(t, md, "| 2020 | 100 | 80.0 |")
	assert.Contains(t, md, "| n/a | 7 | 99.0 |")
}

func TestReportEmpty(t *testing.T) {
	md := NewReport().Markdown(aggregate.Views(nil))
	assert.True(t, strings.HasSuffix(md, "No records match the current filters.\n"))
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, name := range Default().Names() {
		r, err := Default().Get(name)
		require.NoError(t, err)
		assert.ErrorIs(t, r.Render(ctx, sampleViews(), &bytes.Buffer{}), context.Canceled, name)
	}
}

func TestRegistry(t *testing.T) {
	reg := Default()
	assert.Equal(t, []string{"map", "report", "timeline"}, reg.Names())

	r, err := reg.Get(" Timeline ")
	require.NoError(t, err)
	assert.Equal(t, "timeline", r.Name())

	_, err = reg.Get("pdf")
	assert.True(t, core.IsNotFoundError(err))
}
