package render

import (
	"context"
	"fmt"
	"io"

	"epidash/domain/cases"
	"epidash/domain/charts"
	"epidash/internal/aggregate"

	geojson "github.com/paulmach/go.geojson"
)

// MapGeoJSON exports the choropleth as a FeatureCollection. Features carry no
// geometry; clients join them to their own country shapes by the "country"
// property.
type MapGeoJSON struct{}

// NewMapGeoJSON creates a map renderer
func NewMapGeoJSON() *MapGeoJSON {
	return &MapGeoJSON{}
}

func (r *MapGeoJSON) Name() string        { return "map" }
func (r *MapGeoJSON) ContentType() string { return "application/geo+json" }

func (r *MapGeoJSON) Render(ctx context.Context, views charts.Views, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := FeatureCollection(views.Map).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// FeatureCollection converts the choropleth into GeoJSON features, one per
// country in projection order
func FeatureCollection(m charts.Choropleth) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, entry := range m.Countries {
		f := geojson.NewFeature(nil)
		f.ID = entry.Country
		f.SetProperty("country", entry.Country)
		f.SetProperty("region", entry.Region)
		f.SetProperty("fill", entry.Fill)
		f.SetProperty("fill_color", fillColor(m, entry))
		f.SetProperty("total_cases", measureValue(entry.TotalCases))
		f.SetProperty("cases_per_100k", measureValue(entry.CasesPer100k))
		f.SetProperty("recovery_rate", measureValue(entry.RecoveryRate))
		f.SetProperty("economic_impact", entry.EconomicImpact)
		f.SetProperty("case_severity", entry.CaseSeverity)
		fc.AddFeature(f)
	}
	return fc
}

func fillColor(m charts.Choropleth, entry charts.CountryEntry) string {
	if !entry.TotalCases.Valid || m.MaxCases <= 0 {
		return aggregate.NoDataColor
	}
	return aggregate.FillColor(entry.Fill)
}

// measureValue is nil for cells that did not parse
func measureValue(m cases.Measure) interface{} {
	if !m.Valid {
		return nil
	}
	return m.Value
}
