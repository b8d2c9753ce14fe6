package aggregate

import (
	"epidash/domain/cases"
	"epidash/domain/charts"
)

// Choropleth builds the map projection. Each country takes the first record
// seen for it; MaxCases spans every record and bounds the colour scale.
func Choropleth(records []cases.Record) charts.Choropleth {
	totals := make([]float64, 0, len(records))
	entries := make([]charts.CountryEntry, 0)
	seen := make(map[string]bool)

	for _, r := range records {
		totals = append(totals, r.TotalCases.OrZero())
		if seen[r.Country] {
			continue
		}
		seen[r.Country] = true
		entries = append(entries, charts.CountryEntry{
			Country:        r.Country,
			Region:         r.Region,
			TotalCases:     r.TotalCases,
			CasesPer100k:   r.CasesPer100k,
			RecoveryRate:   r.RecoveryRate,
			EconomicImpact: r.EconomicImpact,
			CaseSeverity:   r.CaseSeverity,
		})
	}

	maxCases := maximum(totals)
	for i := range entries {
		if maxCases > 0 {
			entries[i].Fill = entries[i].TotalCases.OrZero() / maxCases
		}
	}

	return charts.Choropleth{MaxCases: maxCases, Countries: entries}
}
