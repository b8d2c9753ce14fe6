package aggregate

import (
	"sort"
	"strconv"

	"epidash/domain/cases"
	"epidash/domain/charts"
)

type yearBucket struct {
	totals     []float64
	recoveries []float64
	records    int
}

func (b *yearBucket) add(r cases.Record) {
	b.records++
	b.totals = append(b.totals, r.TotalCases.OrZero())
	if r.RecoveryRate.Valid {
		b.recoveries = append(b.recoveries, r.RecoveryRate.Value)
	}
}

func (b *yearBucket) point(year int, label string, valid bool) charts.YearPoint {
	return charts.YearPoint{
		Year:         year,
		Label:        label,
		Valid:        valid,
		TotalCases:   sum(b.totals),
		RecoveryRate: charts.NullableFloat(mean(b.recoveries)),
		Records:      b.records,
	}
}

// TimeSeries groups records by year, ascending. Total cases are summed with
// unparseable values counted as 0. Recovery rate is the mean of the valid
// values only and is NaN for a year with none. Records without a parseable
// year land in one trailing point labelled charts.UnknownYearLabel, so the
// series total always equals the total of the input.
func TimeSeries(records []cases.Record) []charts.YearPoint {
	buckets := make(map[int]*yearBucket)
	years := make([]int, 0)
	var unknown *yearBucket

	for _, r := range records {
		if !r.Year.Valid {
			if unknown == nil {
				unknown = &yearBucket{}
			}
			unknown.add(r)
			continue
		}
		b, ok := buckets[r.Year.Value]
		if !ok {
			b = &yearBucket{}
			buckets[r.Year.Value] = b
			years = append(years, r.Year.Value)
		}
		b.add(r)
	}

	sort.Ints(years)
	points := make([]charts.YearPoint, 0, len(years)+1)
	for _, y := range years {
		points = append(points, buckets[y].point(y, strconv.Itoa(y), true))
	}
	if unknown != nil {
		points = append(points, unknown.point(0, charts.UnknownYearLabel, false))
	}
	return points
}
