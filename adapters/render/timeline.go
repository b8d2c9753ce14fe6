package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"epidash/domain/charts"
	"epidash/domain/core"
	"epidash/internal/aggregate"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// TimelineSVG draws total cases per year with the recovery rate on a
// secondary axis
type TimelineSVG struct {
	Width  int
	Height int
}

// NewTimelineSVG creates a timeline renderer with the dashboard's default size
func NewTimelineSVG() *TimelineSVG {
	return &TimelineSVG{Width: 960, Height: 400}
}

func (r *TimelineSVG) Name() string        { return "timeline" }
func (r *TimelineSVG) ContentType() string { return "image/svg+xml" }

// Render writes the chart as SVG. At least two dated years are needed to draw
// a line; the undated bucket has no position on the axis and is left out.
func (r *TimelineSVG) Render(ctx context.Context, views charts.Views, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	points := datedPoints(views.Timeline)
	if len(points) < 2 {
		return fmt.Errorf("%w: timeline has %d year(s)", core.ErrNotEnoughData, len(points))
	}

	years := make([]float64, 0, len(points))
	totals := make([]float64, 0, len(points))
	var recoveryYears, recovery []float64
	maxTotal, maxRecovery := 0.0, 100.0
	for _, p := range points {
		years = append(years, float64(p.Year))
		totals = append(totals, p.TotalCases)
		maxTotal = math.Max(maxTotal, p.TotalCases)
		if !p.RecoveryRate.IsNaN() {
			recoveryYears = append(recoveryYears, float64(p.Year))
			recovery = append(recovery, float64(p.RecoveryRate))
			maxRecovery = math.Max(maxRecovery, float64(p.RecoveryRate))
		}
	}
	if maxTotal <= 0 {
		maxTotal = 1
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Total cases",
			XValues: years,
			YValues: totals,
			Style: chart.Style{
				StrokeColor: hexColor(aggregate.Palette(1)[0]),
				StrokeWidth: 2,
				DotWidth:    3,
				DotColor:    hexColor(aggregate.Palette(1)[0]),
			},
		},
	}
	// a single point cannot form a line on the secondary axis
	if len(recovery) >= 2 {
		series = append(series, chart.ContinuousSeries{
			Name:    "Recovery rate",
			YAxis:   chart.YAxisSecondary,
			XValues: recoveryYears,
			YValues: recovery,
			Style: chart.Style{
				StrokeColor:     hexColor(aggregate.Palette(2)[1]),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 3},
			},
		})
	}

	graph := chart.Chart{
		Title:  "TB cases over time",
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Year",
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Total cases",
			Range: &chart.ContinuousRange{Min: 0, Max: maxTotal * 1.1},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Recovery rate",
			Range: &chart.ContinuousRange{Min: 0, Max: maxRecovery},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}
	return nil
}

func datedPoints(points []charts.YearPoint) []charts.YearPoint {
	out := make([]charts.YearPoint, 0, len(points))
	for _, p := range points {
		if p.Valid {
			out = append(out, p)
		}
	}
	return out
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
