package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"epidash/domain/charts"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Report renders a plain summary of the current views as HTML
type Report struct {
	Title string
}

// NewReport creates a report renderer
func NewReport() *Report {
	return &Report{Title: charts.RootName + " report"}
}

func (r *Report) Name() string        { return "report" }
func (r *Report) ContentType() string { return "text/html; charset=utf-8" }

func (r *Report) Render(ctx context.Context, views charts.Views, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := markdown.ToHTML([]byte(r.Markdown(views)), p, renderer)

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown builds the report source
func (r *Report) Markdown(views charts.Views) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if len(views.Sunburst.Children) == 0 {
		b.WriteString("No records match the current filters.\n")
		return b.String()
	}

	countries := 0
	for _, region := range views.Sunburst.Children {
		countries += len(region.Children)
	}
	fmt.Fprintf(&b, "%s total cases across %d region(s) and %d country(ies).\n\n",
		formatNumber(views.Sunburst.Value), len(views.Sunburst.Children), countries)

	b.WriteString("## Cases by region\n\n")
	b.WriteString("| Region | Countries | Total cases |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, region := range views.Sunburst.Children {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", escapeCell(region.Name), len(region.Children), formatNumber(region.Value))
	}
	b.WriteString("\n")

	if len(views.Timeline) > 0 {
		b.WriteString("## Cases by year\n\n")
		b.WriteString("| Year | Total cases | Recovery rate |\n")
		b.WriteString("|---|---:|---:|\n")
		for _, p := range views.Timeline {
			rate := "n/a"
			if !p.RecoveryRate.IsNaN() {
				rate = fmt.Sprintf("%.1f", float64(p.RecoveryRate))
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(p.Label), formatNumber(p.TotalCases), rate)
		}
		b.WriteString("\n")
	}

	if views.Map.MaxCases > 0 {
		fmt.Fprintf(&b, "Highest single-record case count: %s.\n", formatNumber(views.Map.MaxCases))
	}
	return b.String()
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
