package aggregate

import (
	"fmt"
	"math"

	"epidash/domain/charts"
)

var palette = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#FDCB6E",
	"#6C5CE7",
	"#A8E6CF",
	"#FF8ED4",
	"#FAD390",
}

// Map colours
const (
	NoDataColor    = "#E0E0E0"
	ScaleLowColor  = "#FFEBEB"
	ScaleHighColor = "#B20000"
)

// Palette returns the first n colours of the fixed categorical palette.
// Requests beyond its size are capped.
func Palette(n int) []string {
	if n <= 0 {
		return []string{}
	}
	if n > len(palette) {
		n = len(palette)
	}
	out := make([]string, n)
	copy(out, palette[:n])
	return out
}

// NodeColor returns the network colour for a node type
func NodeColor(t charts.NodeType) string {
	if t == charts.NodeRegion {
		return palette[0]
	}
	return palette[1]
}

// FillColor interpolates the map colour for a fill fraction in [0, 1].
// NaN means the country has no data.
func FillColor(fraction float64) string {
	if math.IsNaN(fraction) {
		return NoDataColor
	}
	fraction = math.Max(0, math.Min(1, fraction))

	lr, lg, lb := hexRGB(ScaleLowColor)
	hr, hg, hb := hexRGB(ScaleHighColor)
	lerp := func(a, b int) int {
		return int(math.Round(float64(a) + (float64(b)-float64(a))*fraction))
	}
	return fmt.Sprintf("#%02X%02X%02X", lerp(lr, hr), lerp(lg, hg), lerp(lb, hb))
}

func hexRGB(hex string) (int, int, int) {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
