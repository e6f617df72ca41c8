package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/seamount/internal/viz"
)

// FieldToSVG draws a (y, x) field as coloured cells, north at the top.
// NaN cells are drawn as land.
func FieldToSVG(rows [][]float64, cell float64) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}

	ny, nx := len(rows), len(rows[0])
	width := float64(nx) * cell
	height := float64(ny) * cell
	lo, hi := viz.FieldRange(rows)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g shape-rendering="crispEdges">
`, width, height, width, height))

	for j, row := range rows {
		y := float64(ny-1-j) * cell
		for i, v := range row {
			fill := landFill
			if !math.IsNaN(v) {
				t := 0.5
				if hi > lo {
					t = (v - lo) / (hi - lo)
				}
				fill = viz.RampHex(t)
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(i)*cell, y, cell, cell, fill))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

const landFill = "#5a4a2a"

// SeriesToSVG draws values against times as a single path.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for k := 0; k < n; k++ {
		minX = math.Min(minX, times[k])
		maxX = math.Max(maxX, times[k])
		minY = math.Min(minY, values[k])
		maxY = math.Max(maxY, values[k])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for k := 0; k < n; k++ {
		x := (times[k] - minX) / rangeX * float64(width)
		y := float64(height) - (values[k]-minY)/rangeY*float64(height)

		if k == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
