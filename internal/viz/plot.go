package viz

import (
	"github.com/guptarohit/asciigraph"
)

// SeriesPlot renders a time series as an ascii line graph.
func SeriesPlot(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return Subtle.Render("(no samples for " + caption + ")")
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Transect plots one row of a field, e.g. a zonal slice of the stream function.
func Transect(rows [][]float64, row int, caption string) string {
	if row < 0 || row >= len(rows) {
		return Subtle.Render("(row out of range)")
	}
	return SeriesPlot(rows[row], caption, 80, 10)
}
