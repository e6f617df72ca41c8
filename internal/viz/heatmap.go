package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Heatmap renders rows (indexed by y, then x) with north at the top, packing
// two grid rows into each text line with half-block glyphs. NaN cells are
// drawn as land.
func Heatmap(rows [][]float64, title string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Subtle.Render("(empty field)")
	}

	lo, hi := FieldRange(rows)
	scale := func(v float64) lipgloss.Color {
		if math.IsNaN(v) {
			return lipgloss.Color(landColor)
		}
		if hi == lo {
			return rampColor(0.5)
		}
		return rampColor((v - lo) / (hi - lo))
	}

	var b strings.Builder
	b.WriteString(Title.Render(title))
	b.WriteString("\n")

	ny := len(rows)
	for top := ny - 1; top >= 0; top -= 2 {
		for i := range rows[top] {
			style := lipgloss.NewStyle().Foreground(scale(rows[top][i]))
			if top > 0 && i < len(rows[top-1]) {
				style = style.Background(scale(rows[top-1][i]))
			}
			b.WriteString(style.Render("▀"))
		}
		b.WriteString("\n")
	}

	b.WriteString(colorBar(lo, hi, len(rows[0])))
	return b.String()
}

func colorBar(lo, hi float64, width int) string {
	width = max(width, 10)
	var b strings.Builder
	for i := 0; i < width; i++ {
		t := float64(i) / float64(width-1)
		b.WriteString(lipgloss.NewStyle().Foreground(rampColor(t)).Render("█"))
	}
	return fmt.Sprintf("%s\n%s", b.String(), MetricLabel.Render(fmt.Sprintf("min %.4g  max %.4g", lo, hi)))
}

// FieldRange returns the extremes over non-NaN cells, or (0, 0) for an all-NaN field.
func FieldRange(rows [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		for _, v := range r {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// MaskLand replaces cells where wet reports false with NaN.
func MaskLand(rows [][]float64, wet func(i, j int) bool) [][]float64 {
	out := make([][]float64, len(rows))
	for j, r := range rows {
		out[j] = make([]float64, len(r))
		for i, v := range r {
			if wet(i, j) {
				out[j][i] = v
			} else {
				out[j][i] = math.NaN()
			}
		}
	}
	return out
}
