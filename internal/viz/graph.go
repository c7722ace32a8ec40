package viz

import (
	"github.com/guptarohit/asciigraph"
)

const (
	graphWidth  = 70
	graphHeight = 12
)

// Graph plots an equidistantly sampled series.
func Graph(values []float64, caption string) string {
	if len(values) == 0 {
		return Subtle.Render("(no data) " + caption)
	}
	return asciigraph.Plot(values,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

// Graphs plots several series of equal sampling into one chart.
func Graphs(caption string, series ...[]float64) string {
	var data [][]float64
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		return Subtle.Render("(no data) " + caption)
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}
