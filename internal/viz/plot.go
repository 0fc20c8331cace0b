package viz

import (
	"github.com/guptarohit/asciigraph"
)

// PlotSeries renders data as an ASCII line chart.
func PlotSeries(data []float64, caption string, height, width int) string {
	if len(data) == 0 {
		return caption + ": no data"
	}
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
